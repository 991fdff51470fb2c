package models

// Review is a counterparty rating left after a deal completes. One review
// per (deal, author) pair, enforced by the completion flow.
type Review struct {
	BaseModel
	DealID   string `gorm:"not null;index" json:"-"`
	AuthorID string `gorm:"not null;index" json:"-"`
	UserID   string `gorm:"not null;index" json:"-"` // reviewed user
	Rating   int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Text     string `gorm:"type:text" json:"text"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

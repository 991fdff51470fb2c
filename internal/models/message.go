package models

import "github.com/lib/pq"

// Message belongs to exactly one deal. Viewed holds user ids with set
// semantics; entries are only ever added.
type Message struct {
	BaseModel
	DealID   string         `gorm:"not null;index" json:"deal"`
	SenderID string         `gorm:"not null;index" json:"-"`
	Content  string         `gorm:"type:text" json:"content"`
	Viewed   pq.StringArray `gorm:"type:text[];default:'{}'" json:"viewed"`

	Sender      *User        `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:MessageID" json:"attachments,omitempty"`
}

// Attachment is a stored reference only; the bytes live with the upload
// collaborator.
type Attachment struct {
	BaseModel
	MessageID string `gorm:"not null;index" json:"-"`
	Name      string `json:"name"`
	URL       string `json:"url"`
}

package models

const (
	NotificationTypeMessage  = "message"
	NotificationTypeDispute  = "dispute"
	NotificationTypeDecision = "decision"
	NotificationTypeReview   = "review"
)

// Notification is one pending alert for a user. Message-type rows are
// transient aggregation inputs: they are deleted on every read and replaced
// by a per-deal count. Other types persist until marked viewed.
type Notification struct {
	BaseModel
	UserID   string  `gorm:"not null;index" json:"-"`
	DealID   *string `gorm:"index" json:"-"`
	SenderID *string `json:"-"`
	Type     string  `gorm:"not null" json:"type"`
	Viewed   bool    `gorm:"default:false" json:"viewed"`

	Sender *User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Deal   *Deal `gorm:"foreignKey:DealID" json:"deal,omitempty"`
}

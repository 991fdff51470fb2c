package models

import "time"

type UserRole string

const (
	RoleClient UserRole = "client"
	RoleEscrow UserRole = "escrow"
)

type User struct {
	BaseModel
	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"uniqueIndex;not null" json:"-"`
	Role        UserRole   `gorm:"type:varchar(20);not null;default:'client'" json:"type"`
	Wallet      string     `json:"-"`
	Online      bool       `gorm:"default:false" json:"online"`
	LastConnect *time.Time `json:"last_connect,omitempty"`
}

// UserRef is the public projection embedded in deal and message payloads.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Username: u.Username}
}

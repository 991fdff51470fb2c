package models

import "time"

type DealStatus string

const (
	DealStatusActive    DealStatus = "active"
	DealStatusCompleted DealStatus = "completed"
	DealStatusDisputed  DealStatus = "disputed"
	DealStatusClosed    DealStatus = "closed"
)

type DealRole string

const (
	DealRoleBuyer  DealRole = "buyer"
	DealRoleSeller DealRole = "seller"
	DealRoleEscrow DealRole = "escrow"
	DealRoleNone   DealRole = ""
)

// Deal is one trade session between a buyer and a seller, possibly with
// arbitrators drawn in while disputed.
type Deal struct {
	BaseModel
	DID        string     `gorm:"uniqueIndex;not null" json:"dId"`
	ExchangeID string     `gorm:"not null;index" json:"-"`
	BuyerID    string     `gorm:"not null;index" json:"-"`
	SellerID   string     `gorm:"not null;index" json:"-"`
	Status     DealStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	Sum        float64    `json:"sum"`

	Exchange *Exchange    `gorm:"foreignKey:ExchangeID" json:"exchange,omitempty"`
	Buyer    *User        `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Seller   *User        `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	Messages []Message    `gorm:"foreignKey:DealID" json:"messages,omitempty"`
	Escrows  []DealEscrow `gorm:"foreignKey:DealID" json:"escrows,omitempty"`
}

type EscrowDecision string

const (
	DecisionPending  EscrowDecision = "pending"
	DecisionAccepted EscrowDecision = "accepted"
	DecisionRejected EscrowDecision = "rejected"
)

// DealEscrow is one arbitrator draw for a deal. Rows are never removed, so
// the full set of EscrowIDs doubles as the deal's used-arbitrator history.
type DealEscrow struct {
	BaseModel
	DealID   string         `gorm:"not null;index" json:"-"`
	EscrowID string         `gorm:"not null;index" json:"escrow"`
	Decision EscrowDecision `gorm:"type:varchar(20);default:'pending'" json:"decision"`
	JoinAt   *time.Time     `json:"join_at,omitempty"`

	Escrow *User `gorm:"foreignKey:EscrowID" json:"-"`
}

// RoleOf resolves a user's role in the deal. Escrow draws count regardless of
// their decision; anyone else is not a participant.
func (d *Deal) RoleOf(userID string) DealRole {
	switch userID {
	case d.BuyerID:
		return DealRoleBuyer
	case d.SellerID:
		return DealRoleSeller
	}
	for _, esc := range d.Escrows {
		if esc.EscrowID == userID {
			return DealRoleEscrow
		}
	}
	return DealRoleNone
}

// UsedEscrowIDs lists every arbitrator ever drawn for the deal, including
// ones that rejected.
func (d *Deal) UsedEscrowIDs() []string {
	ids := make([]string, 0, len(d.Escrows))
	for _, esc := range d.Escrows {
		ids = append(ids, esc.EscrowID)
	}
	return ids
}

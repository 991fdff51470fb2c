package models

import "gorm.io/datatypes"

const (
	ExchangeStatusActive = "active"
	ExchangeStatusClosed = "closed"
)

const (
	TradeTypeBuy  = "buy"
	TradeTypeSell = "sell"
)

// Exchange is a published offer to buy or sell coin for fiat.
type Exchange struct {
	BaseModel
	EID               string         `gorm:"uniqueIndex;not null" json:"eId"`
	OwnerID           string         `gorm:"not null;index" json:"-"`
	TradeType         string         `gorm:"type:varchar(10);not null" json:"tradeType"`
	Coin              string         `gorm:"not null" json:"coin"`
	Currency          string         `gorm:"not null" json:"currency"`
	PaymentType       string         `gorm:"not null" json:"paymentType"`
	PaymentTypeDetail string         `json:"paymentTypeDetail"`
	Rate              float64        `gorm:"not null" json:"rate"`
	Conditions        string         `json:"conditions"`
	Limits            datatypes.JSON `gorm:"type:jsonb" json:"limits"` // {"min": 1, "max": 500}
	Status            string         `gorm:"default:'active'" json:"status"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// ExchangeLimits is the parsed form of Exchange.Limits.
type ExchangeLimits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

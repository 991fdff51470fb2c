package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDeal() *Deal {
	return &Deal{
		BuyerID:  "buyer-1",
		SellerID: "seller-1",
		Escrows: []DealEscrow{
			{EscrowID: "escrow-1", Decision: DecisionRejected},
			{EscrowID: "escrow-2", Decision: DecisionPending},
		},
	}
}

func TestDealRoleOf(t *testing.T) {
	deal := testDeal()

	assert.Equal(t, DealRoleBuyer, deal.RoleOf("buyer-1"))
	assert.Equal(t, DealRoleSeller, deal.RoleOf("seller-1"))
	assert.Equal(t, DealRoleEscrow, deal.RoleOf("escrow-2"))
	// A rejected draw still counts as a participant.
	assert.Equal(t, DealRoleEscrow, deal.RoleOf("escrow-1"))
	assert.Equal(t, DealRoleNone, deal.RoleOf("stranger"))
}

func TestDealUsedEscrowIDs_IncludesRejected(t *testing.T) {
	deal := testDeal()

	// The exclusion list covers every draw ever made, so a rejected
	// arbitrator can never be offered the same deal again.
	assert.Equal(t, []string{"escrow-1", "escrow-2"}, deal.UsedEscrowIDs())
}

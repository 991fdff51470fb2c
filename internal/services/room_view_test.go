package services

import (
	"testing"

	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewTestDeal() *models.Deal {
	buyer := &models.User{Username: "alice"}
	buyer.ID = "buyer-1"
	seller := &models.User{Username: "bob"}
	seller.ID = "seller-1"

	deal := &models.Deal{
		DID:      "D-100",
		BuyerID:  "buyer-1",
		SellerID: "seller-1",
		Status:   models.DealStatusDisputed,
		Buyer:    buyer,
		Seller:   seller,
		Escrows: []models.DealEscrow{
			{EscrowID: "escrow-1", Decision: models.DecisionRejected},
			{EscrowID: "escrow-2", Decision: models.DecisionPending},
		},
		Messages: []models.Message{{Content: "hi"}},
	}
	deal.ID = "deal-1"
	return deal
}

func TestBuildRoomView_EscrowNeverSeesEscrowList(t *testing.T) {
	deal := viewTestDeal()

	view := BuildRoomView(deal, models.DealRoleEscrow, "escrow-2", nil)

	assert.Empty(t, view.Deal.Escrows)
	require.NotNil(t, view.Deal.Decision)
	assert.Equal(t, models.DecisionPending, *view.Deal.Decision)
	assert.Nil(t, view.Counterparty)
	assert.Len(t, view.Messages, 1)
}

func TestBuildRoomView_EscrowDecisionScopedToCaller(t *testing.T) {
	deal := viewTestDeal()

	view := BuildRoomView(deal, models.DealRoleEscrow, "escrow-1", nil)

	require.NotNil(t, view.Deal.Decision)
	assert.Equal(t, models.DecisionRejected, *view.Deal.Decision)
}

func TestBuildRoomView_BuyerGetsSellerAsCounterparty(t *testing.T) {
	deal := viewTestDeal()

	view := BuildRoomView(deal, models.DealRoleBuyer, "buyer-1", nil)

	require.NotNil(t, view.Counterparty)
	assert.Equal(t, "seller-1", view.Counterparty.ID)
	assert.Equal(t, "bob", view.Counterparty.Username)
	assert.Nil(t, view.CanReview)
	assert.Len(t, view.Deal.Escrows, 2)
}

func TestBuildRoomView_SellerGetsBuyerAsCounterparty(t *testing.T) {
	deal := viewTestDeal()

	view := BuildRoomView(deal, models.DealRoleSeller, "seller-1", nil)

	require.NotNil(t, view.Counterparty)
	assert.Equal(t, "buyer-1", view.Counterparty.ID)
}

func TestBuildRoomView_CanReviewOnlyWhenProvided(t *testing.T) {
	deal := viewTestDeal()
	deal.Status = models.DealStatusCompleted
	can := true

	view := BuildRoomView(deal, models.DealRoleBuyer, "buyer-1", &can)

	require.NotNil(t, view.CanReview)
	assert.True(t, *view.CanReview)
}

type fakeReviewRepo struct {
	existing map[string]bool // dealID:authorID
}

func (f *fakeReviewRepo) Create(review *models.Review) error { return nil }

func (f *fakeReviewRepo) ExistsForDealAndAuthor(dealID, authorID string) (bool, error) {
	return f.existing[dealID+":"+authorID], nil
}

func (f *fakeReviewRepo) FindForUser(userID string) ([]models.Review, error) { return nil, nil }

func roomTestService(deal *models.Deal) *RoomService {
	return NewRoomService(
		&fakeDealRepo{deals: map[string]*models.Deal{deal.DID: deal}},
		&fakeMessageRepo{},
		&fakeReviewRepo{existing: map[string]bool{}},
	)
}

func TestJoin_RejectsNonParticipant(t *testing.T) {
	svc := roomTestService(viewTestDeal())

	_, err := svc.Join("stranger", "D-100")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestJoin_UnknownDeal(t *testing.T) {
	svc := roomTestService(viewTestDeal())

	_, err := svc.Join("buyer-1", "D-404")
	assert.ErrorIs(t, err, repositories.ErrDealNotFound)
}

func TestJoin_ViewedSetGainsCallerExactlyOnce(t *testing.T) {
	deal := viewTestDeal()
	message := &models.Message{DealID: deal.ID, SenderID: "seller-1", Viewed: []string{"seller-1"}}
	messageRepo := &fakeMessageRepo{messages: []*models.Message{message}}
	svc := NewRoomService(
		&fakeDealRepo{deals: map[string]*models.Deal{deal.DID: deal}},
		messageRepo,
		&fakeReviewRepo{existing: map[string]bool{}},
	)

	// Rejoining must not grow the viewed set.
	for i := 0; i < 2; i++ {
		_, err := svc.Join("buyer-1", "D-100")
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"seller-1", "buyer-1"}, []string(message.Viewed))
}

func TestJoin_CompletedDealReportsCanReview(t *testing.T) {
	deal := viewTestDeal()
	deal.Status = models.DealStatusCompleted
	svc := roomTestService(deal)

	view, err := svc.Join("buyer-1", "D-100")
	require.NoError(t, err)
	require.NotNil(t, view.CanReview)
	assert.True(t, *view.CanReview)
}

package services

import (
	"testing"
	"time"

	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEscrowPool hands out arbitrators in order, honoring the exclusion list.
type fakeEscrowPool struct {
	pool     []string
	excluded [][]string
}

func (f *fakeEscrowPool) FindByID(id string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (f *fakeEscrowPool) SetOnline(id string, online bool, lastConnect *time.Time) error {
	return nil
}

func (f *fakeEscrowPool) FindRandomEligibleEscrow(excludeIDs []string) (*models.User, error) {
	f.excluded = append(f.excluded, excludeIDs)
	for _, candidate := range f.pool {
		used := false
		for _, id := range excludeIDs {
			if id == candidate {
				used = true
				break
			}
		}
		if !used {
			user := &models.User{Role: models.RoleEscrow}
			user.ID = candidate
			return user, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

type fakeSettlement struct {
	dispatched []string
}

func (f *fakeSettlement) DispatchResolution(dealID string, outcome models.EscrowDecision) error {
	f.dispatched = append(f.dispatched, dealID+":"+string(outcome))
	return nil
}

type disputeFixture struct {
	deal        *models.Deal
	deals       *fakeDealRepo
	escrows     *fakeEscrowPool
	settlement  *fakeSettlement
	broadcaster *fakeBroadcaster
	svc         *DisputeService
}

func newDisputeFixture(status models.DealStatus, escrowIDs []string, pool []string) *disputeFixture {
	deal := &models.Deal{
		DID:      "D-100",
		BuyerID:  "buyer-1",
		SellerID: "seller-1",
		Status:   status,
	}
	deal.ID = "deal-1"
	for _, id := range escrowIDs {
		deal.Escrows = append(deal.Escrows, models.DealEscrow{
			DealID:   deal.ID,
			EscrowID: id,
			Decision: models.DecisionPending,
		})
	}

	f := &disputeFixture{
		deal:        deal,
		deals:       &fakeDealRepo{deals: map[string]*models.Deal{deal.DID: deal}},
		escrows:     &fakeEscrowPool{pool: pool},
		settlement:  &fakeSettlement{},
		broadcaster: &fakeBroadcaster{},
	}
	f.svc = NewDisputeService(
		f.deals,
		f.escrows,
		NewNotificationService(&fakeNotificationRepo{}, f.broadcaster),
		f.settlement,
	)
	return f
}

func (f *disputeFixture) setDecision(escrowID string, decision models.EscrowDecision) {
	for i := range f.deal.Escrows {
		if f.deal.Escrows[i].EscrowID == escrowID {
			f.deal.Escrows[i].Decision = decision
		}
	}
}

func TestOpenDispute_DrawsFirstEscrowAndNotifies(t *testing.T) {
	f := newDisputeFixture(models.DealStatusActive, nil, []string{"escrow-1"})

	escrow, err := f.svc.OpenDispute("D-100", "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, "escrow-1", escrow.ID)
	assert.Equal(t, models.DealStatusDisputed, f.deal.Status)
	require.Len(t, f.deal.Escrows, 1)
	assert.Equal(t, models.DecisionPending, f.deal.Escrows[0].Decision)
	assert.Equal(t, []string{"escrow-1:notification"}, f.broadcaster.userEvents)
}

func TestOpenDispute_OnlyPartiesAndOnlyActive(t *testing.T) {
	f := newDisputeFixture(models.DealStatusActive, []string{"escrow-1"}, []string{"escrow-2"})

	_, err := f.svc.OpenDispute("D-100", "escrow-1")
	assert.ErrorIs(t, err, ErrForbidden)

	f.deal.Status = models.DealStatusCompleted
	_, err = f.svc.OpenDispute("D-100", "seller-1")
	assert.ErrorIs(t, err, ErrDealNotOpen)
}

func TestRecordDecision_ThirdAgreementResolves(t *testing.T) {
	f := newDisputeFixture(models.DealStatusDisputed,
		[]string{"escrow-1", "escrow-2", "escrow-3"}, nil)
	f.setDecision("escrow-1", models.DecisionAccepted)
	f.setDecision("escrow-2", models.DecisionAccepted)

	result, err := f.svc.RecordDecision("D-100", "escrow-3", models.DecisionAccepted)
	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, models.DecisionAccepted, result.Outcome)
	assert.Equal(t, models.DealStatusCompleted, f.deal.Status)
	assert.Equal(t, []string{"deal-1:accepted"}, f.settlement.dispatched)
	// Buyer and seller each get a decision notification.
	assert.Equal(t, []string{"buyer-1:notification", "seller-1:notification"}, f.broadcaster.userEvents)
}

func TestRecordDecision_RejectedDrawsReplacementExcludingHistory(t *testing.T) {
	f := newDisputeFixture(models.DealStatusDisputed,
		[]string{"escrow-1", "escrow-2"}, []string{"escrow-1", "escrow-2", "escrow-3"})
	f.setDecision("escrow-1", models.DecisionRejected)

	result, err := f.svc.RecordDecision("D-100", "escrow-2", models.DecisionRejected)
	require.NoError(t, err)
	assert.False(t, result.Resolved)
	require.NotNil(t, result.NewEscrow)
	assert.Equal(t, "escrow-3", result.NewEscrow.ID)

	// The draw excluded every arbitrator ever assigned, rejected ones
	// included.
	require.Len(t, f.escrows.excluded, 1)
	assert.ElementsMatch(t, []string{"escrow-1", "escrow-2"}, f.escrows.excluded[0])
	assert.Equal(t, models.DealStatusDisputed, f.deal.Status)
	require.Len(t, f.deal.Escrows, 3)
}

func TestRecordDecision_PoolExhaustedKeepsDisputeOpen(t *testing.T) {
	f := newDisputeFixture(models.DealStatusDisputed,
		[]string{"escrow-1"}, []string{"escrow-1"})

	result, err := f.svc.RecordDecision("D-100", "escrow-1", models.DecisionRejected)
	require.NoError(t, err)
	assert.False(t, result.Resolved)
	assert.Nil(t, result.NewEscrow)
	assert.Equal(t, models.DealStatusDisputed, f.deal.Status)
	assert.Empty(t, f.settlement.dispatched)
}

func TestRecordDecision_ResolvedDealRejectsFurtherDecisions(t *testing.T) {
	f := newDisputeFixture(models.DealStatusDisputed,
		[]string{"escrow-1", "escrow-2", "escrow-3"}, nil)
	f.setDecision("escrow-1", models.DecisionAccepted)
	f.setDecision("escrow-2", models.DecisionAccepted)

	result, err := f.svc.RecordDecision("D-100", "escrow-3", models.DecisionAccepted)
	require.NoError(t, err)
	require.True(t, result.Resolved)

	// The status transition closed the deal; a late decision cannot resolve
	// it a second time.
	_, err = f.svc.RecordDecision("D-100", "escrow-3", models.DecisionRejected)
	assert.ErrorIs(t, err, ErrDealNotOpen)
	assert.Len(t, f.settlement.dispatched, 1)
}

func TestRecordDecision_GuardsRoleAndValue(t *testing.T) {
	f := newDisputeFixture(models.DealStatusDisputed, []string{"escrow-1"}, nil)

	_, err := f.svc.RecordDecision("D-100", "buyer-1", models.DecisionAccepted)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.RecordDecision("D-100", "escrow-1", models.DecisionPending)
	assert.Error(t, err)
}

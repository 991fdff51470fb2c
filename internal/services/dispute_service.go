package services

import (
	"errors"

	"dealroom_backend/internal/algorithms"
	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/metrics"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"
)

// SettlementDispatcher hands a resolved dispute outcome to the external
// settlement layer, out of band. Nothing is awaited.
type SettlementDispatcher interface {
	DispatchResolution(dealID string, outcome models.EscrowDecision) error
}

// DecisionResult reports what one recorded decision led to.
type DecisionResult struct {
	Resolved bool
	Outcome  models.EscrowDecision
	// NewEscrow is set when a rejection triggered a re-draw.
	NewEscrow *models.User
}

// DisputeService runs the escrow assignment and dispute consensus protocol.
// Decision recording and consensus evaluation are serialized per deal via a
// row lock; two near-simultaneous decisions can never both resolve.
type DisputeService struct {
	deals         repositories.DealRepository
	users         repositories.UserRepository
	notifications *NotificationService
	settlement    SettlementDispatcher
}

func NewDisputeService(
	deals repositories.DealRepository,
	users repositories.UserRepository,
	notifications *NotificationService,
	settlement SettlementDispatcher,
) *DisputeService {
	return &DisputeService{
		deals:         deals,
		users:         users,
		notifications: notifications,
		settlement:    settlement,
	}
}

// OpenDispute flips an active deal into the disputed state and draws the
// first arbitrator.
func (s *DisputeService) OpenDispute(dealCode, openedByID string) (*models.User, error) {
	deal, err := s.deals.FindByDID(dealCode)
	if err != nil {
		return nil, err
	}
	role := deal.RoleOf(openedByID)
	if role != models.DealRoleBuyer && role != models.DealRoleSeller {
		return nil, ErrForbidden
	}

	var escrow *models.User
	err = s.deals.WithDealLock(deal.ID, func(tx repositories.DealTx, locked *models.Deal) error {
		if locked.Status != models.DealStatusActive {
			return ErrDealNotOpen
		}
		if err := tx.SetStatus(locked.ID, models.DealStatusDisputed); err != nil {
			return err
		}
		escrow, err = s.drawEscrow(tx, locked)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyEscrow(escrow.ID, deal.ID)
	return escrow, nil
}

// RecordDecision stores one arbitrator's decision and evaluates consensus,
// all under the deal's lock. A rejected decision on a still-unresolved
// dispute triggers a re-draw; an ambiguous history stays open rather than
// being guessed at.
func (s *DisputeService) RecordDecision(dealCode, escrowID string, decision models.EscrowDecision) (*DecisionResult, error) {
	if decision != models.DecisionAccepted && decision != models.DecisionRejected {
		return nil, errors.New("invalid decision")
	}

	deal, err := s.deals.FindByDID(dealCode)
	if err != nil {
		return nil, err
	}
	if deal.RoleOf(escrowID) != models.DealRoleEscrow {
		return nil, ErrForbidden
	}

	result := &DecisionResult{}
	err = s.deals.WithDealLock(deal.ID, func(tx repositories.DealTx, locked *models.Deal) error {
		if locked.Status != models.DealStatusDisputed {
			return ErrDealNotOpen
		}

		if err := tx.SetEscrowDecision(locked.ID, escrowID, decision); err != nil {
			return err
		}

		decisions := make([]models.EscrowDecision, 0, len(locked.Escrows))
		for _, esc := range locked.Escrows {
			d := esc.Decision
			if esc.EscrowID == escrowID {
				d = decision
			}
			decisions = append(decisions, d)
		}

		outcome, resolved := algorithms.CheckDispute(decisions)
		if resolved {
			result.Resolved = true
			result.Outcome = outcome
			// Resolution closes the deal to further draws.
			return tx.SetStatus(locked.ID, statusFor(outcome))
		}

		if decision == models.DecisionRejected {
			escrow, err := s.drawEscrow(tx, locked)
			if err != nil {
				if errors.Is(err, ErrNoEligibleEscrow) {
					// Dispute stays open; nobody left to draw right now.
					logger.Warn("escrow pool exhausted", "deal_id", locked.ID)
					return nil
				}
				return err
			}
			result.NewEscrow = escrow
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Resolved {
		metrics.DisputesResolved.WithLabelValues(string(result.Outcome)).Inc()
		if err := s.settlement.DispatchResolution(deal.ID, result.Outcome); err != nil {
			logger.Error("settlement dispatch failed", "deal_id", deal.ID, "error", err)
		}
		s.notifyParties(deal)
	}
	if result.NewEscrow != nil {
		s.notifyEscrow(result.NewEscrow.ID, deal.ID)
	}
	return result, nil
}

// drawEscrow picks one arbitrator never used on this deal before, rejected
// draws included, and appends the entry inside the caller's transaction.
func (s *DisputeService) drawEscrow(tx repositories.DealTx, deal *models.Deal) (*models.User, error) {
	escrow, err := s.users.FindRandomEligibleEscrow(deal.UsedEscrowIDs())
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrNoEligibleEscrow
		}
		return nil, err
	}

	if err := tx.AppendEscrow(deal.ID, escrow.ID); err != nil {
		return nil, err
	}
	return escrow, nil
}

func (s *DisputeService) notifyEscrow(escrowID, dealID string) {
	err := s.notifications.Push(escrowID, &models.Notification{
		DealID: &dealID,
		Type:   models.NotificationTypeDispute,
	})
	if err != nil {
		logger.Error("dispute notification failed", "deal_id", dealID, "user_id", escrowID, "error", err)
	}
}

func (s *DisputeService) notifyParties(deal *models.Deal) {
	for _, userID := range []string{deal.BuyerID, deal.SellerID} {
		err := s.notifications.Push(userID, &models.Notification{
			DealID: &deal.ID,
			Type:   models.NotificationTypeDecision,
		})
		if err != nil {
			logger.Error("decision notification failed", "deal_id", deal.ID, "user_id", userID, "error", err)
		}
	}
}

// statusFor maps a consensus outcome onto the deal: accepted releases funds
// to the buyer and completes the deal, rejected returns them to the seller
// and closes it. The settlement action itself is the external layer's job.
func statusFor(outcome models.EscrowDecision) models.DealStatus {
	if outcome == models.DecisionAccepted {
		return models.DealStatusCompleted
	}
	return models.DealStatusClosed
}

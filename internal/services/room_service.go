package services

import (
	"time"

	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"
)

// RoomView is the role-scoped payload a connection receives on join.
type RoomView struct {
	Deal         DealView         `json:"deal"`
	Messages     []models.Message `json:"messages"`
	Counterparty *models.UserRef  `json:"counterparty,omitempty"`
	CanReview    *bool            `json:"can_review,omitempty"`
}

// DealView is the deal as one caller is allowed to see it. For an escrow the
// escrows list is stripped and replaced by that escrow's own decision.
type DealView struct {
	ID        string                 `json:"id"`
	DID       string                 `json:"dId"`
	Status    models.DealStatus      `json:"status"`
	Sum       float64                `json:"sum"`
	CreatedAt time.Time              `json:"created_at"`
	Buyer     *models.UserRef        `json:"buyer,omitempty"`
	Seller    *models.UserRef        `json:"seller,omitempty"`
	Exchange  *models.Exchange       `json:"exchange,omitempty"`
	Escrows   []models.DealEscrow    `json:"escrows,omitempty"`
	Decision  *models.EscrowDecision `json:"decision,omitempty"`
}

// BuildRoomView computes the role-scoped projection of a deal. Pure: no
// storage, no transport.
func BuildRoomView(deal *models.Deal, role models.DealRole, callerID string, canReview *bool) *RoomView {
	view := &RoomView{
		Deal: DealView{
			ID:        deal.ID,
			DID:       deal.DID,
			Status:    deal.Status,
			Sum:       deal.Sum,
			CreatedAt: deal.CreatedAt,
			Exchange:  deal.Exchange,
		},
		Messages: deal.Messages,
	}
	if deal.Buyer != nil {
		ref := deal.Buyer.Ref()
		view.Deal.Buyer = &ref
	}
	if deal.Seller != nil {
		ref := deal.Seller.Ref()
		view.Deal.Seller = &ref
	}

	if role == models.DealRoleEscrow {
		decision := models.DecisionPending
		for _, esc := range deal.Escrows {
			if esc.EscrowID == callerID && esc.Decision != "" {
				decision = esc.Decision
			}
		}
		view.Deal.Decision = &decision
		return view
	}

	view.Deal.Escrows = deal.Escrows

	if role == models.DealRoleSeller {
		view.Counterparty = view.Deal.Buyer
	} else {
		view.Counterparty = view.Deal.Seller
	}
	view.CanReview = canReview
	return view
}

// RoomService implements the deal-room join protocol.
type RoomService struct {
	deals    repositories.DealRepository
	messages repositories.MessageRepository
	reviews  repositories.ReviewRepository
}

func NewRoomService(
	deals repositories.DealRepository,
	messages repositories.MessageRepository,
	reviews repositories.ReviewRepository,
) *RoomService {
	return &RoomService{deals: deals, messages: messages, reviews: reviews}
}

// Join resolves the deal by its external code, computes the caller's role
// and returns the role-scoped view. Side effects: an escrow's join_at is
// recorded, and the caller is added to the viewed set of every message in
// the deal (set semantics, idempotent). Returns ErrDealNotFound or
// ErrNotParticipant for the silent-drop paths.
func (s *RoomService) Join(userID, dealCode string) (*RoomView, error) {
	deal, err := s.deals.FindByDID(dealCode)
	if err != nil {
		return nil, err
	}

	role := deal.RoleOf(userID)
	if role == models.DealRoleNone {
		return nil, ErrNotParticipant
	}

	var canReview *bool
	if role == models.DealRoleEscrow {
		if err := s.deals.SetEscrowJoinAt(deal.ID, userID, time.Now()); err != nil {
			logger.Error("escrow join_at update failed", "deal_id", deal.ID, "error", err)
		}
	} else if deal.Status == models.DealStatusCompleted {
		exists, err := s.reviews.ExistsForDealAndAuthor(deal.ID, userID)
		if err != nil {
			return nil, err
		}
		can := !exists
		canReview = &can
	}

	view := BuildRoomView(deal, role, userID, canReview)

	if err := s.messages.MarkViewedByUser(deal.ID, userID); err != nil {
		logger.Error("message viewed update failed", "deal_id", deal.ID, "error", err)
	}

	return view, nil
}

// ResolveDealID maps an external deal code to the internal room key.
func (s *RoomService) ResolveDealID(dealCode string) (string, error) {
	deal, err := s.deals.FindByDID(dealCode)
	if err != nil {
		return "", err
	}
	return deal.ID, nil
}

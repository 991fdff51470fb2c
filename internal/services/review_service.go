package services

import (
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"
)

type ReviewService struct {
	deals   repositories.DealRepository
	reviews repositories.ReviewRepository
}

func NewReviewService(deals repositories.DealRepository, reviews repositories.ReviewRepository) *ReviewService {
	return &ReviewService{deals: deals, reviews: reviews}
}

// CanReview is true when the deal is completed, the author is buyer or
// seller, and no review by this author exists for the deal yet.
func (s *ReviewService) CanReview(dealID, authorID string) (bool, error) {
	deal, err := s.deals.FindByID(dealID)
	if err != nil {
		return false, err
	}
	if deal.Status != models.DealStatusCompleted {
		return false, nil
	}
	role := deal.RoleOf(authorID)
	if role != models.DealRoleBuyer && role != models.DealRoleSeller {
		return false, nil
	}

	exists, err := s.reviews.ExistsForDealAndAuthor(dealID, authorID)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Create writes one review of the counterparty. One review per
// (deal, author) pair.
func (s *ReviewService) Create(dealID, authorID string, rating int, text string) (*models.Review, error) {
	deal, err := s.deals.FindByID(dealID)
	if err != nil {
		return nil, err
	}

	role := deal.RoleOf(authorID)
	if role != models.DealRoleBuyer && role != models.DealRoleSeller {
		return nil, ErrForbidden
	}
	if deal.Status != models.DealStatusCompleted {
		return nil, ErrDealNotOpen
	}

	exists, err := s.reviews.ExistsForDealAndAuthor(dealID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyReviewed
	}

	targetID := deal.SellerID
	if role == models.DealRoleSeller {
		targetID = deal.BuyerID
	}

	review := &models.Review{
		DealID:   dealID,
		AuthorID: authorID,
		UserID:   targetID,
		Rating:   rating,
		Text:     text,
	}
	if err := s.reviews.Create(review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) ForUser(userID string) ([]models.Review, error) {
	return s.reviews.FindForUser(userID)
}

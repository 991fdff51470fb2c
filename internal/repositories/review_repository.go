package repositories

import (
	"dealroom_backend/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *models.Review) error
	ExistsForDealAndAuthor(dealID, authorID string) (bool, error)
	FindForUser(userID string) ([]models.Review, error)
}

type ReviewRepositoryImpl struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &ReviewRepositoryImpl{db: db}
}

func (r *ReviewRepositoryImpl) Create(review *models.Review) error {
	return r.db.Create(review).Error
}

func (r *ReviewRepositoryImpl) ExistsForDealAndAuthor(dealID, authorID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Review{}).
		Where("deal_id = ? AND author_id = ?", dealID, authorID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReviewRepositoryImpl) FindForUser(userID string) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.
		Preload("Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

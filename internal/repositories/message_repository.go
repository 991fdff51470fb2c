package repositories

import (
	"errors"

	"dealroom_backend/internal/models"

	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type MessageRepository interface {
	Create(message *models.Message) error
	FindByIDPopulated(id string) (*models.Message, error)
	// MarkViewedByUser adds the user to the viewed set of every message in
	// the deal. Set semantics: repeated calls never produce duplicates.
	MarkViewedByUser(dealID, userID string) error
}

type MessageRepositoryImpl struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &MessageRepositoryImpl{db: db}
}

func (r *MessageRepositoryImpl) Create(message *models.Message) error {
	return r.db.Create(message).Error
}

func (r *MessageRepositoryImpl) FindByIDPopulated(id string) (*models.Message, error) {
	var message models.Message
	err := r.db.
		Preload("Sender").
		Preload("Attachments").
		First(&message, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (r *MessageRepositoryImpl) MarkViewedByUser(dealID, userID string) error {
	return r.db.Exec(
		`UPDATE messages
		 SET viewed = array_append(viewed, ?)
		 WHERE deal_id = ? AND NOT (viewed @> ARRAY[?]::text[])`,
		userID, dealID, userID,
	).Error
}

package repositories

import (
	"errors"
	"time"

	"dealroom_backend/internal/models"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// MessageCount is one aggregation row: unread message notifications for a
// user grouped by deal.
type MessageCount struct {
	DealID    string
	Count     int64
	CreatedAt time.Time
}

type NotificationRepository interface {
	Create(notification *models.Notification) error
	FindByIDPopulated(id string) (*models.Notification, error)
	// DeleteMessageType drops the transient message-type rows for one
	// (user, deal) pair before their count is recomputed.
	DeleteMessageType(userID, dealID string) error
	// AggregateMessageCounts groups remaining message-type rows for the
	// user across all deals, keeping the newest created_at per group.
	AggregateMessageCounts(userID string) ([]MessageCount, error)
	MarkViewed(userID, dealID string) error
	FindNonMessage(userID string) ([]models.Notification, error)
	FindDealsByIDs(ids []string) (map[string]*models.Deal, error)
}

type NotificationRepositoryImpl struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

func (r *NotificationRepositoryImpl) Create(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

func (r *NotificationRepositoryImpl) FindByIDPopulated(id string) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.
		Preload("Sender").
		Preload("Deal").
		Preload("Deal.Exchange").
		First(&notification, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepositoryImpl) DeleteMessageType(userID, dealID string) error {
	return r.db.
		Where("user_id = ? AND deal_id = ? AND type = ?", userID, dealID, models.NotificationTypeMessage).
		Delete(&models.Notification{}).Error
}

func (r *NotificationRepositoryImpl) AggregateMessageCounts(userID string) ([]MessageCount, error) {
	var counts []MessageCount
	err := r.db.Model(&models.Notification{}).
		Select("deal_id, COUNT(*) AS count, MAX(created_at) AS created_at").
		Where("user_id = ? AND type = ?", userID, models.NotificationTypeMessage).
		Group("deal_id").
		Scan(&counts).Error
	return counts, err
}

func (r *NotificationRepositoryImpl) MarkViewed(userID, dealID string) error {
	return r.db.Model(&models.Notification{}).
		Where("user_id = ? AND deal_id = ? AND viewed = ?", userID, dealID, false).
		Update("viewed", true).Error
}

func (r *NotificationRepositoryImpl) FindNonMessage(userID string) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.
		Preload("Sender").
		Preload("Deal").
		Preload("Deal.Exchange").
		Where("user_id = ? AND type <> ?", userID, models.NotificationTypeMessage).
		Find(&notifications).Error
	return notifications, err
}

func (r *NotificationRepositoryImpl) FindDealsByIDs(ids []string) (map[string]*models.Deal, error) {
	result := make(map[string]*models.Deal, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var deals []models.Deal
	if err := r.db.Where("id IN ?", ids).Find(&deals).Error; err != nil {
		return nil, err
	}
	for i := range deals {
		result[deals[i].ID] = &deals[i]
	}
	return result, nil
}

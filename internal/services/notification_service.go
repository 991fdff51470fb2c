package services

import (
	"sort"
	"time"

	"dealroom_backend/internal/metrics"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"
)

// NotificationView is one entry of the merged feed. Message entries are
// computed counts per deal; other types are the persisted records.
type NotificationView struct {
	ID        string            `json:"id,omitempty"`
	Type      string            `json:"type"`
	Deal      *models.Deal      `json:"deal,omitempty"`
	Sender    *models.UserRef   `json:"sender,omitempty"`
	Count     int64             `json:"notifications,omitempty"`
	Viewed    bool              `json:"viewed"`
	CreatedAt time.Time         `json:"created_at"`
}

// MergeNotificationViews combines message aggregates with persistent
// notifications into one feed, newest first. Pure; the sort is stable so
// ties keep their incoming order.
func MergeNotificationViews(aggregates, persistent []NotificationView) []NotificationView {
	merged := make([]NotificationView, 0, len(aggregates)+len(persistent))
	merged = append(merged, persistent...)
	merged = append(merged, aggregates...)

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	return merged
}

type NotificationService struct {
	notifications repositories.NotificationRepository
	broadcaster   Broadcaster
}

func NewNotificationService(notifications repositories.NotificationRepository, broadcaster Broadcaster) *NotificationService {
	return &NotificationService{notifications: notifications, broadcaster: broadcaster}
}

// Record persists one event for later aggregation or delivery.
func (s *NotificationService) Record(userID string, dealID *string, typ string, senderID *string) error {
	return s.notifications.Create(&models.Notification{
		UserID:   userID,
		DealID:   dealID,
		SenderID: senderID,
		Type:     typ,
	})
}

// ViewForUser runs the view-merge for one (deal, user) pair:
//
//  1. message-type rows for the pair are consumed; they are about to be
//     recomputed as counts, which keeps repeated views from double counting;
//  2. remaining message-type rows for the user are aggregated per deal;
//  3. unviewed non-message rows for the pair are bulk-marked viewed;
//  4. non-message rows for the user are fetched with sender and deal
//     resolved;
//  5. both sets merge into one feed sorted newest first.
func (s *NotificationService) ViewForUser(dealID, userID string) ([]NotificationView, error) {
	if err := s.notifications.DeleteMessageType(userID, dealID); err != nil {
		return nil, err
	}

	counts, err := s.notifications.AggregateMessageCounts(userID)
	if err != nil {
		return nil, err
	}

	dealIDs := make([]string, 0, len(counts))
	for _, c := range counts {
		dealIDs = append(dealIDs, c.DealID)
	}
	deals, err := s.notifications.FindDealsByIDs(dealIDs)
	if err != nil {
		return nil, err
	}

	aggregates := make([]NotificationView, 0, len(counts))
	for _, c := range counts {
		aggregates = append(aggregates, NotificationView{
			Type:      models.NotificationTypeMessage,
			Deal:      deals[c.DealID],
			Count:     c.Count,
			CreatedAt: c.CreatedAt,
		})
	}

	if err := s.notifications.MarkViewed(userID, dealID); err != nil {
		return nil, err
	}

	records, err := s.notifications.FindNonMessage(userID)
	if err != nil {
		return nil, err
	}

	persistent := make([]NotificationView, 0, len(records))
	for i := range records {
		persistent = append(persistent, viewOf(&records[i]))
	}

	return MergeNotificationViews(aggregates, persistent), nil
}

// Push persists the notification, re-fetches it with sender and deal
// resolved and fans it out to every live connection of the user. Silent when
// the user is offline; the record stays for the next join.
func (s *NotificationService) Push(userID string, notification *models.Notification) error {
	notification.UserID = userID
	if err := s.notifications.Create(notification); err != nil {
		return err
	}

	populated, err := s.notifications.FindByIDPopulated(notification.ID)
	if err != nil {
		return err
	}

	view := viewOf(populated)
	s.broadcaster.BroadcastToUser(userID, "notification", view)
	metrics.NotificationsPushed.Inc()
	return nil
}

func viewOf(n *models.Notification) NotificationView {
	view := NotificationView{
		ID:        n.ID,
		Type:      n.Type,
		Deal:      n.Deal,
		Viewed:    n.Viewed,
		CreatedAt: n.CreatedAt,
	}
	if n.Sender != nil {
		ref := n.Sender.Ref()
		view.Sender = &ref
	}
	return view
}

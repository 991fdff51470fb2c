package services

import (
	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/metrics"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"
)

// AttachmentInput references bytes already stored by the upload
// collaborator.
type AttachmentInput struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ChatService relays messages into a deal room and notifies participants who
// are not watching it.
type ChatService struct {
	deals         repositories.DealRepository
	messages      repositories.MessageRepository
	notifications *NotificationService
	broadcaster   Broadcaster
}

func NewChatService(
	deals repositories.DealRepository,
	messages repositories.MessageRepository,
	notifications *NotificationService,
	broadcaster Broadcaster,
) *ChatService {
	return &ChatService{
		deals:         deals,
		messages:      messages,
		notifications: notifications,
		broadcaster:   broadcaster,
	}
}

// SendMessage persists the message (sender counts as having viewed it),
// broadcasts it to the room and pushes a message notification to every other
// participant not currently viewing the room.
func (s *ChatService) SendMessage(dealCode, senderID, content string, attachment *AttachmentInput) (*models.Message, error) {
	deal, err := s.deals.FindByDID(dealCode)
	if err != nil {
		return nil, err
	}
	if deal.RoleOf(senderID) == models.DealRoleNone {
		return nil, ErrNotParticipant
	}

	message := &models.Message{
		DealID:   deal.ID,
		SenderID: senderID,
		Content:  content,
		Viewed:   []string{senderID},
	}
	if attachment != nil {
		message.Attachments = []models.Attachment{{Name: attachment.Name, URL: attachment.URL}}
	}
	if err := s.messages.Create(message); err != nil {
		return nil, err
	}

	populated, err := s.messages.FindByIDPopulated(message.ID)
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastToRoom(deal.ID, "message", populated)
	metrics.MessagesRelayed.Inc()

	for _, participantID := range participantsOf(deal) {
		if participantID == senderID {
			continue
		}
		if s.broadcaster.UserInRoom(participantID, deal.ID) {
			continue
		}
		// Push persists the row, so the next view-merge still counts it even
		// when the participant is offline right now.
		err := s.notifications.Push(participantID, &models.Notification{
			DealID:   &deal.ID,
			SenderID: &senderID,
			Type:     models.NotificationTypeMessage,
		})
		if err != nil {
			logger.Error("message notification failed", "deal_id", deal.ID, "user_id", participantID, "error", err)
		}
	}

	return populated, nil
}

func participantsOf(deal *models.Deal) []string {
	ids := []string{deal.BuyerID, deal.SellerID}
	for _, esc := range deal.Escrows {
		ids = append(ids, esc.EscrowID)
	}
	return ids
}

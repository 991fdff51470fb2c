package ws

import (
	"encoding/json"
	"sync"

	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/metrics"
	"dealroom_backend/internal/models"
	"dealroom_backend/internal/services"

	"github.com/gorilla/websocket"
)

// IncomingEvent is one client→server frame.
type IncomingEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Client is one live connection of one user. A user may hold many.
type Client struct {
	UserID string

	conn    *websocket.Conn
	send    chan Event
	done    chan struct{}
	manager *Manager

	closeOnce sync.Once

	rooms         *services.RoomService
	chat          *services.ChatService
	disputes      *services.DisputeService
	notifications *services.NotificationService
}

// Emit queues an event for the write pump. A connection that cannot drain
// its queue is torn down rather than allowed to block the sender; closing the
// socket unwinds the read pump, which unregisters the connection.
func (c *Client) Emit(event string, data any) {
	select {
	case c.send <- Event{Event: event, Data: data}:
	default:
		logger.Warn("send queue full, closing connection", "user_id", c.UserID)
		c.close()
	}
}

// close tears the transport down and signals both pumps. Safe to call from
// any path, any number of times.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) readPump() {
	defer func() {
		// Presence cleanup runs on every disconnect path.
		c.manager.Unregister(c)
		c.close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var event IncomingEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			logger.Debug("unparseable frame", "user_id", c.UserID, "error", err)
			continue
		}
		c.handleEvent(event)
	}
}

func (c *Client) writePump() {
	for {
		select {
		case event := <-c.send:
			if err := c.conn.WriteJSON(event); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) handleEvent(event IncomingEvent) {
	switch event.Event {
	case "join_chat":
		c.handleJoinChat(event.Data)
	case "leave_chat":
		c.handleLeaveChat(event.Data)
	case "send_message":
		c.handleSendMessage(event.Data)
	case "open_dispute":
		c.handleOpenDispute(event.Data)
	case "escrow_decision":
		c.handleEscrowDecision(event.Data)
	case "logout":
		c.handleLogout()
	default:
		logger.Debug("unhandled event", "event", event.Event, "user_id", c.UserID)
	}
}

type dealPayload struct {
	DealID string `json:"deal_id"`
}

// handleJoinChat runs the join protocol: role-scoped view, room
// subscription, viewed-set update, then the merged notification feed.
// Missing deals and non-participants are dropped silently; the client sees
// no initMessages.
func (c *Client) handleJoinChat(data json.RawMessage) {
	var payload dealPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	view, err := c.rooms.Join(c.UserID, payload.DealID)
	if err != nil {
		logger.Debug("join dropped", "user_id", c.UserID, "deal", payload.DealID, "error", err)
		return
	}

	c.manager.Subscribe(view.Deal.ID, c)
	metrics.RoomJoins.Inc()
	c.Emit("initMessages", view)

	feed, err := c.notifications.ViewForUser(view.Deal.ID, c.UserID)
	if err != nil {
		logger.Error("notification view failed", "user_id", c.UserID, "error", err)
		return
	}
	c.Emit("notifications", feed)
}

func (c *Client) handleLeaveChat(data json.RawMessage) {
	var payload dealPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	dealID, err := c.rooms.ResolveDealID(payload.DealID)
	if err != nil {
		return
	}
	c.manager.Unsubscribe(dealID, c)
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var payload struct {
		DealID     string                    `json:"deal_id"`
		Content    string                    `json:"content"`
		Attachment *services.AttachmentInput `json:"attachment"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	if _, err := c.chat.SendMessage(payload.DealID, c.UserID, payload.Content, payload.Attachment); err != nil {
		logger.Debug("message dropped", "user_id", c.UserID, "deal", payload.DealID, "error", err)
	}
}

func (c *Client) handleOpenDispute(data json.RawMessage) {
	var payload dealPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	if _, err := c.disputes.OpenDispute(payload.DealID, c.UserID); err != nil {
		logger.Debug("dispute open dropped", "user_id", c.UserID, "deal", payload.DealID, "error", err)
	}
}

func (c *Client) handleEscrowDecision(data json.RawMessage) {
	var payload struct {
		DealID   string                `json:"deal_id"`
		Decision models.EscrowDecision `json:"decision"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	result, err := c.disputes.RecordDecision(payload.DealID, c.UserID, payload.Decision)
	if err != nil {
		logger.Debug("decision dropped", "user_id", c.UserID, "deal", payload.DealID, "error", err)
		return
	}
	if result.Resolved {
		logger.Info("dispute resolved", "deal", payload.DealID, "outcome", result.Outcome)
	}
}

// handleLogout tells every connection of this user to refresh its session.
func (c *Client) handleLogout() {
	c.manager.BroadcastToUser(c.UserID, "refresh", nil)
}

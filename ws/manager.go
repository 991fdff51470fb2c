package ws

import (
	"sync"
	"time"

	"dealroom_backend/internal/logger"
	"dealroom_backend/internal/metrics"
	"dealroom_backend/internal/repositories"
)

// Event is the envelope every server→client frame uses.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Manager is the presence registry and room broker. A user may hold several
// connections at once (tabs, devices); the registry keeps one entry per
// connection and flips the durable online flag only on the first connect and
// the last disconnect. All map mutations go through the mutex, never a bare
// shared map.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // userID → live connections
	rooms   map[string]map[*Client]struct{} // dealID → subscribed connections

	users repositories.UserRepository
}

func NewManager(users repositories.UserRepository) *Manager {
	return &Manager{
		clients: make(map[string]map[*Client]struct{}),
		rooms:   make(map[string]map[*Client]struct{}),
		users:   users,
	}
}

// Register adds a connection to the user's set. The durable online flag is
// written fire-and-forget: a storage failure is logged and never blocks the
// connection.
func (m *Manager) Register(client *Client) {
	m.mu.Lock()
	set, ok := m.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		m.clients[client.UserID] = set
	}
	first := len(set) == 0
	set[client] = struct{}{}
	m.mu.Unlock()

	metrics.ConnectionsActive.Inc()

	if first {
		go func(userID string) {
			now := time.Now()
			if err := m.users.SetOnline(userID, true, &now); err != nil {
				logger.Error("online status update failed", "user_id", userID, "error", err)
			}
		}(client.UserID)
	}
}

// Unregister removes a connection and always cleans up its room
// subscriptions. When the last connection goes, the registry entry is
// deleted and the user is marked offline.
func (m *Manager) Unregister(client *Client) {
	m.mu.Lock()
	set, ok := m.clients[client.UserID]
	if !ok {
		m.mu.Unlock()
		return
	}
	if _, present := set[client]; !present {
		m.mu.Unlock()
		return
	}
	delete(set, client)
	last := len(set) == 0
	if last {
		delete(m.clients, client.UserID)
	}
	for dealID, room := range m.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(m.rooms, dealID)
		}
	}
	m.mu.Unlock()

	metrics.ConnectionsActive.Dec()

	if last {
		go func(userID string) {
			if err := m.users.SetOnline(userID, false, nil); err != nil {
				logger.Error("online status update failed", "user_id", userID, "error", err)
			}
		}(client.UserID)
	}
}

// ConnectionsFor returns the user's live connections, empty if none.
func (m *Manager) ConnectionsFor(userID string) []*Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := m.clients[userID]
	clients := make([]*Client, 0, len(set))
	for client := range set {
		clients = append(clients, client)
	}
	return clients
}

// BroadcastToUser sends the event to every live connection of the user.
// Silent no-op when the user is offline.
func (m *Manager) BroadcastToUser(userID string, event string, data any) {
	for _, client := range m.ConnectionsFor(userID) {
		client.Emit(event, data)
	}
}

// Subscribe adds the connection to a deal's broadcast group.
func (m *Manager) Subscribe(dealID string, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[dealID]
	if !ok {
		room = make(map[*Client]struct{})
		m.rooms[dealID] = room
	}
	room[client] = struct{}{}
}

// Unsubscribe removes the connection from a deal's broadcast group.
func (m *Manager) Unsubscribe(dealID string, client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[dealID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(m.rooms, dealID)
	}
}

// BroadcastToRoom sends the event to every connection subscribed to the deal.
func (m *Manager) BroadcastToRoom(dealID string, event string, data any) {
	m.mu.RLock()
	room := m.rooms[dealID]
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	for _, client := range clients {
		client.Emit(event, data)
	}
}

// UserInRoom reports whether any of the user's connections is currently
// subscribed to the deal. The relay uses this to skip notifications for
// participants who are watching the room.
func (m *Manager) UserInRoom(userID, dealID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	room := m.rooms[dealID]
	for client := range room {
		if client.UserID == userID {
			return true
		}
	}
	return false
}

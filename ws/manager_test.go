package ws

import (
	"sync"
	"testing"
	"time"

	"dealroom_backend/internal/models"
	"dealroom_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	online map[string]bool
	writes int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{online: make(map[string]bool)}
}

func (f *fakeUserRepo) FindByID(id string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) SetOnline(id string, online bool, lastConnect *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online[id] = online
	f.writes++
	return nil
}

func (f *fakeUserRepo) FindRandomEligibleEscrow(excludeIDs []string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) isOnline(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online[id]
}

func (f *fakeUserRepo) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func newTestClient(userID string) *Client {
	return &Client{UserID: userID, send: make(chan Event, 16), done: make(chan struct{})}
}

func TestManager_TwoDevicesOneUser(t *testing.T) {
	repo := newFakeUserRepo()
	manager := NewManager(repo)

	tab1 := newTestClient("user-1")
	tab2 := newTestClient("user-1")

	manager.Register(tab1)
	require.Eventually(t, func() bool { return repo.isOnline("user-1") },
		time.Second, 10*time.Millisecond, "first connect marks the user online")

	manager.Register(tab2)
	assert.Len(t, manager.ConnectionsFor("user-1"), 2)

	// Dropping one device keeps the user online; no offline write happens.
	manager.Unregister(tab1)
	assert.Len(t, manager.ConnectionsFor("user-1"), 1)
	assert.True(t, repo.isOnline("user-1"))

	manager.Unregister(tab2)
	require.Eventually(t, func() bool { return !repo.isOnline("user-1") },
		time.Second, 10*time.Millisecond, "last disconnect marks the user offline")
	assert.Empty(t, manager.ConnectionsFor("user-1"))
}

func TestManager_RegisterSameDeviceTwiceNoDuplicate(t *testing.T) {
	manager := NewManager(newFakeUserRepo())
	tab := newTestClient("user-1")

	manager.Register(tab)
	manager.Register(tab)

	assert.Len(t, manager.ConnectionsFor("user-1"), 1)
}

func TestManager_UnregisterUnknownClientIsNoop(t *testing.T) {
	repo := newFakeUserRepo()
	manager := NewManager(repo)

	manager.Unregister(newTestClient("ghost"))

	assert.Empty(t, manager.ConnectionsFor("ghost"))
	assert.Equal(t, 0, repo.writeCount())
}

func TestManager_BroadcastToUserReachesAllDevices(t *testing.T) {
	manager := NewManager(newFakeUserRepo())

	tab1 := newTestClient("user-1")
	tab2 := newTestClient("user-1")
	other := newTestClient("user-2")
	manager.Register(tab1)
	manager.Register(tab2)
	manager.Register(other)

	manager.BroadcastToUser("user-1", "refresh", nil)

	for _, tab := range []*Client{tab1, tab2} {
		select {
		case event := <-tab.send:
			assert.Equal(t, "refresh", event.Event)
		default:
			t.Fatal("expected event on every device of user-1")
		}
	}
	assert.Empty(t, other.send)
}

func TestManager_RoomSubscriptionAndBroadcast(t *testing.T) {
	manager := NewManager(newFakeUserRepo())

	member := newTestClient("user-1")
	outsider := newTestClient("user-2")
	manager.Register(member)
	manager.Register(outsider)

	manager.Subscribe("deal-1", member)
	assert.True(t, manager.UserInRoom("user-1", "deal-1"))
	assert.False(t, manager.UserInRoom("user-2", "deal-1"))

	manager.BroadcastToRoom("deal-1", "message", "hello")
	select {
	case event := <-member.send:
		assert.Equal(t, "message", event.Event)
	default:
		t.Fatal("expected room broadcast to reach the subscriber")
	}
	assert.Empty(t, outsider.send)

	manager.Unsubscribe("deal-1", member)
	assert.False(t, manager.UserInRoom("user-1", "deal-1"))
}

func TestManager_DisconnectCleansRoomSubscriptions(t *testing.T) {
	manager := NewManager(newFakeUserRepo())

	tab := newTestClient("user-1")
	manager.Register(tab)
	manager.Subscribe("deal-1", tab)

	manager.Unregister(tab)

	assert.False(t, manager.UserInRoom("user-1", "deal-1"))
}

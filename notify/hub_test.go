package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func registerClient(t *testing.T, hub *Hub, userID int) *Client {
	t.Helper()
	client := &Client{
		Hub:    hub,
		Send:   make(chan []byte, 8),
		UserID: userID,
	}

	hub.mu.RLock()
	before := len(hub.rooms[userID])
	hub.mu.RUnlock()

	hub.Register <- client

	// Регистрация обрабатывается горутиной Run: дожидаемся появления
	// клиента в комнате, прежде чем слать уведомления.
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		now := len(hub.rooms[userID])
		hub.mu.RUnlock()
		if now > before {
			return client
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("client for user %d was not registered in time", userID)
	return nil
}

func receive(t *testing.T, client *Client) Notification {
	t.Helper()
	select {
	case raw := <-client.Send:
		var n Notification
		require.NoError(t, json.Unmarshal(raw, &n))
		return n
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
		return Notification{}
	}
}

func TestHubDeliversToUserRoom(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	go hub.Run()

	alice := registerClient(t, hub, 1)
	bob := registerClient(t, hub, 2)

	hub.Notify(context.Background(), Notification{
		UserID:  1,
		Type:    TypeTournamentInvite,
		Title:   "Tournament invitation",
		Message: "You have been invited",
	})

	got := receive(t, alice)
	assert.Equal(t, TypeTournamentInvite, got.Type)
	assert.Equal(t, 1, got.UserID)
	assert.False(t, got.SentAt.IsZero())

	select {
	case <-bob.Send:
		t.Fatal("notification leaked to another user's room")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDeliversToAllConnectionsOfUser(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	go hub.Run()

	first := registerClient(t, hub, 1)
	second := registerClient(t, hub, 1)

	hub.Notify(context.Background(), Notification{UserID: 1, Type: TypeParticipantJoined})

	assert.Equal(t, TypeParticipantJoined, receive(t, first).Type)
	assert.Equal(t, TypeParticipantJoined, receive(t, second).Type)
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	go hub.Run()

	client := registerClient(t, hub, 1)
	hub.Unregister <- client

	select {
	case _, open := <-client.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed on unregister")
	}

	// Доставка после отключения не должна паниковать на закрытом канале.
	hub.Notify(context.Background(), Notification{UserID: 1, Type: TypeParticipantLeft})
}

// fakeBridge эмулирует pub/sub: опубликованное событие возвращается
// всем подписчикам, как это делает Redis.
type fakeBridge struct {
	mu       sync.Mutex
	handlers []func(n Notification)
	fail     bool
}

func (b *fakeBridge) Publish(ctx context.Context, n Notification) error {
	if b.fail {
		return context.DeadlineExceeded
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, handler := range b.handlers {
		handler(n)
	}
	return nil
}

func (b *fakeBridge) Subscribe(handler func(n Notification)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
	return nil
}

func TestHubWithBridgeDeliversExactlyOnce(t *testing.T) {
	bridge := &fakeBridge{}
	hub := NewHub(testLogger(), bridge)
	go hub.Run()

	client := registerClient(t, hub, 1)

	hub.Notify(context.Background(), Notification{UserID: 1, Type: TypeTournamentApproved})

	assert.Equal(t, TypeTournamentApproved, receive(t, client).Type)

	select {
	case <-client.Send:
		t.Fatal("notification delivered twice")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubFallsBackToLocalDeliveryOnPublishError(t *testing.T) {
	bridge := &fakeBridge{fail: true}
	hub := NewHub(testLogger(), bridge)
	go hub.Run()

	client := registerClient(t, hub, 1)

	hub.Notify(context.Background(), Notification{UserID: 1, Type: TypeTournamentRejected})

	assert.Equal(t, TypeTournamentRejected, receive(t, client).Type)
}

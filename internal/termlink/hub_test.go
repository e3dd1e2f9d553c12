package termlink

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	id       string
	messages [][]byte
	mu       sync.Mutex
	closed   bool
}

func newMockClient(id string) *mockClient { return &mockClient{id: id} }

func (m *mockClient) ID() string { return m.id }

func (m *mockClient) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockClient) getMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.messages...)
}

func TestHubBroadcastReachesAllRegisteredTerminals(t *testing.T) {
	hub := NewHub()
	a := newMockClient("term-1")
	b := newMockClient("term-2")
	hub.Register(a)
	hub.Register(b)
	require.Equal(t, 2, hub.ConnectedCount())

	hub.Broadcast(NewSignal(SignalMenuChanged, "term-1"))

	require.Eventually(t, func() bool {
		return len(a.getMessages()) == 1 && len(b.getMessages()) == 1
	}, time.Second, time.Millisecond)
}

func TestHubSendTargetsOneTerminal(t *testing.T) {
	hub := NewHub()
	a := newMockClient("term-1")
	b := newMockClient("term-2")
	hub.Register(a)
	hub.Register(b)

	require.NoError(t, hub.Send("term-1", Update("term-1", 7, "value")))
	assert.Len(t, a.getMessages(), 1)
	assert.Empty(t, b.getMessages())
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := newMockClient("term-1")
	hub.Register(a)
	hub.Unregister(a)

	err := hub.Send("term-1", NewSignal(SignalEndDay, ""))
	require.ErrorIs(t, err, ErrClientClosed)
	require.Equal(t, 0, hub.ConnectedCount())
}

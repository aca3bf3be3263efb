package chathub_test

import (
	"sync"
	"time"

	"studiohub/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetUserByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) IsUserBanned(id uint) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) BanUser(id uint, until time.Time) error {
	args := m.Called(id, until)
	return args.Error(0)
}

func (m *MockStorage) UnbanUser(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) GetOrCreateConversation(u1, u2 uint) (*models.Conversation, error) {
	args := m.Called(u1, u2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockStorage) GetConversation(u1, u2 uint) (*models.Conversation, error) {
	args := m.Called(u1, u2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockStorage) GetConversationByID(id uint) (*models.Conversation, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

func (m *MockStorage) ListConversations(userID uint) ([]models.Conversation, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Conversation), args.Error(1)
}

func (m *MockStorage) TouchConversation(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) InsertMessage(msg *models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessageByID(id uint) (*models.Message, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) ListMessages(conversationID uint) ([]models.Message, error) {
	args := m.Called(conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) SetMessageDeleted(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) FindUnreadMessageIDs(conversationID, userID uint) ([]uint, error) {
	args := m.Called(conversationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockStorage) InsertMessageRead(messageID, userID uint) error {
	args := m.Called(messageID, userID)
	return args.Error(0)
}

func (m *MockStorage) CountUnread(conversationID, userID uint) (int64, error) {
	args := m.Called(conversationID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) SetLastSeen(userID uint, t time.Time) error {
	args := m.Called(userID, t)
	return args.Error(0)
}

func (m *MockStorage) GetLastSeen(userID uint) (time.Time, error) {
	args := m.Called(userID)
	return args.Get(0).(time.Time), args.Error(1)
}

// MockClient is a test double for the chathub.Client interface. Its send
// channel is buffered so hub fan-out never blocks in tests.
type MockClient struct {
	userID uint
	connID string
	send   chan models.Event
	closed bool
}

func newMockClient(userID uint, connID string) *MockClient {
	return &MockClient{
		userID: userID,
		connID: connID,
		send:   make(chan models.Event, 16),
	}
}

func (c *MockClient) GetUserID() uint                     { return c.userID }
func (c *MockClient) GetConnID() string                   { return c.connID }
func (c *MockClient) GetSendChannel() chan<- models.Event { return c.send }
func (c *MockClient) Run()                                {}
func (c *MockClient) Close()                              { c.closed = true }

// DrainEvents empties the client's send channel.
func (c *MockClient) DrainEvents() []models.Event {
	var events []models.Event
	for {
		select {
		case event := <-c.send:
			events = append(events, event)
		default:
			return events
		}
	}
}

// recordingBroadcaster captures fan-out calls for the typing and delivery
// service tests without spinning up a real hub.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events map[uint][]models.Event
	online map[uint]bool
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{
		events: make(map[uint][]models.Event),
		online: make(map[uint]bool),
	}
}

func (b *recordingBroadcaster) BroadcastToUser(userID uint, event models.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[userID] = append(b.events[userID], event)
}

func (b *recordingBroadcaster) NotifyUser(userID uint, title, description, variant string) {
	b.BroadcastToUser(userID, models.Event{
		Type:        models.EventNotification,
		Title:       title,
		Description: description,
		Variant:     variant,
	})
}

func (b *recordingBroadcaster) IsOnline(userID uint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.online[userID]
}

func (b *recordingBroadcaster) eventsFor(userID uint) []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.Event, len(b.events[userID]))
	copy(out, b.events[userID])
	return out
}

// recordingNotifier captures offline pings.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []uint
}

func (n *recordingNotifier) NotifyOffline(receiverID uint, _ *models.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, receiverID)
}

func (n *recordingNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"studiohub/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Storage is the persistence boundary consumed by the hub and the message
// delivery service. Presence and typing state never live here; this layer
// only owns durable rows plus a few fast Redis keys (bans, last-seen).
type Storage interface {
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	SaveUser(user *models.User) error
	IsUserBanned(id uint) (bool, error)
	BanUser(id uint, until time.Time) error
	UnbanUser(id uint) error

	GetOrCreateConversation(u1, u2 uint) (*models.Conversation, error)
	GetConversation(u1, u2 uint) (*models.Conversation, error)
	GetConversationByID(id uint) (*models.Conversation, error)
	ListConversations(userID uint) ([]models.Conversation, error)
	TouchConversation(id uint) error

	InsertMessage(msg *models.Message) error
	GetMessageByID(id uint) (*models.Message, error)
	ListMessages(conversationID uint) ([]models.Message, error)
	SetMessageDeleted(id uint) error

	FindUnreadMessageIDs(conversationID, userID uint) ([]uint, error)
	InsertMessageRead(messageID, userID uint) error
	CountUnread(conversationID, userID uint) (int64, error)

	SetLastSeen(userID uint, t time.Time) error
	GetLastSeen(userID uint) (time.Time, error)
}

// Service is the GORM + Redis implementation of Storage.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor. Redis may be nil (admin CLI); Redis-backed
// lookups then fall through to Postgres or become no-ops.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// --- Users ---

func (s *Service) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

// IsUserBanned checks the Redis ban key first (fast path, carries the ban
// TTL) and falls back to the users row.
func (s *Service) IsUserBanned(id uint) (bool, error) {
	if s.Redis != nil {
		status, err := s.Redis.Get(s.Ctx, banKey(id)).Result()
		if err == nil {
			return status != "", nil
		}
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).Warn("redis ban lookup failed, falling back to db")
		}
	}

	user, err := s.GetUserByID(id)
	if err != nil {
		return false, err
	}
	return user.BanActive(), nil
}

// BanUser flags the user row and mirrors the ban into Redis. A zero `until`
// means the ban has no expiry.
func (s *Service) BanUser(id uint, until time.Time) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	user.IsBanned = true
	user.BanExpiresAt = until
	if err := s.SaveUser(user); err != nil {
		return err
	}

	if s.Redis != nil {
		ttl := time.Duration(0)
		if !until.IsZero() {
			ttl = time.Until(until)
		}
		if err := s.Redis.Set(s.Ctx, banKey(id), "1", ttl).Err(); err != nil {
			logrus.WithError(err).WithField("user_id", id).Error("failed to mirror ban into redis")
		}
	}
	return nil
}

func (s *Service) UnbanUser(id uint) error {
	user, err := s.GetUserByID(id)
	if err != nil {
		return err
	}
	user.IsBanned = false
	user.BanExpiresAt = time.Time{}
	if err := s.SaveUser(user); err != nil {
		return err
	}

	if s.Redis != nil {
		if err := s.Redis.Del(s.Ctx, banKey(id)).Err(); err != nil {
			logrus.WithError(err).WithField("user_id", id).Error("failed to clear ban key")
		}
	}
	return nil
}

func banKey(id uint) string {
	return fmt.Sprintf("ban:%d", id)
}

// --- Conversations ---

// GetConversation looks up the conversation for a user pair. The pair is
// canonicalized here, so argument order never matters.
func (s *Service) GetConversation(u1, u2 uint) (*models.Conversation, error) {
	lo, hi := models.CanonicalPair(u1, u2)
	var conv models.Conversation
	err := s.DB.Where("user1_id = ? AND user2_id = ?", lo, hi).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetOrCreateConversation resolves the conversation for a pair, creating it
// lazily on first contact. A concurrent create losing the race against the
// unique pair index is treated as "already exists" and resolved by re-fetch.
func (s *Service) GetOrCreateConversation(u1, u2 uint) (*models.Conversation, error) {
	conv, err := s.GetConversation(u1, u2)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	lo, hi := models.CanonicalPair(u1, u2)
	created := models.Conversation{User1ID: lo, User2ID: hi, LastMessageAt: time.Now()}
	if createErr := s.DB.Create(&created).Error; createErr != nil {
		// Likely a duplicate-pair race; whoever won has our row.
		if conv, fetchErr := s.GetConversation(u1, u2); fetchErr == nil {
			return conv, nil
		}
		return nil, createErr
	}
	return &created, nil
}

func (s *Service) GetConversationByID(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.DB.First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns all conversations the user participates in,
// most recently active first.
func (s *Service) ListConversations(userID uint) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := s.DB.Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("last_message_at desc").
		Find(&convs).Error
	if err != nil {
		return nil, err
	}
	return convs, nil
}

func (s *Service) TouchConversation(id uint) error {
	return s.DB.Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("last_message_at", time.Now()).Error
}

// --- Messages ---

func (s *Service) InsertMessage(msg *models.Message) error {
	if err := s.DB.Create(msg).Error; err != nil {
		logrus.WithError(err).WithField("conversation_id", msg.ConversationID).Error("failed to insert message")
		return err
	}
	return nil
}

func (s *Service) GetMessageByID(id uint) (*models.Message, error) {
	var msg models.Message
	if err := s.DB.First(&msg, id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *Service) ListMessages(conversationID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.Where("conversation_id = ?", conversationID).
		Order("created_at asc").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) SetMessageDeleted(id uint) error {
	return s.DB.Model(&models.Message{}).
		Where("id = ?", id).
		Update("deleted", true).Error
}

// --- Read receipts ---

// FindUnreadMessageIDs returns ids of messages in the conversation addressed
// to userID that have no MessageRead row for them yet.
func (s *Service) FindUnreadMessageIDs(conversationID, userID uint) ([]uint, error) {
	readSub := s.DB.Model(&models.MessageRead{}).
		Select("message_id").
		Where("user_id = ?", userID)

	var ids []uint
	err := s.DB.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND deleted = false", conversationID, userID).
		Where("id NOT IN (?)", readSub).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertMessageRead records a read receipt. Re-inserting an existing
// (message, user) pair is a no-op, so read-marking stays idempotent.
func (s *Service) InsertMessageRead(messageID, userID uint) error {
	var read models.MessageRead
	return s.DB.Where(models.MessageRead{MessageID: messageID, UserID: userID}).
		FirstOrCreate(&read).Error
}

func (s *Service) CountUnread(conversationID, userID uint) (int64, error) {
	ids, err := s.FindUnreadMessageIDs(conversationID, userID)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

// --- Last seen ---

func lastSeenKey(id uint) string {
	return fmt.Sprintf("lastseen:%d", id)
}

// SetLastSeen stamps the user's last-seen time in Redis. Called on every
// presence transition; best effort.
func (s *Service) SetLastSeen(userID uint, t time.Time) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Set(s.Ctx, lastSeenKey(userID), t.Format(time.RFC3339), 0).Err()
}

// GetLastSeen returns the last-seen time, or the zero time if never seen.
func (s *Service) GetLastSeen(userID uint) (time.Time, error) {
	if s.Redis == nil {
		return time.Time{}, nil
	}
	val, err := s.Redis.Get(s.Ctx, lastSeenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, val)
}

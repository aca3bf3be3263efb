// Package notify bridges missed messages to Telegram. Staff members link
// their account to a Telegram chat; when a message arrives while they have
// no live connection, they get a short ping there instead. Everything here
// is best effort and must never fail the send path.
package notify

import (
	"fmt"

	"studiohub/backend/internal/models"
	"studiohub/backend/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// TelegramNotifier implements chathub.OfflineNotifier.
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	storage storage.Storage
}

func NewTelegramNotifier(token string, s storage.Storage) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", err)
	}
	logrus.WithField("bot", bot.Self.UserName).Info("telegram notifier ready")
	return &TelegramNotifier{bot: bot, storage: s}, nil
}

// NotifyOffline pings the receiver's linked Telegram chat about a missed
// message. Clients and unlinked accounts are skipped silently.
func (n *TelegramNotifier) NotifyOffline(receiverID uint, msg *models.Message) {
	user, err := n.storage.GetUserByID(receiverID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", receiverID).Warn("offline notify: receiver lookup failed")
		return
	}
	if user.Role == models.RoleClient || user.TelegramChatID == 0 {
		return
	}

	sender, err := n.storage.GetUserByID(msg.SenderID)
	from := "a client"
	if err == nil {
		from = sender.Name
	}

	text := fmt.Sprintf("New message from %s:\n%s", from, preview(msg.Content))
	tgMsg := tgbotapi.NewMessage(user.TelegramChatID, text)
	if _, err := n.bot.Send(tgMsg); err != nil {
		logrus.WithError(err).WithField("user_id", receiverID).Warn("telegram ping failed")
	}
}

// preview trims long message bodies for the ping.
func preview(content string) string {
	const max = 200
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "…"
}

package chathub

import (
	"encoding/json"
	"errors"
	"time"

	"studiohub/backend/internal/config"
	"studiohub/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// maxFrameSize bounds inbound frames; content is capped at 5000
	// characters, which can be four bytes each in UTF-8, plus JSON framing.
	maxFrameSize = 32768
)

// WebSocketClient implements the chathub.Client interface over a gorilla
// websocket connection. The user identity is fixed at handshake time by the
// HTTP layer; inbound frames can never change it.
type WebSocketClient struct {
	UserID uint
	ConnID string
	Conn   *websocket.Conn
	Hub    *Hub
	Send   chan models.Event

	done chan struct{}
}

// NewWebSocketClient builds a client for an upgraded connection. Each
// connection gets its own uuid, so two tabs of the same user are distinct
// registry entries.
func NewWebSocketClient(hub *Hub, userID uint, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		UserID: userID,
		ConnID: uuid.New().String(),
		Conn:   conn,
		Hub:    hub,
		Send:   make(chan models.Event, config.SendQueueSize),
		done:   make(chan struct{}),
	}
}

func (c *WebSocketClient) GetUserID() uint                     { return c.UserID }
func (c *WebSocketClient) GetConnID() string                   { return c.ConnID }
func (c *WebSocketClient) GetSendChannel() chan<- models.Event { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops the write pump. The Send channel itself is never closed: the
// hub may still be fanning out to it from another goroutine, and a closed
// channel would turn that into a panic. Undelivered buffered events are
// simply dropped. The hub guarantees Close is called at most once per
// registered connection.
func (c *WebSocketClient) Close() {
	close(c.done)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).WithField("user_id", c.UserID).Warn("websocket read failed")
			}
			break
		}

		var frame models.ClientFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			logrus.WithError(err).WithField("user_id", c.UserID).Warn("dropping malformed frame")
			continue
		}

		c.dispatch(frame)
	}
}

// dispatch routes one inbound frame into the typing or delivery service.
// Validation failures are reported back on this connection only; nothing is
// ever forwarded for an invalid frame.
func (c *WebSocketClient) dispatch(frame models.ClientFrame) {
	switch frame.Type {
	case models.FrameTypingStart:
		if frame.ReceiverID == 0 || frame.ReceiverID == c.UserID {
			return
		}
		c.Hub.Typing.Start(c.UserID, frame.ReceiverID)

	case models.FrameTypingStop:
		if frame.ReceiverID == 0 || frame.ReceiverID == c.UserID {
			return
		}
		c.Hub.Typing.Stop(c.UserID, frame.ReceiverID)

	case models.FrameNewMessage:
		if err := c.Hub.Messages.ValidateSend(c.UserID, frame.ReceiverID, frame.Content); err != nil {
			c.reportError(err)
			return
		}
		if _, err := c.Hub.Messages.SendMessage(c.UserID, frame.ReceiverID, frame.Content, frame.ImageURL); err != nil {
			logrus.WithError(err).WithField("user_id", c.UserID).Error("websocket send failed")
			c.reportError(errors.New("message could not be delivered"))
		}

	case models.FrameMessageRead:
		if err := c.Hub.Messages.MarkConversationRead(frame.ConversationID, c.UserID); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id":         c.UserID,
				"conversation_id": frame.ConversationID,
			}).Warn("mark read failed")
		}

	default:
		logrus.WithFields(logrus.Fields{
			"user_id": c.UserID,
			"type":    frame.Type,
		}).Warn("unknown frame type")
	}
}

// reportError pushes an error toast to this connection only.
func (c *WebSocketClient) reportError(err error) {
	event := models.Event{
		Type:        models.EventNotification,
		Title:       "Message not sent",
		Description: err.Error(),
		Variant:     "error",
	}
	select {
	case c.Send <- event:
	default:
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case event := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(event)
			if err != nil {
				logrus.WithError(err).WithField("user_id", c.UserID).Error("failed to encode event")
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

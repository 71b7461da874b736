package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"duonest/pkg/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait       = 10 * time.Second
	defaultPongWait = 60 * time.Second
	maxMessageSize  = 64 * 1024
	postTimeout     = 5 * time.Second
	defaultName     = "guest"
)

// ServeWs upgrades the request and joins the client to the hub. The display
// name comes from the "name" query parameter.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = defaultName
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     hub.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Sugar.Error(err)
		return
	}

	client := &Client{
		Hub:   hub,
		Conn:  conn,
		Name:  name,
		Since: time.Now(),
		Send:  make(chan []byte, 256),
	}

	select {
	case hub.Register <- client:
	case <-hub.quit:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.quit:
		}
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	pongWait := c.Hub.pongWait
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, rawMessage, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Sugar.Errorf("error: %v", err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(rawMessage, &msg); err != nil {
			logger.Sugar.Errorf("Error unmarshalling message: %v", err)
			continue
		}

		switch msg.Type {
		case ChatType:
			c.postChat(msg.Payload)
		default:
			logger.Sugar.Debugf("Ignoring %q frame from %s", msg.Type, c.Name)
		}
	}
}

// postChat persists a chat typed into the socket. The sender is always the
// connection's name so nobody can speak for the other.
func (c *Client) postChat(payload json.RawMessage) {
	poster := c.Hub.chatPoster()
	if poster == nil {
		logger.Sugar.Warn("Dropping socket chat: no poster configured")
		return
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		logger.Sugar.Errorf("Error unmarshalling chat payload: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), postTimeout)
	defer cancel()
	if err := poster.PostChat(ctx, c.Name, body.Message); err != nil {
		logger.Sugar.Errorf("Failed to store socket chat from %s: %v", c.Name, err)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.Hub.pongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return // Connection is dead
			}
		}
	}
}

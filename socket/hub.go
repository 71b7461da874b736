package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"duonest/pkg/logger"
	"duonest/pkg/metrics"

	"github.com/gorilla/websocket"
)

const (
	ChatType           = "CHAT"            // New chat message (also accepted from clients)
	ChatDeleteType     = "CHAT_DELETE"     // One chat message removed
	ChatClearType      = "CHAT_CLEAR"      // Whole chat log cleared
	KissType           = "KISS"            // Kiss counter changed
	PresenceUpdateType = "PRESENCE_UPDATE" // Somebody connected or left
)

type WSMessage struct {
	Type    string          `json:"type"`
	Sender  string          `json:"sender,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type UserStatus struct {
	Name  string    `json:"name"`
	Since time.Time `json:"since"`
}

// ChatPoster persists a chat message sent over the socket. The poster is
// expected to publish the resulting CHAT event itself.
type ChatPoster interface {
	PostChat(ctx context.Context, sender, message string) error
}

// Hub fans events out to every connected client. There is a single room:
// everybody who passed the login gate.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan WSMessage
	Register   chan *Client
	Unregister chan *Client

	mu      sync.Mutex
	poster  ChatPoster
	origins map[string]bool
	// pongWait is how long a client may stay silent, pongs included,
	// before it is dropped. Pings go out at 9/10 of it.
	pongWait time.Duration
	quit     chan struct{}
	once     sync.Once
}

type Client struct {
	Hub   *Hub
	Conn  *websocket.Conn
	Name  string
	Since time.Time
	Send  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan WSMessage),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		pongWait:   defaultPongWait,
		quit:       make(chan struct{}),
	}
}

// SetAllowedOrigins lists the cross-origin pages that may open a socket
// besides the app's own host. "*" entries are ignored: a socket carries the
// session cookie, so it is never opened to every origin.
func (h *Hub) SetAllowedOrigins(origins []string) {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o != "*" {
			allowed[o] = true
		}
	}
	h.mu.Lock()
	h.origins = allowed
	h.mu.Unlock()
}

// checkOrigin accepts requests without an Origin header, from the same host,
// or from an allowed origin.
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	h.mu.Lock()
	listed := h.origins[origin]
	h.mu.Unlock()
	if listed {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// SetPoster wires inbound CHAT frames to persistence.
func (h *Hub) SetPoster(p ChatPoster) {
	h.mu.Lock()
	h.poster = p
	h.mu.Unlock()
}

func (h *Hub) chatPoster() ChatPoster {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.poster
}

// Publish hands msg to the Run loop. It returns without sending once the hub
// has been stopped.
func (h *Hub) Publish(msg WSMessage) {
	select {
	case h.Broadcast <- msg:
	case <-h.quit:
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.quit) })
}

// Online returns the names of connected clients, sorted.
func (h *Hub) Online() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.Clients))
	for c := range h.Clients {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client] = true
			h.mu.Unlock()
			metrics.SocketClients.Inc()
			logger.Sugar.Infof("Socket client %s connected", client.Name)
			h.broadcastPresenceUpdate()

		case client := <-h.Unregister:
			if h.remove(client) {
				logger.Sugar.Infof("Socket client %s disconnected", client.Name)
				h.broadcastPresenceUpdate()
			}

		case msg := <-h.Broadcast:
			payload, err := json.Marshal(msg)
			if err != nil {
				logger.Sugar.Errorf("Error marshalling broadcast message: %v", err)
				continue
			}
			h.send(payload, true)

		case <-h.quit:
			h.mu.Lock()
			for client := range h.Clients {
				delete(h.Clients, client)
				close(client.Send)
				metrics.SocketClients.Dec()
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove drops client from the room. It reports false if the client was
// already gone.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.Clients[client]; !ok {
		return false
	}
	delete(h.Clients, client)
	close(client.Send)
	metrics.SocketClients.Dec()
	return true
}

// send queues payload on every client. With dropLagging set, a client whose
// buffer is full is disconnected instead of blocking the hub.
func (h *Hub) send(payload []byte, dropLagging bool) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.Clients))
	for client := range h.Clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	dropped := false
	for _, client := range clients {
		select {
		case client.Send <- payload:
		default:
			if !dropLagging {
				logger.Sugar.Warnf("Client %s's send buffer was full during presence update.", client.Name)
				continue
			}
			logger.Sugar.Warnf("Client %s's send buffer is full. Unregistering.", client.Name)
			if h.remove(client) {
				client.Conn.Close()
				dropped = true
			}
		}
	}
	if dropped {
		h.broadcastPresenceUpdate()
	}
}

func (h *Hub) broadcastPresenceUpdate() {
	h.mu.Lock()
	statuses := make([]UserStatus, 0, len(h.Clients))
	for client := range h.Clients {
		statuses = append(statuses, UserStatus{Name: client.Name, Since: client.Since})
	}
	h.mu.Unlock()

	if len(statuses) == 0 {
		return
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Name != statuses[j].Name {
			return statuses[i].Name < statuses[j].Name
		}
		return statuses[i].Since.Before(statuses[j].Since)
	})

	payload, err := json.Marshal(statuses)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling presence broadcast: %v", err)
		return
	}
	msg, _ := json.Marshal(WSMessage{Type: PresenceUpdateType, Payload: payload})
	h.send(msg, false)
}

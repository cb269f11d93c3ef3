package chatws

import (
	"encoding/json"
	"log"
	"strconv"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/saeid-a/CoachChatBack/internal/models"
	"github.com/saeid-a/CoachChatBack/internal/services"
)

// Hub pushes committed chat messages to whatever sockets the recipient (and
// sender) have open. It carries no chat state of its own; the database is
// authoritative and all sends go through the HTTP surface.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// Event is the wire format delivered over the socket.
type Event struct {
	Type           string  `json:"type"`
	ConversationID string  `json:"conversation_id,omitempty"`
	MessageID      string  `json:"message_id,omitempty"`
	SenderID       string  `json:"sender_id,omitempty"`
	RecipientID    string  `json:"recipient_id,omitempty"`
	MessageType    string  `json:"message_type,omitempty"`
	Content        *string `json:"content,omitempty"`
	FileURL        string  `json:"file_url,omitempty"`
	Timestamp      string  `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.userID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.userID)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// PushMessage satisfies the chat service's pusher dependency. Called after
// the message's transaction committed; delivery is best effort.
func (h *Hub) PushMessage(recipientID int64, message *models.ChatMessage) {
	event := &Event{
		Type:           "message",
		ConversationID: strconv.FormatInt(message.ConversationID, 10),
		MessageID:      strconv.FormatInt(message.ID, 10),
		SenderID:       strconv.FormatInt(message.SenderID, 10),
		RecipientID:    strconv.FormatInt(recipientID, 10),
		MessageType:    message.Type,
		Content:        message.Content,
		FileURL:        message.FileURL,
		Timestamp:      services.FormatChatTimestamp(message.CreatedAt),
	}

	select {
	case h.broadcast <- event:
	default:
		log.Printf("chat hub: broadcast buffer full, dropping event for user %d", recipientID)
	}
}

func (h *Hub) deliver(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("chat hub encode event: %v", err)
		return
	}

	h.sendToUser(event.RecipientID, encoded)
	if event.SenderID != "" && event.SenderID != event.RecipientID {
		h.sendToUser(event.SenderID, encoded)
	}
}

func (h *Hub) sendToUser(userID string, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, userID)
	}
}

// ReadPump drains the socket until the peer goes away. Inbound frames are
// ignored: sends go through the HTTP surface so they share its validation and
// transaction path.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub fans live leaderboard updates out to websocket clients. Clients
// subscribe per course; score advances and round submissions on that course
// are broadcast to everyone watching it.
type Hub struct {
	clients     map[*Client]bool
	broadcast   chan []byte
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	leaderboard *LeaderboardService
	logger      *zap.SugaredLogger
}

type Client struct {
	hub      *Hub
	id       string
	socket   *websocket.Conn
	send     chan []byte
	courseID string
	userID   string
}

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub(leaderboard *LeaderboardService, logger *zap.SugaredLogger) *Hub {
	return &Hub{
		clients:     make(map[*Client]bool),
		broadcast:   make(chan []byte),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		leaderboard: leaderboard,
		logger:      logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Infow("client registered", "client_id", client.id, "course_id", client.courseID, "total", total)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.logger.Infow("client unregistered", "client_id", client.id, "course_id", client.courseID, "total", total)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// BroadcastToCourse sends a typed message to every client watching a course.
func (h *Hub) BroadcastToCourse(courseID, messageType string, payload interface{}) {
	data, err := json.Marshal(Message{Type: messageType, Payload: payload})
	if err != nil {
		h.logger.Errorw("failed to marshal broadcast message", "type", messageType, "error", err)
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if client.courseID != courseID {
			continue
		}
		select {
		case client.send <- data:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.mutex.Unlock()
}

// SendLeaderboardSync pushes the current live standings for the client's
// course, used when a client first connects or asks for a refresh.
func (h *Hub) SendLeaderboardSync(client *Client) {
	rows, err := h.leaderboard.LiveLeaderboard(context.Background(), client.courseID, "", "")
	if err != nil {
		h.logger.Errorw("failed to load leaderboard for sync", "course_id", client.courseID, "error", err)
		return
	}
	data, err := json.Marshal(Message{
		Type: "leaderboard_sync",
		Payload: map[string]interface{}{
			"course_id": client.courseID,
			"rows":      rows,
		},
	})
	if err != nil {
		h.logger.Errorw("failed to marshal leaderboard sync", "error", err)
		return
	}
	select {
	case client.send <- data:
	default:
	}
}

func (h *Hub) RegisterClient(conn *websocket.Conn, courseID, userID string) *Client {
	client := &Client{
		hub:      h,
		id:       "client_" + uuid.NewString()[:8],
		socket:   conn,
		send:     make(chan []byte, 256),
		courseID: courseID,
		userID:   userID,
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warnw("websocket read error", "client_id", c.id, "error", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.logger.Warnw("invalid websocket message", "client_id", c.id, "error", err)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "ping":
		data, _ := json.Marshal(Message{Type: "pong", Payload: "pong"})
		c.send <- data

	case "request_leaderboard":
		c.hub.SendLeaderboardSync(c)

	default:
		c.hub.logger.Debugw("unknown websocket message type", "type", msg.Type, "client_id", c.id)
	}
}

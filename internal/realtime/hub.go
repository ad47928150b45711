package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"forum-server/internal/interfaces"
	"forum-server/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Client is one websocket subscriber of a topic feed.
type Client struct {
	TopicID int64
	Conn    *websocket.Conn
	send    chan []byte
}

// Hub keeps websocket subscribers grouped by topic and pushes forum events to them.
type Hub struct {
	rooms      map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// Compile-time check
var _ interfaces.ForumEventPublisher = (*Hub)(nil)

// NewHub creates a hub. Call Run to start it.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "RealtimeHub").Logger(),
	}
}

// Run processes registrations until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info().Msg("Realtime hub started")
	defer close(h.done)

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.TopicID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.TopicID] = room
			}
			room[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug().Int64("topicID", client.TopicID).Msg("Subscriber registered")

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for topicID, room := range h.rooms {
				for client := range room {
					close(client.send)
				}
				delete(h.rooms, topicID)
			}
			h.mu.Unlock()
			h.logger.Info().Msg("Realtime hub stopped")
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[client.TopicID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	delete(room, client)
	close(client.send)
	if len(room) == 0 {
		delete(h.rooms, client.TopicID)
	}
	h.logger.Debug().Int64("topicID", client.TopicID).Msg("Subscriber unregistered")
}

// Register adds client to its topic room. It returns false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes client. Safe to call after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SubscriberCount returns the number of live subscribers of a topic.
func (h *Hub) SubscriberCount(topicID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[topicID])
}

// PublishForumEvent pushes the event to the subscribers of its topic. Events
// without a topic are ignored. Slow subscribers whose queue is full miss the event.
func (h *Hub) PublishForumEvent(_ context.Context, event models.ForumEvent) error {
	if event.TopicID == 0 {
		return nil
	}
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime event: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[event.TopicID] {
		select {
		case client.send <- message:
		default:
			h.logger.Warn().Int64("topicID", event.TopicID).Str("type", string(event.Type)).Msg("Subscriber queue full, dropping event")
		}
	}
	return nil
}

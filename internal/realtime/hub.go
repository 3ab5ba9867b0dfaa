// Package realtime fans discussion messages out to websocket subscribers grouped in per-channel rooms.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// MembershipChecker decides whether a user may join a channel room.
type MembershipChecker interface {
	CanJoin(ctx context.Context, userID, channelID int64) (bool, error)
}

const joinCheckTimeout = 5 * time.Second

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[int64]map[*Client]struct{}
	checker MembershipChecker
	logger  *slog.Logger
	closed  bool
}

func NewHub(checker MembershipChecker, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		rooms:   make(map[int64]map[*Client]struct{}),
		checker: checker,
		logger:  logger,
	}
}

// SetChecker wires the membership source after construction; the discussion
// service and the hub reference each other.
func (h *Hub) SetChecker(checker MembershipChecker) {
	h.mu.Lock()
	h.checker = checker
	h.mu.Unlock()
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		c.close()
		return
	}
	h.clients[c] = struct{}{}
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for id := range c.rooms {
		h.removeFromRoom(id, c)
	}
	c.close()
}

// Broadcast implements discussion.Broadcaster. Slow clients miss the frame
// rather than block the sender.
func (h *Hub) Broadcast(channelID int64, eventType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to encode broadcast", "channel_id", channelID, "error", err)
		return
	}
	frame := encode(Envelope{Type: eventType, ChannelID: channelID, Payload: raw})

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[channelID] {
		if !c.trySend(frame) {
			h.logger.Warn("client buffer full, dropping frame", "channel_id", channelID, "user_id", c.userID)
		}
	}
}

// RoomSize reports how many connections are subscribed to a channel.
func (h *Hub) RoomSize(channelID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[channelID])
}

// Close disconnects every client; later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		c.close()
	}
	h.clients = make(map[*Client]struct{})
	h.rooms = make(map[int64]map[*Client]struct{})
}

func (h *Hub) handle(c *Client, msg Inbound) {
	switch msg.Type {
	case TypeJoin:
		h.join(c, msg.ChannelID)
	case TypeLeave:
		h.mu.Lock()
		h.removeFromRoom(msg.ChannelID, c)
		h.mu.Unlock()
		c.trySend(encode(Envelope{Type: TypeLeft, ChannelID: msg.ChannelID}))
	default:
		c.trySend(encode(Envelope{Type: TypeError, Error: "unknown message type"}))
	}
}

func (h *Hub) join(c *Client, channelID int64) {
	h.mu.RLock()
	checker := h.checker
	h.mu.RUnlock()
	if checker == nil || channelID <= 0 {
		c.trySend(encode(Envelope{Type: TypeError, ChannelID: channelID, Error: "cannot join channel"}))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), joinCheckTimeout)
	defer cancel()
	ok, err := checker.CanJoin(ctx, c.userID, channelID)
	if err != nil {
		h.logger.Error("membership check failed", "channel_id", channelID, "user_id", c.userID, "error", err)
		c.trySend(encode(Envelope{Type: TypeError, ChannelID: channelID, Error: "cannot join channel"}))
		return
	}
	if !ok {
		c.trySend(encode(Envelope{Type: TypeError, ChannelID: channelID, Error: "not a member of this channel"}))
		return
	}

	h.mu.Lock()
	if _, registered := h.clients[c]; !registered {
		h.mu.Unlock()
		return
	}
	room, exists := h.rooms[channelID]
	if !exists {
		room = make(map[*Client]struct{})
		h.rooms[channelID] = room
	}
	room[c] = struct{}{}
	c.rooms[channelID] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("client joined room", "channel_id", channelID, "user_id", c.userID)
	c.trySend(encode(Envelope{Type: TypeJoined, ChannelID: channelID}))
}

// removeFromRoom expects h.mu to be held for writing.
func (h *Hub) removeFromRoom(channelID int64, c *Client) {
	delete(c.rooms, channelID)
	room, ok := h.rooms[channelID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, channelID)
	}
}

package live

import (
	"context"
	"sync"

	"github.com/AdamBeresnev/toilescoins/internal/logging"
	"github.com/AdamBeresnev/toilescoins/internal/service"
	"github.com/bytedance/sonic"
)

const (
	MessageTournamentUpdated     = "TOURNAMENT_UPDATED"
	MessageTournamentUnpublished = "TOURNAMENT_UNPUBLISHED"
)

type Message struct {
	Type    string                    `json:"type"`
	Payload *service.PublicTournament `json:"payload,omitempty"`
}

// Source is where the hub gets projections from.
type Source interface {
	PublicView(ctx context.Context, publicID string) (*service.PublicTournament, error)
	WatchPublic(ctx context.Context, publicID string, onChange func(*service.PublicTournament)) (func(), error)
}

type room struct {
	clients     map[*Client]bool
	unsubscribe func()
	// last message sent, replayed to late joiners
	last []byte
}

// Hub keeps one store subscription per published tournament with spectators
// and fans every change out to them. Rooms are keyed by public id.
type Hub struct {
	source Source

	mu    sync.Mutex
	rooms map[string]*room
}

func NewHub(source Source) *Hub {
	return &Hub{
		source: source,
		rooms:  make(map[string]*room),
	}
}

// Register adds c to its room. The first client of a room opens the
// subscription; later ones get the latest projection right away.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	h.mu.Lock()
	rm, ok := h.rooms[c.room]
	if !ok {
		rm = &room{clients: make(map[*Client]bool)}
		h.rooms[c.room] = rm
	}
	rm.clients[c] = true
	last := rm.last
	h.mu.Unlock()

	if ok {
		if last != nil {
			c.enqueue(last)
		}
		logging.Debug("spectator joined", "public_id", c.room)
		return nil
	}

	unsubscribe, err := h.source.WatchPublic(context.WithoutCancel(ctx), c.room, func(p *service.PublicTournament) {
		h.broadcast(c.room, p)
	})
	if err != nil {
		h.Unregister(c)
		return err
	}

	h.mu.Lock()
	if h.rooms[c.room] == rm {
		rm.unsubscribe = unsubscribe
		unsubscribe = nil
	}
	h.mu.Unlock()
	// The room emptied while subscribing.
	if unsubscribe != nil {
		unsubscribe()
	}

	logging.Info("room opened", "public_id", c.room)
	return nil
}

// Unregister drops c and closes the room's subscription with its last client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	rm, ok := h.rooms[c.room]
	if !ok || !rm.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(rm.clients, c)
	c.close()

	var unsubscribe func()
	if len(rm.clients) == 0 {
		delete(h.rooms, c.room)
		unsubscribe = rm.unsubscribe
	}
	h.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
		logging.Info("room closed", "public_id", c.room)
	}
}

func (h *Hub) broadcast(publicID string, p *service.PublicTournament) {
	msg := Message{Type: MessageTournamentUpdated, Payload: p}
	if p == nil {
		msg.Type = MessageTournamentUnpublished
	}
	body, err := sonic.Marshal(msg)
	if err != nil {
		logging.Error("encode live message", "public_id", publicID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	rm, ok := h.rooms[publicID]
	if !ok {
		return
	}
	rm.last = body
	for c := range rm.clients {
		c.enqueue(body)
	}
}

// Clients returns how many spectators watch publicID.
func (h *Hub) Clients(publicID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if rm, ok := h.rooms[publicID]; ok {
		return len(rm.clients)
	}
	return 0
}

// Close disconnects every spectator and drops all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*room)
	h.mu.Unlock()

	for _, rm := range rooms {
		if rm.unsubscribe != nil {
			rm.unsubscribe()
		}
		for c := range rm.clients {
			c.close()
		}
	}
}

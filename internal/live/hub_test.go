package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/toilescoins/internal/bracket"
	"github.com/AdamBeresnev/toilescoins/internal/service"
	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu           sync.Mutex
	published    map[string]*service.PublicTournament
	listeners    map[string]func(*service.PublicTournament)
	subscribes   int
	unsubscribes int
}

func newFakeSource(publicIDs ...string) *fakeSource {
	s := &fakeSource{
		published: make(map[string]*service.PublicTournament),
		listeners: make(map[string]func(*service.PublicTournament)),
	}
	for _, id := range publicIDs {
		s.published[id] = &service.PublicTournament{PublicID: id, Name: "Cup", Status: bracket.TournamentOngoing}
	}
	return s
}

func (s *fakeSource) PublicView(ctx context.Context, publicID string) (*service.PublicTournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.published[publicID]
	if !ok {
		return nil, bracket.ErrTournamentNotFound
	}
	return p, nil
}

func (s *fakeSource) WatchPublic(ctx context.Context, publicID string, onChange func(*service.PublicTournament)) (func(), error) {
	s.mu.Lock()
	s.subscribes++
	s.listeners[publicID] = onChange
	current := s.published[publicID]
	s.mu.Unlock()

	onChange(current)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.unsubscribes++
		delete(s.listeners, publicID)
	}, nil
}

func (s *fakeSource) push(publicID string, p *service.PublicTournament) {
	s.mu.Lock()
	listener := s.listeners[publicID]
	s.mu.Unlock()
	if listener != nil {
		listener(p)
	}
}

func (s *fakeSource) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribes, s.unsubscribes
}

func newTestServer(t *testing.T, source *fakeSource) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(source)
	r := chi.NewRouter()
	r.Get("/public/tournaments/{publicId}/ws", NewHandler(hub, []string{"*"}).ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, publicID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/public/tournaments/" + publicID + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, body, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, sonic.Unmarshal(body, &msg))
	return msg
}

func TestSpectatorReceivesCurrentStateAndUpdates(t *testing.T) {
	source := newFakeSource("pub-1")
	_, srv := newTestServer(t, source)

	conn := dial(t, srv, "pub-1")
	msg := readMessage(t, conn)
	assert.Equal(t, MessageTournamentUpdated, msg.Type)
	require.NotNil(t, msg.Payload)
	assert.Equal(t, "pub-1", msg.Payload.PublicID)

	source.push("pub-1", &service.PublicTournament{PublicID: "pub-1", Name: "Cup", Status: bracket.TournamentCompleted})
	msg = readMessage(t, conn)
	assert.Equal(t, bracket.TournamentCompleted, msg.Payload.Status)

	source.push("pub-1", nil)
	msg = readMessage(t, conn)
	assert.Equal(t, MessageTournamentUnpublished, msg.Type)
	assert.Nil(t, msg.Payload)
}

func TestRoomSharesOneSubscription(t *testing.T) {
	source := newFakeSource("pub-1")
	hub, srv := newTestServer(t, source)

	first := dial(t, srv, "pub-1")
	readMessage(t, first)
	second := dial(t, srv, "pub-1")
	// Late joiners get the latest projection without a new subscription.
	msg := readMessage(t, second)
	assert.Equal(t, "pub-1", msg.Payload.PublicID)

	subscribes, _ := source.counts()
	assert.Equal(t, 1, subscribes)
	assert.Eventually(t, func() bool { return hub.Clients("pub-1") == 2 }, time.Second, 10*time.Millisecond)

	first.Close()
	assert.Eventually(t, func() bool { return hub.Clients("pub-1") == 1 }, time.Second, 10*time.Millisecond)
	_, unsubscribes := source.counts()
	assert.Zero(t, unsubscribes)

	second.Close()
	assert.Eventually(t, func() bool {
		_, unsubscribes := source.counts()
		return unsubscribes == 1
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, hub.Clients("pub-1"))
}

func TestUnknownPublicIDIsNotUpgraded(t *testing.T) {
	source := newFakeSource("pub-1")
	_, srv := newTestServer(t, source)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/public/tournaments/nope/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	subscribes, _ := source.counts()
	assert.Zero(t, subscribes)
}

package push

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railops/console/core/model"
)

type capture struct {
	mu      sync.Mutex
	batches [][]model.TrainPosition
}

func (c *capture) handle(positions []model.TrainPosition) {
	c.mu.Lock()
	c.batches = append(c.batches, positions)
	c.mu.Unlock()
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func (c *capture) last() []model.TrainPosition {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.batches) == 0 {
		return nil
	}
	return c.batches[len(c.batches)-1]
}

func wsServer(t *testing.T, messages ...string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				break
			}
		}
		// Keep the socket open briefly so the client reads everything.
		time.Sleep(200 * time.Millisecond)
		_ = conn.Close()
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestPositionsEnvelopeApplied(t *testing.T) {
	srv := wsServer(t,
		`{"type":"train_positions","data":[{"train_id":"T1","from_station":"A","to_station":"B","status":"moving","progress":0.5}]}`,
	)
	cap := &capture{}
	ch := New(Config{URL: wsURL(srv), ReconnectSeconds: 1}, cap.handle, nil)
	ch.Start()
	defer ch.Stop()

	waitFor(t, func() bool { return cap.count() >= 1 })
	batch := cap.last()
	require.Len(t, batch, 1)
	assert.Equal(t, "T1", batch[0].TrainID)
	assert.Equal(t, model.StatusMoving, batch[0].Status)
	assert.Equal(t, 0.5, batch[0].Progress)
}

func TestUnrecognizedEnvelopeDropped(t *testing.T) {
	srv := wsServer(t,
		`{"type":"chat_message","data":{"text":"hello"}}`,
		`not even json`,
		`{"type":"train_positions","data":[{"train_id":"T2","from_station":"A","status":"waiting"}]}`,
	)
	cap := &capture{}
	ch := New(Config{URL: wsURL(srv), ReconnectSeconds: 1}, cap.handle, nil)
	ch.Start()
	defer ch.Stop()

	waitFor(t, func() bool { return cap.count() >= 1 })
	assert.Equal(t, 1, cap.count(), "only the recognized envelope is applied")
	assert.Equal(t, "T2", cap.last()[0].TrainID)
}

func TestReconnectAfterClose(t *testing.T) {
	var mu sync.Mutex
	connects := 0
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		connects++
		mu.Unlock()
		_ = conn.Close()
	}))
	t.Cleanup(srv.Close)

	ch := New(Config{URL: wsURL(srv), ReconnectSeconds: 1}, nil, nil)
	ch.Start()
	defer ch.Stop()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return connects >= 2
	})
}

func TestStopIsIdempotent(t *testing.T) {
	srv := wsServer(t)
	ch := New(Config{URL: wsURL(srv), ReconnectSeconds: 1}, nil, nil)
	ch.Start()
	ch.Stop()
	ch.Stop()
	assert.False(t, ch.Live())
}

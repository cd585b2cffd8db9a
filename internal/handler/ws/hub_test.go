package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"SilverFetch/internal/domain/models"
	"SilverFetch/pkg/logger"
)

type nopMetrics struct{}

func (nopMetrics) RecordCycle(float64, int)      {}
func (nopMetrics) RecordSourceError(string)      {}
func (nopMetrics) RecordError(string)            {}
func (nopMetrics) RecordBlendedPrice(float64)    {}
func (nopMetrics) RecordSubscribers(int)         {}
func (nopMetrics) RecordBroadcast(int)           {}
func (nopMetrics) RecordLatency(string, float64) {}

type staticSource struct {
	snap *models.Snapshot
}

func (s *staticSource) Current() *models.Snapshot { return s.snap }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func startHub(t *testing.T, source SnapshotSource) (*Hub, string) {
	t.Helper()
	hub := NewHub(source, testLogger(t), nopMetrics{})
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		hub.Register(conn)
	}))
	t.Cleanup(srv.Close)

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) models.Snapshot {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return snap
}

func TestSubscriberGetsInitialSnapshotOnConnect(t *testing.T) {
	published := &models.Snapshot{
		Quote:     models.BlendedQuote{Average: 48.24},
		Narrative: models.Narrative{Status: "ok", Headline: "Market Summary"},
	}
	_, url := startHub(t, &staticSource{snap: published})

	conn := dial(t, url)
	snap := readSnapshot(t, conn)
	if snap.Quote.Average != 48.24 {
		t.Fatalf("initial snapshot price = %v, want 48.24", snap.Quote.Average)
	}
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub, url := startHub(t, &staticSource{})

	first := dial(t, url)
	second := dial(t, url)

	waitForClients(t, hub, 2)
	hub.Broadcast(&models.Snapshot{Quote: models.BlendedQuote{Average: 50.10}})

	for _, conn := range []*websocket.Conn{first, second} {
		snap := readSnapshot(t, conn)
		if snap.Quote.Average != 50.10 {
			t.Fatalf("broadcast price = %v, want 50.10", snap.Quote.Average)
		}
	}
}

func TestDisconnectDoesNotAffectOthers(t *testing.T) {
	hub, url := startHub(t, &staticSource{})

	leaver := dial(t, url)
	stayer := dial(t, url)
	waitForClients(t, hub, 2)

	leaver.Close()
	waitForClients(t, hub, 1)

	hub.Broadcast(&models.Snapshot{Quote: models.BlendedQuote{Average: 49.00}})
	snap := readSnapshot(t, stayer)
	if snap.Quote.Average != 49.00 {
		t.Fatalf("remaining subscriber missed broadcast")
	}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

package tests

import (
	"bufio"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "qrmenu/feed-svc/internal/api/http"
	"qrmenu/feed-svc/internal/hub"
	"qrmenu/pkg/events"
	"qrmenu/pkg/httpx"
)

func newFeedServer(t *testing.T, h *hub.Hub, keepalive time.Duration) *httptest.Server {
	r := mux.NewRouter()
	httpapi.NewHandler(h, keepalive).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// openFeed connects as owner and returns once the subscription is live.
func openFeed(t *testing.T, srv *httptest.Server, owner string) (*bufio.Reader, func()) {
	req, err := http.NewRequest("GET", srv.URL+"/api/feed", nil)
	require.NoError(t, err)
	req.Header.Set(httpx.OwnerHeader, owner)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)
	return reader, func() { resp.Body.Close() }
}

// nextEvent skips comments and blank lines and returns the next event.
func nextEvent(t *testing.T, reader *bufio.Reader) (string, map[string]interface{}) {
	var name string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var payload map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &payload))
			return name, payload
		}
	}
}

func waitForSubscribers(t *testing.T, h *hub.Hub, n int) {
	require.Eventually(t, func() bool { return h.Len() == n }, time.Second, 5*time.Millisecond)
}

func TestFeed_DeliversOnlyOwnOrders(t *testing.T) {
	h := hub.New(8)
	srv := newFeedServer(t, h, time.Minute)

	u1, closeU1 := openFeed(t, srv, "U1")
	defer closeU1()
	u2, closeU2 := openFeed(t, srv, "U2")
	defer closeU2()
	waitForSubscribers(t, h, 2)

	table := 4
	h.Publish(events.OrderEvent{Type: events.TypeOrderCreated, OrderID: "o1", OwnerID: "U1", TableNumber: &table, Status: "pending", Total: 2800})
	h.Publish(events.OrderEvent{Type: events.TypeOrderStatusChanged, OrderID: "o9", OwnerID: "U2", Status: "ready"})

	name, payload := nextEvent(t, u1)
	assert.Equal(t, httpapi.EventOrderCreated, name)
	assert.Equal(t, "o1", payload["order_id"])
	assert.Equal(t, "New order! Table 4", payload["notification"])

	name, payload = nextEvent(t, u2)
	assert.Equal(t, httpapi.EventOrderStatus, name)
	assert.Equal(t, "o9", payload["order_id"])
}

func TestFeed_DisconnectUnsubscribes(t *testing.T) {
	h := hub.New(8)
	srv := newFeedServer(t, h, time.Minute)

	_, closeFeed := openFeed(t, srv, "U1")
	waitForSubscribers(t, h, 1)

	closeFeed()

	waitForSubscribers(t, h, 0)
	assert.Equal(t, 0, h.Publish(events.OrderEvent{Type: events.TypeOrderCreated, OwnerID: "U1"}))
}

func TestFeed_Keepalive(t *testing.T) {
	h := hub.New(8)
	srv := newFeedServer(t, h, 20*time.Millisecond)

	reader, closeFeed := openFeed(t, srv, "U1")
	defer closeFeed()

	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if line == ": keepalive\n" {
			return
		}
	}
}

func TestFeed_HubCloseEndsStream(t *testing.T) {
	h := hub.New(8)
	srv := newFeedServer(t, h, time.Minute)

	reader, closeFeed := openFeed(t, srv, "U1")
	defer closeFeed()
	waitForSubscribers(t, h, 1)

	h.Close()

	for {
		if _, err := reader.ReadString('\n'); err != nil {
			return
		}
	}
}

func TestFeed_RequiresOwner(t *testing.T) {
	h := hub.New(8)
	srv := newFeedServer(t, h, time.Minute)

	resp, err := http.Get(srv.URL + "/api/feed")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, h.Len())
}

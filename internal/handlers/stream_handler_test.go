package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "danaku/internal/errors"
	"danaku/internal/ledger"
)

// streamRecorder is a goroutine-safe recorder that also satisfies
// http.CloseNotifier, which gin's Context.Stream requires.
type streamRecorder struct {
	*httptest.ResponseRecorder
	mu     sync.Mutex
	closed chan bool
}

func newStreamRecorder() *streamRecorder {
	return &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool)}
}

func (r *streamRecorder) Write(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(b)
}

func (r *streamRecorder) WriteString(s string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.WriteString(s)
}

func (r *streamRecorder) WriteHeader(code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ResponseRecorder.WriteHeader(code)
}

func (r *streamRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ResponseRecorder.Flush()
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func (r *streamRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Body.String()
}

type fakeSnapshots struct {
	mu    sync.Mutex
	calls map[ledger.Collection]int
	err   error
}

func (f *fakeSnapshots) Snapshot(_ context.Context, _ string, c ledger.Collection) (interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[ledger.Collection]int)
	}
	f.calls[c]++
	if f.err != nil {
		return nil, f.err
	}
	return []gin.H{{"collection": c, "n": f.calls[c]}}, nil
}

func (f *fakeSnapshots) count(c ledger.Collection) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[c]
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// openStream serves a stream request in the background. Calling the
// returned stop function disconnects the client and waits for the handler.
func openStream(t *testing.T, handler *StreamHandler, path string) (*streamRecorder, func()) {
	t.Helper()
	r := gin.New()
	r.GET("/stream", injectUserID(testUserID), handler.Stream)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", path, nil).WithContext(ctx)
	rec := newStreamRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(rec, req)
	}()

	return rec, func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("stream handler did not return after disconnect")
		}
	}
}

func TestStreamHandler_InitialSnapshotAndUpdates(t *testing.T) {
	hub := ledger.NewHub()
	snaps := &fakeSnapshots{}
	rec, stop := openStream(t, NewStreamHandler(hub, snaps), "/stream?collections=wallets,savings")

	waitFor(t, "initial snapshots", func() bool {
		b := rec.body()
		return strings.Contains(b, "event:wallets") && strings.Contains(b, "event:savings")
	})
	if strings.Contains(rec.body(), "event:transactions") {
		t.Error("transactions were not requested")
	}
	if hub.Len() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", hub.Len())
	}

	hub.Publish(testUserID, ledger.CollectionWallets)
	waitFor(t, "wallet update", func() bool { return snaps.count(ledger.CollectionWallets) == 2 })

	// Changes of other users and unrequested collections are not delivered.
	hub.Publish(testOtherID, ledger.CollectionWallets)
	hub.Publish(testUserID, ledger.CollectionTransactions)

	stop()

	if n := snaps.count(ledger.CollectionWallets); n != 2 {
		t.Errorf("expected 2 wallet snapshots, got %d", n)
	}
	if n := snaps.count(ledger.CollectionTransactions); n != 0 {
		t.Errorf("expected no transaction snapshots, got %d", n)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", got)
	}
	if hub.Len() != 0 {
		t.Errorf("expected subscription to be closed, %d left", hub.Len())
	}
}

func TestStreamHandler_BurstRefreshesEveryCollection(t *testing.T) {
	hub := ledger.NewHub()
	snaps := &fakeSnapshots{}
	_, stop := openStream(t, NewStreamHandler(hub, snaps), "/stream?collections=wallets,savings")
	defer stop()

	waitFor(t, "initial snapshots", func() bool {
		return snaps.count(ledger.CollectionWallets) == 1 && snaps.count(ledger.CollectionSavings) == 1
	})

	for i := 0; i < 5; i++ {
		hub.Publish(testUserID, ledger.CollectionWallets)
	}
	hub.Publish(testUserID, ledger.CollectionSavings)

	waitFor(t, "savings refresh after a wallet burst", func() bool {
		return snaps.count(ledger.CollectionSavings) >= 2 && snaps.count(ledger.CollectionWallets) >= 2
	})
}

func TestStreamHandler_EndsWhenHubCloses(t *testing.T) {
	hub := ledger.NewHub()
	snaps := &fakeSnapshots{}
	r := gin.New()
	r.GET("/stream", injectUserID(testUserID), NewStreamHandler(hub, snaps).Stream)

	rec := newStreamRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/stream?collections=wallets", nil))
	}()

	waitFor(t, "initial snapshot", func() bool { return snaps.count(ledger.CollectionWallets) == 1 })
	hub.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream kept the connection open after the hub closed")
	}
}

func TestStreamHandler_Heartbeat(t *testing.T) {
	handler := NewStreamHandler(ledger.NewHub(), &fakeSnapshots{})
	handler.heartbeat = 10 * time.Millisecond
	rec, stop := openStream(t, handler, "/stream?collections=transactions")

	waitFor(t, "heartbeat", func() bool { return strings.Contains(rec.body(), "event:ping") })
	stop()
}

func TestStreamHandler_SnapshotError(t *testing.T) {
	snaps := &fakeSnapshots{err: apperrors.ErrTransient}
	rec, stop := openStream(t, NewStreamHandler(ledger.NewHub(), snaps), "/stream?collections=wallets")

	waitFor(t, "error event", func() bool { return strings.Contains(rec.body(), "event:error") })
	stop()

	if !strings.Contains(rec.body(), "TRANSIENT_ERROR") {
		t.Errorf("expected error code in event, got %s", rec.body())
	}
}

func TestStreamHandler_UnknownCollection(t *testing.T) {
	hub := ledger.NewHub()
	r := gin.New()
	r.GET("/stream", injectUserID(testUserID), NewStreamHandler(hub, &fakeSnapshots{}).Stream)

	rec := doRequest(r, "GET", "/stream?collections=wallets,budgets", "")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	if hub.Len() != 0 {
		t.Errorf("expected no subscription, got %d", hub.Len())
	}
}

func TestParseCollections(t *testing.T) {
	tests := []struct {
		raw  string
		want []ledger.Collection
	}{
		{"", ledger.Collections},
		{"savings", []ledger.Collection{ledger.CollectionSavings}},
		{"wallets, transactions,wallets", []ledger.Collection{ledger.CollectionWallets, ledger.CollectionTransactions}},
	}
	for _, tt := range tests {
		got, err := parseCollections(tt.raw)
		if err != nil {
			t.Fatalf("parseCollections(%q): %v", tt.raw, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("parseCollections(%q) = %v, want %v", tt.raw, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseCollections(%q)[%d] = %s, want %s", tt.raw, i, got[i], tt.want[i])
			}
		}
	}
}

package receivers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	blink "github.com/blinkmojo/blink/pkg"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runService(t *testing.T, run func(started, stopped chan bool, stop chan context.Context) error) func() {
	t.Helper()
	started, stopped := make(chan bool, 1), make(chan bool, 1)
	stop := make(chan context.Context, 1)
	if err := run(started, stopped, stop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	<-started
	return func() {
		stop <- context.Background()
		<-stopped
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMessageLogger(t *testing.T) {
	out := &syncBuffer{}
	l := newMessageLogger(out)
	stop := runService(t, l.Run)
	defer stop()
	l.GetChan() <- blink.Message{EventType: blink.MIX_REJECTED, Message: []byte(`{"code":"privacy-violation"}`), ID: "abcd"}
	waitFor(t, func() bool {
		return strings.Contains(out.String(), `MIX:REJECTED (abcd): {"code":"privacy-violation"}`)
	})
}

func TestEventTypes(t *testing.T) {
	types := eventTypes("Logger", "test", []string{"SETTLE", "BOGUS", "ALL"})
	if len(types) != 2 || types[0].Type() != "SETTLE" || types[1].Type() != "ALL" {
		t.Fatalf("unexpected types %v", types)
	}
}

func TestCallbackSender(t *testing.T) {
	type received struct {
		body []byte
		sig  string
		ts   string
	}
	got := make(chan received, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{body, r.Header.Get("X-Blink-Signature"), r.Header.Get("X-Blink-Timestamp")}
	}))
	defer srv.Close()

	s := NewCallbackSender(blink.CallbackConfig{Path: srv.URL, HMACSecret: "sekrit"}, blink.NewMessageBus())
	stop := runService(t, s.Run)
	defer stop()
	s.GetChan() <- blink.Message{EventType: blink.SETTLE_FAILED, Message: []byte(`{"code":"curry-error"}`), ID: "0001"}

	var r received
	select {
	case r = <-got:
	case <-time.After(3 * time.Second):
		t.Fatal("callback never arrived")
	}
	var body callbackBody
	if err := json.Unmarshal(r.body, &body); err != nil {
		t.Fatalf("callback body: %v", err)
	}
	if body.Type != "SETTLE" || body.Event != "FAILED" || body.ID != "0001" {
		t.Fatalf("unexpected body %+v", body)
	}
	mac := hmac.New(sha256.New, []byte("sekrit"))
	mac.Write([]byte(r.ts + "." + string(r.body)))
	if r.sig != "sha256="+hex.EncodeToString(mac.Sum(nil)) {
		t.Fatalf("bad signature header %q", r.sig)
	}
}

func TestBundleFrames(t *testing.T) {
	sb := blink.SpendBundle{CoinSpends: []blink.CoinSpend{{
		PuzzleReveal: blink.Program{0x80},
		Solution:     blink.Program{0x80},
	}}}
	ev := blink.BundleEvent{Name: sb.Name(), Network: "testnet10", Bundle: &sb}
	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	frames, ok := bundleFrames(blink.Message{EventType: blink.SETTLE_BUILT, Message: payload})
	if !ok || len(frames) != 3 {
		t.Fatalf("frames %v", frames)
	}
	if frames[0] != BundleTopic {
		t.Fatalf("topic %v", frames[0])
	}
	if !bytes.Equal(frames[2].([]byte), sb.Serialize()) {
		t.Fatal("published bytes are not the streamable bundle")
	}
	if _, ok := bundleFrames(blink.Message{EventType: blink.SETTLE_FAILED, Message: payload}); ok {
		t.Fatal("failed settlement published")
	}
}

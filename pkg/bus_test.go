package blink

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type chanSubscriber chan Message

func (c chanSubscriber) GetChan() chan Message { return c }

func runBus(t *testing.T, bus *MessageBus) func() {
	started, stopped, stop := make(chan bool, 1), make(chan bool, 1), make(chan context.Context, 1)
	if err := bus.Run(started, stopped, stop); err != nil {
		t.Fatalf("Run: %v", err)
	}
	<-started
	return func() {
		stop <- context.Background()
		<-stopped
	}
}

func receive(t *testing.T, c chanSubscriber) Message {
	t.Helper()
	select {
	case m := <-c:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
	return Message{}
}

func TestBusDelivery(t *testing.T) {
	bus := NewMessageBus()
	defer runBus(t, bus)()

	settle := make(chanSubscriber, 4)
	all := make(chanSubscriber, 4)
	bus.Register(settle, EVENT_SETTLE("SETTLE"))
	bus.Register(all, EVENT_ALL("ALL"))

	bus.Send(MIX_VALIDATED, MixEvent{DecoyValueAmount: 5, NeedsPrivacyValue: 4})
	bus.Send(SETTLE_FAILED, BundleEvent{Network: "testnet10", Code: PrivacyViolated}, "fixed-id")

	if m := receive(t, all); m.EventType != MIX_VALIDATED || m.ID == "" {
		t.Fatalf("ALL subscriber got %v (%s)", m.EventType, m.ID)
	}
	if m := receive(t, all); m.EventType != SETTLE_FAILED {
		t.Fatalf("ALL subscriber got %v", m.EventType)
	}
	m := receive(t, settle)
	if m.EventType != SETTLE_FAILED || m.ID != "fixed-id" {
		t.Fatalf("SETTLE subscriber got %v (%s)", m.EventType, m.ID)
	}
	var ev BundleEvent
	if err := json.Unmarshal(m.Message, &ev); err != nil || ev.Code != PrivacyViolated {
		t.Fatalf("payload: %v %+v", err, ev)
	}
	select {
	case extra := <-settle:
		t.Fatalf("SETTLE subscriber got unwanted %v", extra.EventType)
	default:
	}
}

func TestBusUnregister(t *testing.T) {
	bus := NewMessageBus()
	c := make(chanSubscriber, 1)
	sub := bus.Register(c, EVENT_ALL("ALL"))
	bus.Unregister(sub)
	if _, ok := <-c; ok {
		t.Fatal("channel not closed on Unregister")
	}
	// a second Unregister is a no-op
	bus.Unregister(sub)
}

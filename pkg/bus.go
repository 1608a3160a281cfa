package blink

/*
The message subsystem gives event-based access to settlement activity
for integration purposes.

A simple internal 'message bus' is passed around as a singleton, with an
internal goroutine and a 'send' method for sending 'messages'.

Outbound destinations are created in config, which result in these
messages being routed to external services: log-files, a ZMQ publisher
feeding a broadcaster, etc. These are managed by MessageSubscribers.

MessageSubscribers are registered with the bus along with a list of
EventTypes they want to subscribe to.
*/

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"sync"
)

// MessageSubscribers are things that subscribe to the bus and handle
// messages, ie: log files, ZMQ sockets.
type MessageSubscriber interface {
	GetChan() chan Message
}

// Created by the bus, wraps message sent with Send
type Message struct {
	EventType EventType
	Message   []byte
	ID        string // optional
}

type Subscription struct {
	dest  MessageSubscriber
	types []EventType
}

func (s *Subscription) wants(t EventType) bool {
	for _, want := range s.types {
		if want.Type() == "ALL" || want.Type() == t.Type() {
			return true
		}
	}
	return false
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		receivers: make(map[*Subscription]bool),
		inbound:   make(chan Message, 16),
	}
}

type MessageBus struct {
	mu sync.Mutex
	// Registered MessageSubscribers.
	receivers map[*Subscription]bool

	// Messages from Send(), destined for MessageSubscribers
	inbound chan Message
}

// Send a message to the bus with a specific EventType
// msg can be anything JSON serialisable, this will be
// turned into a Message and delivered to any interested MessageSubscribers
func (b *MessageBus) Send(t EventType, msg interface{}, msgID ...string) error {
	j, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	if len(msgID) == 0 {
		b.inbound <- Message{t, j, generateID()}
	} else {
		b.inbound <- Message{t, j, msgID[0]}
	}
	return nil
}

func (b *MessageBus) Register(m MessageSubscriber, types ...EventType) *Subscription {
	sub := &Subscription{m, types}
	b.mu.Lock()
	b.receivers[sub] = true
	b.mu.Unlock()
	return sub
}

func (b *MessageBus) Unregister(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.receivers[sub] {
		delete(b.receivers, sub)
		close(sub.dest.GetChan())
	}
}

func (b *MessageBus) deliver(message Message) {
	b.mu.Lock()
	var failed []*Subscription
	for sub := range b.receivers {
		if !sub.wants(message.EventType) {
			continue
		}
		select {
		case sub.dest.GetChan() <- message:
		default:
			failed = append(failed, sub)
		}
	}
	b.mu.Unlock()
	for _, sub := range failed {
		// if we are unable to send, cancel the sub
		log.Printf("bus: receiver failed to handle %s message, closing", message.EventType.Type())
		b.Unregister(sub)
	}
}

// Implements conductor Service
func (b *MessageBus) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		stopBus := make(chan bool)
		go func() {
			for {
				select {
				case <-stopBus:
					return
				case message := <-b.inbound:
					b.deliver(message)
				}
			}
		}()

		started <- true
		// wait for shutdown.
		<-stop
		close(stopBus)
		stopped <- true
	}()
	return nil
}

// create a short random ID for msgs that have none
func generateID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

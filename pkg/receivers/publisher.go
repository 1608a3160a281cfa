package receivers

import (
	"context"
	"encoding/json"
	"fmt"

	blink "github.com/blinkmojo/blink/pkg"
	"github.com/pebbe/zmq4"
)

// BundleTopic is the ZMQ topic built bundles are published under.
const BundleTopic = "spendbundle"

// BundlePublisher publishes every built spend bundle on a ZMQ PUB socket as
// [topic, bundle name, streamable bundle bytes], for an external broadcaster.
// CAUTION: the protocol is not authenticated!
type BundlePublisher struct {
	Rec      chan blink.Message
	bus      *blink.MessageBus
	endpoint string
}

func NewBundlePublisher(endpoint string, bus *blink.MessageBus) (BundlePublisher, error) {
	if endpoint == "" {
		return BundlePublisher{}, blink.NewErr(blink.BadRequest, "publisher endpoint not configured")
	}
	return BundlePublisher{
		Rec:      make(chan blink.Message, 100),
		bus:      bus,
		endpoint: endpoint,
	}, nil
}

// Implements blink.MessageSubscriber
func (p BundlePublisher) GetChan() chan blink.Message {
	return p.Rec
}

// Implements conductor.Service
func (p BundlePublisher) Run(started, stopped chan bool, stop chan context.Context) error {
	sock, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return err
	}
	if err = sock.Bind(p.endpoint); err != nil {
		sock.Close()
		return err
	}
	p.bus.Send(blink.SYS_STARTUP, fmt.Sprintf("ZMQ: publishing bundles on: %s", p.endpoint))
	go func() {
		started <- true
		for {
			select {
			case <-stop:
				sock.Close()
				close(stopped)
				return
			case msg, ok := <-p.Rec:
				if !ok {
					<-stop
					sock.Close()
					close(stopped)
					return
				}
				frames, ok := bundleFrames(msg)
				if !ok {
					continue
				}
				if _, err := sock.SendMessage(frames...); err != nil {
					p.bus.Send(blink.SYS_ERR, fmt.Sprintf("ZMQ send: %v", err))
				}
			}
		}
	}()
	return nil
}

// bundleFrames turns a SETTLE BUILT message into publishable frames.
func bundleFrames(msg blink.Message) ([]interface{}, bool) {
	if msg.EventType != blink.SETTLE_BUILT {
		return nil, false
	}
	var ev blink.BundleEvent
	if err := json.Unmarshal(msg.Message, &ev); err != nil || ev.Bundle == nil {
		return nil, false
	}
	return []interface{}{BundleTopic, ev.Name[:], ev.Bundle.Serialize()}, true
}

package receivers

import (
	"context"
	"fmt"
	"io"
	"log"

	blink "github.com/blinkmojo/blink/pkg"
	"github.com/blinkmojo/blink/pkg/conductor"
	"gopkg.in/natefinch/lumberjack.v2"
)

type MessageLogger struct {
	// MessageLogger receives blink.Message via Rec
	Rec chan blink.Message
	// and logs them via Log
	Log *log.Logger
}

// Implements blink.MessageSubscriber
func (l MessageLogger) GetChan() chan blink.Message {
	return l.Rec
}

// Implements conductor.Service
func (l MessageLogger) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		for {
			select {
			// handle stopping the service
			case <-stop:
				close(stopped)
				return
			case msg, ok := <-l.Rec:
				if !ok {
					// unregistered by the bus
					<-stop
					close(stopped)
					return
				}
				l.Log.Printf("%s:%s (%s): %s\n",
					msg.EventType.Type(),
					msg.EventType,
					msg.ID,
					msg.Message)
			}
		}
	}()
	return nil
}

// NewMessageLogger logs to a rolling, compressed log file at path.
func NewMessageLogger(path string) MessageLogger {
	return newMessageLogger(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		Compress:   true,
	})
}

func newMessageLogger(w io.Writer) MessageLogger {
	return MessageLogger{
		make(chan blink.Message, 1000),
		log.New(w, "", log.Ltime|log.Lmicroseconds),
	}
}

// Reads config and sets up any configured loggers
func SetupLoggers(cond *conductor.Conductor, bus *blink.MessageBus, conf blink.Config) {
	for name, c := range conf.Loggers {
		l := NewMessageLogger(c.Path)
		cond.Service(fmt.Sprintf("Logger %s", c.Path), l)
		bus.Register(l, eventTypes("Logger", name, c.Types)...)
	}
}

// eventTypes maps configured type names onto EventTypes, skipping unknown ones.
func eventTypes(kind, name string, names []string) []blink.EventType {
	types := []blink.EventType{}
	for _, t := range names {
		et, ok := blink.EventTypeByName(t)
		if !ok {
			log.Printf("%s %s: ignoring invalid message type: %s", kind, name, t)
			continue
		}
		types = append(types, et)
	}
	return types
}

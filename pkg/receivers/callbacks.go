package receivers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	blink "github.com/blinkmojo/blink/pkg"
	"github.com/blinkmojo/blink/pkg/conductor"
)

const (
	maxRetries   = 6
	initialDelay = 1 * time.Second
	maxDelay     = 32 * time.Second
)

func NewCallbackSender(config blink.CallbackConfig, bus *blink.MessageBus) CallbackSender {
	return CallbackSender{
		Rec:        make(chan blink.Message, 1000),
		Path:       config.Path,
		HMACSecret: config.HMACSecret,
		Bus:        bus,
		client:     &http.Client{Timeout: 30 * time.Second},
		delay:      initialDelay,
	}
}

// CallbackSender POSTs bus messages to an HTTP endpoint, signed with an
// HMAC over timestamp and body when a secret is configured.
type CallbackSender struct {
	// incoming msgs
	Rec        chan blink.Message
	Path       string
	HMACSecret string
	Bus        *blink.MessageBus
	client     *http.Client
	delay      time.Duration
}

// callbackBody is what the endpoint receives.
type callbackBody struct {
	Type    string          `json:"type"`
	Event   string          `json:"event"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// Implements blink.MessageSubscriber
func (s CallbackSender) GetChan() chan blink.Message {
	return s.Rec
}

// Implements conductor.Service
func (s CallbackSender) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		started <- true
		for {
			select {
			// handle stopping the service
			case <-stop:
				close(stopped)
				return
			case msg, ok := <-s.Rec:
				if !ok {
					<-stop
					close(stopped)
					return
				}
				if err := s.post(msg, stop); err != nil {
					s.Bus.Send(blink.SYS_ERR, fmt.Sprintf("CallbackSender: %s: %v", s.Path, err))
				}
			}
		}
	}()
	return nil
}

// Reads config and sets up any configured callbacks
func SetupCallbacks(cond *conductor.Conductor, bus *blink.MessageBus, conf blink.Config) {
	for name, c := range conf.Callbacks {
		s := NewCallbackSender(c, bus)
		cond.Service(fmt.Sprintf("Callback sender for: %s", c.Path), s)
		bus.Register(s, eventTypes("Callback", name, c.Types)...)
	}
}

func generateSha256HMAC(timestamp string, payload []byte, secret string) string {
	if secret == "" {
		return ""
	}
	dataToSign := []byte(fmt.Sprintf("%s.%s", timestamp, string(payload)))
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(dataToSign)
	return hex.EncodeToString(h.Sum(nil))
}

// post delivers msg, retrying with exponential backoff until it succeeds,
// retries run out, or the service is stopped.
func (s CallbackSender) post(msg blink.Message, stop chan context.Context) error {
	body, err := json.Marshal(callbackBody{
		Type:    msg.EventType.Type(),
		Event:   fmt.Sprint(msg.EventType),
		ID:      msg.ID,
		Payload: msg.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	delay := s.delay
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = s.postOnce(body)
		if err == nil {
			return nil
		}
		select {
		case ctx := <-stop:
			// put it back for the Run loop
			stop <- ctx
			return fmt.Errorf("stopped while retrying: %v", err)
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
		}
	}
	return fmt.Errorf("request failed after %d attempts: %v", maxRetries+1, err)
}

func (s CallbackSender) postOnce(body []byte) error {
	req, err := http.NewRequest("POST", s.Path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.HMACSecret != "" {
		timestampStr := fmt.Sprintf("%d", time.Now().Unix())
		signature := generateSha256HMAC(timestampStr, body, s.HMACSecret)
		req.Header.Set("X-Blink-Signature", fmt.Sprintf("sha256=%s", signature))
		req.Header.Set("X-Blink-Timestamp", timestampStr)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status code: %d", resp.StatusCode)
	}
	return nil
}

package conductor

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	startupTimeout  time.Duration = time.Duration(5 * time.Second)
	shutdownTimeout time.Duration = time.Duration(5 * time.Second)
)

// Service is anything the Conductor can run. Run must return promptly: it
// signals on started once up, waits on stop, then signals (or closes) stopped.
type Service interface {
	Run(started chan bool, stopped chan bool, stop chan context.Context) error
}

type serviceState struct {
	name     string
	service  Service
	running  bool
	ready    chan bool
	stopped  chan bool
	shutdown chan context.Context
}

type Conductor struct {
	mu           sync.Mutex
	started      bool          // Have we been started yet?
	noisy        bool          // Should we log?
	startTimeout time.Duration // How long should we wait for each service to start before we die?
	stopTimeout  time.Duration // How long should we wait for each service to stop before we kill it?
	shutdown     chan bool     // closed once everything has stopped, returned from Start()
	stopOnce     sync.Once
	services     []*serviceState
}

// NewConductor creates a conductor; opts change the default behaviours.
func NewConductor(opts ...Option) *Conductor {
	c := Conductor{
		startTimeout: startupTimeout,
		stopTimeout:  shutdownTimeout,
		shutdown:     make(chan bool),
		services:     []*serviceState{},
	}

	for _, optFn := range opts {
		optFn(&c)
	}
	return &c
}

// Service adds a named Service to be started, in order, by Start.
func (c *Conductor) Service(name string, service Service) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		panic("Cannot call Conductor.Service after Conductor.Start")
	}
	c.services = append(c.services,
		&serviceState{name: name, service: service, ready: make(chan bool, 1), stopped: make(chan bool, 1), shutdown: make(chan context.Context, 1)})
}

// Start runs each service in turn, so later services may depend on earlier
// ones. The returned channel is closed after shutdown completes.
func (c *Conductor) Start() chan bool {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	for _, srv := range c.services {
		c.logf("starting '%s'", srv.name)
		if err := srv.service.Run(srv.ready, srv.stopped, srv.shutdown); err != nil {
			// Service has failed to start with an error, shutdown everything
			c.logf("'%s' failed to start: %s", srv.name, err)
			go c.Stop()
			break
		}
		srv.running = true
		select {
		case <-time.After(c.startTimeout):
			c.logf("'%s' timed out during startup", srv.name)
			go c.Stop()
			return c.shutdown
		case <-srv.ready:
			c.logf("'%s' ok", srv.name)
		}
	}
	return c.shutdown
}

// Stop asks every running service to shut down and closes the shutdown
// channel once they have, or once the stop timeout passes.
func (c *Conductor) Stop() {
	c.stopOnce.Do(c.stop)
}

func (c *Conductor) stop() {
	ctx, cancel := context.WithTimeout(context.Background(), c.stopTimeout)
	defer cancel()

	wg := sync.WaitGroup{}
	for _, state := range c.services {
		if !state.running {
			continue
		}
		wg.Add(1)
		c.logf("requesting shutdown: %s", state.name)
		state.shutdown <- ctx
		go func(s *serviceState) {
			<-s.stopped
			c.logf("shutdown complete: %s", s.name)
			wg.Done()
		}(state)
	}

	done := make(chan bool)
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logf("all services stopped")
	case <-time.After(c.stopTimeout + time.Second):
		log.Println("conductor: timeout exceeded waiting for services to stop, shutting down")
	}
	close(c.shutdown)
}

func (c *Conductor) logf(s string, v ...interface{}) {
	if c.noisy {
		log.Printf("conductor: "+s, v...)
	}
}

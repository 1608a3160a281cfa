package conductor

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Option configures a Conductor in NewConductor.
type Option func(*Conductor)

// StartupTimeout bounds how long each service may take to signal started.
func StartupTimeout(d time.Duration) Option {
	return func(c *Conductor) {
		c.startTimeout = d
	}
}

// ShutdownTimeout bounds how long each service may take to stop.
func ShutdownTimeout(d time.Duration) Option {
	return func(c *Conductor) {
		c.stopTimeout = d
	}
}

func Noisy() Option {
	return func(c *Conductor) {
		c.noisy = true
	}
}

// HookSignals stops the Conductor on SIGTERM or SIGINT. A second signal
// while services are still stopping exits the process.
func HookSignals() Option {
	return func(c *Conductor) {
		sigCh := make(chan os.Signal, 2)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			defer signal.Stop(sigCh)
			stopping := false
			for {
				select {
				case sig := <-sigCh:
					if stopping {
						log.Printf("conductor: caught %v again, exiting", sig)
						os.Exit(1)
					}
					stopping = true
					c.logf("caught %v signal, shutting down", sig)
					go c.Stop()
				case <-c.shutdown:
					return
				}
			}
		}()
	}
}

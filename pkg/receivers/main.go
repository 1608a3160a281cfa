package receivers

import (
	blink "github.com/blinkmojo/blink/pkg"
	"github.com/blinkmojo/blink/pkg/conductor"
)

// Sets up standard receivers.
func SetUpReceivers(cond *conductor.Conductor, bus *blink.MessageBus, conf blink.Config) error {
	// Set up configured loggers
	SetupLoggers(cond, bus, conf)

	// Set up configured Callbacks
	SetupCallbacks(cond, bus, conf)

	// Publish built bundles to the broadcaster
	if conf.Publisher.Enabled {
		p, err := NewBundlePublisher(conf.Publisher.Endpoint, bus)
		if err != nil {
			return err
		}
		cond.Service("Bundle Publisher", p)
		bus.Register(p, blink.EVENT_SETTLE("SETTLE"))
	}
	return nil
}

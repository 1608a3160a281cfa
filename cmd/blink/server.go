package main

import (
	blink "github.com/blinkmojo/blink/pkg"
	"github.com/blinkmojo/blink/pkg/conductor"
	"github.com/blinkmojo/blink/pkg/puzzles"
	"github.com/blinkmojo/blink/pkg/receivers"
	"github.com/blinkmojo/blink/pkg/store"
	"github.com/blinkmojo/blink/pkg/webapi"
)

func Server(conf blink.Config) {

	c := conductor.NewConductor(
		conductor.HookSignals(),
		conductor.Noisy(),
	)

	// Start the MessageBus Service
	bus := blink.NewMessageBus()
	c.Service("MessageBus", bus)

	// Set up all configured receivers
	if err := receivers.SetUpReceivers(c, bus, conf); err != nil {
		panic(err)
	}

	// Load and check the puzzle templates once
	set, err := puzzles.Shared()
	if err != nil {
		panic(err)
	}

	// Setup a Store
	store, err := store.NewSQLite(conf.Store.DBFile)
	if err != nil {
		panic(err)
	}
	defer store.Close()

	api, err := blink.NewAPI(store, bus, set, conf)
	if err != nil {
		panic(err)
	}

	// Start the Settlement API
	p, err := webapi.NewWebAPI(conf, api)
	if err != nil {
		panic(err)
	}
	c.Service("Settlement API", p)

	<-c.Start()
}

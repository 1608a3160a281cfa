package blink

import "time"

// BundleRecord is a built spend bundle as kept by the Store.
type BundleRecord struct {
	Name    Bytes32     `json:"name"`
	Network string      `json:"network"`
	Bundle  SpendBundle `json:"spend_bundle"`
	Created time.Time   `json:"created"`
}

type Store interface {
	// StoreSpendBundle stores a built bundle under its name.
	// Storing the same name twice is an AlreadyExists error.
	StoreSpendBundle(rec BundleRecord) error
	// GetSpendBundle returns the bundle with the given name, or a NotFound error.
	GetSpendBundle(name Bytes32) (BundleRecord, error)
	// ListSpendBundles returns bundles newest first.
	// pagination: next_cursor should be passed as 'cursor' on the next call (initial cursor = 0)
	// pagination: when next_cursor == 0, that is the final page of results.
	ListSpendBundles(cursor int, limit int) (items []BundleRecord, next_cursor int, err error)
	Close()
}

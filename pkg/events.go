package blink

// Blink event types

// bus.Send(SETTLE_BUILT, BundleEvent{...})
// bus.Send(MIX_REJECTED, MixEvent{...})

// Interface for any event
type EventType interface {
	Type() string
}

// slice of all msg types for config funcs lookup
var EVENT_TYPES []EventType = []EventType{EVENT_ALL("ALL"),
	EVENT_SYS("SYS"),
	EVENT_MIX("MIX"),
	EVENT_SETTLE("SETTLE")}

// EventTypeByName finds the category for a config name like "SETTLE".
func EventTypeByName(name string) (EventType, bool) {
	for _, t := range EVENT_TYPES {
		if t.Type() == name {
			return t, true
		}
	}
	return nil, false
}

// Special category, do not use directly, represents *
type EVENT_ALL string

func (e EVENT_ALL) Type() string {
	return "ALL"
}

// System Events
type EVENT_SYS string

func (e EVENT_SYS) Type() string {
	return "SYS"
}

const (
	SYS_STARTUP EVENT_SYS = "STARTUP"
	SYS_ERR     EVENT_SYS = "ERR"
	SYS_MSG     EVENT_SYS = "MSG"
)

// Mix plan events
type EVENT_MIX string

func (e EVENT_MIX) Type() string {
	return "MIX"
}

const (
	MIX_VALIDATED EVENT_MIX = "VALIDATED"
	MIX_REJECTED  EVENT_MIX = "REJECTED"
)

// Settlement events
type EVENT_SETTLE string

func (e EVENT_SETTLE) Type() string {
	return "SETTLE"
}

const (
	SETTLE_BUILT  EVENT_SETTLE = "BUILT"
	SETTLE_FAILED EVENT_SETTLE = "FAILED"
)

// MixEvent is the payload of MIX events.
type MixEvent struct {
	DecoyValueAmount  uint64    `json:"decoy_value_amount"`
	NeedsPrivacyValue uint64    `json:"needs_privacy_value"`
	Error             string    `json:"error,omitempty"`
	Code              ErrorCode `json:"code,omitempty"`
}

// BundleEvent is the payload of SETTLE events. Bundle is set for BUILT.
type BundleEvent struct {
	Name    Bytes32      `json:"name"`
	Network string       `json:"network"`
	Coins   []Bytes32    `json:"coins"`
	Bundle  *SpendBundle `json:"spend_bundle,omitempty"`
	Error   string       `json:"error,omitempty"`
	Code    ErrorCode    `json:"code,omitempty"`
}

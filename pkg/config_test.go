package blink

import "testing"

func TestDefaultConfig(t *testing.T) {
	c, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig: %v", err)
	}
	if c.Blink.Network != "testnet10" || c.Blink.MaxCost != 11000000000 || c.WebAPI.Port != "9257" {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestDefaultConfigReportsBadOverride(t *testing.T) {
	t.Setenv("CONFIGOR_BLINK_MAXCOST", "not-a-number")
	if _, err := DefaultConfig(); err == nil {
		t.Fatal("expected an error for a malformed CONFIGOR_BLINK_MAXCOST")
	}
}

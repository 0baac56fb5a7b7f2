package vault

import (
	"math/big"
	"testing"
)

func TestTriggerEmitsLifecycleEvents(t *testing.T) {
	engine, _ := newTestEngine()
	emitter := &captureEmitter{}
	engine.SetEmitter(emitter)

	owner := makeAddress(0x60)
	liquidator := makeAddress(0x61)

	id, err := engine.OpenPosition(owner)
	if err != nil {
		t.Fatalf("open position: %v", err)
	}
	if err := engine.Trigger(liquidator, id, big.NewInt(500)); err != nil {
		t.Fatalf("unbound trigger: %v", err)
	}
	if err := engine.SelectAdapter(owner, id, BlockedFarm{}, 4); err != nil {
		t.Fatalf("select adapter: %v", err)
	}
	if err := engine.Trigger(liquidator, id, big.NewInt(500)); err == nil {
		t.Fatalf("expected blocked trigger to fail")
	}

	want := []string{
		TypePositionOpened,
		TypeLiquidationTriggered,
		TypeAdapterSelected,
		TypeLiquidationBlocked,
	}
	got := emitter.types()
	if len(got) != len(want) {
		t.Fatalf("unexpected event count: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected event at %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestLiquidationBlockedAttributes(t *testing.T) {
	engine, _ := newTestEngine()
	emitter := &captureEmitter{}
	engine.SetEmitter(emitter)

	owner := makeAddress(0x62)
	liquidator := makeAddress(0x63)

	id, err := engine.OpenPosition(owner)
	if err != nil {
		t.Fatalf("open position: %v", err)
	}
	if err := engine.SelectAdapter(owner, id, FailingFarm{}, 0); err != nil {
		t.Fatalf("select adapter: %v", err)
	}
	if err := engine.Trigger(liquidator, id, big.NewInt(500)); err == nil {
		t.Fatalf("expected trigger to fail")
	}

	last := emitter.events[len(emitter.events)-1]
	blocked, ok := last.(LiquidationBlocked)
	if !ok {
		t.Fatalf("expected LiquidationBlocked, got %T", last)
	}
	attrs := blocked.Attributes()
	if attrs["reason"] != "DoS: External Call Failed" {
		t.Fatalf("event must carry the adapter's message unchanged, got %q", attrs["reason"])
	}
	if attrs["adapter"] != "failing-farm" {
		t.Fatalf("unexpected adapter attribute: %q", attrs["adapter"])
	}
	if attrs["amount"] != "500" {
		t.Fatalf("unexpected amount attribute: %q", attrs["amount"])
	}
}

package poststates

import (
	"errors"
	"testing"

	"github.com/arraypress/go-post-states/pkg/listing"
)

func TestRegisterInitializesOnce(t *testing.T) {
	defer Reset()
	point := listing.NewExtensionPoint()

	first, err := Register(point, map[string]string{"featured": "Featured"},
		WithResolver(staticResolver(42)))
	if err != nil {
		t.Fatalf("first register: %v", err)
	}

	second, err := Register(point, map[string]string{"featured": "Featured", "docs": "Docs"})
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if first != second {
		t.Fatalf("expected singleton reuse across registrations")
	}
	if Instance() != first {
		t.Fatalf("expected Instance to return the singleton")
	}

	// Exactly one subscription: one render pass yields each label once.
	if point.Len() != 1 {
		t.Fatalf("expected a single subscription, got %d", point.Len())
	}
	labels := point.Collect(nil, listing.Item{ID: 42})
	if len(labels) != 2 || labels["featured"] != "Featured" || labels["docs"] != "Docs" {
		t.Fatalf("unexpected labels after re-registration: %v", labels)
	}
}

func TestRegisterReplacesEntriesWholesale(t *testing.T) {
	defer Reset()
	point := listing.NewExtensionPoint()

	if _, err := Register(point, map[string]string{"old": "Old"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := Register(point, map[string]string{"new": "New"}); err != nil {
		t.Fatalf("second register: %v", err)
	}

	registry := Instance()
	if _, ok := registry.Lookup("old"); ok {
		t.Fatalf("expected replacement, not merge")
	}
	if _, ok := registry.Lookup("new"); !ok {
		t.Fatalf("expected new entry set")
	}
}

func TestFailedFirstRegisterLeavesUninitialized(t *testing.T) {
	defer Reset()
	point := listing.NewExtensionPoint()

	if _, err := Register(point, nil); CodeOf(err) != CodeEmptyConfiguration {
		t.Fatalf("expected EMPTY_CONFIGURATION, got %v", err)
	}
	if Instance() != nil {
		t.Fatalf("failed init must leave the surface uninitialized")
	}
	if point.Len() != 0 {
		t.Fatalf("failed init must not subscribe, got %d filters", point.Len())
	}

	if _, err := Register(nil, map[string]string{"k": "v"}); err == nil {
		t.Fatalf("expected error for nil extension point")
	}
}

func TestPackageSurfaceRequiresInit(t *testing.T) {
	defer Reset()

	if err := AddState("k", "v"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from AddState, got %v", err)
	}
	if err := SetResolver(staticResolver(1)); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized from SetResolver, got %v", err)
	}
}

func TestPackageSurfaceAfterInit(t *testing.T) {
	defer Reset()
	point := listing.NewExtensionPoint()

	if _, err := Register(point, map[string]string{"featured": "Featured"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := AddState("docs", "Docs", WithEntryResolver(staticResolver(15))); err != nil {
		t.Fatalf("add state: %v", err)
	}
	if err := SetResolver(staticResolver(nil)); err != nil {
		t.Fatalf("set resolver: %v", err)
	}

	labels := point.Collect(nil, listing.Item{ID: 15})
	if labels["docs"] != "Docs" {
		t.Fatalf("expected incremental state to match, got %v", labels)
	}
}

func TestResetDetaches(t *testing.T) {
	point := listing.NewExtensionPoint()
	if _, err := Register(point, map[string]string{"featured": "Featured"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	Reset()

	if Instance() != nil {
		t.Fatalf("expected uninitialized surface after Reset")
	}
	if point.Len() != 0 {
		t.Fatalf("expected Reset to detach the matcher, got %d filters", point.Len())
	}
}

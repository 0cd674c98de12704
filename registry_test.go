package poststates

import (
	"errors"
	"testing"

	"github.com/arraypress/go-post-states/pkg/activity"
)

func staticResolver(value any) Resolver {
	return func(string) (any, error) {
		return value, nil
	}
}

func TestSetEntriesValidation(t *testing.T) {
	cases := []struct {
		name   string
		states map[string]string
		code   ErrorCode
		keys   []string
	}{
		{
			name:   "nil mapping",
			states: nil,
			code:   CodeEmptyConfiguration,
		},
		{
			name:   "empty mapping",
			states: map[string]string{},
			code:   CodeEmptyConfiguration,
		},
		{
			name:   "all pairs invalid",
			states: map[string]string{"": "Label", "key": ""},
			code:   CodeNoValidEntries,
		},
		{
			name:   "invalid pairs dropped silently",
			states: map[string]string{"featured": "Featured", "": "Dropped", "docs": ""},
			keys:   []string{"featured"},
		},
		{
			name:   "bulk keys ordered deterministically",
			states: map[string]string{"zeta": "Z", "alpha": "A", "mid": "M"},
			keys:   []string{"alpha", "mid", "zeta"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			registry := New()
			err := registry.SetEntries(tc.states)

			if tc.code != "" {
				if err == nil {
					t.Fatalf("expected error code %s, got nil", tc.code)
				}
				if CodeOf(err) != tc.code {
					t.Fatalf("expected code %s, got %s (%v)", tc.code, CodeOf(err), err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := registry.Keys()
			if len(got) != len(tc.keys) {
				t.Fatalf("expected keys %v, got %v", tc.keys, got)
			}
			for i, key := range tc.keys {
				if got[i] != key {
					t.Fatalf("expected keys %v, got %v", tc.keys, got)
				}
			}
		})
	}
}

func TestSetEntriesReplacesWholesale(t *testing.T) {
	registry := New()
	if err := registry.SetEntries(map[string]string{"old": "Old"}); err != nil {
		t.Fatalf("first set: %v", err)
	}
	if err := registry.SetEntries(map[string]string{"new": "New"}); err != nil {
		t.Fatalf("second set: %v", err)
	}

	if _, ok := registry.Lookup("old"); ok {
		t.Fatalf("expected re-registration to replace, not merge")
	}
	if entry, ok := registry.Lookup("new"); !ok || entry.Label != "New" {
		t.Fatalf("expected new entry, got %+v ok=%v", entry, ok)
	}
}

func TestAddEntryValidationAsymmetry(t *testing.T) {
	registry := New()

	// The bulk form silently drops these same pairs; the single-entry form
	// must reject them.
	for _, pair := range [][2]string{{"", "x"}, {"x", ""}, {"", ""}} {
		err := registry.AddEntry(pair[0], pair[1])
		if CodeOf(err) != CodeInvalidKeyOrLabel {
			t.Fatalf("AddEntry(%q, %q): expected INVALID_KEY_OR_LABEL, got %v", pair[0], pair[1], err)
		}
	}

	if err := registry.AddEntry("k", "v"); err != nil {
		t.Fatalf("valid AddEntry: %v", err)
	}
	if entry, ok := registry.Lookup("k"); !ok || entry.Label != "v" {
		t.Fatalf("expected entry retrievable, got %+v ok=%v", entry, ok)
	}
}

func TestAddEntryAlongsideBulk(t *testing.T) {
	registry := New()
	if err := registry.SetEntries(map[string]string{"featured": "Featured"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := registry.AddEntry("docs", "Documentation"); err != nil {
		t.Fatalf("add: %v", err)
	}

	if registry.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", registry.Len())
	}
	keys := registry.Keys()
	if keys[0] != "featured" || keys[1] != "docs" {
		t.Fatalf("expected incremental additions to append, got %v", keys)
	}
}

func TestAddEntryOverwriteKeepsPosition(t *testing.T) {
	registry := New()
	if err := registry.AddEntry("first", "First"); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := registry.AddEntry("second", "Second"); err != nil {
		t.Fatalf("add second: %v", err)
	}
	if err := registry.AddEntry("first", "Replaced"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	keys := registry.Keys()
	if len(keys) != 2 || keys[0] != "first" || keys[1] != "second" {
		t.Fatalf("expected overwrite to keep position, got %v", keys)
	}
	if entry, _ := registry.Lookup("first"); entry.Label != "Replaced" {
		t.Fatalf("expected overwritten label, got %q", entry.Label)
	}
}

func TestSetResolver(t *testing.T) {
	registry := New()

	if err := registry.SetResolver(nil); CodeOf(err) != CodeInvalidResolver {
		t.Fatalf("expected INVALID_RESOLVER for nil resolver, got %v", err)
	}
	if err := registry.SetResolver(staticResolver(42)); err != nil {
		t.Fatalf("set resolver: %v", err)
	}
}

func TestEntrySource(t *testing.T) {
	registry := New()
	if err := registry.AddEntry("default", "Default"); err != nil {
		t.Fatalf("add default: %v", err)
	}
	if err := registry.AddEntry("pinned", "Pinned", WithEntryResolver(staticResolver(1))); err != nil {
		t.Fatalf("add pinned: %v", err)
	}

	if entry, _ := registry.Lookup("default"); entry.Source() != "settings" {
		t.Fatalf("expected settings source, got %q", entry.Source())
	}
	if entry, _ := registry.Lookup("pinned"); entry.Source() != "custom" {
		t.Fatalf("expected custom source, got %q", entry.Source())
	}
}

func TestRegistrationEmitsActivityEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	registry := New(WithActivityHooks(activity.Hooks{capture}))

	if err := registry.SetEntries(map[string]string{"featured": "Featured", "docs": "Docs"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := registry.AddEntry("front", "Front Page"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := registry.SetResolver(staticResolver(9)); err != nil {
		t.Fatalf("resolver: %v", err)
	}

	verbs := capture.Verbs()
	want := []string{"post_state.replaced", "post_state.registered", "post_state.resolver_changed"}
	if len(verbs) != len(want) {
		t.Fatalf("expected verbs %v, got %v", want, verbs)
	}
	for i := range want {
		if verbs[i] != want[i] {
			t.Fatalf("expected verbs %v, got %v", want, verbs)
		}
	}
	if capture.Events[0].Metadata["count"] != 2 {
		t.Fatalf("expected replaced count metadata, got %+v", capture.Events[0].Metadata)
	}
}

func TestActivityHookFailureDoesNotFailRegistration(t *testing.T) {
	capture := &activity.CaptureHook{Err: errors.New("sink down")}
	registry := New(WithActivityHooks(activity.Hooks{capture}))

	if err := registry.SetEntries(map[string]string{"featured": "Featured"}); err != nil {
		t.Fatalf("expected best-effort emission, got %v", err)
	}
}

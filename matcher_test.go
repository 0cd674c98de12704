package poststates

import (
	"errors"
	"testing"

	"github.com/arraypress/go-post-states/pkg/listing"
)

func TestCollectLabelsMatching(t *testing.T) {
	registry := New()
	if err := registry.AddEntry("featured", "Featured", WithEntryResolver(staticResolver(42))); err != nil {
		t.Fatalf("add: %v", err)
	}

	labels := registry.CollectLabels(nil, listing.Item{ID: 42})
	if labels["featured"] != "Featured" {
		t.Fatalf("expected match for item 42, got %v", labels)
	}

	labels = registry.CollectLabels(nil, listing.Item{ID: 7})
	if _, ok := labels["featured"]; ok {
		t.Fatalf("expected no match for item 7, got %v", labels)
	}
}

func TestCollectLabelsUsesDefaultResolver(t *testing.T) {
	registry := New(WithResolver(func(key string) (any, error) {
		if key == "front_page" {
			return "10", nil
		}
		return nil, nil
	}))
	if err := registry.SetEntries(map[string]string{
		"front_page": "Front Page",
		"unset":      "Unset",
	}); err != nil {
		t.Fatalf("set: %v", err)
	}

	labels := registry.CollectLabels(nil, listing.Item{ID: 10})
	if labels["front_page"] != "Front Page" {
		t.Fatalf("expected string value to match item 10, got %v", labels)
	}
	if _, ok := labels["unset"]; ok {
		t.Fatalf("missing value must not match, got %v", labels)
	}
}

func TestCollectLabelsPinnedResolverIgnoresSetResolver(t *testing.T) {
	registry := New(WithResolver(staticResolver(nil)))
	if err := registry.AddEntry("pinned", "Pinned", WithEntryResolver(staticResolver(5))); err != nil {
		t.Fatalf("add pinned: %v", err)
	}
	if err := registry.AddEntry("floating", "Floating"); err != nil {
		t.Fatalf("add floating: %v", err)
	}

	// Swapping the default retargets floating entries only.
	if err := registry.SetResolver(staticResolver(5)); err != nil {
		t.Fatalf("set resolver: %v", err)
	}

	labels := registry.CollectLabels(nil, listing.Item{ID: 5})
	if labels["pinned"] != "Pinned" || labels["floating"] != "Floating" {
		t.Fatalf("expected both entries to match item 5, got %v", labels)
	}
}

func TestCollectLabelsIdempotent(t *testing.T) {
	registry := New()
	if err := registry.AddEntry("featured", "Featured", WithEntryResolver(staticResolver(3))); err != nil {
		t.Fatalf("add: %v", err)
	}

	existing := listing.Labels{"pinned": "Pinned"}
	item := listing.Item{ID: 3}

	first := registry.CollectLabels(existing, item)
	second := registry.CollectLabels(existing, item)

	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %v then %v", first, second)
	}
	for key, label := range first {
		if second[key] != label {
			t.Fatalf("expected identical results, got %v then %v", first, second)
		}
	}
	if len(existing) != 1 {
		t.Fatalf("input label set mutated: %v", existing)
	}
}

func TestCollectLabelsOverwritesPriorLabel(t *testing.T) {
	registry := New()
	if err := registry.AddEntry("featured", "Featured (ours)", WithEntryResolver(staticResolver(8))); err != nil {
		t.Fatalf("add: %v", err)
	}

	labels := registry.CollectLabels(listing.Labels{"featured": "Featured (theirs)"}, listing.Item{ID: 8})
	if labels["featured"] != "Featured (ours)" {
		t.Fatalf("expected matcher to overwrite prior label, got %v", labels)
	}
}

func TestCollectLabelsNonInterference(t *testing.T) {
	registry := New()
	if err := registry.AddEntry("panics", "Panics", WithEntryResolver(func(string) (any, error) {
		panic("resolver exploded")
	})); err != nil {
		t.Fatalf("add panics: %v", err)
	}
	if err := registry.AddEntry("errors", "Errors", WithEntryResolver(func(string) (any, error) {
		return nil, errors.New("backend down")
	})); err != nil {
		t.Fatalf("add errors: %v", err)
	}
	if err := registry.AddEntry("garbage", "Garbage", WithEntryResolver(staticResolver("not-a-number"))); err != nil {
		t.Fatalf("add garbage: %v", err)
	}
	if err := registry.AddEntry("works", "Works", WithEntryResolver(staticResolver(11))); err != nil {
		t.Fatalf("add works: %v", err)
	}

	labels := registry.CollectLabels(nil, listing.Item{ID: 11})
	if labels["works"] != "Works" {
		t.Fatalf("well-behaved entry suppressed: %v", labels)
	}
	if len(labels) != 1 {
		t.Fatalf("misbehaving entries must degrade to no match, got %v", labels)
	}
}

func TestCollectLabelsZeroIdentifier(t *testing.T) {
	registry := New()
	if err := registry.AddEntry("missing", "Missing", WithEntryResolver(staticResolver(nil))); err != nil {
		t.Fatalf("add missing: %v", err)
	}
	if err := registry.AddEntry("zero", "Zero", WithEntryResolver(staticResolver(0))); err != nil {
		t.Fatalf("add zero: %v", err)
	}

	labels := registry.CollectLabels(nil, listing.Item{ID: 0})
	if _, ok := labels["missing"]; ok {
		t.Fatalf("missing value must not match item 0: %v", labels)
	}
	if labels["zero"] != "Zero" {
		t.Fatalf("explicit 0 value should match item 0: %v", labels)
	}
}

func TestCollectLabelsNoResolverConfigured(t *testing.T) {
	registry := New()
	if err := registry.AddEntry("orphan", "Orphan"); err != nil {
		t.Fatalf("add: %v", err)
	}

	labels := registry.CollectLabels(nil, listing.Item{ID: 1})
	if len(labels) != 0 {
		t.Fatalf("expected no matches without a resolver, got %v", labels)
	}
}

func TestMatchLogging(t *testing.T) {
	var events []MatchEvent
	registry := New(WithMatchLogger(MatchLoggerFunc(func(event MatchEvent) {
		events = append(events, event)
	})))
	if err := registry.AddEntry("hit", "Hit", WithEntryResolver(staticResolver(2))); err != nil {
		t.Fatalf("add hit: %v", err)
	}
	if err := registry.AddEntry("miss", "Miss", WithEntryResolver(func(string) (any, error) {
		return nil, errors.New("boom")
	})); err != nil {
		t.Fatalf("add miss: %v", err)
	}

	registry.CollectLabels(nil, listing.Item{ID: 2})

	if len(events) != 2 {
		t.Fatalf("expected one event per entry, got %d", len(events))
	}
	if !events[0].Matched || events[0].Key != "hit" || events[0].ItemID != 2 {
		t.Fatalf("unexpected hit event: %+v", events[0])
	}
	if events[1].Matched || events[1].Err == nil {
		t.Fatalf("unexpected miss event: %+v", events[1])
	}
	var resErr *ResolveError
	if !errors.As(events[1].Err, &resErr) || resErr.Key != "miss" {
		t.Fatalf("expected ResolveError with key metadata, got %v", events[1].Err)
	}
}

func TestPanickingLoggerDoesNotBreakPass(t *testing.T) {
	registry := New(WithMatchLogger(MatchLoggerFunc(func(MatchEvent) {
		panic("logger exploded")
	})))
	if err := registry.AddEntry("hit", "Hit", WithEntryResolver(staticResolver(6))); err != nil {
		t.Fatalf("add: %v", err)
	}

	labels := registry.CollectLabels(nil, listing.Item{ID: 6})
	if labels["hit"] != "Hit" {
		t.Fatalf("logger failure must not affect the result, got %v", labels)
	}
}

func TestAttachIsIdempotent(t *testing.T) {
	point := listing.NewExtensionPoint()
	registry := New()
	if err := registry.AddEntry("featured", "Featured", WithEntryResolver(staticResolver(4))); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := registry.Attach(point); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := registry.Attach(point); err != nil {
		t.Fatalf("re-attach: %v", err)
	}

	if point.Len() != 1 {
		t.Fatalf("expected a single subscription, got %d", point.Len())
	}
	labels := point.Collect(nil, listing.Item{ID: 4})
	if len(labels) != 1 || labels["featured"] != "Featured" {
		t.Fatalf("expected exactly one label, got %v", labels)
	}

	if err := registry.Attach(nil); CodeOf(err) != CodeInvalidResolver {
		t.Fatalf("expected error for nil point, got %v", err)
	}
}

// Package listing models the host-facing surface of an administrative item
// listing: the items being rendered, the label sets collected for each row,
// and the named extension point a host exposes so subscribers can contribute
// extra display labels during a rendering pass.
//
// The package owns no rendering logic. A host constructs an ExtensionPoint,
// attaches zero or more LabelFilter subscribers, and calls Collect once per
// row. Filters run in attach order, each receiving the labels accumulated so
// far, and the result is always a superset of the input set.
//
// Attach replaces any filter previously registered under the same name, so
// repeated subscription of the same component is idempotent and can never
// duplicate labels within a single pass.
package listing

// Package settings defines the storage-facing contract for the host's
// process-wide configuration store: flat string keys mapped to arbitrary
// stored values, each save stamped with storage-owned metadata.
//
// The package stays persistence-agnostic. Hosts supply a Store backed by
// whatever they persist configuration in; MemoryStore exists for tests,
// examples, and hosts that keep configuration in memory. ResolverFor bridges
// a Store into the "get stored value by key" function shape the poststates
// registry consumes as its default resolver.
package settings

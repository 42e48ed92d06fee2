// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, and utils can all import types without depending
// on each other.
package types

// Record is a single entry owned by the record store.
//
// The ID is assigned by the store on create and never changes afterwards.
// Records are plain values: whatever a store hands out is a copy, so
// callers cannot reach into the store's internal state through it.
type Record struct {
	ID   int64  `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Age  int    `json:"age"  yaml:"age"`
}

// NewRecord is the input needed to create a Record. The store assigns
// the ID, so there is no ID field here.
type NewRecord struct {
	Name string `json:"name" yaml:"name"`
	Age  int    `json:"age"  yaml:"age"`
}

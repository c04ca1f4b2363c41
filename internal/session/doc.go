// Package session is the unit-of-work boundary around tracked collections.
//
// A Session hands out recording lists for (mapping, owner) pairs. Flush
// fuses every dirty list into a plan, compiles it to SQL, and applies each
// collection's statements together with its journal row. Lists are rebased
// only after their flush commits, so a failed flush can be retried.
//
// Thread-safety: Track and Flush are safe to call from multiple goroutines.
// The returned lists are not; mutate each list from one goroutine.
package session

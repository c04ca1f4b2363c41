// Package ir provides the shared value and metadata types for listfuse.
//
// This package contains type definitions and encoding helpers only. All other
// internal packages import ir; ir imports nothing internal, which keeps it the
// foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Collection elements are IRValue (sealed), never arbitrary Go values
//   - NO float types anywhere - floats break canonical encoding, use int64
//   - Element equality is canonical-JSON equality (see Equal)
//   - Content-addressed IDs use RFC 8785 canonical JSON and SHA-256 with
//     domain separation (see hash.go)
package ir

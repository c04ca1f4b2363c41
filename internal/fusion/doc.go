// Package fusion compiles an edit log into the smallest set of physical
// row operations that reproduces the same final order.
//
// Fuse replays the log with sim, then walks the final run sequence once:
//
//   - surviving originals whose stored position is unchanged need nothing
//   - each maximal removed range of originals is one RemoveRange
//   - each maximal block of surviving originals that moved is one Renumber
//   - inside a gap, removed originals pair with inserted values as Replace
//     updates; whatever is left over becomes a RemoveRange or Inserts
//
// When the log knows its base values, a pass before the walk turns added
// values that equal the base value at their final position back into
// originals, so clearing a list and re-adding the same values costs
// nothing for the untouched positions.
//
// A Plan can be applied in memory with Apply, which is how the tests check
// that fusion never changes the result of direct replay.
package fusion

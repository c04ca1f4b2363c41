// Package edit records structural edits to an ordered collection.
//
// An Edit is one of Add, AddAll or Remove. Each edit's index is relative to
// the collection as it was when the edit happened, so a Log is only
// meaningful when read strictly in order. The Log tracks the live size as an
// integer and rejects indexes that are out of range at record time.
//
// A Log is consumed once by fusion. After Seal, further records fail with
// LOG_ALREADY_FUSED.
//
// RecordingList is a list wrapper that keeps its values and its Log in step
// and computes the append/trailing flags itself.
package edit

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/listfuse/internal/edit"
	"github.com/roach88/listfuse/internal/fusion"
	"github.com/roach88/listfuse/internal/ir"
	"github.com/roach88/listfuse/internal/sqlgen"
)

// Applier executes one collection's statements and journal row atomically.
// Implemented by *store.Store.
type Applier interface {
	Apply(ctx context.Context, stmts []sqlgen.Statement, rec *ir.FlushRecord) error
}

var errNothingWritten = errors.New("nothing written")

// Session tracks positional collections for one unit of work.
type Session struct {
	mu       sync.Mutex
	id       string
	applier  Applier
	clock    Clock
	logger   *slog.Logger
	reg      prometheus.Registerer
	metrics  *metrics
	strategy fusion.Strategy
	fuseOpts []fusion.Option
	idGen    IDGenerator
	logOpts  []edit.LogOption

	// Tracked lists in Track order. Flush visits them in this order.
	tracked []*trackedList
	byKey   map[string]*trackedList
}

type trackedList struct {
	mapping  ir.CollectionMapping
	owner    ir.IRValue
	ownerKey string // Canonical JSON of owner
	list     *edit.RecordingList
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger. Default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithRegisterer registers flush metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *Session) {
		s.reg = reg
	}
}

// WithClock sets the clock stamping journal rows.
func WithClock(c Clock) Option {
	return func(s *Session) {
		s.clock = c
	}
}

// WithIDGenerator sets the session id source. Default is UUIDv7.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Session) {
		s.idGen = g
	}
}

// WithStrategy sets the fusion strategy. Default is fusion.StrategyAuto.
func WithStrategy(st fusion.Strategy) Option {
	return func(s *Session) {
		s.strategy = st
	}
}

// WithFuseOptions passes extra options to every fusion.Fuse call.
func WithFuseOptions(opts ...fusion.Option) Option {
	return func(s *Session) {
		s.fuseOpts = append(s.fuseOpts, opts...)
	}
}

// WithLogOptions configures the logs of tracked lists.
func WithLogOptions(opts ...edit.LogOption) Option {
	return func(s *Session) {
		s.logOpts = append(s.logOpts, opts...)
	}
}

// New creates a session writing through applier.
func New(applier Applier, opts ...Option) *Session {
	s := &Session{
		applier:  applier,
		clock:    NewLogicalClock(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		strategy: fusion.StrategyAuto,
		idGen:    UUIDv7Generator{},
		byKey:    make(map[string]*trackedList),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.id = s.idGen.Generate()
	s.metrics = newMetrics(s.reg)
	return s
}

// ID returns the session id written to every journal row.
func (s *Session) ID() string {
	return s.id
}

// Track returns the recording list for owner's collection under mapping.
// base is the collection as currently stored. Tracking the same pair twice
// returns the existing list and ignores base.
func (s *Session) Track(mapping ir.CollectionMapping, owner ir.IRValue, base []ir.IRValue) (*edit.RecordingList, error) {
	ownerKey, err := ir.MarshalCanonical(owner)
	if err != nil {
		return nil, fmt.Errorf("track %s: owner: %w", mapping.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := mapping.Name + "\x00" + string(ownerKey)
	if t, ok := s.byKey[key]; ok {
		return t.list, nil
	}

	t := &trackedList{
		mapping:  mapping,
		owner:    owner,
		ownerKey: string(ownerKey),
		list:     edit.NewRecordingList(base, s.logOpts...),
	}
	s.tracked = append(s.tracked, t)
	s.byKey[key] = t

	s.logger.Debug("collection tracked",
		"session", s.id,
		"collection", mapping.Name,
		"owner", t.ownerKey,
		"size", len(base))
	return t.list, nil
}

// Pending returns how many tracked lists have unflushed edits.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, t := range s.tracked {
		if t.list.Dirty() {
			n++
		}
	}
	return n
}

// Flush writes every dirty list in Track order and returns the journal
// rows written. Lists with no edits write nothing.
//
// Each collection commits on its own. On the first failure Flush stops;
// lists already written are rebased, the failing list and any after it
// keep their edits for a later Flush.
func (s *Session) Flush(ctx context.Context) ([]ir.FlushRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []ir.FlushRecord
	for _, t := range s.tracked {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if !t.list.Dirty() {
			continue
		}

		rec, err := s.flushOne(ctx, t)
		if errors.Is(err, errNothingWritten) {
			continue
		}
		if err != nil {
			s.logger.Error("flush failed",
				"session", s.id,
				"collection", t.mapping.Name,
				"owner", t.ownerKey,
				"error", err)
			return records, fmt.Errorf("flush %s %s: %w", t.mapping.Name, t.ownerKey, err)
		}
		records = append(records, rec)
	}

	if len(records) > 0 {
		s.logger.Info("session flushed",
			"session", s.id,
			"collections", len(records))
	}
	return records, nil
}

func (s *Session) flushOne(ctx context.Context, t *trackedList) (ir.FlushRecord, error) {
	opts := append([]fusion.Option{fusion.WithStrategy(s.strategy)}, s.fuseOpts...)
	plan, err := fusion.Fuse(t.list.Log().Clone(), opts...)
	if err != nil {
		return ir.FlushRecord{}, err
	}

	if plan.Empty() {
		// Edits cancelled out; nothing to write.
		t.list.Rebase()
		s.logger.Debug("collection unchanged",
			"session", s.id,
			"collection", t.mapping.Name,
			"owner", t.ownerKey)
		return ir.FlushRecord{}, errNothingWritten
	}

	stmts, err := sqlgen.Compile(plan, t.mapping, t.owner)
	if err != nil {
		return ir.FlushRecord{}, err
	}

	doc, err := ir.MarshalCanonical(plan.Document())
	if err != nil {
		return ir.FlushRecord{}, fmt.Errorf("plan document: %w", err)
	}
	planID, err := plan.ID()
	if err != nil {
		return ir.FlushRecord{}, fmt.Errorf("plan id: %w", err)
	}

	rec := ir.FlushRecord{
		SessionID:   s.id,
		Seq:         s.clock.Next(),
		Collection:  t.mapping.Name,
		Owner:       t.ownerKey,
		PlanID:      planID,
		Strategy:    string(plan.Strategy()),
		RemoveCount: plan.RemoveCount(),
		AddCount:    plan.AddCount(),
		UpdateCount: plan.UpdateCount(),
		Statements:  len(stmts),
		Plan:        string(doc),
	}

	if err := s.applier.Apply(ctx, stmts, &rec); err != nil {
		return ir.FlushRecord{}, err
	}

	t.list.Rebase()
	s.metrics.observe(plan)

	s.logger.Info("collection flushed",
		"session", s.id,
		"seq", rec.Seq,
		"collection", rec.Collection,
		"table", t.mapping.Table,
		"owner", rec.Owner,
		"strategy", rec.Strategy,
		"remove", rec.RemoveCount,
		"add", rec.AddCount,
		"update", rec.UpdateCount,
		"statements", rec.Statements)
	return rec, nil
}

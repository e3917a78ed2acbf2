// CLAUDE:SUMMARY Per-document recorder: event loop, debounce timers, local buffer, batching, and the content side of the stop barrier.
// Package content implements the per-document interaction recorder. One
// Recorder exists per recorded top-level document; raw DOM events captured
// in the page arrive through HandleBinding, are normalized into flow.Steps
// (debounced fills, coalesced scrolls, disambiguated clicks, key combos),
// buffered locally, and shipped to the session coordinator in batches.
//
// All mutable state is owned by a single goroutine (the loop); control
// methods communicate with it exclusively through channels, so handlers
// never race and no event can observe a half-applied transition.
package content

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/hazyhaar/recflow/flow"
	"github.com/hazyhaar/recflow/idgen"
)

// Client is the content recorder's view of the session coordinator. Sends
// resolve true on acknowledged receipt and false on any transport error;
// they never panic or block beyond the passed context.
type Client interface {
	SendSteps(ctx context.Context, tabID string, steps []flow.Step) bool
	SendVariables(ctx context.Context, tabID string, vars []flow.VariableDef) bool
}

// Windows holds the debounce/batch durations. Zero values take the
// defaults from const.go; tests shrink them.
type Windows struct {
	Fill   time.Duration
	Scroll time.Duration
	Click  time.Duration
	Batch  time.Duration
}

func (w *Windows) defaults() {
	if w.Fill <= 0 {
		w.Fill = DefaultFillDebounce
	}
	if w.Scroll <= 0 {
		w.Scroll = DefaultScrollDebounce
	}
	if w.Click <= 0 {
		w.Click = DefaultClickThreshold
	}
	if w.Batch <= 0 {
		w.Batch = DefaultBatchInterval
	}
}

// Config for creating a Recorder.
type Config struct {
	TabID     string
	Client    Client
	Logger    *slog.Logger
	Windows   Windows
	RedactAll bool // treat every fill as sensitive

	// OnStatus and OnTimeline drive the in-page overlay. Both are optional
	// and called from the loop goroutine; implementations must not call
	// back into the Recorder.
	OnStatus   func(status Status)
	OnTimeline func(steps []flow.Step)
}

// Recorder is the per-document interaction recorder.
type Recorder struct {
	tabID     string
	client    Client
	logger    *slog.Logger
	windows   Windows
	redactAll bool

	onStatus   func(Status)
	onTimeline func([]flow.Step)

	ctx    context.Context
	cancel context.CancelFunc
	rawCh  chan RawEvent
	ctrlCh chan command

	// Loop-owned state.
	status  Status
	buffer  []flow.Step // sessionBuffer: everything emitted this session
	batch   []flow.Step // steps owed to the coordinator
	vars    []flow.VariableDef
	varSeq  int
	stepID  idgen.Generator
	pending pendingState

	fillFuse   fuse
	scrollFuse fuse
	clickFuse  fuse
	batchFuse  fuse
}

// pendingState tracks debounced work not yet final.
type pendingState struct {
	fill   *pendingFill
	click  *flow.Step
	scroll *pendingScroll
}

// New creates a Recorder. Call Run to start its loop.
func New(cfg Config) *Recorder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Windows.defaults()

	ctx, cancel := context.WithCancel(context.Background())
	return &Recorder{
		tabID:      cfg.TabID,
		client:     cfg.Client,
		logger:     cfg.Logger,
		windows:    cfg.Windows,
		redactAll:  cfg.RedactAll,
		onStatus:   cfg.OnStatus,
		onTimeline: cfg.OnTimeline,
		ctx:        ctx,
		cancel:     cancel,
		rawCh:      make(chan RawEvent, 1024),
		ctrlCh:     make(chan command),
		status:     StatusIdle,
		stepID:     idgen.Prefixed("step_", idgen.NanoID(12)),
	}
}

// Run starts the recorder loop on its own goroutine and returns at once.
// The loop exits when Close is called.
func (r *Recorder) Run() {
	go r.loop()
}

// Close tears the loop down without a barrier. Use Stop for graceful
// session termination.
func (r *Recorder) Close() {
	r.cancel()
}

// HandleBinding receives one raw payload from the capture script's
// Runtime binding. Malformed or unauthenticated payloads are dropped;
// nothing here ever propagates an error into the page.
func (r *Recorder) HandleBinding(payload string) {
	ev, ok := DecodeBinding([]byte(payload), r.logger)
	if !ok {
		return
	}
	select {
	case r.rawCh <- ev:
	case <-r.ctx.Done():
	default:
		r.logger.Warn("content: raw event channel full, dropping", "kind", ev.Kind)
	}
}

func (r *Recorder) loop() {
	for {
		select {
		case <-r.ctx.Done():
			return

		case ev := <-r.rawCh:
			r.handleRaw(ev)

		case cmd := <-r.ctrlCh:
			r.handleCommand(cmd)

		case <-r.clickFuse.c():
			r.clickFuse.disarm()
			r.flushPendingClick()

		case <-r.fillFuse.c():
			r.fillFuse.disarm()
			r.settlePendingFill()

		case <-r.scrollFuse.c():
			r.scrollFuse.disarm()
			r.flushPendingScroll()

		case <-r.batchFuse.c():
			r.batchFuse.disarm()
			r.flushBatch()
		}
	}
}

// emit assigns an id, appends to the session buffer, and enqueues the
// step for the next batch flush. Returns the step id.
func (r *Recorder) emit(s flow.Step) string {
	if s.ID == "" {
		s.ID = r.stepID()
	}
	r.buffer = append(r.buffer, s)
	r.enqueue(s)
	return s.ID
}

// update replaces the step with the same id in the session buffer and
// re-enqueues it with upsert semantics, so the coordinator always ends up
// with the final value even when the original batch already flushed.
func (r *Recorder) update(s flow.Step) {
	for i := len(r.buffer) - 1; i >= 0; i-- {
		if r.buffer[i].ID == s.ID {
			r.buffer[i] = s
			break
		}
	}
	r.enqueue(s)
}

// enqueue adds a step to the outbound batch, replacing an unflushed entry
// with the same id.
func (r *Recorder) enqueue(s flow.Step) {
	for i := range r.batch {
		if r.batch[i].ID == s.ID {
			r.batch[i] = s
			r.batchFuse.arm(r.windows.Batch)
			return
		}
	}
	r.batch = append(r.batch, s)
	r.batchFuse.arm(r.windows.Batch)
}

// flushBatch ships the outbound batch. Returns false on transport failure;
// the batch is cleared either way, matching the per-send boolean contract.
func (r *Recorder) flushBatch() bool {
	if len(r.batch) == 0 {
		return true
	}
	steps := r.batch
	r.batch = nil

	if r.client == nil {
		return false
	}
	ok := r.client.SendSteps(r.ctx, r.tabID, steps)
	if !ok {
		r.logger.Warn("content: step batch send failed", "tab", r.tabID, "steps", len(steps))
	}
	return ok
}

// sendVariables ships the accumulated variable definitions.
func (r *Recorder) sendVariables() bool {
	if len(r.vars) == 0 {
		return true
	}
	if r.client == nil {
		return false
	}
	ok := r.client.SendVariables(r.ctx, r.tabID, r.vars)
	if !ok {
		r.logger.Warn("content: variables send failed", "tab", r.tabID, "count", len(r.vars))
	}
	return ok
}

// addVariable records a variable definition, overwriting a previous
// definition with the same key.
func (r *Recorder) addVariable(v flow.VariableDef) {
	for i := range r.vars {
		if r.vars[i].Key == v.Key {
			r.vars[i] = v
			return
		}
	}
	r.vars = append(r.vars, v)
}

// nextVarKey derives a variable key from the element's name, then id,
// then a per-session counter.
func (r *Recorder) nextVarKey(name, id string) string {
	if name != "" {
		return name
	}
	if id != "" {
		return id
	}
	r.varSeq++
	return "var_" + strconv.Itoa(r.varSeq)
}

// Snapshot returns a copy of the session buffer. Test/introspection hook;
// callable only while the loop is not running or via the owner goroutine.
func (r *Recorder) Snapshot() []flow.Step {
	out := make([]flow.Step, len(r.buffer))
	copy(out, r.buffer)
	return out
}

// CLAUDE:SUMMARY SessionCoordinator: authoritative Flow, session status machine, per-tab tracking, timeline broadcast, stop barrier.
// Package session implements the recording coordinator. It owns the
// authoritative Flow exclusively: content recorders never mutate it, they
// ship batches which the coordinator upserts. The coordinator also runs
// the out-of-page half of the stop barrier and keeps every participating
// tab's overlay timeline consistent.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hazyhaar/recflow/flow"
	"github.com/hazyhaar/recflow/idgen"
	"github.com/hazyhaar/recflow/recorder/internal/content"
)

// Status is the session-level recording state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusPaused    Status = "paused"
	StatusStopping  Status = "stopping"
)

// Default barrier and enrichment timings.
const (
	DefaultAckTimeout     = 3 * time.Second
	DefaultGracePeriod    = 100 * time.Millisecond
	DefaultEnrichWindow   = 5 * time.Second
	DefaultEnrichDebounce = 500 * time.Millisecond
)

// Tab is the coordinator's handle to one participating tab's content
// recorder.
type Tab interface {
	Start(ctx context.Context, meta content.StartMeta) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stop(ctx context.Context, sessionID string, requireAck bool) (content.StopResult, error)
	TimelineUpdate(ctx context.Context, steps []flow.Step) error
	URL() string
}

// Store persists finished (and in-progress) flows.
type Store interface {
	Save(ctx context.Context, f *flow.Flow) error
}

// StartOptions is the recording metadata accepted by Start.
type StartOptions struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// StopStats reports the outcome of a stop barrier.
type StopStats struct {
	Ack       bool `json:"ack"`
	Tabs      int  `json:"tabs"`
	Steps     int  `json:"steps"`
	Variables int  `json:"variables"`
}

// Config for creating a Coordinator.
type Config struct {
	Store  Store
	Logger *slog.Logger

	AckTimeout     time.Duration
	GracePeriod    time.Duration
	EnrichWindow   time.Duration
	EnrichDebounce time.Duration
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.AckTimeout <= 0 {
		c.AckTimeout = DefaultAckTimeout
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = DefaultGracePeriod
	}
	if c.EnrichWindow <= 0 {
		c.EnrichWindow = DefaultEnrichWindow
	}
	if c.EnrichDebounce <= 0 {
		c.EnrichDebounce = DefaultEnrichDebounce
	}
}

// Coordinator owns one recording session at a time.
type Coordinator struct {
	cfg    Config
	store  Store
	logger *slog.Logger

	mu          sync.Mutex
	sessionSeq  int64
	sessionID   string
	status      Status
	originTabID string
	flow        *flow.Flow
	activeTabs  map[string]Tab
	stoppedTabs map[string]bool

	mintStep idgen.Generator
	flowID   idgen.Generator

	lastClick clickMark
}

// clickMark remembers the most recent click/dblclick for the
// waitForNavigation enrichment.
type clickMark struct {
	stepID     string
	at         time.Time
	enrichedAt time.Time
}

// New creates a Coordinator.
func New(cfg Config) *Coordinator {
	cfg.defaults()
	return &Coordinator{
		cfg:         cfg,
		store:       cfg.Store,
		logger:      cfg.Logger,
		status:      StatusIdle,
		activeTabs:  make(map[string]Tab),
		stoppedTabs: make(map[string]bool),
		mintStep:    idgen.TimeRandom("step_"),
		flowID:      idgen.UUIDv7(),
	}
}

// Status returns the current session status.
func (c *Coordinator) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// SessionID returns the current session id, or "" when idle.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Flow returns a serialized copy of the authoritative flow, or nil.
func (c *Coordinator) Flow() *flow.Flow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyFlowLocked()
}

func (c *Coordinator) copyFlowLocked() *flow.Flow {
	if c.flow == nil {
		return nil
	}
	data, err := flow.Marshal(c.flow)
	if err != nil {
		return nil
	}
	cp, err := flow.Unmarshal(data)
	if err != nil {
		return nil
	}
	return cp
}

// canAcceptSteps reports whether content messages are admissible: during
// recording, and during stopping so final barrier batches still land.
func (c *Coordinator) canAcceptSteps() bool {
	return c.status == StatusRecording || c.status == StatusStopping
}

// Start begins a new session recorded from the origin tab. The tab's
// content recorder must already be injected; Start sends it the start
// command and seeds the flow with an initial navigate step when the tab's
// URL is known.
func (c *Coordinator) Start(ctx context.Context, opts StartOptions, originTabID string, origin Tab) (string, error) {
	c.mu.Lock()
	if c.status != StatusIdle {
		c.mu.Unlock()
		return "", errors.New("session: recording already active")
	}
	if origin == nil {
		c.mu.Unlock()
		return "", errors.New("session: no active tab")
	}

	c.sessionSeq++
	c.sessionID = fmt.Sprintf("sess_%d", c.sessionSeq)

	id := opts.ID
	if id == "" {
		id = c.flowID()
	}
	name := opts.Name
	if name == "" {
		name = "Recording " + time.Now().Format("2006-01-02 15:04:05")
	}

	c.flow = flow.New(id, name, opts.Description)
	c.status = StatusRecording
	c.originTabID = originTabID
	c.activeTabs = map[string]Tab{originTabID: origin}
	c.stoppedTabs = make(map[string]bool)
	c.lastClick = clickMark{}
	sid := c.sessionID
	c.mu.Unlock()

	meta := content.StartMeta{
		ID:          id,
		Name:        name,
		Description: opts.Description,
		SessionID:   sid,
	}
	if err := origin.Start(ctx, meta); err != nil {
		c.logger.Error("session: start command failed", "tab", originTabID, "error", err)
	}

	if url := origin.URL(); url != "" {
		c.AppendSteps(originTabID, []flow.Step{{Type: flow.StepNavigate, URL: url}})
		c.persist(ctx)
	}

	c.logger.Info("session: recording started",
		"session", sid, "flow", id, "tab", originTabID)
	return sid, nil
}

// AddTab joins a tab to the running session (e.g. a window opened by a
// recorded click). No-op unless recording.
func (c *Coordinator) AddTab(ctx context.Context, tabID string, tab Tab) error {
	c.mu.Lock()
	if c.status != StatusRecording {
		c.mu.Unlock()
		return errors.New("session: not recording")
	}
	c.activeTabs[tabID] = tab
	sid := c.sessionID
	var fid, fname, fdesc string
	if c.flow != nil {
		fid, fname, fdesc = c.flow.ID, c.flow.Name, c.flow.Description
	}
	c.mu.Unlock()

	err := tab.Start(ctx, content.StartMeta{ID: fid, Name: fname, Description: fdesc, SessionID: sid})
	if err != nil {
		c.logger.Warn("session: start on joined tab failed", "tab", tabID, "error", err)
	}
	c.logger.Info("session: tab joined", "session", sid, "tab", tabID)
	return nil
}

// RemoveTab drops a closed tab from the session.
func (c *Coordinator) RemoveTab(tabID string) {
	c.mu.Lock()
	delete(c.activeTabs, tabID)
	c.mu.Unlock()
}

// Pause flushes every tab's pending work and suspends intake.
func (c *Coordinator) Pause(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusRecording {
		c.mu.Unlock()
		return errors.New("session: not recording")
	}
	c.status = StatusPaused
	tabs := c.tabsLocked()
	c.mu.Unlock()

	for id, t := range tabs {
		if err := t.Pause(ctx); err != nil {
			c.logger.Warn("session: pause failed", "tab", id, "error", err)
		}
	}
	return nil
}

// Resume re-enables intake after a pause.
func (c *Coordinator) Resume(ctx context.Context) error {
	c.mu.Lock()
	if c.status != StatusPaused {
		c.mu.Unlock()
		return errors.New("session: not paused")
	}
	c.status = StatusRecording
	tabs := c.tabsLocked()
	c.mu.Unlock()

	for id, t := range tabs {
		if err := t.Resume(ctx); err != nil {
			c.logger.Warn("session: resume failed", "tab", id, "error", err)
		}
	}
	return nil
}

func (c *Coordinator) tabsLocked() map[string]Tab {
	out := make(map[string]Tab, len(c.activeTabs))
	for k, v := range c.activeTabs {
		out[k] = v
	}
	return out
}

// AppendSteps upserts a content batch into the authoritative flow and
// broadcasts the updated timeline. Implements the content.Client send
// contract: the boolean is the acknowledgment.
func (c *Coordinator) AppendSteps(tabID string, steps []flow.Step) bool {
	c.mu.Lock()
	if !c.canAcceptSteps() || c.flow == nil {
		c.mu.Unlock()
		c.logger.Debug("session: step batch rejected", "tab", tabID, "status", c.status)
		return false
	}

	c.flow.UpsertSteps(steps, c.mintStep)

	// Track the newest click for the navigation enrichment.
	for i := len(c.flow.Steps) - 1; i >= 0; i-- {
		s := c.flow.Steps[i]
		if s.Type == flow.StepClick || s.Type == flow.StepDblClick {
			if s.ID != c.lastClick.stepID {
				c.lastClick = clickMark{stepID: s.ID, at: time.Now()}
			}
			break
		}
	}

	timeline := append([]flow.Step(nil), c.flow.Steps...)
	tabs := c.tabsLocked()
	c.mu.Unlock()

	c.broadcast(tabs, timeline)
	return true
}

// SendSteps adapts AppendSteps to the content.Client interface.
func (c *Coordinator) SendSteps(_ context.Context, tabID string, steps []flow.Step) bool {
	return c.AppendSteps(tabID, steps)
}

// AppendVariables merges variable definitions into the flow.
func (c *Coordinator) AppendVariables(tabID string, vars []flow.VariableDef) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canAcceptSteps() || c.flow == nil {
		c.logger.Debug("session: variables rejected", "tab", tabID, "status", c.status)
		return false
	}
	c.flow.UpsertVariables(vars)
	return true
}

// SendVariables adapts AppendVariables to the content.Client interface.
func (c *Coordinator) SendVariables(_ context.Context, tabID string, vars []flow.VariableDef) bool {
	return c.AppendVariables(tabID, vars)
}

// broadcast pushes the full timeline to every participating tab. It runs
// asynchronously: a tab busy inside its own flush must not deadlock
// against the coordinator.
func (c *Coordinator) broadcast(tabs map[string]Tab, steps []flow.Step) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for id, t := range tabs {
			if err := t.TimelineUpdate(ctx, steps); err != nil {
				c.logger.Debug("session: timeline update failed", "tab", id, "error", err)
			}
		}
	}()
}

// Stop runs the stop barrier: flip to stopping, order every tab to drain
// with a per-tab ack timeout, wait the grace period for in-flight final
// batches, then capture, reset, and persist. The flow is saved even when
// a tab failed to acknowledge.
func (c *Coordinator) Stop(ctx context.Context) (*flow.Flow, StopStats, error) {
	sid, tabs, err := c.beginStopping()
	if err != nil {
		return nil, StopStats{}, err
	}

	ackAll := true
	var wg sync.WaitGroup
	results := make([]bool, len(tabs))
	ids := make([]string, 0, len(tabs))
	for id := range tabs {
		ids = append(ids, id)
	}

	for i, id := range ids {
		wg.Add(1)
		go func(i int, id string, t Tab) {
			defer wg.Done()
			tctx, cancel := context.WithTimeout(ctx, c.cfg.AckTimeout)
			defer cancel()
			res, err := t.Stop(tctx, sid, true)
			if err != nil {
				c.logger.Warn("session: tab stop failed", "tab", id, "error", err)
				results[i] = false
				return
			}
			results[i] = res.Ack
		}(i, id, tabs[id])
	}
	wg.Wait()

	for i, id := range ids {
		c.mu.Lock()
		c.stoppedTabs[id] = true
		c.mu.Unlock()
		ackAll = ackAll && results[i]
	}

	// Grace period: final batches from slow tabs may still arrive and are
	// accepted because stopping admits steps.
	time.Sleep(c.cfg.GracePeriod)

	f := c.stopSession()

	if c.store != nil && f != nil {
		if err := c.store.Save(ctx, f); err != nil {
			c.logger.Error("session: save flow failed", "flow", f.ID, "error", err)
		}
	}

	stats := StopStats{Ack: ackAll, Tabs: len(ids)}
	if f != nil {
		stats.Steps = len(f.Steps)
		stats.Variables = len(f.Variables)
	}
	c.logger.Info("session: recording stopped",
		"session", sid, "ack", ackAll, "steps", stats.Steps)
	return f, stats, nil
}

// beginStopping flips the session to stopping and snapshots the tab set.
func (c *Coordinator) beginStopping() (string, map[string]Tab, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case StatusIdle:
		return "", nil, errors.New("session: no active recording")
	case StatusStopping:
		return "", nil, errors.New("session: stop already in progress")
	}

	c.status = StatusStopping
	c.stoppedTabs = make(map[string]bool)
	return c.sessionID, c.tabsLocked(), nil
}

// stopSession captures the flow and resets all session state.
func (c *Coordinator) stopSession() *flow.Flow {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.flow
	c.flow = nil
	c.status = StatusIdle
	c.sessionID = ""
	c.originTabID = ""
	c.activeTabs = make(map[string]Tab)
	c.stoppedTabs = make(map[string]bool)
	c.lastClick = clickMark{}
	return f
}

// persist saves the current flow snapshot without ending the session.
func (c *Coordinator) persist(ctx context.Context) {
	c.mu.Lock()
	f := c.copyFlowLocked()
	c.mu.Unlock()
	if f == nil || c.store == nil {
		return
	}
	if err := c.store.Save(ctx, f); err != nil {
		c.logger.Warn("session: interim save failed", "flow", f.ID, "error", err)
	}
}

// CLAUDE:SUMMARY Top-level orchestrator: browser lifecycle, per-tab recorder attachment, capture injection, session control.
// Package recorder records user interactions in a live Chrome into
// replayable Flows. It orchestrates three parts: the browser manager, one
// content recorder per participating tab (fed by an injected capture
// script over a Runtime binding), and the session coordinator that owns
// the authoritative Flow.
//
// recorder observes, it does not replay. Finished Flows are handed to the
// flow store; execution is a consumer's concern.
package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/recflow/flow"
	"github.com/hazyhaar/recflow/recorder/internal/browser"
	"github.com/hazyhaar/recflow/recorder/internal/config"
	"github.com/hazyhaar/recflow/recorder/internal/content"
	"github.com/hazyhaar/recflow/recorder/internal/session"
)

// Store persists finished flows. *flowstore.Store satisfies it.
type Store = session.Store

// StartOptions is the public start metadata.
type StartOptions struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"` // open a fresh tab here; empty = record the active tab
}

// StatusInfo is the public session status view.
type StatusInfo struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id,omitempty"`
	Steps     int    `json:"steps"`
	Tabs      int    `json:"tabs"`
}

// Recorder is the top-level orchestrator. Create one per recflow instance.
type Recorder struct {
	cfg    *config.Config
	logger *slog.Logger
	mgr    *browser.Manager
	coord  *session.Coordinator

	mu     sync.Mutex
	tabs   map[proto.TargetTargetID]*tabRecorder
	tabSeq int
}

// tabRecorder binds one browser tab to its content recorder.
type tabRecorder struct {
	tabID  string
	tab    *browser.Tab
	rec    *content.Recorder
	cancel context.CancelFunc
}

// New creates a Recorder from configuration.
func New(cfg *config.Config, logger *slog.Logger, store Store) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ApplyDefaults()

	mgr := browser.NewManager(browser.Config{
		RemoteURL: cfg.Browser.Remote,
		Headless:  cfg.Browser.Headless,
		Stealth:   cfg.Browser.Stealth,
		Logger:    logger,
	})

	coord := session.New(session.Config{
		Store:       store,
		Logger:      logger,
		AckTimeout:  cfg.Recording.AckTimeout,
		GracePeriod: cfg.Recording.GracePeriod,
	})

	return &Recorder{
		cfg:    cfg,
		logger: logger,
		mgr:    mgr,
		coord:  coord,
		tabs:   make(map[proto.TargetTargetID]*tabRecorder),
	}
}

// Start launches (or connects to) the browser and begins watching targets
// so tabs opened during a recording join the session.
func (r *Recorder) Start(ctx context.Context) error {
	b, err := r.mgr.Start(ctx)
	if err != nil {
		return fmt.Errorf("recorder: start browser: %w", err)
	}

	go b.Context(ctx).EachEvent(
		func(e *proto.TargetTargetCreated) {
			if e.TargetInfo.Type != "page" {
				return
			}
			r.onTargetCreated(ctx, e.TargetInfo.TargetID)
		},
		func(e *proto.TargetTargetInfoChanged) {
			r.onTargetChanged(e.TargetInfo.TargetID)
		},
		func(e *proto.TargetTargetDestroyed) {
			r.onTargetDestroyed(e.TargetID)
		},
	)()

	return nil
}

// Stop shuts down: an in-flight session is barrier-stopped first.
func (r *Recorder) Stop(ctx context.Context) {
	if r.coord.Status() != session.StatusIdle {
		if _, _, err := r.coord.Stop(ctx); err != nil {
			r.logger.Warn("recorder: stop session during shutdown", "error", err)
		}
	}
	r.detachAll()
	r.mgr.Close()
}

// StartSession begins a recording session. With opts.URL a fresh tab is
// opened there; otherwise the browser's active tab is recorded.
func (r *Recorder) StartSession(ctx context.Context, opts StartOptions) (string, error) {
	if r.coord.Status() != session.StatusIdle {
		return "", fmt.Errorf("recorder: recording already active")
	}

	var tab *browser.Tab
	var err error
	if opts.URL != "" {
		tab, err = browser.OpenTab(ctx, r.mgr, opts.URL, r.nextTabID())
		if err != nil {
			return "", err
		}
	} else {
		tab, err = r.activeTab()
		if err != nil {
			return "", err
		}
	}

	tr, err := r.attach(ctx, tab)
	if err != nil {
		return "", err
	}

	sid, err := r.coord.Start(ctx, session.StartOptions{
		ID:          opts.ID,
		Name:        opts.Name,
		Description: opts.Description,
	}, tr.tabID, &sessionTab{tr: tr})
	if err != nil {
		r.detach(tab.Page.TargetID)
		return "", err
	}
	return sid, nil
}

// StopSession runs the stop barrier and returns the finished flow.
func (r *Recorder) StopSession(ctx context.Context) (*flow.Flow, session.StopStats, error) {
	f, stats, err := r.coord.Stop(ctx)
	r.detachAll()
	return f, stats, err
}

// PauseSession suspends intake; pending buffers are flushed first.
func (r *Recorder) PauseSession(ctx context.Context) error {
	return r.coord.Pause(ctx)
}

// ResumeSession re-enables intake.
func (r *Recorder) ResumeSession(ctx context.Context) error {
	return r.coord.Resume(ctx)
}

// Status reports the current session.
func (r *Recorder) Status() StatusInfo {
	info := StatusInfo{
		Status:    string(r.coord.Status()),
		SessionID: r.coord.SessionID(),
	}
	if f := r.coord.Flow(); f != nil {
		info.Steps = len(f.Steps)
	}
	r.mu.Lock()
	info.Tabs = len(r.tabs)
	r.mu.Unlock()
	return info
}

func (r *Recorder) nextTabID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tabSeq++
	return fmt.Sprintf("tab_%d", r.tabSeq)
}

// activeTab wraps the browser's first page as the recording origin.
func (r *Recorder) activeTab() (*browser.Tab, error) {
	b := r.mgr.Browser()
	if b == nil {
		return nil, fmt.Errorf("recorder: browser not started")
	}
	pages, err := b.Pages()
	if err != nil || len(pages) == 0 {
		return nil, fmt.Errorf("recorder: no active tab")
	}
	return &browser.Tab{Page: pages.First(), TabID: r.nextTabID()}, nil
}

// attach arms a tab for recording: content recorder, Runtime binding,
// capture script now and on every future document of the tab.
func (r *Recorder) attach(ctx context.Context, tab *browser.Tab) (*tabRecorder, error) {
	if tab.TabID == "" {
		tab.TabID = r.nextTabID()
	}

	tabCtx, cancel := context.WithCancel(ctx)

	rec := content.New(content.Config{
		TabID:     tab.TabID,
		Client:    r.coord,
		Logger:    r.logger,
		RedactAll: r.cfg.Recording.RedactAll,
		Windows: content.Windows{
			Fill:   r.cfg.Recording.FillDebounce,
			Scroll: r.cfg.Recording.ScrollDebounce,
			Click:  r.cfg.Recording.ClickThreshold,
			Batch:  r.cfg.Recording.BatchInterval,
		},
		OnStatus:   r.overlayStatusFn(tabCtx, tab),
		OnTimeline: r.overlayTimelineFn(tabCtx, tab),
	})
	rec.Run()

	if err := (proto.RuntimeAddBinding{Name: content.BindingName}).Call(tab.Page); err != nil {
		r.logger.Warn("recorder: add binding failed (may already exist)",
			"tab", tab.TabID, "error", err)
	}

	// Re-arm the capture layer on every navigation, then arm the current
	// document. Installation is idempotent in the script itself.
	tab.Page.EvalOnNewDocument(content.CaptureScript())
	if err := tab.Eval(tabCtx, content.CaptureScript()); err != nil {
		r.logger.Warn("recorder: capture injection failed", "tab", tab.TabID, "error", err)
	}

	go tab.Page.Context(tabCtx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != content.BindingName {
			return
		}
		rec.HandleBinding(e.Payload)
	})()

	tr := &tabRecorder{tabID: tab.TabID, tab: tab, rec: rec, cancel: cancel}
	r.mu.Lock()
	r.tabs[tab.Page.TargetID] = tr
	r.mu.Unlock()

	r.logger.Info("recorder: tab armed", "tab", tab.TabID, "url", tab.URL())
	return tr, nil
}

func (r *Recorder) detach(targetID proto.TargetTargetID) {
	r.mu.Lock()
	tr, ok := r.tabs[targetID]
	if ok {
		delete(r.tabs, targetID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancelEval := context.WithTimeout(context.Background(), 2*time.Second)
	tr.tab.Eval(ctx, "window.__recflow_teardown && window.__recflow_teardown()")
	cancelEval()

	tr.rec.Close()
	tr.cancel()
}

func (r *Recorder) detachAll() {
	r.mu.Lock()
	ids := make([]proto.TargetTargetID, 0, len(r.tabs))
	for id := range r.tabs {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.detach(id)
	}
}

// onTargetCreated joins pages opened during a recording to the session.
func (r *Recorder) onTargetCreated(ctx context.Context, targetID proto.TargetTargetID) {
	if r.coord.Status() != session.StatusRecording {
		return
	}
	r.mu.Lock()
	_, known := r.tabs[targetID]
	r.mu.Unlock()
	if known {
		return
	}

	tab, err := browser.AdoptTarget(r.mgr, targetID, r.nextTabID())
	if err != nil {
		r.logger.Warn("recorder: adopt new tab failed", "error", err)
		return
	}
	tr, err := r.attach(ctx, tab)
	if err != nil {
		r.logger.Warn("recorder: attach new tab failed", "error", err)
		return
	}
	if err := r.coord.AddTab(ctx, tr.tabID, &sessionTab{tr: tr}); err != nil {
		r.logger.Warn("recorder: join new tab failed", "tab", tr.tabID, "error", err)
	}
}

func (r *Recorder) onTargetChanged(targetID proto.TargetTargetID) {
	r.mu.Lock()
	tr, ok := r.tabs[targetID]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.coord.NotifyTabUpdate(tr.tabID)
}

func (r *Recorder) onTargetDestroyed(targetID proto.TargetTargetID) {
	r.mu.Lock()
	tr, ok := r.tabs[targetID]
	r.mu.Unlock()
	if !ok {
		return
	}
	r.coord.RemoveTab(tr.tabID)
	r.detach(targetID)
}

// sessionTab adapts a tabRecorder to the coordinator's Tab interface.
type sessionTab struct {
	tr *tabRecorder
}

func (s *sessionTab) Start(ctx context.Context, meta content.StartMeta) error {
	return s.tr.rec.Start(ctx, meta)
}
func (s *sessionTab) Pause(ctx context.Context) error  { return s.tr.rec.Pause(ctx) }
func (s *sessionTab) Resume(ctx context.Context) error { return s.tr.rec.Resume(ctx) }
func (s *sessionTab) Stop(ctx context.Context, sessionID string, requireAck bool) (content.StopResult, error) {
	return s.tr.rec.Stop(ctx, sessionID, requireAck)
}
func (s *sessionTab) TimelineUpdate(ctx context.Context, steps []flow.Step) error {
	return s.tr.rec.TimelineUpdate(ctx, steps)
}
func (s *sessionTab) URL() string { return s.tr.tab.URL() }

// overlayStatusFn renders the status badge in the page. Nil when the
// overlay is disabled.
func (r *Recorder) overlayStatusFn(ctx context.Context, tab *browser.Tab) func(content.Status) {
	if r.cfg.Recording.Overlay != nil && !*r.cfg.Recording.Overlay {
		return nil
	}
	return func(s content.Status) {
		go func() {
			js := fmt.Sprintf("window.__recflow_setStatus && window.__recflow_setStatus(%q)", string(s))
			if err := tab.Eval(ctx, js); err != nil {
				r.logger.Debug("recorder: overlay status eval failed", "error", err)
			}
		}()
	}
}

// overlayTimelineFn renders the step strip in the page.
func (r *Recorder) overlayTimelineFn(ctx context.Context, tab *browser.Tab) func([]flow.Step) {
	if r.cfg.Recording.Overlay != nil && !*r.cfg.Recording.Overlay {
		return nil
	}
	return func(steps []flow.Step) {
		lines := stepLines(steps)
		data, err := json.Marshal(lines)
		if err != nil {
			return
		}
		go func() {
			js := fmt.Sprintf("window.__recflow_timeline && window.__recflow_timeline(%s)", data)
			if err := tab.Eval(ctx, js); err != nil {
				r.logger.Debug("recorder: overlay timeline eval failed", "error", err)
			}
		}()
	}
}

// stepLines formats steps for the overlay strip.
func stepLines(steps []flow.Step) []string {
	lines := make([]string, 0, len(steps))
	for _, s := range steps {
		lines = append(lines, stepLine(s))
	}
	return lines
}

func stepLine(s flow.Step) string {
	sel := ""
	if s.Target != nil {
		sel = s.Target.Selector
	}
	switch s.Type {
	case flow.StepFill:
		v := ""
		if str, ok := s.FillString(); ok {
			v = str
		} else if b, ok := s.FillBool(); ok {
			if b {
				v = "true"
			} else {
				v = "false"
			}
		}
		return truncate(fmt.Sprintf("fill %s = %s", sel, v), 60)
	case flow.StepKey:
		return truncate("key "+s.Keys, 60)
	case flow.StepScroll:
		if s.Offset != nil {
			return truncate(fmt.Sprintf("scroll %s (%d,%d)", sel, int(s.Offset.X), int(s.Offset.Y)), 60)
		}
		return "scroll " + sel
	case flow.StepOpenTab:
		return truncate("openTab "+s.URL, 60)
	case flow.StepSwitchTab:
		return truncate("switchTab "+s.URLContains, 60)
	case flow.StepNavigate:
		return truncate("navigate "+s.URL, 60)
	default:
		return truncate(strings.TrimSpace(string(s.Type)+" "+sel), 60)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

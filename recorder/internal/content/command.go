// CLAUDE:SUMMARY Recording status machine and the tagged control commands (start/pause/resume/stop/timeline/ping).
package content

import (
	"context"
	"errors"

	"github.com/hazyhaar/recflow/flow"
)

// Status is the per-document recording state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRecording Status = "recording"
	StatusPaused    Status = "paused"
	StatusStopping  Status = "stopping"
)

// Action discriminates control commands over a closed set.
type Action string

const (
	ActionStart    Action = "start"
	ActionPause    Action = "pause"
	ActionResume   Action = "resume"
	ActionStop     Action = "stop"
	ActionTimeline Action = "timeline_update"
	ActionPing     Action = "ping"
	ActionStatus   Action = "status"
)

// StartMeta is the recording metadata carried by a start command.
type StartMeta struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	SessionID   string `json:"sessionId,omitempty"`
}

// StopResult is the content side's reply to a stop barrier.
type StopResult struct {
	Ack       bool `json:"ack"`
	Steps     int  `json:"steps"`
	Variables int  `json:"variables"`
}

type command struct {
	action     Action
	meta       StartMeta
	sessionID  string
	requireAck bool
	steps      []flow.Step
	reply      chan commandResult
}

type commandResult struct {
	err    error
	status Status
	stop   *StopResult
}

// send posts a command to the loop and waits for its result.
func (r *Recorder) send(ctx context.Context, cmd command) (commandResult, error) {
	cmd.reply = make(chan commandResult, 1)
	select {
	case r.ctrlCh <- cmd:
	case <-r.ctx.Done():
		return commandResult{}, errors.New("content: recorder closed")
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	}
	select {
	case res := <-cmd.reply:
		return res, res.err
	case <-r.ctx.Done():
		return commandResult{}, errors.New("content: recorder closed")
	case <-ctx.Done():
		return commandResult{}, ctx.Err()
	}
}

// Start begins (or resumes) recording. Starting while already recording is
// a no-op; starting while paused resumes.
func (r *Recorder) Start(ctx context.Context, meta StartMeta) error {
	_, err := r.send(ctx, command{action: ActionStart, meta: meta})
	return err
}

// Pause flushes pending work and ignores events until Resume.
func (r *Recorder) Pause(ctx context.Context) error {
	_, err := r.send(ctx, command{action: ActionPause})
	return err
}

// Resume re-enables event intake after a pause.
func (r *Recorder) Resume(ctx context.Context) error {
	_, err := r.send(ctx, command{action: ActionResume})
	return err
}

// Stop runs the content side of the stop barrier and reports whether all
// final sends were acknowledged. Stopping an idle document succeeds with
// an empty ack.
func (r *Recorder) Stop(ctx context.Context, sessionID string, requireAck bool) (StopResult, error) {
	res, err := r.send(ctx, command{action: ActionStop, sessionID: sessionID, requireAck: requireAck})
	if err != nil {
		return StopResult{}, err
	}
	if res.stop == nil {
		return StopResult{Ack: true}, nil
	}
	return *res.stop, nil
}

// TimelineUpdate refreshes the overlay's step strip. Ignored unless
// recording.
func (r *Recorder) TimelineUpdate(ctx context.Context, steps []flow.Step) error {
	_, err := r.send(ctx, command{action: ActionTimeline, steps: steps})
	return err
}

// Ping verifies the loop is alive.
func (r *Recorder) Ping(ctx context.Context) (string, error) {
	if _, err := r.send(ctx, command{action: ActionPing}); err != nil {
		return "", err
	}
	return "pong", nil
}

// Status reports the current recording state.
func (r *Recorder) Status(ctx context.Context) Status {
	res, err := r.send(ctx, command{action: ActionStatus})
	if err != nil {
		return StatusIdle
	}
	return res.status
}

// handleCommand runs on the loop goroutine. Invalid transitions reply with
// an error and leave state unchanged.
func (r *Recorder) handleCommand(cmd command) {
	switch cmd.action {
	case ActionStart:
		switch r.status {
		case StatusRecording:
			// Already live: idempotent.
		case StatusPaused:
			r.setStatus(StatusRecording)
		case StatusStopping:
			cmd.reply <- commandResult{err: errors.New("content: stop in progress"), status: r.status}
			return
		default:
			r.resetSession()
			r.setStatus(StatusRecording)
		}
		cmd.reply <- commandResult{status: r.status}

	case ActionPause:
		if r.status != StatusRecording {
			cmd.reply <- commandResult{err: errors.New("content: not recording"), status: r.status}
			return
		}
		// Pause cancels no work: settle everything pending, then go quiet.
		r.drainPending()
		r.flushBatch()
		r.setStatus(StatusPaused)
		cmd.reply <- commandResult{status: r.status}

	case ActionResume:
		if r.status != StatusPaused {
			cmd.reply <- commandResult{err: errors.New("content: not paused"), status: r.status}
			return
		}
		r.setStatus(StatusRecording)
		cmd.reply <- commandResult{status: r.status}

	case ActionStop:
		if r.status == StatusIdle {
			// Stop on an idle document acks trivially.
			cmd.reply <- commandResult{status: r.status, stop: &StopResult{Ack: true}}
			return
		}
		res := r.stopBarrier()
		cmd.reply <- commandResult{status: r.status, stop: &res}

	case ActionTimeline:
		if r.status == StatusRecording && r.onTimeline != nil {
			steps := cmd.steps
			if len(steps) > TimelineLimit {
				steps = steps[len(steps)-TimelineLimit:]
			}
			r.onTimeline(steps)
		}
		cmd.reply <- commandResult{status: r.status}

	case ActionPing, ActionStatus:
		cmd.reply <- commandResult{status: r.status}

	default:
		cmd.reply <- commandResult{err: errors.New("content: unknown command"), status: r.status}
	}
}

func (r *Recorder) setStatus(s Status) {
	if r.status == s {
		return
	}
	r.status = s
	if r.onStatus != nil {
		r.onStatus(s)
	}
}

// resetSession clears all per-session state before a fresh start.
func (r *Recorder) resetSession() {
	r.buffer = nil
	r.batch = nil
	r.vars = nil
	r.varSeq = 0
	r.pending = pendingState{}
	r.fillFuse.disarm()
	r.scrollFuse.disarm()
	r.clickFuse.disarm()
	r.batchFuse.disarm()
}

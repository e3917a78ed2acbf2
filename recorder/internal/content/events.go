// CLAUDE:SUMMARY Raw event wire format from the capture script, binding decode, cross-frame envelope authentication, dispatch.
package content

import (
	"encoding/json"
	"log/slog"

	"github.com/hazyhaar/recflow/flow"
	"github.com/hazyhaar/recflow/recorder/internal/selector"
)

// RawEvent is one low-level DOM event as shipped by the capture script.
// For events forwarded from a child frame, Frame carries the descriptor of
// the matched <iframe>/<frame> element in the top document and FrameHref
// the child document's location.
type RawEvent struct {
	Kind string                `json:"kind"` // click | input | change | scroll | key
	El   *selector.ElementDesc `json:"el,omitempty"`

	// click
	Detail      int    `json:"detail,omitempty"`
	Href        string `json:"href,omitempty"` // absolute, resolved in-page
	TargetBlank bool   `json:"targetBlank,omitempty"`

	// input / change
	Value       string   `json:"value,omitempty"`
	Checked     *bool    `json:"checked,omitempty"`
	Files       []string `json:"files,omitempty"`
	IsComposing bool     `json:"isComposing,omitempty"`
	Editable    string   `json:"editable,omitempty"` // "" | input | textarea | select | contenteditable

	// scroll
	Container bool    `json:"container,omitempty"` // false = document scroll
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Overlay   bool    `json:"overlay,omitempty"` // originated inside the overlay chrome

	// key
	Key    string `json:"key,omitempty"`
	Ctrl   bool   `json:"ctrl,omitempty"`
	Alt    bool   `json:"alt,omitempty"`
	Shift  bool   `json:"shift,omitempty"`
	Meta   bool   `json:"meta,omitempty"`
	Repeat bool   `json:"repeat,omitempty"`

	// cross-frame
	Frame     *selector.ElementDesc `json:"frame,omitempty"`
	FrameHref string                `json:"frameHref,omitempty"`
}

// bindingPayload is the top-level JSON arriving on the Runtime binding:
// either a plain RawEvent or a forwarded child-frame envelope.
type bindingPayload struct {
	RawEvent

	// Envelope fields, present only for forwarded child-frame events.
	Type    string         `json:"type,omitempty"`
	Payload *frameEnvelope `json:"payload,omitempty"`
}

type frameEnvelope struct {
	Href          string                `json:"href"`
	Event         *RawEvent             `json:"event"`
	FrameEl       *selector.ElementDesc `json:"frameEl"`
	Authenticated bool                  `json:"authenticated"`
}

// DecodeBinding parses one binding payload. Child-frame envelopes are
// unwrapped and authenticated: an envelope whose sender the top-frame
// script could not match to a child frame's contentWindow (or that lacks
// the frame element descriptor) is silently dropped.
func DecodeBinding(data []byte, logger *slog.Logger) (RawEvent, bool) {
	var p bindingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Warn("content: undecodable binding payload", "error", err)
		return RawEvent{}, false
	}

	if p.Type == FrameEnvelopeType {
		env := p.Payload
		if env == nil || env.Event == nil {
			return RawEvent{}, false
		}
		if !env.Authenticated || env.FrameEl == nil {
			// Either the postMessage source matched no child iframe's
			// contentWindow, or origin verification failed in the page.
			logger.Debug("content: rejected unauthenticated frame event")
			return RawEvent{}, false
		}
		ev := *env.Event
		ev.Frame = env.FrameEl
		ev.FrameHref = env.Href
		return ev, true
	}

	if p.Kind == "" {
		return RawEvent{}, false
	}
	return p.RawEvent, true
}

// handleRaw dispatches one raw event. Only the recording state accepts
// events; paused and stopping documents ignore them.
func (r *Recorder) handleRaw(ev RawEvent) {
	if r.status != StatusRecording {
		return
	}

	switch ev.Kind {
	case "click":
		r.handleClick(ev)
	case "input":
		r.handleInput(ev)
	case "change":
		r.handleChange(ev)
	case "scroll":
		r.handleScroll(ev)
	case "key":
		r.handleKey(ev)
	default:
		r.logger.Debug("content: unknown raw event kind", "kind", ev.Kind)
	}
}

// target builds the flow.Target for an event, composing the frame
// selector for forwarded child-frame events. Cross-frame targets drop the
// ref: refs are frame-scoped and identity crosses the boundary through
// the composite selector alone.
func (r *Recorder) target(ev RawEvent) *flow.Target {
	if ev.El == nil {
		return nil
	}
	t := selector.BuildTarget(*ev.El)
	if ev.Frame != nil {
		ft := selector.BuildTarget(*ev.Frame)
		composite := flow.ComposeSelector(ft.Selector, t.Selector)
		t.Candidates = append(
			[]flow.Candidate{{Type: flow.CandCSS, Value: composite}},
			t.Candidates...,
		)
		t.Selector = composite
		t.Ref = ""
	}
	return &t
}

// mergeKey identifies "the same element" across debounced events: the
// per-document ref when available, otherwise the primary selector.
func mergeKey(t *flow.Target) string {
	if t == nil {
		return ""
	}
	if t.Ref != "" {
		return "ref:" + t.Ref
	}
	return "sel:" + t.Selector
}

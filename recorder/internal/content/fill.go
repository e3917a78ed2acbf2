// CLAUDE:SUMMARY Fill synthesis: IME skip, 800 ms debounce with in-place merge, sensitive redaction, change/checkbox/file handling.
package content

import (
	"strings"

	"github.com/hazyhaar/recflow/flow"
)

// pendingFill tracks the fill step currently inside its debounce window.
type pendingFill struct {
	stepID string
	key    string // mergeKey of the target
	redact string // variable key when the value is redacted, else ""
}

// handleInput processes an input event from a native editable or a
// contenteditable host. Composition events are ignored until the IME
// commits. Repeated input on the same element inside the debounce window
// updates the existing step in place and re-enqueues it (upsert), so the
// coordinator always converges on the final observed value.
func (r *Recorder) handleInput(ev RawEvent) {
	if ev.El == nil || ev.IsComposing {
		return
	}

	target := r.target(ev)
	key := mergeKey(target)
	value, redactKey := r.fillValue(ev)

	if p := r.pending.fill; p != nil && p.key == key && r.fillFuse.armed() {
		// Same element, window still open: converge on the final value.
		step := r.findStep(p.stepID)
		if step != nil {
			if p.redact != "" {
				step.Value = "{" + p.redact + "}"
			} else {
				step.Value = value
			}
			r.update(*step)
			r.fillFuse.arm(r.windows.Fill)
			return
		}
		// Buffer was reset under us; fall through and re-emit.
		r.pending.fill = nil
	}

	// A different element interrupts the previous window.
	r.settlePendingFill()

	step := flow.Step{Type: flow.StepFill, Target: target, Value: value}
	if redactKey != "" {
		step.Value = "{" + redactKey + "}"
	}
	id := r.emit(step)
	r.pending.fill = &pendingFill{stepID: id, key: key, redact: redactKey}
	r.fillFuse.arm(r.windows.Fill)
}

// fillValue resolves the recorded value for an input event, synthesizing
// a sensitive VariableDef when the element is a password control or the
// session redacts everything.
func (r *Recorder) fillValue(ev RawEvent) (value string, redactKey string) {
	// capture ships .value for native editables and innerText for
	// contenteditable hosts; both arrive in ev.Value.
	value = ev.Value

	typ := ev.El.Attr("type")
	if sensitiveTypes[typ] || r.redactAll {
		key := r.nextVarKey(ev.El.Attr("name"), ev.El.ID)
		r.addVariable(flow.VariableDef{Key: key, Sensitive: true, Default: ""})
		return "", key
	}
	return value, ""
}

// settlePendingFill closes the debounce window. The step already holds the
// last observed value, so settling only discards the in-process reference.
func (r *Recorder) settlePendingFill() {
	r.pending.fill = nil
	r.fillFuse.disarm()
}

// handleChange processes change events for the controls whose final state
// only materializes on change: selects, checkboxes/radios, file inputs.
// Text inputs are covered by handleInput and would only duplicate here.
func (r *Recorder) handleChange(ev RawEvent) {
	if ev.El == nil {
		return
	}

	switch {
	case ev.El.Tag == "select":
		r.settlePendingFill()
		r.emit(flow.Step{Type: flow.StepFill, Target: r.target(ev), Value: ev.Value})

	case ev.El.Tag == "input" && (ev.El.Attr("type") == "checkbox" || ev.El.Attr("type") == "radio"):
		if ev.Checked == nil {
			return
		}
		r.emit(flow.Step{Type: flow.StepFill, Target: r.target(ev), Value: *ev.Checked})

	case ev.El.Tag == "input" && ev.El.Attr("type") == "file":
		key := r.nextVarKey(ev.El.Attr("name"), ev.El.ID)
		r.addVariable(flow.VariableDef{
			Key:       key,
			Sensitive: false,
			Default:   strings.Join(ev.Files, ","),
		})
		r.emit(flow.Step{Type: flow.StepFill, Target: r.target(ev), Value: "{" + key + "}"})
	}
}

// findStep returns a pointer into the session buffer for the given id.
func (r *Recorder) findStep(id string) *flow.Step {
	for i := len(r.buffer) - 1; i >= 0; i-- {
		if r.buffer[i].ID == id {
			return &r.buffer[i]
		}
	}
	return nil
}

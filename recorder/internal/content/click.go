// CLAUDE:SUMMARY Click/double-click disambiguation, checkbox suppression, and openTab synthesis for target=_blank links.
package content

import "github.com/hazyhaar/recflow/flow"

// handleClick disambiguates single and double clicks. A click with detail
// count >= 2 cancels the stashed single click and emits dblclick; a fresh
// single click flushes the previous stash and starts the 300 ms window.
func (r *Recorder) handleClick(ev RawEvent) {
	if ev.El == nil {
		return
	}

	// Checkbox/radio clicks are suppressed: change produces the fill and a
	// click step would double the action on replay.
	typ := ev.El.Attr("type")
	if ev.El.Tag == "input" && (typ == "checkbox" || typ == "radio") {
		return
	}

	if ev.Detail >= 2 {
		r.pending.click = nil
		r.clickFuse.disarm()
		r.emit(flow.Step{Type: flow.StepDblClick, Target: r.target(ev)})
		return
	}

	// A link opening a new tab becomes openTab + switchTab, not a click.
	if ev.TargetBlank && ev.Href != "" {
		r.flushPendingClick()
		r.emit(flow.Step{Type: flow.StepOpenTab, URL: ev.Href})
		r.emit(flow.Step{Type: flow.StepSwitchTab, URLContains: ev.Href})
		return
	}

	r.flushPendingClick()
	step := flow.Step{Type: flow.StepClick, Target: r.target(ev)}
	r.pending.click = &step
	r.clickFuse.arm(r.windows.Click)
}

// flushPendingClick emits the stashed single click, if any.
func (r *Recorder) flushPendingClick() {
	if r.pending.click == nil {
		return
	}
	step := *r.pending.click
	r.pending.click = nil
	r.clickFuse.disarm()
	r.emit(step)
}

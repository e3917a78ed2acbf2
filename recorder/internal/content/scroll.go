// CLAUDE:SUMMARY Scroll debounce and per-source coalescing; overlay-origin scrolls are discarded.
package content

import "github.com/hazyhaar/recflow/flow"

// pendingScroll accumulates the latest offset for one scroll source while
// its 350 ms window is open.
type pendingScroll struct {
	mode   flow.ScrollMode
	target *flow.Target // nil for document scrolls
	offset flow.Offset
}

// handleScroll debounces scrolls per source. Scroll events originating in
// the overlay chrome never become steps.
func (r *Recorder) handleScroll(ev RawEvent) {
	if ev.Overlay {
		return
	}

	mode := flow.ScrollOffset
	var target *flow.Target
	if ev.Container {
		if ev.El == nil {
			return
		}
		mode = flow.ScrollContainer
		target = r.target(ev)
	}

	if p := r.pending.scroll; p != nil {
		if p.mode == mode && sameScrollSource(p.target, target) {
			p.offset = flow.Offset{X: ev.X, Y: ev.Y}
			r.scrollFuse.arm(r.windows.Scroll)
			return
		}
		// Source changed mid-window: settle the old one first.
		r.flushPendingScroll()
	}

	r.pending.scroll = &pendingScroll{
		mode:   mode,
		target: target,
		offset: flow.Offset{X: ev.X, Y: ev.Y},
	}
	r.scrollFuse.arm(r.windows.Scroll)
}

// flushPendingScroll materializes the buffered scroll. When the last step
// in the buffer is a scroll from the same source, its offset is updated
// in place (latest wins) instead of appending an adjacent duplicate.
func (r *Recorder) flushPendingScroll() {
	p := r.pending.scroll
	if p == nil {
		return
	}
	r.pending.scroll = nil
	r.scrollFuse.disarm()

	offset := p.offset
	if n := len(r.buffer); n > 0 {
		last := &r.buffer[n-1]
		if last.Type == flow.StepScroll && last.Mode == p.mode && sameScrollSource(last.Target, p.target) {
			last.Offset = &offset
			r.update(*last)
			return
		}
	}

	r.emit(flow.Step{
		Type:   flow.StepScroll,
		Mode:   p.mode,
		Offset: &offset,
		Target: p.target,
	})
}

// sameScrollSource compares scroll origins: both the document, or both the
// same container by primary selector.
func sameScrollSource(a, b *flow.Target) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Selector == b.Selector
}

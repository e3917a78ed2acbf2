// CLAUDE:SUMMARY Content side of the stop barrier: drain pending work, flush, send variables, ack.
package content

// stopBarrier drains every pending synthesis, ships the final batch and
// the accumulated variables, and resets the document to idle. The
// returned ack is the conjunction of both final sends; a failed send is
// reported, never fatal — the session must remain preservable.
func (r *Recorder) stopBarrier() StopResult {
	// No new events may enter the buffer from this point on.
	r.setStatus(StatusStopping)

	r.drainPending()

	// Timers are dead wood once pending state is drained.
	r.fillFuse.disarm()
	r.scrollFuse.disarm()
	r.clickFuse.disarm()
	r.batchFuse.disarm()

	ackSteps := r.flushBatch()
	ackVars := r.sendVariables()

	res := StopResult{
		Ack:       ackSteps && ackVars,
		Steps:     len(r.buffer),
		Variables: len(r.vars),
	}

	r.resetSession()
	r.setStatus(StatusIdle)
	return res
}

// drainPending finalizes debounced work in emission order: the stashed
// click (it happened first), the debounced fill (its step already carries
// the last observed value), then the buffered scroll.
func (r *Recorder) drainPending() {
	r.clickFuse.disarm()
	r.flushPendingClick()

	r.fillFuse.disarm()
	r.settlePendingFill()

	r.scrollFuse.disarm()
	r.flushPendingScroll()
}

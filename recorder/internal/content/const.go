package content

import "time"

// Recording constants. The debounce windows are the contract between the
// capture layer and step synthesis; replay engines rely on them staying
// stable, so they change together or not at all.
const (
	DefaultFillDebounce   = 800 * time.Millisecond
	DefaultScrollDebounce = 350 * time.Millisecond
	DefaultClickThreshold = 300 * time.Millisecond
	DefaultBatchInterval  = 100 * time.Millisecond

	// TimelineLimit caps the overlay's step strip.
	TimelineLimit = 30

	// BindingName is the Runtime binding the capture script posts through.
	BindingName = "__recflow_binding"

	// FrameEnvelopeType tags child-frame events forwarded to the top
	// document via postMessage.
	FrameEnvelopeType = "rr_iframe_event"
)

// sensitiveTypes lists input types whose values are always redacted.
var sensitiveTypes = map[string]bool{
	"password": true,
}

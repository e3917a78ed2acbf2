// CLAUDE:SUMMARY Defines Step, Target, and Candidate types — one semantic user action in a recorded Flow.
// Package flow defines the structured types produced by the recorder.
// These are the public API contract: any consumer (replay engines, storage,
// custom pipelines) imports this package to receive and process Flows.
package flow

// StepType discriminates the Step variants.
type StepType string

const (
	StepClick       StepType = "click"
	StepDblClick    StepType = "dblclick"
	StepFill        StepType = "fill"
	StepScroll      StepType = "scroll"
	StepKey         StepType = "key"
	StepOpenTab     StepType = "openTab"
	StepSwitchTab   StepType = "switchTab"
	StepSwitchFrame StepType = "switchFrame"
	StepWaitFor     StepType = "waitFor"
	StepNavigate    StepType = "navigate"
)

// CandidateType orders selector alternatives by reliability.
type CandidateType string

const (
	CandAttr CandidateType = "attr"
	CandCSS  CandidateType = "css"
	CandARIA CandidateType = "aria"
	CandText CandidateType = "text"
)

// Candidate is one selector alternative for a Target.
type Candidate struct {
	Type  CandidateType `json:"type"`
	Value string        `json:"value"`
}

// Target is the addressable description of an element. Selector is the
// chosen primary; Candidates preserves alternatives in priority order.
// Ref is an opaque per-document identifier valid only during recording.
type Target struct {
	Selector   string      `json:"selector"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Tag        string      `json:"tag,omitempty"`
	Ref        string      `json:"ref,omitempty"`
}

// FrameSeparator joins a frame selector and an inner selector into a
// composite selector that crosses one frame boundary.
const FrameSeparator = " |> "

// ComposeSelector builds the composite selector for a cross-frame target.
func ComposeSelector(frameSel, innerSel string) string {
	return frameSel + FrameSeparator + innerSel
}

// ScrollMode distinguishes document scrolls from container scrolls.
type ScrollMode string

const (
	ScrollOffset    ScrollMode = "offset"    // document/window scroll
	ScrollContainer ScrollMode = "container" // scroll inside an element; Target required
)

// Offset is a scroll position in CSS pixels.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FrameRef identifies a frame for switchFrame steps.
type FrameRef struct {
	URLContains string `json:"urlContains"`
}

// After holds replay enrichments attached to a Step after the fact.
type After struct {
	WaitForNavigation bool `json:"waitForNavigation,omitempty"`
}

// Step is one semantic user action. Fields beyond ID, Type, and
// ScreenshotOnFail are populated per variant:
//
//	click/dblclick: Target
//	fill:           Target, Value (string or bool)
//	scroll:         Mode, Offset, Target (required for container mode)
//	key:            Keys, optional Target
//	openTab:        URL
//	switchTab:      URLContains
//	switchFrame:    Frame
//	navigate:       URL
type Step struct {
	ID               string     `json:"id"`
	Type             StepType   `json:"type"`
	ScreenshotOnFail bool       `json:"screenshotOnFail"`
	Target           *Target    `json:"target,omitempty"`
	Value            any        `json:"value,omitempty"`
	Mode             ScrollMode `json:"mode,omitempty"`
	Offset           *Offset    `json:"offset,omitempty"`
	Keys             string     `json:"keys,omitempty"`
	URL              string     `json:"url,omitempty"`
	URLContains      string     `json:"urlContains,omitempty"`
	Frame            *FrameRef  `json:"frame,omitempty"`
	After            *After     `json:"after,omitempty"`
}

// VariableDef declares a flow variable. Sensitive variables are created
// when a redacted input is touched; the corresponding fill Value holds
// the "{key}" placeholder instead of the literal text.
type VariableDef struct {
	Key       string `json:"key"`
	Sensitive bool   `json:"sensitive"`
	Default   string `json:"default"`
}

// Placeholder returns the "{key}" token substituted for a variable's value.
func (v VariableDef) Placeholder() string {
	return "{" + v.Key + "}"
}

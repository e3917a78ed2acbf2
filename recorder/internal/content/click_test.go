package content

import (
	"testing"

	"github.com/hazyhaar/recflow/flow"
	"github.com/hazyhaar/recflow/recorder/internal/selector"
)

func TestDoubleClick_EmitsOnlyDblClick(t *testing.T) {
	r, _ := newTestRecorder()

	first := buttonEvent("b")
	r.handleClick(first)

	second := buttonEvent("b")
	second.Detail = 2
	r.handleClick(second)

	// The single-click window must not produce anything afterwards.
	r.flushPendingClick()

	steps := r.Snapshot()
	if len(steps) != 1 {
		t.Fatalf("steps: got %d, want 1", len(steps))
	}
	if steps[0].Type != flow.StepDblClick {
		t.Errorf("type: got %s, want dblclick", steps[0].Type)
	}
	if steps[0].Target.Selector != "#b" {
		t.Errorf("selector: got %q, want #b", steps[0].Target.Selector)
	}
}

func TestSingleClick_EmitsAfterWindow(t *testing.T) {
	r, _ := newTestRecorder()

	r.handleClick(buttonEvent("b"))
	if len(r.Snapshot()) != 0 {
		t.Fatal("click emitted before its disambiguation window expired")
	}

	r.flushPendingClick()
	steps := r.Snapshot()
	if len(steps) != 1 || steps[0].Type != flow.StepClick {
		t.Fatalf("steps: got %+v, want one click", steps)
	}
}

func TestNewClick_FlushesPreviousPending(t *testing.T) {
	r, _ := newTestRecorder()

	r.handleClick(buttonEvent("a"))
	r.handleClick(buttonEvent("b"))
	r.flushPendingClick()

	steps := r.Snapshot()
	if len(steps) != 2 {
		t.Fatalf("steps: got %d, want 2", len(steps))
	}
	if steps[0].Target.Selector != "#a" || steps[1].Target.Selector != "#b" {
		t.Errorf("order: got %q then %q", steps[0].Target.Selector, steps[1].Target.Selector)
	}
}

func TestCheckboxClick_Suppressed(t *testing.T) {
	r, _ := newTestRecorder()

	ev := RawEvent{
		Kind:   "click",
		Detail: 1,
		El: &selector.ElementDesc{
			Tag: "input", ID: "agree", IDCount: 1,
			Attrs: map[string]string{"type": "checkbox"},
		},
	}
	r.handleClick(ev)
	r.flushPendingClick()

	if n := len(r.Snapshot()); n != 0 {
		t.Errorf("checkbox click produced %d steps, want 0 (change covers it)", n)
	}
}

func TestBlankTargetLink_OpenTabSwitchTab(t *testing.T) {
	r, _ := newTestRecorder()

	ev := RawEvent{
		Kind:   "click",
		Detail: 1,
		El: &selector.ElementDesc{
			Tag: "a", ID: "k", IDCount: 1,
			Attrs: map[string]string{"target": "_blank"},
			Text:  "Go",
		},
		Href:        "https://example.com/next",
		TargetBlank: true,
	}
	r.handleClick(ev)
	r.flushPendingClick()

	steps := r.Snapshot()
	if len(steps) != 2 {
		t.Fatalf("steps: got %d, want 2", len(steps))
	}
	if steps[0].Type != flow.StepOpenTab || steps[0].URL != "https://example.com/next" {
		t.Errorf("openTab: got %+v", steps[0])
	}
	if steps[1].Type != flow.StepSwitchTab || steps[1].URLContains != "https://example.com/next" {
		t.Errorf("switchTab: got %+v", steps[1])
	}
	for _, s := range steps {
		if s.Type == flow.StepClick {
			t.Error("blank-target link also produced a click step")
		}
	}
}

func TestEventsIgnoredUnlessRecording(t *testing.T) {
	r, _ := newTestRecorder()
	r.setStatus(StatusPaused)

	r.handleRaw(buttonEvent("b"))
	r.flushPendingClick()
	if n := len(r.Snapshot()); n != 0 {
		t.Errorf("paused recorder emitted %d steps", n)
	}
}

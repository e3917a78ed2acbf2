// CLAUDE:SUMMARY Key step synthesis: editable-context filtering, modifier combos, and the canonical combo string format.
package content

import (
	"strings"

	"github.com/hazyhaar/recflow/flow"
)

// handleKey synthesizes key steps. Auto-repeat never emits. Inside an
// editable only Enter and Tab emit; outside, Enter/Escape/Tab and any
// modifier combination emit.
func (r *Recorder) handleKey(ev RawEvent) {
	if ev.Repeat || isModifierKey(ev.Key) {
		return
	}

	inEditable := ev.Editable != ""
	if inEditable {
		// Typing is covered by fill; Enter submits and Tab leaves the
		// field, both meaningful on replay.
		switch ev.Key {
		case "Enter", "Tab":
		default:
			return
		}
	} else {
		hasModifier := ev.Ctrl || ev.Alt || ev.Shift || ev.Meta
		switch ev.Key {
		case "Enter", "Escape", "Tab":
		default:
			if !hasModifier {
				return
			}
		}
	}

	step := flow.Step{Type: flow.StepKey, Keys: comboString(ev)}
	if inEditable && ev.Key == "Enter" {
		step.Target = r.target(ev)
	}
	r.emit(step)
}

// comboString renders the canonical combo format:
// [Ctrl+][Alt+][Shift+][Meta+]<Key>, with Escape shortened to Esc, the
// space character named Space, and single letters uppercased.
func comboString(ev RawEvent) string {
	var b strings.Builder
	if ev.Ctrl {
		b.WriteString("Ctrl+")
	}
	if ev.Alt {
		b.WriteString("Alt+")
	}
	if ev.Shift {
		b.WriteString("Shift+")
	}
	if ev.Meta {
		b.WriteString("Meta+")
	}
	b.WriteString(normalizeKey(ev.Key))
	return b.String()
}

func normalizeKey(key string) string {
	switch key {
	case "Escape":
		return "Esc"
	case " ":
		return "Space"
	}
	if len(key) == 1 {
		return strings.ToUpper(key)
	}
	return key
}

// isModifierKey reports whether key is a bare modifier keydown, which
// never emits on its own.
func isModifierKey(key string) bool {
	switch key {
	case "Control", "Alt", "Shift", "Meta", "AltGraph", "CapsLock":
		return true
	}
	return false
}

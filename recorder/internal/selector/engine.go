// CLAUDE:SUMMARY Candidate generation and primary selector choice: test attrs > unique class > path, then name/title/alt, aria, text.
package selector

import (
	"strconv"
	"strings"

	"github.com/hazyhaar/recflow/flow"
)

// testAttrs are probed in priority order for candidate generation.
var testAttrs = []string{"data-testid", "data-test", "data-qa", "data-cy"}

var formTags = map[string]bool{
	"input":    true,
	"textarea": true,
	"select":   true,
}

// textTags are the only tags whose visible text becomes a candidate.
var textTags = map[string]bool{
	"button":  true,
	"a":       true,
	"summary": true,
}

const maxTextCandidate = 64

// BuildTarget produces the primary selector and the alternative candidate
// list for an element. It never fails: a sparse descriptor degrades to a
// structural path or the bare tag, and a descriptor without even a tag
// yields "*".
func BuildTarget(d ElementDesc) flow.Target {
	var cands []flow.Candidate

	// Test attributes come first: they exist to be selected on.
	for _, a := range testAttrs {
		if v := d.Attr(a); v != "" {
			cands = append(cands, flow.Candidate{Type: flow.CandAttr, Value: attrSelector(d, a, v)})
		}
	}

	// Class-based unique selector, validated against the page via probes.
	if sel, ok := uniqueClassSelector(d); ok {
		cands = append(cands, flow.Candidate{Type: flow.CandCSS, Value: sel})
	}

	// Structural path fallback is always present when a path was captured.
	if p := pathSelector(d); p != "" {
		cands = append(cands, flow.Candidate{Type: flow.CandCSS, Value: p})
	}

	for _, a := range []string{"name", "title", "alt"} {
		if v := d.Attr(a); v != "" {
			cands = append(cands, flow.Candidate{Type: flow.CandAttr, Value: attrSelector(d, a, v)})
		}
	}

	if aria, ok := ariaSelector(d); ok {
		cands = append(cands, flow.Candidate{Type: flow.CandARIA, Value: aria})
	}

	if textTags[d.Tag] {
		if txt := strings.TrimSpace(d.Text); txt != "" && len(txt) <= maxTextCandidate {
			cands = append(cands, flow.Candidate{Type: flow.CandText, Value: txt})
		}
	}

	return flow.Target{
		Selector:   choosePrimary(d, cands),
		Candidates: cands,
		Tag:        d.Tag,
		Ref:        d.Ref,
	}
}

// attrSelector renders an attribute candidate. Form controls are prefixed
// with their tag so a replay engine matches the control, not a lookalike.
func attrSelector(d ElementDesc, name, value string) string {
	sel := "[" + name + `="` + escapeAttrValue(value) + `"]`
	if formTags[d.Tag] {
		return d.Tag + sel
	}
	return sel
}

// uniqueClassSelector searches the first three classes for a selector the
// page probes proved unique: a bare class, then tag.class, then a
// two-class combination.
func uniqueClassSelector(d ElementDesc) (string, bool) {
	classes := d.Classes
	if len(classes) > 3 {
		classes = classes[:3]
	}

	var sels []string
	for _, c := range classes {
		if s, ok := classSelector(c); ok {
			sels = append(sels, s)
		}
	}
	if len(sels) == 0 {
		return "", false
	}

	for _, s := range sels {
		if d.Probes[s] == 1 {
			return s, true
		}
	}
	for _, s := range sels {
		if d.Probes[d.Tag+s] == 1 {
			return d.Tag + s, true
		}
	}
	for i := 0; i < len(sels); i++ {
		for j := i + 1; j < len(sels); j++ {
			pair := sels[i] + sels[j]
			if d.Probes[pair] == 1 {
				return pair, true
			}
		}
	}
	return "", false
}

// pathSelector renders the structural path from body down, adding
// :nth-of-type only where same-tag siblings exist.
func pathSelector(d ElementDesc) string {
	if len(d.Path) == 0 {
		if d.Tag != "" {
			return d.Tag
		}
		return ""
	}

	parts := make([]string, 0, len(d.Path)+1)
	parts = append(parts, "body")
	for _, seg := range d.Path {
		if seg.Tag == "" || seg.Tag == "body" || seg.Tag == "html" {
			continue
		}
		if seg.Nth > 0 {
			parts = append(parts, seg.Tag+":nth-of-type("+strconv.Itoa(seg.Nth)+")")
		} else {
			parts = append(parts, seg.Tag)
		}
	}
	if len(parts) == 1 {
		return ""
	}
	return strings.Join(parts, " > ")
}

// ariaSelector builds role[name=<label>] when both are present, falling
// back to textbox[name=<label>] when only the label exists.
func ariaSelector(d ElementDesc) (string, bool) {
	label := d.Attr("aria-label")
	if label == "" {
		return "", false
	}
	role := d.Attr("role")
	if role == "" {
		role = "textbox"
	}
	return role + `[name="` + escapeAttrValue(label) + `"]`, true
}

// choosePrimary picks the primary selector: a document-unique id wins,
// then the first attr candidate, then the first css candidate.
func choosePrimary(d ElementDesc, cands []flow.Candidate) string {
	if d.ID != "" && d.IDCount == 1 {
		return idSelector(d.ID)
	}
	for _, c := range cands {
		if c.Type == flow.CandAttr {
			return c.Value
		}
	}
	for _, c := range cands {
		if c.Type == flow.CandCSS {
			return c.Value
		}
	}
	if len(cands) > 0 {
		return cands[0].Value
	}
	if d.Tag != "" {
		return d.Tag
	}
	return "*"
}

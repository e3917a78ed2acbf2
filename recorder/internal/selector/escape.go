package selector

import "strings"

// escapeAttrValue escapes a value for use inside a double-quoted CSS
// attribute selector.
func escapeAttrValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}

// plainIdent reports whether s is safe to use bare in #id or .class form.
func plainIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '-':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// idSelector renders an id as a selector, falling back to attribute form
// for ids CSS identifiers cannot express bare.
func idSelector(id string) string {
	if plainIdent(id) {
		return "#" + id
	}
	return `[id="` + escapeAttrValue(id) + `"]`
}

// classSelector renders a class token, skipping tokens that would need
// escaping (the probe set in the page skips them too).
func classSelector(class string) (string, bool) {
	if !plainIdent(class) {
		return "", false
	}
	return "." + class, true
}

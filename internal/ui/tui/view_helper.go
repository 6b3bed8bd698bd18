package tui

import (
	"strings"
	"unicode/utf8"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func renderField(t Theme, label, input, errMsg string, focused bool) string {
	var b strings.Builder
	if focused {
		b.WriteString(t.FocusedLabel.Render(label))
	} else {
		b.WriteString(t.Label.Render(label))
	}
	b.WriteString("\n")
	b.WriteString(input)
	b.WriteString("\n")
	if errMsg != "" {
		b.WriteString(t.FieldError.Render(errMsg))
		b.WriteString("\n")
	}
	return b.String()
}

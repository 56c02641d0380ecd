package language

import (
	"strings"

	xlang "golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var english = display.English.Languages()

// DisplayName maps a whisper language code (ISO 639-1, e.g. "en") to a
// human-readable English name. Unknown or empty codes are returned unchanged
// so callers can always print the value.
func DisplayName(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	tag, err := xlang.Parse(code)
	if err != nil {
		return code
	}
	name := english.Name(tag)
	if name == "" {
		return code
	}
	return name
}

// Describe renders a code for logs as "code (Name)", falling back to the bare
// code when no display name is known.
func Describe(code string) string {
	name := DisplayName(code)
	if name == "" || strings.EqualFold(name, code) {
		return code
	}
	return code + " (" + name + ")"
}

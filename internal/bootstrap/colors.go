package bootstrap

import "strings"

const (
	defaultLabelColorConstant = "ededed"
	colorPrefixConstant       = "#"
)

var wellKnownLabelColors = map[string]string{
	"type:bug":      "d73a4a",
	"type:feature":  "a2eeef",
	"type:refactor": "cfd3d7",
	"type:docs":     "0075ca",
	"p0":            "b60205",
	"p1":            "ff9f1c",
	"p2":            "f9c74f",
}

// ResolveLabelColor picks the color for a new label: a configured override, then the
// well-known palette, then a neutral gray.
func ResolveLabelColor(labelName string, overrides map[string]string) string {
	normalizedName := strings.ToLower(strings.TrimSpace(labelName))
	if color, found := overrides[normalizedName]; found && len(color) > 0 {
		return strings.TrimPrefix(color, colorPrefixConstant)
	}
	if color, found := wellKnownLabelColors[normalizedName]; found {
		return color
	}
	return defaultLabelColorConstant
}

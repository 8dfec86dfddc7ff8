package badge

import "strings"

// Theme is a named badge color palette.
type Theme struct {
	Name        string
	Background  string
	Text        string
	ProgressBar string
	CircleFill  string
	CircleText  string
	Crown       string
}

// DefaultTheme is used whenever a requested theme name is unrecognized.
const DefaultTheme = "midnight"

var themes = map[string]Theme{
	"midnight": {
		Name:        "midnight",
		Background:  "#1e1e1e",
		Text:        "#ffffff",
		ProgressBar: "#5e17eb",
		CircleFill:  "#5e17eb",
		CircleText:  "#000000",
		Crown:       "#5e17eb",
	},
	"goldenshade": {
		Name:        "goldenshade",
		Background:  "#FFF5CC",
		Text:        "#1F1A17",
		ProgressBar: "#FFD700",
		CircleFill:  "#FFC107",
		CircleText:  "#1F1A17",
		Crown:       "#000000",
	},
	"ocean_breeze": {
		Name:        "ocean_breeze",
		Background:  "#0a192f",
		Text:        "#e6f1ff",
		ProgressBar: "#00b4d8",
		CircleFill:  "#48cae4",
		CircleText:  "#0a192f",
		Crown:       "#90e0ef",
	},
	"forest_canopy": {
		Name:        "forest_canopy",
		Background:  "#1a2e1f",
		Text:        "#e8f4ea",
		ProgressBar: "#4c956c",
		CircleFill:  "#7bb662",
		CircleText:  "#1a2e1f",
		Crown:       "#d8f3dc",
	},
	"sunset_glow": {
		Name:        "sunset_glow",
		Background:  "#2b2d42",
		Text:        "#f8f7f9",
		ProgressBar: "#ef233c",
		CircleFill:  "#ff7b00",
		CircleText:  "#2b2d42",
		Crown:       "#ff9e00",
	},
	"lavender_mist": {
		Name:        "lavender_mist",
		Background:  "#3a3042",
		Text:        "#f9f5ff",
		ProgressBar: "#9673b7",
		CircleFill:  "#d4b2d8",
		CircleText:  "#3a3042",
		Crown:       "#e9d4ff",
	},
	"monochrome": {
		Name:        "monochrome",
		Background:  "#121212",
		Text:        "#ffffff",
		ProgressBar: "#555555",
		CircleFill:  "#dddddd",
		CircleText:  "#121212",
		Crown:       "#ffffff",
	},
}

// Lookup resolves a theme by name, case-insensitively, falling back to the
// default palette for unknown names.
func Lookup(name string) Theme {
	if t, ok := themes[strings.ToLower(name)]; ok {
		return t
	}
	return themes[DefaultTheme]
}

// Names returns the available theme names.
func Names() []string {
	out := make([]string, 0, len(themes))
	for name := range themes {
		out = append(out, name)
	}
	return out
}

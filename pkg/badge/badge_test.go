package badge

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streakforge/streakd/pkg/streak"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "known theme", in: "goldenshade", want: "goldenshade"},
		{name: "case insensitive", in: "Ocean_Breeze", want: "ocean_breeze"},
		{name: "unknown falls back to default", in: "neon", want: DefaultTheme},
		{name: "empty falls back to default", in: "", want: DefaultTheme},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tt.in).Name)
		})
	}
}

func TestNamesCoversAllThemes(t *testing.T) {
	names := Names()
	assert.Len(t, names, 7)
	for _, name := range names {
		assert.Equal(t, name, Lookup(name).Name)
	}
}

func TestRender(t *testing.T) {
	theme := Lookup("midnight")
	res := streak.Result{Longest: 12, Current: 4, Total: 321}
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	out := string(Render("octocat", res, theme, Decorations{}, now))

	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "@octocat")
	assert.Contains(t, out, "June 01, 2024")
	assert.Contains(t, out, "Total Contributions: 321")
	assert.Contains(t, out, "Ongoing Streak: 4 days")
	assert.Contains(t, out, ">12<")
	assert.Contains(t, out, "DAYS")
	assert.Contains(t, out, theme.Background)
	// No decorations requested, no embedded images.
	assert.NotContains(t, out, "data:image/png")
	assert.NotContains(t, out, "avatarClip")
}

func TestRenderWithDecorations(t *testing.T) {
	theme := Lookup("goldenshade")
	deco := Decorations{
		AvatarPNG: []byte{0x89, 0x50, 0x4e, 0x47},
		CrownSVG:  CrownAsset(),
	}

	out := string(Render("octocat", streak.Result{}, theme, deco, time.Now()))

	assert.Contains(t, out, "data:image/png;base64,")
	assert.Contains(t, out, `clip-path="url(#avatarClip)"`)
	assert.Contains(t, out, "data:image/svg+xml;base64,")
}

func TestRenderTintsCrown(t *testing.T) {
	require.Contains(t, string(CrownAsset()), `fill="currentColor"`)

	theme := Lookup("monochrome")
	out := string(Render("octocat", streak.Result{}, theme, Decorations{CrownSVG: CrownAsset()}, time.Now()))

	tinted := bytes.ReplaceAll(CrownAsset(),
		[]byte(`fill="currentColor"`),
		[]byte(fmt.Sprintf(`fill=%q`, theme.Crown)))
	assert.Contains(t, out, base64.StdEncoding.EncodeToString(tinted))
}

func TestRenderAccessDenied(t *testing.T) {
	out := string(RenderAccessDenied())

	assert.Contains(t, out, "Access Denied")
	assert.Contains(t, out, "You are not authorized!")
	assert.Contains(t, out, "#FF5555")
	assert.NotContains(t, out, "@")
}

func TestRenderUserNotFound(t *testing.T) {
	out := string(RenderUserNotFound("ghost", Lookup("midnight")))

	assert.Contains(t, out, "User not found")
	assert.Contains(t, out, "@ghost")
}

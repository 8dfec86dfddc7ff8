// Package badge renders streak statistics into stand-alone SVG cards.
package badge

import (
	"bytes"
	_ "embed"
	"encoding/base64"
	"fmt"
	"time"

	svg "github.com/ajstarks/svgo"
	"github.com/streakforge/streakd/pkg/streak"
)

// Card dimensions, shared by every variant.
const (
	cardWidth  = 550
	cardHeight = 300
	cardRadius = 30
)

//go:embed assets/crown.svg
var crownSVG []byte

// CrownAsset returns the crown decoration source. The asset uses
// fill="currentColor" so Render can tint it with the theme's crown color.
func CrownAsset() []byte {
	return crownSVG
}

// Decorations are the optional extras embedded in the card. A nil or empty
// field renders the card without that element; callers never fail a render
// over a missing decoration.
type Decorations struct {
	// AvatarPNG is the user's avatar image, clipped into a circle.
	AvatarPNG []byte
	// CrownSVG is an SVG document placed above the max-streak circle.
	CrownSVG []byte
}

// Render draws the streak card for username.
func Render(username string, res streak.Result, theme Theme, deco Decorations, now time.Time) []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(cardWidth, cardHeight, 0, 0, cardWidth, cardHeight)
	canvas.Roundrect(0, 0, cardWidth, cardHeight, cardRadius, cardRadius, fill(theme.Background))

	if len(deco.AvatarPNG) > 0 {
		canvas.Def()
		canvas.ClipPath(`id="avatarClip"`)
		canvas.Circle(45, 40, 30)
		canvas.ClipEnd()
		canvas.DefEnd()
		href := "data:image/png;base64," + base64.StdEncoding.EncodeToString(deco.AvatarPNG)
		canvas.Image(15, 10, 60, 60, href, `clip-path="url(#avatarClip)"`)
	}

	canvas.Text(90, 55, "@"+username, textStyle(theme.Text, 24, true))
	canvas.Text(30, 125, now.Format("January 02, 2006"), textStyle(theme.Text, 40, true))
	canvas.Text(30, 195, fmt.Sprintf("Total Contributions: %d", res.Total), textStyle(theme.Text, 20, false))
	canvas.Text(30, 225, fmt.Sprintf("Ongoing Streak: %d days", res.Current), textStyle(theme.Text, 20, false))

	const cx, cy = 480, 125
	canvas.Circle(cx, cy, 60, fill(theme.CircleFill))
	canvas.Text(cx-25, cy+5, fmt.Sprintf("%d", res.Longest), textStyle(theme.CircleText, 45, true))
	canvas.Text(cx-23, cy+25, "DAYS", textStyle(theme.CircleText, 18, true))

	if len(deco.CrownSVG) > 0 {
		tinted := bytes.ReplaceAll(deco.CrownSVG,
			[]byte(`fill="currentColor"`),
			[]byte(fmt.Sprintf(`fill=%q`, theme.Crown)))
		href := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(tinted)
		canvas.Image(cx-33, cy-122, 69, 69, href)
	}

	canvas.End()
	return buf.Bytes()
}

// RenderAccessDenied draws the card served for usernames outside the allow
// list. It deliberately carries no user data.
func RenderAccessDenied() []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(cardWidth, cardHeight, 0, 0, cardWidth, cardHeight)
	canvas.Roundrect(0, 0, cardWidth, cardHeight, cardRadius, cardRadius, fill("#1e1e1e"))

	canvas.Text(30, 150, "Access Denied", textStyle("#ffffff", 22, true))
	canvas.Text(30, 180, "You are not authorized!", textStyle("#ffffff", 22, true))

	canvas.Roundrect(0, 0, cardWidth, cardHeight, cardRadius, cardRadius,
		"fill:none;stroke:#FF5555;stroke-width:5")
	canvas.End()
	return buf.Bytes()
}

// RenderUserNotFound draws the card served when the upstream provider has no
// such user.
func RenderUserNotFound(username string, theme Theme) []byte {
	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Startview(cardWidth, cardHeight, 0, 0, cardWidth, cardHeight)
	canvas.Roundrect(0, 0, cardWidth, cardHeight, cardRadius, cardRadius, fill(theme.Background))

	canvas.Text(30, 150, "User not found", textStyle(theme.Text, 26, true))
	canvas.Text(30, 185, "@"+username, textStyle(theme.Text, 20, false))
	canvas.End()
	return buf.Bytes()
}

func fill(color string) string {
	return "fill:" + color
}

func textStyle(color string, size int, bold bool) string {
	s := fmt.Sprintf("font-family:'Poppins',sans-serif;font-size:%dpx;fill:%s", size, color)
	if bold {
		s += ";font-weight:bold"
	}
	return s
}

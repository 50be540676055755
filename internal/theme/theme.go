// Package theme resolves the organization's color token into the palette
// the widget renders with. Resolution is total: every input, including
// garbage, yields a complete palette.
package theme

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Palette holds the three color roles the widget uses.
type Palette struct {
	Primary string `json:"primary"`
	Hover   string `json:"hover"`
	Shadow  string `json:"shadow"`
}

// defaultPalette is the blue fallback used for absent or unrecognized tokens.
var defaultPalette = Palette{
	Primary: "#3b82f6",
	Hover:   "#2563eb",
	Shadow:  "rgba(59, 130, 246, 0.4)",
}

// namedPalettes maps the predefined color names organizations can pick.
var namedPalettes = map[string]Palette{
	"black":  {Primary: "#000000", Hover: "#1a1a1a", Shadow: "rgba(0, 0, 0, 0.4)"},
	"red":    {Primary: "#ef4444", Hover: "#dc2626", Shadow: "rgba(239, 68, 68, 0.4)"},
	"orange": {Primary: "#f97316", Hover: "#ea580c", Shadow: "rgba(249, 115, 22, 0.4)"},
	"blue":   {Primary: "#3b82f6", Hover: "#2563eb", Shadow: "rgba(59, 130, 246, 0.4)"},
	"pink":   {Primary: "#ec4899", Hover: "#db2777", Shadow: "rgba(236, 72, 153, 0.4)"},
}

var hexPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{3}$|^#[0-9A-Fa-f]{6}$`)

// Resolve maps a color token to a palette. Hex tokens get a darkened
// primary and hover; named tokens use the fixed table; rgb()/hsl() literals
// pass through for both roles; anything else falls back to blue.
func Resolve(selected string) Palette {
	if selected == "" {
		return defaultPalette
	}

	if hexPattern.MatchString(selected) {
		return Palette{
			Primary: DarkenHex(selected, 10),
			Hover:   DarkenHex(selected, 20),
			Shadow:  "rgba(0, 0, 0, 0.4)",
		}
	}

	if p, ok := namedPalettes[selected]; ok {
		return p
	}

	if strings.HasPrefix(selected, "rgb") || strings.HasPrefix(selected, "hsl") {
		return Palette{Primary: selected, Hover: selected, Shadow: "rgba(0, 0, 0, 0.4)"}
	}

	return defaultPalette
}

// DarkenHex subtracts amount from each RGB channel, clamping at 0.
// Three-digit hex is expanded first. Invalid input is returned unchanged.
func DarkenHex(hex string, amount int) string {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 {
		var b strings.Builder
		for _, c := range h {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		h = b.String()
	}
	if len(h) != 6 {
		return hex
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return hex
	}

	r := clamp(int(v>>16&0xff) - amount)
	g := clamp(int(v>>8&0xff) - amount)
	b := clamp(int(v&0xff) - amount)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

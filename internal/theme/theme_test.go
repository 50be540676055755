package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveTotality(t *testing.T) {
	inputs := []string{
		"#abc",
		"#1a0c0c",
		"rgb(10, 20, 30)",
		"rgba(10, 20, 30, 0.5)",
		"hsl(210, 50%, 40%)",
		"black", "red", "orange", "blue", "pink",
		"",
		"not-a-color",
		"#zzz",
	}
	for _, in := range inputs {
		p := Resolve(in)
		assert.NotEmpty(t, p.Primary, "primary for %q", in)
		assert.NotEmpty(t, p.Hover, "hover for %q", in)
		assert.NotEmpty(t, p.Shadow, "shadow for %q", in)
	}
}

func TestResolveHexDarkens(t *testing.T) {
	p := Resolve("#646464") // 100,100,100
	assert.Equal(t, "#5a5a5a", p.Primary, "darkened by 10")
	assert.Equal(t, "#505050", p.Hover, "darkened by 20")
	assert.Equal(t, "rgba(0, 0, 0, 0.4)", p.Shadow)
}

func TestResolveNamedTokens(t *testing.T) {
	assert.Equal(t, "#000000", Resolve("black").Primary)
	assert.Equal(t, "#ef4444", Resolve("red").Primary)
	assert.Equal(t, "#f97316", Resolve("orange").Primary)
	assert.Equal(t, "#3b82f6", Resolve("blue").Primary)
	assert.Equal(t, "#ec4899", Resolve("pink").Primary)
}

func TestResolveRGBVerbatim(t *testing.T) {
	p := Resolve("rgb(1, 2, 3)")
	assert.Equal(t, "rgb(1, 2, 3)", p.Primary)
	assert.Equal(t, "rgb(1, 2, 3)", p.Hover)
}

func TestResolveGarbageFallsBack(t *testing.T) {
	assert.Equal(t, defaultPalette, Resolve("chartreuse-ish"))
	assert.Equal(t, defaultPalette, Resolve(""))
}

func TestDarkenHex(t *testing.T) {
	tests := []struct {
		hex    string
		amount int
		want   string
	}{
		{"#ffffff", 10, "#f5f5f5"},
		{"#000000", 10, "#000000"}, // clamped at 0
		{"#0a0a0a", 20, "#000000"},
		{"#fff", 0, "#ffffff"}, // 3-digit expansion, amount 0
		{"#102030", 16, "#001020"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DarkenHex(tt.hex, tt.amount), "%s - %d", tt.hex, tt.amount)
	}
}

func TestDarkenHexInvalidUnchanged(t *testing.T) {
	assert.Equal(t, "#xyz", DarkenHex("#xyz", 10))
	assert.Equal(t, "nope", DarkenHex("nope", 10))
	assert.Equal(t, "#12345", DarkenHex("#12345", 10))
}

func TestDarkenHexZeroIsIdentity(t *testing.T) {
	assert.Equal(t, "#1a2b3c", DarkenHex("#1a2b3c", 0))
}

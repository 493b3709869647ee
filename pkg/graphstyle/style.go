package graphstyle

import "strings"

// Palette is the renderer-facing snapshot of the style table.
type Palette struct {
	Colors map[Category]string `json:"colors"`
	Sizes  map[Category]int    `json:"sizes"`
}

// Color returns the color token for c.
func Color(c Category) (string, bool) {
	color, ok := graphColors[c]
	return color, ok
}

// Size returns the node size in pixels for c. Only node categories have one.
func Size(c Category) (int, bool) {
	size, ok := nodeSizes[c]
	return size, ok
}

// Colors returns a copy of the color table.
func Colors() map[Category]string {
	out := make(map[Category]string, len(graphColors))
	for k, v := range graphColors {
		out[k] = v
	}
	return out
}

// Sizes returns a copy of the size table.
func Sizes() map[Category]int {
	out := make(map[Category]int, len(nodeSizes))
	for k, v := range nodeSizes {
		out[k] = v
	}
	return out
}

// Style returns both tables as one value suitable for JSON encoding.
func Style() Palette {
	return Palette{
		Colors: Colors(),
		Sizes:  Sizes(),
	}
}

// IsRGBA reports whether token is an rgb()/rgba() literal rather than a
// theme reference the renderer has to resolve.
func IsRGBA(token string) bool {
	t := strings.ToLower(strings.TrimSpace(token))
	return (strings.HasPrefix(t, "rgba(") || strings.HasPrefix(t, "rgb(")) && strings.HasSuffix(t, ")")
}

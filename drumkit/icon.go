package drumkit

// KeyIcon returns the glyph shown next to a drum's name for its trigger key.
// Keys without a glyph return "".
func KeyIcon(key string) string {
	switch key {
	case "ArrowLeft":
		return "←"
	case "ArrowRight":
		return "→"
	case "ArrowUp":
		return "↑"
	case "ArrowDown":
		return "↓"
	case " ":
		return "(space)"
	}
	return ""
}

package utils

// TruncateRunes shortens s to at most max runes.
// Rune-based so multi-byte anchor text is never cut mid-character.
func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

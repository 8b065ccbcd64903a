package lsp

import "unicode/utf16"

// byteColumn converts an LSP character offset (UTF-16 code units) into a
// byte offset within line. Offsets past the end clamp to len(line), and an
// offset inside a surrogate pair rounds down to the rune start.
func byteColumn(line string, character uint32) int {
	var units uint32
	for i, r := range line {
		n := uint32(utf16.RuneLen(r))
		if units+n > character {
			return i
		}
		units += n
	}
	return len(line)
}

// utf16Column converts a byte offset within line into UTF-16 code units.
func utf16Column(line string, column int) uint32 {
	if column > len(line) {
		column = len(line)
	}
	var units uint32
	for _, r := range line[:max(column, 0)] {
		units += uint32(utf16.RuneLen(r))
	}
	return units
}

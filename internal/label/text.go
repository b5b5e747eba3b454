package label

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// asciiFold strips combining marks and replaces what is left outside ASCII.
// ZPL's default code page has no accented glyphs.
var asciiFold = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Map(func(r rune) rune {
		switch {
		case r == '^' || r == '~':
			// ZPL command prefixes inside a field would start a new command.
			return ' '
		case r > unicode.MaxASCII:
			return '?'
		}
		return r
	}),
)

func sanitize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	out, _, err := transform.String(asciiFold, value)
	if err != nil {
		return value
	}
	return strings.TrimSpace(out)
}

// center pads s to width with the extra space placed the way Python's
// str.center does, so existing templates line up unchanged.
func center(s string, width int) string {
	marg := width - len(s)
	if marg <= 0 {
		return s
	}
	left := marg/2 + (marg & width & 1)
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", marg-left)
}

// wrap breaks text into at most maxLines lines of width characters, splitting
// after hyphens in compound words and breaking words longer than the space
// left on a line. When the text does not fit, the last line is shortened to
// end with placeholder. Output matches Python's textwrap.wrap defaults.
func wrap(text string, width, maxLines int, placeholder string) []string {
	if width <= 0 {
		return nil
	}
	chunks := splitChunks(text)

	var lines []string
	for i := 0; i < len(chunks); {
		if len(lines) > 0 && isBlank(chunks[i]) {
			i++
			continue
		}
		var cur []string
		curLen := 0
		for i < len(chunks) && curLen+len(chunks[i]) <= width {
			cur = append(cur, chunks[i])
			curLen += len(chunks[i])
			i++
		}
		if i < len(chunks) && len(chunks[i]) > width {
			head := breakLongWord(chunks[i], width-curLen)
			cur = append(cur, head)
			curLen += len(head)
			chunks[i] = chunks[i][len(head):]
		}
		if n := len(cur); n > 0 && isBlank(cur[n-1]) {
			curLen -= len(cur[n-1])
			cur = cur[:n-1]
		}
		if len(cur) == 0 {
			continue
		}

		done := i == len(chunks) || (i == len(chunks)-1 && isBlank(chunks[i]))
		if maxLines <= 0 || len(lines)+1 < maxLines || (done && curLen <= width) {
			lines = append(lines, strings.Join(cur, ""))
			continue
		}
		return truncate(lines, cur, curLen, width, placeholder)
	}
	return lines
}

// truncate finishes the last allowed line with placeholder, dropping chunks
// from cur until it fits or moving it onto the previous line.
func truncate(lines, cur []string, curLen, width int, placeholder string) []string {
	for n := len(cur); n > 0; n = len(cur) {
		if !isBlank(cur[n-1]) && curLen+len(placeholder) <= width {
			return append(lines, strings.Join(cur, "")+placeholder)
		}
		curLen -= len(cur[n-1])
		cur = cur[:n-1]
	}
	if n := len(lines); n > 0 {
		prev := strings.TrimRight(lines[n-1], " ")
		if len(prev)+len(placeholder) <= width {
			lines[n-1] = prev + placeholder
			return lines
		}
	}
	return append(lines, strings.TrimLeft(placeholder, " "))
}

// breakLongWord returns the part of chunk that goes on the current line,
// preferring to end just after a hyphen. It is empty when the line is full.
func breakLongWord(chunk string, space int) string {
	end := space
	if hyphen := strings.LastIndexByte(chunk[:space], '-'); hyphen > 0 && strings.Trim(chunk[:hyphen], "-") != "" {
		end = hyphen + 1
	}
	return chunk[:end]
}

// splitChunks cuts text into runs of spaces and words, with compound words
// like Spider-Man split after the hyphen.
func splitChunks(text string) []string {
	text = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)

	var chunks []string
	for len(text) > 0 {
		end := strings.IndexByte(text, ' ')
		if end == 0 {
			end = len(text) - len(strings.TrimLeft(text, " "))
			chunks = append(chunks, text[:end])
			text = text[end:]
			continue
		}
		if end < 0 {
			end = len(text)
		}
		word := text[:end]
		start := 0
		for k := 1; k < len(word)-1; k++ {
			if word[k] != '-' {
				continue
			}
			if r := dashRun(word, k); r > 0 {
				// A double dash between words stands alone.
				if start < k {
					chunks = append(chunks, word[start:k])
				}
				chunks = append(chunks, word[k:r])
				start = r
				k = r - 1
				continue
			}
			if hyphenBreak(word, k) {
				chunks = append(chunks, word[start : k+1])
				start = k + 1
			}
		}
		chunks = append(chunks, word[start:])
		text = text[end:]
	}
	return chunks
}

// hyphenBreak reports whether word may be split after the hyphen at k: it
// follows two letters (or a letter-hyphen-letter run) and precedes one.
func hyphenBreak(word string, k int) bool {
	before := (k >= 2 && isLetter(word[k-1]) && isLetter(word[k-2])) ||
		(k >= 3 && isLetter(word[k-1]) && word[k-2] == '-' && isLetter(word[k-3]))
	if !before || !isLetter(word[k+1]) {
		return false
	}
	if k+2 < len(word) && isLetter(word[k+2]) {
		return true
	}
	return k+3 < len(word) && word[k+2] == '-' && isLetter(word[k+3])
}

// dashRun returns the end of a run of two or more hyphens starting at k that
// sits between word characters, or 0 when there is none.
func dashRun(word string, k int) int {
	if !isWordPunct(word[k-1]) {
		return 0
	}
	r := k
	for r < len(word) && word[r] == '-' {
		r++
	}
	if r-k < 2 || r == len(word) || !isWordByte(word[r]) {
		return 0
	}
	return r
}

func isWordByte(b byte) bool {
	return isLetter(b) || b >= '0' && b <= '9'
}

func isWordPunct(b byte) bool {
	return isWordByte(b) || strings.IndexByte(`!"'&.,?`, b) >= 0
}

func isLetter(b byte) bool {
	return b == '_' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

func isBlank(chunk string) bool {
	return strings.TrimSpace(chunk) == ""
}

package textstat

// CountWords counts maximal runs of non-whitespace bytes, the same
// definition `wc -w` uses in the C locale.
func CountWords(b []byte) int {
	words := 0
	inWord := false
	for _, c := range b {
		if isSpace(c) {
			inWord = false
			continue
		}
		if !inWord {
			words++
			inWord = true
		}
	}
	return words
}

// CountWordsString is CountWords for strings.
func CountWordsString(s string) int {
	return CountWords([]byte(s))
}

// ReadingMinutes estimates reading time, rounded up to whole minutes.
func ReadingMinutes(words, wordsPerMinute int) int {
	if words <= 0 {
		return 0
	}
	if wordsPerMinute <= 0 {
		wordsPerMinute = 200
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// IsBlank reports whether b holds only whitespace.
func IsBlank(b []byte) bool {
	for _, c := range b {
		if !isSpace(c) {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

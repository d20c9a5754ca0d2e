package model

import (
	"strings"
	"unicode"
)

// DefaultLabeler derives a label from a field id when the document does not
// name the field: `portraitUrl` becomes "Portrait Url", `jump_target` becomes
// "Jump Target".
func DefaultLabeler(id string) string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, capitalise(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(id)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r) || r == '.':
			flush()
			continue
		case i > 0 && startsWord(runes[i-1], r):
			flush()
		}
		current = append(current, r)
	}
	flush()
	return strings.Join(words, " ")
}

func startsWord(prev, r rune) bool {
	switch {
	case unicode.IsLower(prev) && unicode.IsUpper(r):
		return true
	case unicode.IsLetter(prev) && unicode.IsDigit(r):
		return true
	case unicode.IsDigit(prev) && unicode.IsLetter(r):
		return true
	}
	return false
}

func capitalise(word string) string {
	runes := []rune(strings.ToLower(word))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

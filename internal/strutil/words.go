// Package strutil holds small string-shape helpers shared by the
// TypeNames attribute (combined-name derivation) and the naming
// engine (style functions): splitting an identifier into words and
// re-casing them.
package strutil

import (
	"strings"
	"unicode"
)

// SplitWords breaks s into lowercase word fragments on case
// boundaries (camelCase, PascalCase, acronym runs) and on any
// non-alphanumeric separator (snake_case, kebab-case, spaces).
func SplitWords(s string) []string {
	var words []string
	var cur []rune
	runes := []rune(s)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = nil
		}
	}
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if i > 0 {
				prev := runes[i-1]
				switch {
				case unicode.IsLower(prev) && unicode.IsUpper(r):
					flush()
				case unicode.IsUpper(prev) && unicode.IsUpper(r) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
					flush()
				case (unicode.IsLetter(prev) && unicode.IsDigit(r)) || (unicode.IsDigit(prev) && unicode.IsLetter(r)):
					flush()
				}
			}
			cur = append(cur, r)
		default:
			flush()
		}
	}
	flush()
	return words
}

// Join re-assembles words with sep between them.
func Join(words []string, sep string) string { return strings.Join(words, sep) }

// UpperFirst upper-cases the first rune of s, leaving the rest alone.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// LowerFirst lower-cases the first rune of s, leaving the rest alone.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// PascalCase joins words as UpperCamelCase.
func PascalCase(words []string) string {
	var b strings.Builder
	for _, w := range words {
		b.WriteString(UpperFirst(w))
	}
	return b.String()
}

// CamelCase joins words as lowerCamelCase.
func CamelCase(words []string) string {
	p := PascalCase(words)
	return LowerFirst(p)
}

// CommonPrefixWords returns the longest run of identical words shared
// as a prefix across every word-list in lists; lists with fewer words
// than the found prefix length are not possible since the search
// stops at the shortest list.
func CommonPrefixWords(lists [][]string) []string {
	return commonRun(lists, false)
}

// CommonSuffixWords returns the longest run of identical words shared
// as a suffix across every word-list in lists.
func CommonSuffixWords(lists [][]string) []string {
	return commonRun(lists, true)
}

func commonRun(lists [][]string, fromEnd bool) []string {
	if len(lists) == 0 {
		return nil
	}
	minLen := len(lists[0])
	for _, l := range lists {
		if len(l) < minLen {
			minLen = len(l)
		}
	}
	var run []string
	for i := 0; i < minLen; i++ {
		idx := i
		if fromEnd {
			idx = -1 - i
		}
		word := at(lists[0], idx)
		for _, l := range lists[1:] {
			if at(l, idx) != word {
				return run
			}
		}
		if fromEnd {
			run = append([]string{word}, run...)
		} else {
			run = append(run, word)
		}
	}
	return run
}

func at(words []string, idx int) string {
	if idx >= 0 {
		return words[idx]
	}
	return words[len(words)+idx]
}

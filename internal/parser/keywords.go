package parser

import (
	"fmt"
	"sort"
	"strings"
)

// KeywordSet holds reserved words that are never recorded as calls, even when
// followed by "(" (if, while, sizeof, casts to int, ...)
type KeywordSet map[string]struct{}

// NewKeywordSet builds a KeywordSet from words
func NewKeywordSet(words ...string) KeywordSet {
	ks := make(KeywordSet, len(words))
	for _, w := range words {
		ks[w] = struct{}{}
	}
	return ks
}

// Contains reports whether word is reserved
func (ks KeywordSet) Contains(word string) bool {
	_, ok := ks[word]
	return ok
}

// Union returns a new set with the words of both sets
func (ks KeywordSet) Union(other KeywordSet) KeywordSet {
	out := make(KeywordSet, len(ks)+len(other))
	for w := range ks {
		out[w] = struct{}{}
	}
	for w := range other {
		out[w] = struct{}{}
	}
	return out
}

// Words returns the reserved words in sorted order
func (ks KeywordSet) Words() []string {
	words := make([]string, 0, len(ks))
	for w := range ks {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// CKeywords is the C89 keyword list plus inline
var CKeywords = NewKeywordSet(
	"auto", "break", "case", "char", "const", "continue", "default",
	"do", "double", "else", "enum", "extern", "float", "for", "goto",
	"if", "inline", "int", "long", "register", "return", "short",
	"signed", "sizeof", "static", "struct", "switch", "typedef",
	"union", "unsigned", "void", "volatile", "while",
)

// CppKeywords adds the C++ keywords that show up right before "("
var CppKeywords = CKeywords.Union(NewKeywordSet(
	"alignas", "alignof", "bool", "catch", "const_cast", "constexpr",
	"decltype", "delete", "dynamic_cast", "explicit", "new", "noexcept",
	"operator", "reinterpret_cast", "static_assert", "static_cast",
	"throw", "typeid", "wchar_t",
))

// KeywordSetByName resolves a keyword family name ("c" or "cpp")
func KeywordSetByName(name string) (KeywordSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "c":
		return CKeywords, nil
	case "cpp", "c++":
		return CppKeywords, nil
	default:
		return nil, fmt.Errorf("unknown keyword set: %s (supported: c, cpp)", name)
	}
}

package parser

import "strings"

// Kind tells the scanner what to do with a matched token
type Kind int

const (
	KindSilent          Kind = iota // whitespace, comments, other directives
	KindInclude                     // #include, captures the header path
	KindParenOpen                   // "(" confirms a pending call name
	KindMemberSeparator             // "." or "->"
	KindIdentifier                  // bare identifier
	KindOther                       // literals and every other punctuation
)

// String returns a string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindSilent:
		return "silent"
	case KindInclude:
		return "include"
	case KindParenOpen:
		return "paren"
	case KindMemberSeparator:
		return "separator"
	case KindIdentifier:
		return "identifier"
	case KindOther:
		return "other"
	default:
		return "unknown"
	}
}

// Tag names the lexical category a rule recognizes
type Tag string

const (
	TagWhitespace   Tag = "whitespace"
	TagBlockComment Tag = "block_comment"
	TagLineComment  Tag = "line_comment"
	TagInclude      Tag = "include"
	TagDirective    Tag = "directive"
	TagSeparator    Tag = "separator"
	TagOperator     Tag = "operator"
	TagNoCall       Tag = "no_call"
	TagParen        Tag = "paren"
	TagString       Tag = "string"
	TagChar         Tag = "char"
	TagFloat        Tag = "float"
	TagInteger      Tag = "integer"
	TagIdentifier   Tag = "identifier"
)

// matchFunc reports the end offset of a match starting exactly at pos, or -1.
// capture is only set by rules that extract a value (the include path).
type matchFunc func(src string, pos int) (end int, capture string)

// Rule pairs an anchored matcher with the kind of token it produces
type Rule struct {
	Tag   Tag
	Kind  Kind
	match matchFunc
}

// ruleTable is tried top to bottom at every offset; the first match wins.
// Order matters:
//   - whitespace and comments come before anything that produces a token,
//     so "/" of a comment is never read as division;
//   - include comes before the generic directive rule;
//   - separators come before operators so "->" is not read as "-";
//   - "]" is kept apart from the call-preserving punctuation;
//   - floats come before integers.
var ruleTable = []Rule{
	{TagWhitespace, KindSilent, matchWhitespace},
	{TagBlockComment, KindSilent, matchBlockComment},
	{TagLineComment, KindSilent, matchLineComment},
	{TagInclude, KindInclude, matchInclude},
	{TagDirective, KindSilent, matchDirective},
	{TagSeparator, KindMemberSeparator, matchSeparator},
	{TagOperator, KindOther, matchOperator},
	{TagNoCall, KindOther, matchByte(']')},
	{TagParen, KindParenOpen, matchByte('(')},
	{TagString, KindOther, matchString},
	{TagChar, KindOther, matchChar},
	{TagFloat, KindOther, matchFloat},
	{TagInteger, KindOther, matchInteger},
	{TagIdentifier, KindIdentifier, matchIdentifier},
}

// Rules returns a copy of the rule table in match order
func Rules() []Rule {
	rules := make([]Rule, len(ruleTable))
	copy(rules, ruleTable)
	return rules
}

// multiCharOperators must be tried longest first
var multiCharOperators = []string{
	"<<=", ">>=",
	"<<", ">>", "||", "&&", "<=", ">=", "==", "!=",
	"*=", "/=", "%=", "+=", "-=", "&=", "|=", "^=", "++", "--",
}

const singleCharOperators = "-+*/%|&~^!<>=;,?:)[{}"

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func matchByte(b byte) matchFunc {
	return func(src string, pos int) (int, string) {
		if src[pos] == b {
			return pos + 1, ""
		}
		return -1, ""
	}
}

func matchWhitespace(src string, pos int) (int, string) {
	end := pos
	for end < len(src) && isSpace(src[end]) {
		end++
	}
	if end == pos {
		return -1, ""
	}
	return end, ""
}

// matchBlockComment stops at the first "*/". An unterminated comment runs to
// the end of the input.
func matchBlockComment(src string, pos int) (int, string) {
	if !strings.HasPrefix(src[pos:], "/*") {
		return -1, ""
	}
	idx := strings.Index(src[pos+2:], "*/")
	if idx < 0 {
		return len(src), ""
	}
	return pos + 2 + idx + 2, ""
}

func matchLineComment(src string, pos int) (int, string) {
	if !strings.HasPrefix(src[pos:], "//") {
		return -1, ""
	}
	idx := strings.IndexByte(src[pos:], '\n')
	if idx < 0 {
		return len(src), ""
	}
	return pos + idx + 1, ""
}

// matchInclude recognizes #include "path" and #include <path>. Blanks are
// allowed after the hash and before the path.
func matchInclude(src string, pos int) (int, string) {
	if src[pos] != '#' {
		return -1, ""
	}
	i := pos + 1
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if !strings.HasPrefix(src[i:], "include") {
		return -1, ""
	}
	i += len("include")

	for i < len(src) && isSpace(src[i]) {
		i++
	}
	if i >= len(src) || (src[i] != '"' && src[i] != '<') {
		return -1, ""
	}
	i++

	start := i
	for i < len(src) && src[i] != '"' && src[i] != '>' {
		i++
	}
	if i == start || i >= len(src) {
		return -1, ""
	}
	return i + 1, src[start:i]
}

// matchDirective consumes any other preprocessor line, following
// backslash-newline continuations.
func matchDirective(src string, pos int) (int, string) {
	if src[pos] != '#' {
		return -1, ""
	}
	i := pos + 1
	for i < len(src) {
		switch {
		case src[i] == '\\' && strings.HasPrefix(src[i+1:], "\r\n"):
			i += 3
		case src[i] == '\\' && strings.HasPrefix(src[i+1:], "\n"):
			i += 2
		case src[i] == '\n':
			return i + 1, ""
		default:
			i++
		}
	}
	return len(src), ""
}

// matchSeparator leaves ".5" alone so the float rule can take it.
func matchSeparator(src string, pos int) (int, string) {
	if strings.HasPrefix(src[pos:], "->") {
		return pos + 2, ""
	}
	if src[pos] == '.' && !(pos+1 < len(src) && isDigit(src[pos+1])) {
		return pos + 1, ""
	}
	return -1, ""
}

func matchOperator(src string, pos int) (int, string) {
	rest := src[pos:]
	for _, op := range multiCharOperators {
		if strings.HasPrefix(rest, op) {
			return pos + len(op), ""
		}
	}
	if strings.IndexByte(singleCharOperators, src[pos]) >= 0 {
		return pos + 1, ""
	}
	return -1, ""
}

// matchQuoted matches a delimited literal with backslash escapes. A raw
// newline or the end of input before the closing delimiter is no match.
func matchQuoted(src string, pos int, delim byte) int {
	if pos >= len(src) || src[pos] != delim {
		return -1
	}
	i := pos + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			if i+1 >= len(src) {
				return -1
			}
			i += 2
		case '\n':
			return -1
		case delim:
			return i + 1
		default:
			i++
		}
	}
	return -1
}

func matchString(src string, pos int) (int, string) {
	return matchQuoted(src, pos, '"'), ""
}

func matchChar(src string, pos int) (int, string) {
	if src[pos] == 'L' {
		if end := matchQuoted(src, pos+1, '\''); end >= 0 {
			return end, ""
		}
		return -1, ""
	}
	return matchQuoted(src, pos, '\''), ""
}

func scanDigits(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	return i
}

// scanExponent returns the end of an exponent part starting at i, or i when
// there is none.
func scanExponent(src string, i int) int {
	if i >= len(src) || (src[i] != 'e' && src[i] != 'E') {
		return i
	}
	j := i + 1
	if j < len(src) && (src[j] == '+' || src[j] == '-') {
		j++
	}
	end := scanDigits(src, j)
	if end == j {
		return i
	}
	return end
}

// matchFloat recognizes 1.5, 1., .5, 1.5e-3 and 2e10 with an optional
// f/F/l/L suffix.
func matchFloat(src string, pos int) (int, string) {
	i := scanDigits(src, pos)
	intDigits := i - pos

	switch {
	case i < len(src) && src[i] == '.':
		frac := scanDigits(src, i+1)
		if intDigits == 0 && frac == i+1 {
			return -1, ""
		}
		i = scanExponent(src, frac)
	case intDigits > 0:
		exp := scanExponent(src, i)
		if exp == i {
			return -1, ""
		}
		i = exp
	default:
		return -1, ""
	}

	if i < len(src) && strings.IndexByte("fFlL", src[i]) >= 0 {
		i++
	}
	return i, ""
}

// matchInteger recognizes decimal, 0x hex and 0b binary integers with
// optional u/l suffixes in any order and case.
func matchInteger(src string, pos int) (int, string) {
	i := pos
	rest := src[pos:]
	switch {
	case len(rest) > 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') && isHexDigit(rest[2]):
		i += 2
		for i < len(src) && isHexDigit(src[i]) {
			i++
		}
	case len(rest) > 2 && rest[0] == '0' && (rest[1] == 'b' || rest[1] == 'B') && (rest[2] == '0' || rest[2] == '1'):
		i += 2
		for i < len(src) && (src[i] == '0' || src[i] == '1') {
			i++
		}
	default:
		i = scanDigits(src, pos)
		if i == pos {
			return -1, ""
		}
	}

	for n := 0; n < 3 && i < len(src) && strings.IndexByte("uUlL", src[i]) >= 0; n++ {
		i++
	}
	return i, ""
}

func matchIdentifier(src string, pos int) (int, string) {
	if !isIdentStart(src[pos]) {
		return -1, ""
	}
	i := pos + 1
	for i < len(src) && isIdentChar(src[i]) {
		i++
	}
	return i, ""
}

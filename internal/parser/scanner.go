package parser

// RecoveryPolicy names what the scanner does when no rule matches
type RecoveryPolicy int

const (
	// SkipAndReset drops one byte and abandons any pending call name.
	SkipAndReset RecoveryPolicy = iota
)

// String returns a string representation of RecoveryPolicy
func (p RecoveryPolicy) String() string {
	switch p {
	case SkipAndReset:
		return "skip-and-reset"
	default:
		return "unknown"
	}
}

// Token is one rule match, as reported by ScanAll
type Token struct {
	Tag     Tag
	Kind    Kind
	Text    string
	Pos     int    // byte offset of the first character
	Capture string // include path for KindInclude, empty otherwise
}

// Scanner extracts includes and call-like identifiers from C/C++-like text.
// A Scanner holds no per-input state and is safe for concurrent use.
type Scanner struct {
	keywords KeywordSet
	recovery RecoveryPolicy
}

// Option configures a Scanner
type Option func(*Scanner)

// WithKeywords replaces the reserved word set consulted at "("
func WithKeywords(ks KeywordSet) Option {
	return func(s *Scanner) {
		if ks != nil {
			s.keywords = ks
		}
	}
}

// NewScanner creates a scanner using CKeywords unless told otherwise
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		keywords: CKeywords,
		recovery: SkipAndReset,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recovery returns the policy applied to unmatched input
func (s *Scanner) Recovery() RecoveryPolicy {
	return s.recovery
}

// Keywords returns the reserved word set
func (s *Scanner) Keywords() KeywordSet {
	return s.keywords
}

// next finds the first rule matching exactly at pos.
func next(src string, pos int) (rule *Rule, end int, capture string, ok bool) {
	for i := range ruleTable {
		end, capture := ruleTable[i].match(src, pos)
		if end > pos {
			return &ruleTable[i], end, capture, true
		}
	}
	return nil, pos, "", false
}

// Parse scans src from start to end and returns what it found. It never
// fails: bytes no rule accepts are skipped under the recovery policy.
func (s *Scanner) Parse(src string) *Result {
	result := NewResult()
	var name pending

	pos := 0
	for pos < len(src) {
		rule, end, capture, ok := next(src, pos)
		if !ok {
			// SkipAndReset
			result.Skipped++
			name.reset()
			pos++
			continue
		}

		switch rule.Kind {
		case KindSilent:
		case KindInclude:
			result.Includes[capture] = struct{}{}
			name.reset()
		case KindParenOpen:
			if call, ok := name.take(); ok && !s.keywords.Contains(call) {
				result.Calls[call]++
			}
		case KindMemberSeparator:
			name.separator()
		case KindIdentifier:
			name.identifier(src[pos:end])
		default:
			name.reset()
		}

		pos = end
	}

	return result
}

// ScanAll returns every rule match in order, including silent ones.
// Skipped bytes produce no token.
func (s *Scanner) ScanAll(src string) []Token {
	var tokens []Token
	pos := 0
	for pos < len(src) {
		rule, end, capture, ok := next(src, pos)
		if !ok {
			pos++
			continue
		}
		tokens = append(tokens, Token{
			Tag:     rule.Tag,
			Kind:    rule.Kind,
			Text:    src[pos:end],
			Pos:     pos,
			Capture: capture,
		})
		pos = end
	}
	return tokens
}

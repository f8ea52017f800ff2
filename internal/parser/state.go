package parser

// pendingState is where the call-name tracker currently stands
type pendingState int

const (
	pendingEmpty           pendingState = iota // nothing tracked
	pendingName                                // a name or dotted chain, may be a call target
	pendingAwaitingSegment                     // chain ended in "." or "->", needs another identifier
)

// pending is the identifier chain waiting for a "(" or for abandonment.
// Segments are always joined with ".", whether the source used "." or "->".
type pending struct {
	state pendingState
	name  string
}

func (p *pending) reset() {
	p.state = pendingEmpty
	p.name = ""
}

func (p *pending) identifier(ident string) {
	switch p.state {
	case pendingEmpty:
		p.state = pendingName
		p.name = ident
	case pendingAwaitingSegment:
		p.state = pendingName
		p.name = p.name + "." + ident
	case pendingName:
		// Two bare identifiers in a row ("void setup") never form a call name.
		p.reset()
	}
}

func (p *pending) separator() {
	if p.state == pendingName {
		p.state = pendingAwaitingSegment
	}
}

// take returns the name a "(" would complete, and clears the tracker.
func (p *pending) take() (string, bool) {
	name, ok := p.name, p.state == pendingName
	p.reset()
	return name, ok
}

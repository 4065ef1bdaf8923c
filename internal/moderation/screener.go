package moderation

import (
	"fmt"
	"regexp"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Verdict is the outcome of screening a message text.
type Verdict int

const (
	VerdictSafe Verdict = iota
	VerdictUnsafe
)

func (v Verdict) String() string {
	if v == VerdictUnsafe {
		return "unsafe"
	}
	return "safe"
}

// markupPattern matches script/markup injection signatures: script tags,
// inline event handlers, javascript: URIs, eval calls and embedding tags.
var markupPattern = regexp.MustCompile(`(?i)<script|onerror=|onload=|onclick=|onmouseover=|javascript:|eval\(|iframe|embed|object`)

// Screener classifies raw message text as safe or unsafe. It is a pure
// function of the input text and two fixed rule sets: the markup pattern
// above and a denylist of offensive terms matched as plain case-insensitive
// substrings. Substring matching deliberately over-triggers on terms embedded
// in longer words; that keeps the gate deterministic and auditable.
type Screener struct {
	lexicon *goahocorasick.Machine
}

// NewScreener builds a screener over the given denylist. An empty denylist
// disables the lexicon check.
func NewScreener(denylist []string) (*Screener, error) {
	s := &Screener{}
	if len(denylist) == 0 {
		return s, nil
	}

	patterns := make([][]rune, len(denylist))
	for i, term := range denylist {
		patterns[i] = []rune(strings.ToLower(term))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("build lexicon automaton: %w", err)
	}
	s.lexicon = m
	return s, nil
}

// Screen evaluates text against both rule sets; either match makes the
// verdict unsafe.
func (s *Screener) Screen(text string) Verdict {
	if markupPattern.MatchString(text) {
		return VerdictUnsafe
	}
	if s.lexicon != nil {
		runes := []rune(strings.ToLower(text))
		if len(s.lexicon.MultiPatternSearch(runes, true)) > 0 {
			return VerdictUnsafe
		}
	}
	return VerdictSafe
}

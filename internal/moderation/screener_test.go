package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScreener_LexiconCheck(t *testing.T) {
	req := require.New(t)
	s, err := NewScreener(DefaultDenylist)
	req.NoError(err)

	tests := []struct {
		name    string
		input   string
		verdict Verdict
	}{
		{
			name:    "clean text",
			input:   "Hola a todos, mañana hay examen de Despliegue",
			verdict: VerdictSafe,
		},
		{
			name:    "denylist term",
			input:   "esto es una mierda",
			verdict: VerdictUnsafe,
		},
		{
			name:    "denylist term uppercase",
			input:   "esto es una MIERDA",
			verdict: VerdictUnsafe,
		},
		{
			name:    "denylist term mixed case mid-sentence",
			input:   "no seas IdIoTa anda",
			verdict: VerdictUnsafe,
		},
		{
			name:    "multi-word denylist entry",
			input:   "eres un hijo de puta",
			verdict: VerdictUnsafe,
		},
		{
			// substring matching deliberately over-triggers on terms embedded
			// in longer words
			name:    "term inside longer word",
			input:   "recetas de pollastre al horno",
			verdict: VerdictUnsafe,
		},
		{
			name:    "accented term",
			input:   "menudo cabrón estás hecho",
			verdict: VerdictUnsafe,
		},
		{
			name:    "empty text",
			input:   "",
			verdict: VerdictSafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.verdict, s.Screen(tt.input))
		})
	}
}

func TestScreener_PatternCheck(t *testing.T) {
	req := require.New(t)
	s, err := NewScreener(DefaultDenylist)
	req.NoError(err)

	tests := []struct {
		name    string
		input   string
		verdict Verdict
	}{
		{
			name:    "script tag",
			input:   "hola <script>alert(1)</script>",
			verdict: VerdictUnsafe,
		},
		{
			name:    "script tag uppercase",
			input:   "<SCRIPT src=x>",
			verdict: VerdictUnsafe,
		},
		{
			name:    "onerror handler",
			input:   `<img src=x onerror=alert(1)>`,
			verdict: VerdictUnsafe,
		},
		{
			name:    "onclick handler",
			input:   `un enlace onclick=hack() normal`,
			verdict: VerdictUnsafe,
		},
		{
			name:    "javascript uri",
			input:   "pincha aqui javascript:doEvil()",
			verdict: VerdictUnsafe,
		},
		{
			name:    "eval call",
			input:   "eval(atob('...'))",
			verdict: VerdictUnsafe,
		},
		{
			name:    "iframe",
			input:   "mira esto <iframe src=x>",
			verdict: VerdictUnsafe,
		},
		{
			// pattern fires regardless of how much safe text surrounds it
			name:    "pattern buried in safe content",
			input:   "Apuntes de Inglés para el viernes <embed> y poco más que contar por aquí",
			verdict: VerdictUnsafe,
		},
		{
			name:    "angle brackets without signature",
			input:   "2 < 3 y 5 > 4",
			verdict: VerdictSafe,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.verdict, s.Screen(tt.input))
		})
	}
}

func TestScreener_EmptyDenylist(t *testing.T) {
	req := require.New(t)
	s, err := NewScreener(nil)
	req.NoError(err)

	// lexicon check disabled, pattern check still active
	req.Equal(VerdictSafe, s.Screen("esto es una mierda"))
	req.Equal(VerdictUnsafe, s.Screen("<script>alert(1)</script>"))
}

func TestScreener_Deterministic(t *testing.T) {
	req := require.New(t)
	s, err := NewScreener(DefaultDenylist)
	req.NoError(err)

	const input = "texto con joder dentro"
	first := s.Screen(input)
	for i := 0; i < 10; i++ {
		req.Equal(first, s.Screen(input))
	}
}

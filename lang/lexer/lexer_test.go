package lexer_test

import (
	"testing"

	"github.com/elahtrebor/push/lang/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLex(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single word", "echo", []string{"echo"}},
		{"args", "echo hello world", []string{"echo", "hello", "world"}},
		{"pipe", "echo hi|upper", []string{"echo", "hi", "|", "upper"}},
		{"pipeline with spaces", "echo hi | upper", []string{"echo", "hi", "|", "upper"}},
		{"semi", "echo a;echo b", []string{"echo", "a", ";", "echo", "b"}},
		{"redirect", "echo a > f.txt", []string{"echo", "a", ">", "f.txt"}},
		{"append", "echo a >> f.txt", []string{"echo", "a", ">>", "f.txt"}},
		{"andand", "true && echo yes", []string{"true", "&&", "echo", "yes"}},
		{"oror", "false || echo fallback", []string{"false", "||", "echo", "fallback"}},
		{"trailing bg", "sleep 1 &", []string{"sleep", "1", "&"}},
		{"quoted literal operators", `echo "a|b;c>d"`, []string{"echo", "a|b;c>d"}},
		{"quoted spaces", `echo "hello world"`, []string{"echo", "hello world"}},
		{"adjacent quotes", `echo "a""b"`, []string{"echo", "ab"}},
		{"unterminated quote lenient", `echo "abc`, []string{"echo", "abc"}},
		{"variable ref", "echo $x", []string{"echo", "$x"}},
		{"assignment token", "x=5", []string{"x=5"}},
		{"only semicolon", ";", []string{";"}},
		{"only whitespace", "   ", nil},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			got := lexer.Lex(tc.in)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestStripBackground(t *testing.T) {
	toks, bg := lexer.StripBackground([]string{"sleep", "1", "&"})
	require.True(t, bg)
	assert.Equal(t, []string{"sleep", "1"}, toks)

	toks, bg = lexer.StripBackground([]string{"echo", "hi"})
	require.False(t, bg)
	assert.Equal(t, []string{"echo", "hi"}, toks)

	toks, bg = lexer.StripBackground(nil)
	require.False(t, bg)
	assert.Nil(t, toks)
}

// TestRoundTrip checks spec §8's quoted-concatenation round-trip property:
// re-joining tokens with spaces (quoting any token that itself contains
// whitespace or an operator character) must re-lex to the same sequence.
func TestRoundTrip(t *testing.T) {
	lines := []string{
		"echo hello world",
		"echo hi | upper",
		`echo "hello world" | write f.txt`,
		"x=5; echo $x",
		"sleep 1 &",
	}
	for _, line := range lines {
		toks := lexer.Lex(line)
		rebuilt := requote(toks)
		got := lexer.Lex(rebuilt)
		assert.Equal(t, toks, got, "line: %s", line)
	}
}

func requote(toks []string) string {
	var out string
	for i, tok := range toks {
		if i > 0 {
			out += " "
		}
		if needsQuote(tok) {
			out += `"` + tok + `"`
		} else {
			out += tok
		}
	}
	return out
}

func needsQuote(tok string) bool {
	if tok == "" {
		return true
	}
	for i := 0; i < len(tok); i++ {
		switch tok[i] {
		case ' ', '\t', '|', ';', '>', '&':
			return true
		}
	}
	return false
}

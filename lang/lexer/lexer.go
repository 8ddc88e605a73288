// Package lexer turns a single entered line into a flat sequence of string
// tokens, honoring double-quoted regions and the shell's multi-character
// operators.
//
// The scan loop's shape (advance/peek over a byte offset) follows
// mna-nenuphar/lang/scanner's Scanner, but the grammar it recognizes — quote
// toggling and the `| ; > >> && || &` operator set — is
// original_source/pushvm/pushvm.py's tokenize().
package lexer

import "github.com/elahtrebor/push/lang/token"

// Lex splits line into tokens. A trailing '&' token (the background marker)
// is left in place; callers remove it with StripBackground before compiling.
//
// An unterminated double-quoted region is lenient: whatever was buffered is
// emitted as a final token rather than raising an error.
func Lex(line string) []string {
	l := &lexer{src: line, n: len(line)}
	return l.scan()
}

type lexer struct {
	src string
	n   int
	off int

	out []string
	buf []byte
	inQ bool
}

func (l *lexer) scan() []string {
	for l.off < l.n {
		ch := l.src[l.off]

		if ch == '"' {
			l.inQ = !l.inQ
			l.off++
			continue
		}

		if !l.inQ {
			if isSpace(ch) {
				l.flush()
				l.off++
				continue
			}
			if op, ok := l.twoCharOp(ch); ok {
				l.flush()
				l.out = append(l.out, op)
				l.off += 2
				continue
			}
			if isOneCharOp(ch) {
				l.flush()
				l.out = append(l.out, string(ch))
				l.off++
				continue
			}
		}

		l.buf = append(l.buf, ch)
		l.off++
	}
	l.flush()
	return l.out
}

// twoCharOp reports the two-character operator starting at the current
// offset, if any: && || >>.
func (l *lexer) twoCharOp(ch byte) (string, bool) {
	if l.off+1 >= l.n {
		return "", false
	}
	next := l.src[l.off+1]
	switch {
	case ch == '&' && next == '&':
		return token.AndAnd, true
	case ch == '|' && next == '|':
		return token.OrOr, true
	case ch == '>' && next == '>':
		return token.Append, true
	}
	return "", false
}

func isOneCharOp(ch byte) bool {
	switch ch {
	case '|', ';', '>', '&':
		return true
	}
	return false
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func (l *lexer) flush() {
	if len(l.buf) > 0 {
		l.out = append(l.out, string(l.buf))
		l.buf = l.buf[:0]
	}
}

// StripBackground reports whether toks ends with a standalone '&' token
// (spec §4.1: "a trailing & token... marks the line as background") and
// returns the token slice with it removed.
func StripBackground(toks []string) ([]string, bool) {
	if len(toks) > 0 && toks[len(toks)-1] == token.Amp {
		return toks[:len(toks)-1], true
	}
	return toks, false
}

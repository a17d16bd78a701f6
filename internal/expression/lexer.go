package expression

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenOperator
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

func (t token) String() string {
	if t.kind == tokenEOF {
		return "end of expression"
	}
	return fmt.Sprintf("%q", t.text)
}

// SyntaxError reports where a rule could not be parsed. Pos is a 0-based
// byte offset into the expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at position %d: %s", e.Pos+1, e.Msg)
}

// StripComment removes everything from the first '#' on. The grammar has no
// string literals, so a '#' can only start a comment.
func StripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

var twoCharOperators = map[string]bool{
	"<=": true,
	">=": true,
	"==": true,
	"!=": true,
	"&&": true,
	"||": true,
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func tokenize(src string) ([]token, error) {
	tokens := []token{}
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++

		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && isDigit(src[j]) {
					i = j
					for i < len(src) && isDigit(src[i]) {
						i++
					}
				}
			}
			text := src[start:i]
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("invalid number %q", text)}
			}
			if i < len(src) && isIdentStart(src[i]) {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected %q after number", string(src[i]))}
			}
			tokens = append(tokens, token{kind: tokenNumber, text: text, num: n, pos: start})

		case isIdentStart(c):
			start := i
			for i < len(src) && (isIdentStart(src[i]) || isDigit(src[i])) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: src[start:i], pos: start})

		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "(", pos: i})
			i++

		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")", pos: i})
			i++

		default:
			if i+1 < len(src) && twoCharOperators[src[i:i+2]] {
				tokens = append(tokens, token{kind: tokenOperator, text: src[i : i+2], pos: i})
				i += 2
				continue
			}
			switch c {
			case '+', '-', '*', '/', '%', '<', '>', '!':
				tokens = append(tokens, token{kind: tokenOperator, text: string(c), pos: i})
				i++
			case '=':
				return nil, &SyntaxError{Pos: i, Msg: `unexpected "=", use "==" to compare`}
			default:
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", string(c))}
			}
		}
	}
	tokens = append(tokens, token{kind: tokenEOF, pos: len(src)})
	return tokens, nil
}

// seehuhn.de/go/raster - band algebra and colour correction for raster images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package expr

import (
	"strconv"
	"strings"
)

// token types
type tokenType uint8

const (
	tokEnd      tokenType = iota
	tokNumber             // fval holds the value
	tokBand               // ival holds the band index
	tokOperator           // sval is one of + - * / ^
	tokCompare            // op holds the comparison opcode
	tokLogic              // op is opAnd or opOr
	tokIdent              // sval holds the lower-cased name
	tokLParen
	tokRParen
	tokComma
)

func (t tokenType) String() string {
	switch t {
	case tokEnd:
		return "end of expression"
	case tokNumber:
		return "number"
	case tokBand:
		return "band reference"
	case tokOperator:
		return "operator"
	case tokCompare:
		return "comparison"
	case tokLogic:
		return "logical operator"
	case tokIdent:
		return "function name"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokComma:
		return "','"
	default:
		return "token " + strconv.Itoa(int(t))
	}
}

type token struct {
	typ  tokenType
	pos  int // byte offset in the source
	ival int
	fval float64
	sval string
	op   opCode
}

// maxIdentLen is the number of significant characters in a function name.
const maxIdentLen = 31

// tokenize scans an expression into tokens.  The returned slice always ends
// with a tokEnd token.
func tokenize(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]

		if isSpace(c) {
			i++
			continue
		}

		// number
		if isDigit(c) || c == '.' && i+1 < len(src) && isDigit(src[i+1]) {
			start := i
			for i < len(src) {
				ch := src[i]
				if isDigit(ch) || ch == '.' || ch == 'e' || ch == 'E' {
					i++
				} else if (ch == '+' || ch == '-') && (src[i-1] == 'e' || src[i-1] == 'E') {
					i++
				} else {
					break
				}
			}
			word := src[start:i]
			v, err := strconv.ParseFloat(word, 64)
			if err != nil {
				return nil, errorf(src, start, "malformed number %q", word)
			}
			tokens = append(tokens, token{typ: tokNumber, pos: start, fval: v})
			continue
		}

		// band reference: b<N>, band<N>, also with blanks around "and".
		// Band 0 is a valid token, it is rejected by the range check of
		// the dataset.
		if (c == 'b' || c == 'B') && i+1 < len(src) {
			if band, next, ok := scanBand(src, i); ok {
				tokens = append(tokens, token{typ: tokBand, pos: i, ival: band})
				i = next
				continue
			}
		}

		// comparisons and logical connectives
		if i+1 < len(src) {
			two := src[i : i+2]
			var tok token
			switch two {
			case ">=":
				tok = token{typ: tokCompare, op: opGE}
			case "<=":
				tok = token{typ: tokCompare, op: opLE}
			case "==":
				tok = token{typ: tokCompare, op: opEQ}
			case "!=":
				tok = token{typ: tokCompare, op: opNE}
			case "&&":
				tok = token{typ: tokLogic, op: opAnd}
			case "||":
				tok = token{typ: tokLogic, op: opOr}
			}
			if tok.typ != tokEnd {
				tok.pos = i
				tokens = append(tokens, tok)
				i += 2
				continue
			}
		}

		switch c {
		case '>':
			tokens = append(tokens, token{typ: tokCompare, pos: i, op: opGT})
			i++
			continue
		case '<':
			tokens = append(tokens, token{typ: tokCompare, pos: i, op: opLT})
			i++
			continue
		case '=', '!', '&', '|':
			return nil, errorf(src, i, "unexpected character %q", c)
		}

		// function names
		if isAlpha(c) || c == '_' {
			start := i
			for i < len(src) && (isAlpha(src[i]) || isDigit(src[i]) || src[i] == '_') {
				i++
			}
			if i-start > maxIdentLen {
				return nil, errorf(src, start, "name %q too long", src[start:i])
			}
			name := strings.ToLower(src[start:i])
			tokens = append(tokens, token{typ: tokIdent, pos: start, sval: name})
			continue
		}

		switch c {
		case '+', '-', '*', '/', '^':
			tokens = append(tokens, token{typ: tokOperator, pos: i, sval: src[i : i+1]})
		case '(':
			tokens = append(tokens, token{typ: tokLParen, pos: i})
		case ')':
			tokens = append(tokens, token{typ: tokRParen, pos: i})
		case ',':
			tokens = append(tokens, token{typ: tokComma, pos: i})
		default:
			return nil, errorf(src, i, "unexpected character %q", c)
		}
		i++
	}
	tokens = append(tokens, token{typ: tokEnd, pos: len(src)})
	return tokens, nil
}

// scanBand tries to read a band reference starting at src[i], which must be
// 'b' or 'B'.  It returns the band index and the offset after the reference.
// If no digits follow, ok is false and the caller re-scans the text as a
// function name.
func scanBand(src string, i int) (band, next int, ok bool) {
	j := i + 1
	// blanks are only allowed around "and", as in "b and 1"
	if k := skipSpace(src, j); k+3 <= len(src) && strings.EqualFold(src[k:k+3], "and") {
		j = skipSpace(src, k+3)
	}
	start := j
	for j < len(src) && isDigit(src[j]) {
		j++
	}
	if j == start {
		return 0, 0, false
	}
	// a band reference is a complete word
	if j < len(src) && (isAlpha(src[j]) || src[j] == '_') {
		return 0, 0, false
	}
	n, err := strconv.Atoi(src[start:j])
	if err != nil {
		return 0, 0, false
	}
	return n, j, true
}

func skipSpace(src string, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

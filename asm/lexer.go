package asm

import (
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

// delimiters are the single character delimiter tokens.
const delimiters = ",[]"

func isAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	}
	return false
}

// parseNumber parses a 16-bit literal, either 0x-prefixed hexadecimal or
// unprefixed decimal.
func parseNumber(text string) (value uint16, ok bool) {
	base := 10
	switch {
	case strings.HasPrefix(text, "0x"):
		text = text[2:]
		base = 16
	case len(text) == 0 || strings.Trim(text, "0123456789") != "":
		return
	}

	v64, err := strconv.ParseUint(text, base, 16)
	if err != nil {
		return
	}

	value = uint16(v64)
	ok = true
	return
}

// classify returns the token for an alphanumeric lexeme.
func classify(text string) (tok Token) {
	tok.Text = text

	if number, ok := parseNumber(text); ok {
		tok.Kind = TOKEN_NUMBER
		tok.Number = number
		return
	}
	if mnemonic, ok := mnemonicMap[text]; ok {
		tok.Kind = TOKEN_MNEMONIC
		tok.Mnemonic = mnemonic
		return
	}
	if reg, ok := registerMap[text]; ok {
		tok.Kind = TOKEN_REGISTER
		tok.Register = reg
		return
	}
	if special, ok := specialMap[text]; ok {
		tok.Kind = TOKEN_SPECIAL
		tok.Special = special
		return
	}

	tok.Kind = TOKEN_UNKNOWN
	return
}

// Tokens returns the sequence of tokens in src.
//
// Whitespace separates tokens, and ';' starts a comment that runs to the end
// of the line. Unrecognized input is returned as TOKEN_UNKNOWN tokens rather
// than stopping the sequence.
func Tokens(src string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		line, col := 1, 1

		for n := 0; n < len(src); {
			ch := src[n]
			switch {
			case ch == '\n':
				line++
				col = 1
				n++
				continue
			case isSpace(ch):
				col++
				n++
				continue
			case ch == ';':
				end := strings.IndexByte(src[n:], '\n')
				if end < 0 {
					end = len(src) - n
				}
				col += end
				n += end
				continue
			}

			var tok Token
			switch {
			case isAlnum(ch):
				end := n + 1
				for end < len(src) && isAlnum(src[end]) {
					end++
				}
				tok = classify(src[n:end])
			case strings.IndexByte(delimiters, ch) >= 0:
				tok = Token{Kind: TOKEN_DELIMITER, Text: src[n : n+1]}
			default:
				_, size := utf8.DecodeRuneInString(src[n:])
				tok = Token{Kind: TOKEN_UNKNOWN, Text: src[n : n+size]}
			}

			tok.Pos = Position{Line: line, Column: col}
			col += len(tok.Text)
			n += len(tok.Text)

			if !yield(tok) {
				return
			}
		}
	}
}

package mml

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Lex splits one track's text into tokens. Recognized tokens carry
// lower-cased text; anything else becomes a verbatim single-rune
// TokenUnknown. Lex never fails.
func Lex(src string) []Token {
	tokens := make([]Token, 0, len(src)/2)
	for i := 0; i < len(src); {
		ch := lower(src[i])
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
			continue
		case ch == 'l' && digitAt(src, i+1):
			j := skipDigits(src, i+1)
			if j < len(src) && src[j] == '.' {
				j++
			}
			tokens = append(tokens, Token{Kind: TokenCommand, Text: strings.ToLower(src[i:j])})
			i = j
		case (ch == 't' || ch == 'v' || ch == 'o') && digitAt(src, i+1):
			j := skipDigits(src, i+1)
			tokens = append(tokens, Token{Kind: TokenCommand, Text: strings.ToLower(src[i:j])})
			i = j
		case ch == '&':
			tokens = append(tokens, NewTie())
			i++
		case ch == '>' || ch == '<':
			tokens = append(tokens, NewOctaveShift(ch == '>'))
			i++
		case ch == 'n' && digitAt(src, i+1):
			j := skipDigits(src, i+1)
			tokens = append(tokens, Token{Kind: TokenPitchNote, Text: strings.ToLower(src[i:j])})
			i = j
		case ch == 'r' || isNoteLetter(ch):
			j := i + 1
			if ch != 'r' && j < len(src) && isAccidental(src[j]) {
				j++
			}
			j = skipDigits(src, j)
			for j < len(src) && src[j] == '.' {
				j++
			}
			kind := TokenNote
			if ch == 'r' {
				kind = TokenRest
			}
			tokens = append(tokens, Token{Kind: kind, Text: strings.ToLower(src[i:j])})
			i = j
		default:
			_, size := utf8.DecodeRuneInString(src[i:])
			tokens = append(tokens, Token{Kind: TokenUnknown, Text: src[i : i+size]})
			i += size
		}
	}
	return tokens
}

// ParseTrack lexes and annotates one track.
func ParseTrack(src string) Track { return Annotate(Lex(src)) }

func parseNumberOptional(s string, at int) (int, int) {
	i := skipDigits(s, at)
	if i == at {
		return -1, i
	}
	n, err := strconv.Atoi(s[at:i])
	if err != nil {
		return -1, at
	}
	return n, i
}

func skipDigits(s string, at int) int {
	for at < len(s) && isDigit(s[at]) {
		at++
	}
	return at
}

func digitAt(s string, at int) bool { return at < len(s) && isDigit(s[at]) }

func isDigit(b byte) bool { return unicode.IsDigit(rune(b)) }

func isNoteLetter(b byte) bool {
	_, ok := noteOffsets[b]
	return ok
}

func isAccidental(b byte) bool { return b == '+' || b == '#' || b == '-' }

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

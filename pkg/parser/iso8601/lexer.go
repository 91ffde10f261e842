// This file is copied from github.com/alecthomas/participle/lexer (MIT
// License, Copyright (C) 2017 Alec Thomas) and modified to choose the
// longest match, as in github.com/logrange/logrange/pkg/lql/lexer.go, and to
// lex single-line input only.

package iso8601

import (
	"fmt"
	"io"
	"io/ioutil"
	"regexp"
	"unicode/utf8"

	"github.com/alecthomas/participle/lexer"
)

// regexpDefinition is a participle lexer definition built from a regular
// expression. Each named sub-expression matches a token, anonymous ones are
// matched and discarded. Unlike the participle's own regexp lexer it picks
// the longest match, so "W05" is a week token rather than a letter followed
// by a number.
type regexpDefinition struct {
	re      *regexp.Regexp
	symbols map[string]rune
}

type regexpLexer struct {
	pos   lexer.Position
	b     []byte
	re    *regexp.Regexp
	names []string
}

func newRegexpDefinition(pattern string) (lexer.Definition, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	symbols := map[string]rune{
		"EOF": lexer.EOF,
	}
	for i, sym := range re.SubexpNames()[1:] {
		if sym != "" {
			symbols[sym] = lexer.EOF - 1 - rune(i)
		}
	}

	re.Longest()
	return &regexpDefinition{re: re, symbols: symbols}, nil
}

func (d *regexpDefinition) Lex(r io.Reader) (lexer.Lexer, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &regexpLexer{
		pos: lexer.Position{
			Filename: lexer.NameOfReader(r),
			Line:     1,
			Column:   1,
		},
		b:     b,
		re:    d.re,
		names: d.re.SubexpNames(),
	}, nil
}

func (d *regexpDefinition) Symbols() map[string]rune {
	return d.symbols
}

// Next returns the next token. The input is a single line, so only the
// offset and the column are moved.
func (r *regexpLexer) Next() (lexer.Token, error) {
nextToken:
	for len(r.b) != 0 {
		matches := r.re.FindSubmatchIndex(r.b)
		if matches == nil || matches[0] != 0 {
			rn, _ := utf8.DecodeRune(r.b)
			return lexer.Token{}, fmt.Errorf("invalid token %q, pos=%s", rn, r.pos)
		}
		match := r.b[:matches[1]]
		token := lexer.Token{
			Pos:   r.pos,
			Value: string(match),
		}

		r.pos.Offset += matches[1]
		r.pos.Column += utf8.RuneCount(match)
		r.b = r.b[matches[1]:]

		// assign token type, anonymous groups are skipped
		for i := 2; i < len(matches); i += 2 {
			if matches[i] != -1 {
				if r.names[i/2] == "" {
					continue nextToken
				}
				token.Type = lexer.EOF - rune(i/2)
				break
			}
		}

		return token, nil
	}

	return lexer.EOFToken(r.pos), nil
}

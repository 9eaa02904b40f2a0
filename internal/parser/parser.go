// Package parser extracts flashcard drafts from markdown notes.
//
// A card starts with a "Q:" line, followed by "A:" and an optional "C:"
// (context) line. Each field runs until the next prefix, a "---" separator
// or the next question. Text outside a card is ignored.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/flashwise/internal/domain"
)

const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	separator      = "---"
)

type field int

const (
	none field = iota
	question
	answer
	context
)

// ParseFile reads a file from the given path and extracts all drafts.
func ParseFile(path string) ([]domain.Draft, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

type cardBuilder struct {
	drafts  []domain.Draft
	current domain.Draft
	field   field
	lines   []string
}

// flushField stores the collected lines into the field being read.
func (b *cardBuilder) flushField() {
	if len(b.lines) == 0 {
		return
	}
	content := strings.TrimRight(strings.Join(b.lines, "\n"), "\n")
	switch b.field {
	case question:
		b.current.Question = content
	case answer:
		b.current.Answer = content
	case context:
		b.current.Context = content
	}
	b.lines = nil
}

// finishCard closes the current card, keeping it only if it has a question.
func (b *cardBuilder) finishCard() {
	b.flushField()
	if b.current.Question != "" {
		b.drafts = append(b.drafts, b.current)
	}
	b.current = domain.Draft{}
	b.field = none
}

func (b *cardBuilder) start(f field, rest string) {
	if f == question && b.field != none {
		b.finishCard()
	}
	b.flushField()
	b.field = f
	b.lines = append(b.lines, strings.TrimPrefix(rest, " "))
}

// Parse reads from an io.Reader and extracts all drafts.
func Parse(r io.Reader) ([]domain.Draft, error) {
	scanner := bufio.NewScanner(r)
	var b cardBuilder

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == separator:
			b.finishCard()
		case strings.HasPrefix(line, questionPrefix):
			b.start(question, line[len(questionPrefix):])
		case strings.HasPrefix(line, answerPrefix):
			b.start(answer, line[len(answerPrefix):])
		case strings.HasPrefix(line, contextPrefix):
			b.start(context, line[len(contextPrefix):])
		case b.field != none:
			b.lines = append(b.lines, line)
		}
	}

	b.finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return b.drafts, nil
}

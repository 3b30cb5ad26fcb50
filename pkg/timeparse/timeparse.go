// Package timeparse turns operator input such as "last monday" or
// "2 weeks ago" into a point in time.
package timeparse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var (
	ErrEmpty  = errors.New("empty time expression")
	ErrFuture = errors.New("time must not be in the future")
)

var layouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"}

// Parser resolves expressions relative to a reference time.
type Parser struct {
	w *when.Parser
}

func New() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// ParseSince accepts an absolute date or a natural-language expression and
// returns it in UTC. The result may not be after now.
func (p *Parser) ParseSince(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, ErrEmpty
	}

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, input, time.UTC); err == nil {
			return notAfter(t, now)
		}
	}

	r, err := p.w.Parse(strings.ToLower(input), now.UTC())
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %q: %w", input, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("could not recognize time expression: %q", input)
	}
	return notAfter(r.Time.UTC(), now)
}

func notAfter(t, now time.Time) (time.Time, error) {
	if t.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s", ErrFuture, t.Format(time.RFC3339))
	}
	return t.UTC(), nil
}

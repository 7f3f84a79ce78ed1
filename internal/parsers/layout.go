package parsers

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/desertthunder/spinsync/internal/models"
	"github.com/desertthunder/spinsync/internal/shared"
)

// Parser extracts an episode from a parsed page.
type Parser interface {
	Name() string
	Parse(doc *goquery.Document) (*models.Episode, error)
}

type (
	textStep   func(doc *goquery.Document) (string, error)
	timeStep   func(doc *goquery.Document) (time.Time, error)
	tracksStep func(doc *goquery.Document) ([]models.Track, error)
)

// Layout is the set of extraction steps for one page structure.
// Nil steps are skipped and leave the field empty.
type Layout struct {
	Label    string
	Title    textStep
	Station  textStep
	DJ       textStep
	Venue    textStep
	Datetime timeStep
	Tracks   tracksStep
}

func (l Layout) Name() string { return l.Label }

// Parse runs every step and returns an episode only when all of them succeed.
func (l Layout) Parse(doc *goquery.Document) (*models.Episode, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: %s: empty document", shared.ErrExtraction, l.Label)
	}

	ep := &models.Episode{}
	text := []struct {
		step textStep
		dst  *string
	}{
		{l.Title, &ep.Title},
		{l.Station, &ep.Station},
		{l.DJ, &ep.DJ},
		{l.Venue, &ep.Venue},
	}
	for _, t := range text {
		if t.step == nil {
			continue
		}
		v, err := t.step(doc)
		if err != nil {
			return nil, err
		}
		*t.dst = v
	}

	if l.Datetime != nil {
		dt, err := l.Datetime(doc)
		if err != nil {
			return nil, err
		}
		ep.Datetime = dt
	}

	ep.Tracks = []models.Track{}
	if l.Tracks != nil {
		tracks, err := l.Tracks(doc)
		if err != nil {
			return nil, err
		}
		ep.Tracks = tracks
	}
	return ep, nil
}

// Family tries its layouts in order and returns the first success.
// Only extraction failures fall through to the next layout.
type Family struct {
	Label   string
	Layouts []Parser
}

func (f Family) Name() string { return f.Label }

func (f Family) Parse(doc *goquery.Document) (*models.Episode, error) {
	if len(f.Layouts) == 0 {
		return nil, fmt.Errorf("%w: %s: no layouts", shared.ErrUnrecognizedContent, f.Label)
	}

	var last error
	for _, p := range f.Layouts {
		ep, err := p.Parse(doc)
		if err == nil {
			return ep, nil
		}
		if !errors.Is(err, shared.ErrExtraction) {
			return nil, err
		}
		last = err
	}
	return nil, fmt.Errorf("%w: %s: %w", shared.ErrUnrecognizedContent, f.Label, last)
}

func missing(layout, field, selector string) error {
	return fmt.Errorf("%w: %s: missing %s (%s)", shared.ErrExtraction, layout, field, selector)
}

// clean collapses runs of whitespace and trims the ends.
func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// requireText returns the cleaned text of the first match of selector under sel.
// Absent or blank elements are extraction failures.
func requireText(sel *goquery.Selection, layout, field, selector string) (string, error) {
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return "", missing(layout, field, selector)
	}
	text := clean(found.Text())
	if text == "" {
		return "", missing(layout, field, selector)
	}
	return text, nil
}

// requireSelection returns all matches of selector, failing when there are none.
func requireSelection(sel *goquery.Selection, layout, field, selector string) (*goquery.Selection, error) {
	found := sel.Find(selector)
	if found.Length() == 0 {
		return nil, missing(layout, field, selector)
	}
	return found, nil
}

// optionalText returns the cleaned text of the first match or "".
func optionalText(sel *goquery.Selection, selector string) string {
	return clean(sel.Find(selector).First().Text())
}

// textAt returns a step that requires selector's text.
func textAt(layout, field, selector string) textStep {
	return func(doc *goquery.Document) (string, error) {
		return requireText(doc.Selection, layout, field, selector)
	}
}

// fixed returns a step with a constant value for sites that do not print it.
func fixed(v string) textStep {
	return func(*goquery.Document) (string, error) { return v, nil }
}

var (
	endTimeSuffix = regexp.MustCompile(`(?i)\s+[-–—]\s*\d{1,2}(?:[:.]\d{2})?(?:\s*[ap]\.?m\.?)?\s*$`)
	dottedTime    = regexp.MustCompile(`(?i)\b(\d{1,2})\.(\d{2})\s*([ap]m)\b`)
	dateLayouts   = []string{
		"January 2, 2006 3:04pm",
		"January 2, 2006 3:04 PM",
		"January 2, 2006 15:04",
		"January 2, 2006",
		"Jan 2, 2006",
	}
)

// parseDate parses a human readable date or date-time in UTC.
// A trailing end time ("11:00am - 1:00pm") is dropped and "2.00pm" is read as "2:00pm".
// Dates without a time are midnight.
func parseDate(layout, raw string) (time.Time, error) {
	s := clean(raw)
	s = endTimeSuffix.ReplaceAllString(s, "")
	s = dottedTime.ReplaceAllString(s, "$1:$2$3")
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, missing(layout, "datetime", "date text")
	}

	for _, l := range dateLayouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return t, nil
		}
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: unparseable date %q: %v", shared.ErrExtraction, layout, raw, err)
	}
	return t, nil
}

// dateAt returns a step that parses the text of selector as a date.
func dateAt(layout, selector string) timeStep {
	return func(doc *goquery.Document) (time.Time, error) {
		raw, err := requireText(doc.Selection, layout, "datetime", selector)
		if err != nil {
			return time.Time{}, err
		}
		return parseDate(layout, raw)
	}
}

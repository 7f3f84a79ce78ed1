package parsers

import (
	"errors"
	"fmt"
	"slices"

	"github.com/desertthunder/spinsync/internal/models"
	"github.com/desertthunder/spinsync/internal/shared"
	"github.com/samber/lo"
)

// Dispatcher routes a page to the parser configured for its domain.
type Dispatcher struct {
	sources map[string]Parser
}

// NewDispatcher returns a dispatcher for every supported site.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{sources: map[string]Parser{
		"spinitron.com": Spinitron,
		"wkdu.org":      WKDU,
		"wprb.com":      WPRB,
		"setlist.fm":    SetlistFM,
	}}
}

// Domains lists the supported domains in sorted order.
func (d *Dispatcher) Domains() []string {
	domains := lo.Keys(d.sources)
	slices.Sort(domains)
	return domains
}

// Supports reports whether domain has a parser.
func (d *Dispatcher) Supports(domain string) bool {
	_, ok := d.sources[domain]
	return ok
}

// Dispatch parses input with the parser for domain.
func (d *Dispatcher) Dispatch(domain string, input any) (*models.Episode, error) {
	p, ok := d.sources[domain]
	if !ok {
		return nil, fmt.Errorf("%w: %q", shared.ErrUnsupportedSource, domain)
	}

	ep, err := p.Parse(Normalize(input))
	switch {
	case err == nil:
		return ep, nil
	case errors.Is(err, shared.ErrUnrecognizedContent):
		return nil, err
	case errors.Is(err, shared.ErrExtraction):
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrUnrecognizedContent, p.Name(), err)
	default:
		return nil, err
	}
}

var defaultDispatcher = NewDispatcher()

// Dispatch parses input with the default dispatcher.
func Dispatch(domain string, input any) (*models.Episode, error) {
	return defaultDispatcher.Dispatch(domain, input)
}

// Package metadata resolves artwork across external metadata APIs.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrNoSources is returned by a Posters with nothing to ask.
var ErrNoSources = errors.New("no poster sources configured")

// Lookup resolves a poster URL for an external id. An empty URL with a nil
// error means the source has no artwork for the title.
type Lookup func(ctx context.Context, id int) (string, error)

// Source is a named Lookup.
type Source struct {
	Name   string
	Lookup Lookup
}

// Posters asks each source in order and returns the first non-empty URL.
type Posters struct {
	sources []Source
	log     *slog.Logger
}

// NewPosters creates a resolver over sources. Sources with a nil Lookup
// are skipped.
func NewPosters(log *slog.Logger, sources ...Source) *Posters {
	if log == nil {
		log = slog.Default()
	}
	p := &Posters{log: log.With("component", "posters")}
	for _, s := range sources {
		if s.Lookup != nil {
			p.sources = append(p.sources, s)
		}
	}
	return p
}

// Len returns the number of usable sources.
func (p *Posters) Len() int {
	return len(p.sources)
}

// PosterURL returns the first URL any source yields. When every source
// comes back empty the result is "", nil; when none succeeds the errors
// are joined.
func (p *Posters) PosterURL(ctx context.Context, id int) (string, error) {
	if len(p.sources) == 0 {
		return "", ErrNoSources
	}

	var errs []error
	for _, s := range p.sources {
		u, err := s.Lookup(ctx, id)
		if err != nil {
			p.log.Warn("poster lookup failed", "source", s.Name, "id", id, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
			continue
		}
		if u != "" {
			p.log.Debug("poster resolved", "source", s.Name, "id", id)
			return u, nil
		}
		p.log.Debug("no poster from source", "source", s.Name, "id", id)
	}
	if len(errs) == len(p.sources) {
		return "", errors.Join(errs...)
	}
	return "", nil
}

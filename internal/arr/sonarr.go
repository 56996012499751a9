package arr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vmunix/arrbot/internal/media"
)

// Sonarr is a Sonarr v3 API client.
type Sonarr struct {
	*Client
}

// NewSonarr creates a Sonarr client. An empty URL or API key yields a client
// whose calls fail with ErrNotConfigured.
func NewSonarr(baseURL, apiKey string, opts ...Option) *Sonarr {
	return &Sonarr{Client: newClient("sonarr", baseURL, apiKey, opts...)}
}

// Lookup searches Sonarr's catalog. An empty slice with a nil error means
// no matches.
func (s *Sonarr) Lookup(ctx context.Context, term string) ([]*media.Series, error) {
	var resources []seriesResource
	if err := s.get(ctx, "/api/v3/series/lookup", url.Values{"term": {term}}, &resources); err != nil {
		return nil, err
	}
	out := make([]*media.Series, 0, len(resources))
	for i := range resources {
		out = append(out, resources[i].toMedia())
	}
	return out, nil
}

// LookupTVDB looks a series up by TVDB id.
func (s *Sonarr) LookupTVDB(ctx context.Context, tvdbID int) ([]*media.Series, error) {
	return s.Lookup(ctx, "tvdb:"+strconv.Itoa(tvdbID))
}

// Series fetches a library series by its Sonarr id.
func (s *Sonarr) Series(ctx context.Context, id int) (*media.Series, error) {
	var r seriesResource
	if err := s.get(ctx, fmt.Sprintf("/api/v3/series/%d", id), nil, &r); err != nil {
		return nil, err
	}
	return r.toMedia(), nil
}

// Episode fetches an episode by its Sonarr id.
func (s *Sonarr) Episode(ctx context.Context, id int) (*media.Episode, error) {
	var r episodeResource
	if err := s.get(ctx, fmt.Sprintf("/api/v3/episode/%d", id), nil, &r); err != nil {
		return nil, err
	}
	return r.toMedia(), nil
}

// Ping checks that Sonarr is reachable and the API key is accepted.
func (s *Sonarr) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

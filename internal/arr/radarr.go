package arr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vmunix/arrbot/internal/media"
)

// Radarr is a Radarr v3 API client.
type Radarr struct {
	*Client
}

// NewRadarr creates a Radarr client.
func NewRadarr(baseURL, apiKey string, opts ...Option) *Radarr {
	return &Radarr{Client: newClient("radarr", baseURL, apiKey, opts...)}
}

// Lookup searches Radarr's catalog.
func (r *Radarr) Lookup(ctx context.Context, term string) ([]*media.Movie, error) {
	var resources []movieResource
	if err := r.get(ctx, "/api/v3/movie/lookup", url.Values{"term": {term}}, &resources); err != nil {
		return nil, err
	}
	out := make([]*media.Movie, 0, len(resources))
	for i := range resources {
		out = append(out, resources[i].toMedia())
	}
	return out, nil
}

// LookupTMDB looks a movie up by TMDB id.
func (r *Radarr) LookupTMDB(ctx context.Context, tmdbID int) ([]*media.Movie, error) {
	return r.Lookup(ctx, "tmdb:"+strconv.Itoa(tmdbID))
}

// Movie fetches a library movie by its Radarr id.
func (r *Radarr) Movie(ctx context.Context, id int) (*media.Movie, error) {
	var res movieResource
	if err := r.get(ctx, fmt.Sprintf("/api/v3/movie/%d", id), nil, &res); err != nil {
		return nil, err
	}
	return res.toMedia(), nil
}

// Ping checks that Radarr is reachable and the API key is accepted.
func (r *Radarr) Ping(ctx context.Context) error {
	return r.ping(ctx)
}

package commands

//go:generate mockgen -source=deps.go -destination=mocks/mock_deps.go -package=mocks

import (
	"context"

	"github.com/vmunix/arrbot/internal/media"
	"github.com/vmunix/arrbot/internal/status"
)

// SeriesService is the subset of the Sonarr client the sonarr command uses.
type SeriesService interface {
	Configured() bool
	Lookup(ctx context.Context, term string) ([]*media.Series, error)
	LookupTVDB(ctx context.Context, tvdbID int) ([]*media.Series, error)
	Series(ctx context.Context, id int) (*media.Series, error)
}

// MovieService is the subset of the Radarr client the radarr command uses.
type MovieService interface {
	Configured() bool
	Lookup(ctx context.Context, term string) ([]*media.Movie, error)
	LookupTMDB(ctx context.Context, tmdbID int) ([]*media.Movie, error)
	Movie(ctx context.Context, id int) (*media.Movie, error)
}

// CardSender renders and sends a media card.
type CardSender interface {
	Send(ctx context.Context, roomID string, rec media.Record) error
}

// StatusChecker runs the service probes.
type StatusChecker interface {
	Check(ctx context.Context) []status.Result
}

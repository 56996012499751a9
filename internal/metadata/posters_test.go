package metadata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func fixed(u string, err error, calls *int) Lookup {
	return func(context.Context, int) (string, error) {
		*calls++
		return u, err
	}
}

func TestPosters_FirstHitWins(t *testing.T) {
	var tmdbCalls, tvdbCalls int
	p := NewPosters(quietLog,
		Source{Name: "tmdb", Lookup: fixed("https://image.tmdb.org/t/p/w500/a.jpg", nil, &tmdbCalls)},
		Source{Name: "tvdb", Lookup: fixed("https://artworks.thetvdb.com/b.jpg", nil, &tvdbCalls)},
	)

	u, err := p.PosterURL(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/a.jpg", u)
	assert.Equal(t, 1, tmdbCalls)
	assert.Zero(t, tvdbCalls)
}

func TestPosters_FallsThroughErrorsAndEmpty(t *testing.T) {
	var a, b, c int
	p := NewPosters(quietLog,
		Source{Name: "tmdb", Lookup: fixed("", errors.New("401 Unauthorized"), &a)},
		Source{Name: "empty", Lookup: fixed("", nil, &b)},
		Source{Name: "tvdb", Lookup: fixed("https://artworks.thetvdb.com/b.jpg", nil, &c)},
	)

	u, err := p.PosterURL(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "https://artworks.thetvdb.com/b.jpg", u)
	assert.Equal(t, []int{1, 1, 1}, []int{a, b, c})
}

func TestPosters_AllEmpty(t *testing.T) {
	var a, b int
	p := NewPosters(quietLog,
		Source{Name: "tmdb", Lookup: fixed("", errors.New("timeout"), &a)},
		Source{Name: "tvdb", Lookup: fixed("", nil, &b)},
	)

	u, err := p.PosterURL(context.Background(), 1)
	require.NoError(t, err, "a source without artwork is not a failure")
	assert.Empty(t, u)
}

func TestPosters_AllFailed(t *testing.T) {
	errTMDB := errors.New("tmdb down")
	errTVDB := errors.New("tvdb down")
	var a, b int
	p := NewPosters(quietLog,
		Source{Name: "tmdb", Lookup: fixed("", errTMDB, &a)},
		Source{Name: "tvdb", Lookup: fixed("", errTVDB, &b)},
	)

	_, err := p.PosterURL(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errTMDB)
	assert.ErrorIs(t, err, errTVDB)
	assert.Contains(t, err.Error(), "tvdb: tvdb down")
}

func TestPosters_NoSources(t *testing.T) {
	p := NewPosters(quietLog, Source{Name: "nil"})
	assert.Zero(t, p.Len())

	_, err := p.PosterURL(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoSources)
}

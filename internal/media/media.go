// Package media defines the records rendered into chat cards.
package media

import "fmt"

// Kind identifies which record type a card describes.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindEpisode Kind = "episode"
)

// Service returns the name of the application that manages this kind.
func (k Kind) Service() string {
	if k == KindMovie {
		return "Radarr"
	}
	return "Sonarr"
}

// Record is implemented by Movie, Series and Episode.
type Record interface {
	Kind() Kind
	Added() bool
}

// Image is a cover image reference as reported by Sonarr or Radarr.
// URL may be relative to the service base URL; RemoteURL is absolute.
type Image struct {
	CoverType string
	URL       string
	RemoteURL string
}

// Rating is a score out of ten with its vote count.
type Rating struct {
	Value float64
	Votes int
}

// Movie is a Radarr movie, either from a lookup or from the library.
type Movie struct {
	ID               int
	TMDBID           int
	IMDBID           string
	Title            string
	Year             int
	Overview         string
	Status           string
	Monitored        bool
	HasFile          bool
	QualityProfileID int
	Path             string
	SizeOnDisk       int64
	TitleSlug        string
	Images           []Image
	IMDBRating       Rating
	TMDBRating       Rating
}

func (m *Movie) Kind() Kind { return KindMovie }

// Added reports whether the movie is in the Radarr library.
func (m *Movie) Added() bool { return m.ID > 0 }

// Series is a Sonarr series, either from a lookup or from the library.
type Series struct {
	ID               int
	TVDBID           int
	IMDBID           string
	Title            string
	Year             int
	Overview         string
	Status           string
	Monitored        bool
	Path             string
	TitleSlug        string
	QualityProfileID int
	Images           []Image
	Rating           Rating

	SeasonCount       int
	EpisodeCount      int
	EpisodeFileCount  int
	PercentOfEpisodes float64
	SizeOnDisk        int64
}

func (s *Series) Kind() Kind { return KindSeries }

// Added reports whether the series is in the Sonarr library.
func (s *Series) Added() bool { return s.ID > 0 }

// Episode is a single downloaded episode, as announced by a Sonarr webhook
// and optionally enriched from the Sonarr API.
type Episode struct {
	ID            int
	SeriesID      int
	SeriesTitle   string
	SeriesTVDBID  int
	TVDBID        int
	SeasonNumber  int
	EpisodeNumber int
	Title         string
	Overview      string
	AirDate       string
	HasFile       bool
	Monitored     bool
	ReleaseTitle  string
	Images        []Image
}

func (e *Episode) Kind() Kind { return KindEpisode }

// Added is true for any episode carrying a Sonarr id.
func (e *Episode) Added() bool { return e.ID > 0 }

// Code returns the zero-padded SxxEyy marker.
func (e *Episode) Code() string {
	return fmt.Sprintf("S%02dE%02d", e.SeasonNumber, e.EpisodeNumber)
}

// Poster returns the first poster image, or nil.
func Poster(images []Image) *Image {
	for i := range images {
		if images[i].CoverType == "poster" {
			return &images[i]
		}
	}
	return nil
}

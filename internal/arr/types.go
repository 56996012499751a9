package arr

import "github.com/vmunix/arrbot/internal/media"

type imageResource struct {
	CoverType string `json:"coverType"`
	URL       string `json:"url"`
	RemoteURL string `json:"remoteUrl"`
}

type ratingResource struct {
	Value float64 `json:"value"`
	Votes int     `json:"votes"`
}

// seriesResource is a Sonarr series as returned by /series and /series/lookup.
type seriesResource struct {
	ID               int              `json:"id"`
	Title            string           `json:"title"`
	Year             int              `json:"year"`
	TVDBID           int              `json:"tvdbId"`
	IMDBID           string           `json:"imdbId"`
	Overview         string           `json:"overview"`
	Status           string           `json:"status"`
	Monitored        bool             `json:"monitored"`
	Path             string           `json:"path"`
	TitleSlug        string           `json:"titleSlug"`
	QualityProfileID int              `json:"qualityProfileId"`
	SeasonCount      int              `json:"seasonCount"`
	Images           []imageResource  `json:"images"`
	Ratings          ratingResource   `json:"ratings"`
	Seasons          []seasonResource `json:"seasons"`
	Statistics       struct {
		SeasonCount       int     `json:"seasonCount"`
		EpisodeCount      int     `json:"episodeCount"`
		EpisodeFileCount  int     `json:"episodeFileCount"`
		PercentOfEpisodes float64 `json:"percentOfEpisodes"`
		SizeOnDisk        int64   `json:"sizeOnDisk"`
	} `json:"statistics"`
}

type seasonResource struct {
	SeasonNumber int  `json:"seasonNumber"`
	Monitored    bool `json:"monitored"`
}

// movieResource is a Radarr movie as returned by /movie and /movie/lookup.
type movieResource struct {
	ID               int             `json:"id"`
	Title            string          `json:"title"`
	Year             int             `json:"year"`
	TMDBID           int             `json:"tmdbId"`
	IMDBID           string          `json:"imdbId"`
	Overview         string          `json:"overview"`
	Status           string          `json:"status"`
	Monitored        bool            `json:"monitored"`
	HasFile          bool            `json:"hasFile"`
	QualityProfileID int             `json:"qualityProfileId"`
	Path             string          `json:"path"`
	SizeOnDisk       int64           `json:"sizeOnDisk"`
	TitleSlug        string          `json:"titleSlug"`
	Images           []imageResource `json:"images"`
	Ratings          struct {
		IMDB ratingResource `json:"imdb"`
		TMDB ratingResource `json:"tmdb"`
	} `json:"ratings"`
}

// episodeResource is a Sonarr episode from /episode/{id}.
type episodeResource struct {
	ID            int    `json:"id"`
	SeriesID      int    `json:"seriesId"`
	TVDBID        int    `json:"tvdbId"`
	SeasonNumber  int    `json:"seasonNumber"`
	EpisodeNumber int    `json:"episodeNumber"`
	Title         string `json:"title"`
	Overview      string `json:"overview"`
	AirDate       string `json:"airDate"`
	HasFile       bool   `json:"hasFile"`
	Monitored     bool   `json:"monitored"`
	Series        *struct {
		Title  string          `json:"title"`
		TVDBID int             `json:"tvdbId"`
		Images []imageResource `json:"images"`
	} `json:"series"`
}

func toImages(in []imageResource) []media.Image {
	if len(in) == 0 {
		return nil
	}
	out := make([]media.Image, len(in))
	for i, img := range in {
		out[i] = media.Image{CoverType: img.CoverType, URL: img.URL, RemoteURL: img.RemoteURL}
	}
	return out
}

func (r *seriesResource) toMedia() *media.Series {
	// Prefer the seasons list, then statistics, then the lookup field.
	seasons := len(r.Seasons)
	if seasons == 0 {
		seasons = r.Statistics.SeasonCount
	}
	if seasons == 0 {
		seasons = r.SeasonCount
	}
	return &media.Series{
		ID:                r.ID,
		TVDBID:            r.TVDBID,
		IMDBID:            r.IMDBID,
		Title:             r.Title,
		Year:              r.Year,
		Overview:          r.Overview,
		Status:            r.Status,
		Monitored:         r.Monitored,
		Path:              r.Path,
		TitleSlug:         r.TitleSlug,
		QualityProfileID:  r.QualityProfileID,
		Images:            toImages(r.Images),
		Rating:            media.Rating{Value: r.Ratings.Value, Votes: r.Ratings.Votes},
		SeasonCount:       seasons,
		EpisodeCount:      r.Statistics.EpisodeCount,
		EpisodeFileCount:  r.Statistics.EpisodeFileCount,
		PercentOfEpisodes: r.Statistics.PercentOfEpisodes,
		SizeOnDisk:        r.Statistics.SizeOnDisk,
	}
}

func (r *movieResource) toMedia() *media.Movie {
	return &media.Movie{
		ID:               r.ID,
		TMDBID:           r.TMDBID,
		IMDBID:           r.IMDBID,
		Title:            r.Title,
		Year:             r.Year,
		Overview:         r.Overview,
		Status:           r.Status,
		Monitored:        r.Monitored,
		HasFile:          r.HasFile,
		QualityProfileID: r.QualityProfileID,
		Path:             r.Path,
		SizeOnDisk:       r.SizeOnDisk,
		TitleSlug:        r.TitleSlug,
		Images:           toImages(r.Images),
		IMDBRating:       media.Rating{Value: r.Ratings.IMDB.Value, Votes: r.Ratings.IMDB.Votes},
		TMDBRating:       media.Rating{Value: r.Ratings.TMDB.Value, Votes: r.Ratings.TMDB.Votes},
	}
}

func (r *episodeResource) toMedia() *media.Episode {
	ep := &media.Episode{
		ID:            r.ID,
		SeriesID:      r.SeriesID,
		TVDBID:        r.TVDBID,
		SeasonNumber:  r.SeasonNumber,
		EpisodeNumber: r.EpisodeNumber,
		Title:         r.Title,
		Overview:      r.Overview,
		AirDate:       r.AirDate,
		HasFile:       r.HasFile,
		Monitored:     r.Monitored,
	}
	if r.Series != nil {
		ep.SeriesTitle = r.Series.Title
		ep.SeriesTVDBID = r.Series.TVDBID
		ep.Images = toImages(r.Series.Images)
	}
	return ep
}

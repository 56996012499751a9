package webhook

// Event types handled by both services. Everything else is acknowledged
// and ignored.
const (
	eventTest     = "Test"
	eventDownload = "Download"
)

type radarrPayload struct {
	EventType string `json:"eventType"`
	Movie     *struct {
		ID     int    `json:"id"`
		Title  string `json:"title"`
		Year   int    `json:"year"`
		TMDBID int    `json:"tmdbId"`
	} `json:"movie"`
	Release *struct {
		ReleaseTitle string `json:"releaseTitle"`
	} `json:"release"`
}

func (p *radarrPayload) releaseTitle() string {
	if p.Release == nil || p.Release.ReleaseTitle == "" {
		return "N/A"
	}
	return p.Release.ReleaseTitle
}

type sonarrPayload struct {
	EventType string `json:"eventType"`
	Series    *struct {
		ID     int    `json:"id"`
		Title  string `json:"title"`
		TVDBID int    `json:"tvdbId"`
	} `json:"series"`
	Episodes []sonarrEpisode `json:"episodes"`
	Release  *struct {
		Title        string `json:"title"`
		ReleaseTitle string `json:"releaseTitle"`
	} `json:"release"`
}

// sonarrEpisode uses pointers so that season 0 can be told apart from a
// missing field.
type sonarrEpisode struct {
	ID            *int   `json:"id"`
	SeasonNumber  *int   `json:"seasonNumber"`
	EpisodeNumber *int   `json:"episodeNumber"`
	Title         string `json:"title"`
}

func (e *sonarrEpisode) valid() bool {
	return e.ID != nil && *e.ID > 0 && e.SeasonNumber != nil && e.EpisodeNumber != nil
}

func (p *sonarrPayload) releaseTitle() string {
	switch {
	case p.Release == nil:
		return "N/A"
	case p.Release.Title != "":
		return p.Release.Title
	case p.Release.ReleaseTitle != "":
		return p.Release.ReleaseTitle
	default:
		return "N/A"
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

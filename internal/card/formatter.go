// Package card renders media records into plain-text and HTML chat cards.
package card

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/vmunix/arrbot/internal/chat"
	"github.com/vmunix/arrbot/internal/media"
)

// Card is a rendered message.
type Card struct {
	Plain string
	HTML  string
}

// Formatter renders records and sends them to chat, uploading a poster
// first when one can be found.
type Formatter struct {
	msgr          chat.Messenger
	sonarrURL     string
	radarrURL     string
	seriesPosters PosterSource
	moviePosters  PosterSource
	httpClient    *http.Client
	log           *slog.Logger
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithSonarrURL sets the base URL used for relative Sonarr images and links.
func WithSonarrURL(u string) Option {
	return func(f *Formatter) { f.sonarrURL = strings.TrimRight(u, "/") }
}

// WithRadarrURL sets the base URL used for relative Radarr images and links.
func WithRadarrURL(u string) Option {
	return func(f *Formatter) { f.radarrURL = strings.TrimRight(u, "/") }
}

// WithSeriesPosters sets the poster source for series and episodes, keyed by TVDB id.
func WithSeriesPosters(p PosterSource) Option {
	return func(f *Formatter) { f.seriesPosters = p }
}

// WithMoviePosters sets the poster source for movies, keyed by TMDB id.
func WithMoviePosters(p PosterSource) Option {
	return func(f *Formatter) { f.moviePosters = p }
}

// WithHTTPClient sets the client used for poster downloads.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Formatter) { f.httpClient = hc }
}

// WithLogger sets a logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *Formatter) { f.log = log }
}

// New creates a Formatter that sends through msgr.
func New(msgr chat.Messenger, opts ...Option) *Formatter {
	f := &Formatter{
		msgr:       msgr,
		httpClient: &http.Client{Timeout: DownloadTimeout},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With("component", "card")
	return f
}

// Send renders rec and posts it to roomID. Poster failures only drop the
// image; a send failure is logged and returned.
func (f *Formatter) Send(ctx context.Context, roomID string, rec media.Record) error {
	uri := f.uploadPoster(ctx, rec)
	c := f.Render(rec, uri)
	if err := f.msgr.SendFormatted(ctx, roomID, c.Plain, c.HTML); err != nil {
		f.log.Error("failed to send card", "room_id", roomID, "kind", rec.Kind(), "error", err)
		return err
	}
	return nil
}

// Render builds the card for rec. posterURI is embedded when non-empty.
func (f *Formatter) Render(rec media.Record, posterURI string) Card {
	var b builder
	switch r := rec.(type) {
	case *media.Series:
		f.renderSeries(&b, r)
	case *media.Movie:
		f.renderMovie(&b, r)
	case *media.Episode:
		f.renderEpisode(&b, r)
	}
	return b.card(posterURI)
}

func (f *Formatter) renderSeries(b *builder, s *media.Series) {
	b.header(s.Title, yearSuffix(s.Year), "TVDb", s.TVDBID)
	b.addedLine(s.Added(), "Sonarr")
	b.overview(s.Overview)
	if s.Added() {
		if s.Status != "" {
			b.detail("Status", Capitalize(s.Status))
		}
		b.detail("Monitored", yesNo(s.Monitored))
		b.detail("Seasons", strconv.Itoa(s.SeasonCount))
		b.detail("Episodes", fmt.Sprintf("%d/%d (%.1f%%)", s.EpisodeFileCount, s.EpisodeCount, s.PercentOfEpisodes))
		if s.SizeOnDisk > 0 {
			b.detail("Size", FormatBytes(s.SizeOnDisk))
		}
		if s.Path != "" {
			b.codeDetail("Path", s.Path)
		}
	}
	b.rating("TVDb", s.Rating)

	if s.TVDBID > 0 {
		b.link("TVDb", fmt.Sprintf("https://thetvdb.com/?tab=series&id=%d", s.TVDBID))
	}
	if s.IMDBID != "" {
		b.link("IMDb", "https://www.imdb.com/title/"+s.IMDBID+"/")
	}
	if s.Added() && f.sonarrURL != "" {
		slug := s.TitleSlug
		if slug == "" {
			slug = Slugify(s.Title)
		}
		b.link("Sonarr", f.sonarrURL+"/series/"+slug)
	}
}

func (f *Formatter) renderMovie(b *builder, m *media.Movie) {
	b.header(m.Title, yearSuffix(m.Year), "TMDb", m.TMDBID)
	b.addedLine(m.Added(), "Radarr")
	b.overview(m.Overview)
	if m.Added() {
		if m.Status != "" {
			b.detail("Status", Capitalize(m.Status))
		}
		b.detail("Monitored", yesNo(m.Monitored))
		b.detail("Downloaded", yesNo(m.HasFile))
		if m.QualityProfileID > 0 {
			b.detail("Quality Profile ID", strconv.Itoa(m.QualityProfileID))
		}
		if m.SizeOnDisk > 0 {
			b.detail("Size", FormatBytes(m.SizeOnDisk))
		}
		if m.Path != "" {
			b.codeDetail("Path", m.Path)
		}
	}
	b.rating("IMDb", m.IMDBRating)
	b.rating("TMDb", m.TMDBRating)

	if m.TMDBID > 0 {
		b.link("TMDb", fmt.Sprintf("https://www.themoviedb.org/movie/%d", m.TMDBID))
	}
	if m.IMDBID != "" {
		b.link("IMDb", "https://www.imdb.com/title/"+m.IMDBID+"/")
	}
	if m.Added() && f.radarrURL != "" && m.TMDBID > 0 {
		b.link("Radarr", fmt.Sprintf("%s/movie/%d", f.radarrURL, m.TMDBID))
	}
}

func (f *Formatter) renderEpisode(b *builder, e *media.Episode) {
	title := e.SeriesTitle
	if title == "" {
		title = "Unknown Series"
	}
	b.header(title, e.Code(), "TVDb", e.SeriesTVDBID)
	b.addedLine(e.Added(), "Sonarr")
	if e.Title != "" {
		b.line(`"`+e.Title+`"`, "<b>"+html.EscapeString(e.Title)+"</b>")
	}
	b.overview(e.Overview)
	if e.AirDate != "" {
		b.detail("Air Date", e.AirDate)
	}
	if e.ReleaseTitle != "" {
		b.codeDetail("Release", e.ReleaseTitle)
	}

	if e.SeriesTVDBID > 0 {
		b.link("TVDb", fmt.Sprintf("https://thetvdb.com/?tab=series&id=%d", e.SeriesTVDBID))
	}
	if f.sonarrURL != "" && e.SeriesTitle != "" {
		b.link("Sonarr", f.sonarrURL+"/series/"+Slugify(e.SeriesTitle))
	}
}

func yearSuffix(year int) string {
	if year <= 0 {
		return ""
	}
	return "(" + strconv.Itoa(year) + ")"
}

// builder accumulates the plain and HTML parts of a card in step.
type builder struct {
	textHeader  string
	htmlHeader  string
	text        []string
	htmlParts   []string
	detailsText []string
	detailsHTML []string
	ratings     []string
	linksText   []string
	linksHTML   []string
}

func (b *builder) header(title, suffix, idName string, idValue int) {
	head := strings.TrimSpace(title + " " + suffix)
	idText := "N/A"
	if idValue > 0 {
		idText = strconv.Itoa(idValue)
	}
	b.textHeader = fmt.Sprintf("%s [%s: %s]", head, idName, idText)
	b.htmlHeader = `<h3 style="margin-top: 0; margin-bottom: 4px;">` + html.EscapeString(head) + `</h3>`
}

func (b *builder) addedLine(added bool, service string) {
	s := "(Not in " + service + ")"
	if added {
		s = "(Already in " + service + ")"
	}
	b.text = append(b.text, s)
	b.htmlParts = append(b.htmlParts, `<p style="margin: 0 0 8px 0; font-size: .9em; font-style: italic;">`+s+`</p>`)
}

func (b *builder) line(text, htmlText string) {
	b.text = append(b.text, text)
	b.htmlParts = append(b.htmlParts, `<p style="margin: 0 0 4px 0;">`+htmlText+`</p>`)
}

func (b *builder) overview(s string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return
	}
	s = Truncate(s, OverviewLimit)
	b.text = append(b.text, s)
	b.htmlParts = append(b.htmlParts, `<p style="margin: 0 0 4px 0; font-size: .9em;">`+html.EscapeString(s)+`</p>`)
}

func (b *builder) detail(label, value string) {
	b.detailsText = append(b.detailsText, label+": "+value)
	b.detailsHTML = append(b.detailsHTML, "<b>"+label+":</b> "+html.EscapeString(value))
}

func (b *builder) codeDetail(label, value string) {
	b.detailsText = append(b.detailsText, label+": "+value)
	b.detailsHTML = append(b.detailsHTML, "<b>"+label+":</b> <code>"+html.EscapeString(value)+"</code>")
}

func (b *builder) rating(source string, r media.Rating) {
	if r.Value <= 0 {
		return
	}
	b.ratings = append(b.ratings, fmt.Sprintf("%s: %.1f/10 (%d votes)", source, r.Value, r.Votes))
}

func (b *builder) link(label, href string) {
	b.linksText = append(b.linksText, label+": "+href)
	b.linksHTML = append(b.linksHTML, `<a href="`+html.EscapeString(href)+`">`+label+`</a>`)
}

func (b *builder) card(posterURI string) Card {
	text := append([]string{b.textHeader}, b.text...)
	parts := append([]string{b.htmlHeader}, b.htmlParts...)

	if len(b.detailsText) > 0 {
		text = append(text, strings.Join(b.detailsText, "\n"))
		parts = append(parts, `<p style="margin: 4px 0 0 0; font-size: .9em;">`+strings.Join(b.detailsHTML, "<br>")+`</p>`)
	}
	if len(b.ratings) > 0 {
		joined := strings.Join(b.ratings, " | ")
		text = append(text, "Ratings: "+joined)
		parts = append(parts, `<p style="margin: 4px 0 0 0; font-size: .8em; color: #888;">Ratings: `+html.EscapeString(joined)+`</p>`)
	}
	if len(b.linksText) > 0 {
		text = append(text, "Links: "+strings.Join(b.linksText, " | "))
		parts = append(parts, `<p style="margin: 4px 0 0 0; font-size: .8em;">`+strings.Join(b.linksHTML, " | ")+`</p>`)
	}

	img := ""
	if posterURI != "" {
		img = `<img src="` + html.EscapeString(posterURI) + `" style="max-width:100px; height:auto; border-radius:4px; margin-right:12px; vertical-align:top; object-fit: cover;" alt="Poster"/>`
	}

	return Card{
		Plain: strings.Join(text, "\n"),
		HTML: `<table style="border: none; width: 100%; border-spacing: 0;"><tbody><tr>` +
			`<td style="width: 1px; padding: 0; vertical-align: top;">` + img + `</td>` +
			`<td style="padding: 0 0 0 12px; vertical-align: top;">` + strings.Join(parts, "") + `</td>` +
			`</tr></tbody></table>`,
	}
}

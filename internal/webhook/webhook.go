// Package webhook receives Sonarr and Radarr webhook deliveries and posts
// them to the chat room as cards.
package webhook

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vmunix/arrbot/internal/chat"
	"github.com/vmunix/arrbot/internal/media"
	"github.com/vmunix/arrbot/internal/metrics"
)

// maxBodyBytes caps a webhook payload.
const maxBodyBytes = 1 << 20

// EpisodeFetcher loads episode details from Sonarr.
type EpisodeFetcher interface {
	Episode(ctx context.Context, id int) (*media.Episode, error)
}

// MovieFetcher loads movie details from Radarr.
type MovieFetcher interface {
	Movie(ctx context.Context, id int) (*media.Movie, error)
}

// CardSender renders and sends a media card.
type CardSender interface {
	Send(ctx context.Context, roomID string, rec media.Record) error
}

// Config wires a Handler.
type Config struct {
	// Room receives every notification. When empty, deliveries are
	// processed but nothing is posted.
	Room      string
	Messenger chat.Messenger
	Cards     CardSender
	Sonarr    EpisodeFetcher
	Radarr    MovieFetcher
}

// Handler serves the webhook, health and metrics endpoints.
type Handler struct {
	cfg   Config
	ready atomic.Bool
	log   *slog.Logger
}

// New creates a Handler.
func New(cfg Config, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{cfg: cfg, log: log.With("component", "webhook")}
}

// MarkReady flips /readyz to 200.
func (h *Handler) MarkReady() {
	h.ready.Store(true)
}

// outcome is the HTTP answer to one delivery.
type outcome struct {
	status int
	text   string
	event  string
}

func internalError(event string) outcome {
	return outcome{status: http.StatusInternalServerError, text: "Internal server error", event: event}
}

type processFunc func(ctx context.Context, log *slog.Logger, body []byte) outcome

// endpoint adapts a payload processor to HTTP. Panics become 500s and every
// delivery is counted.
func (h *Handler) endpoint(source string, process processFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := h.log.With("source", source, "delivery_id", uuid.NewString())
		out := internalError("unknown")

		defer func() {
			if p := recover(); p != nil {
				log.Error("webhook handler panicked", "panic", p, "stack", string(debug.Stack()))
				out = internalError(out.event)
			}
			metrics.WebhooksTotal.WithLabelValues(source, out.event, strconv.Itoa(out.status)).Inc()
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(out.status)
			_, _ = io.WriteString(w, out.text)
		}()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.Warn("failed to read body", "error", err)
			out = outcome{status: http.StatusBadRequest, text: "Could not read body", event: "unknown"}
			return
		}
		// Notifications finish even if the sender stops waiting.
		out = process(context.WithoutCancel(r.Context()), log, body)
	}
}

func eventLabel(eventType string) string {
	switch eventType {
	case eventTest, eventDownload:
		return eventType
	default:
		return "other"
	}
}

func invalidPayload(log *slog.Logger, err error) outcome {
	log.Warn("invalid webhook payload", "error", err)
	return outcome{status: http.StatusBadRequest, text: "Invalid JSON payload", event: "unknown"}
}

func (h *Handler) processRadarr(ctx context.Context, log *slog.Logger, body []byte) outcome {
	var p radarrPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return invalidPayload(log, err)
	}
	event := eventLabel(p.EventType)
	log.Info("radarr webhook received", "event_type", p.EventType)

	switch p.EventType {
	case eventTest:
		h.sendText(ctx, log, "✅ Received Radarr 'Test' webhook successfully!")
		return outcome{status: http.StatusOK, text: "Test webhook received", event: event}
	case eventDownload:
		out := h.radarrDownload(ctx, log, &p)
		out.event = event
		return out
	default:
		log.Debug("ignoring radarr event", "event_type", p.EventType)
		return outcome{status: http.StatusOK, text: "Event type ignored", event: event}
	}
}

func (h *Handler) radarrDownload(ctx context.Context, log *slog.Logger, p *radarrPayload) outcome {
	if p.Movie == nil {
		log.Warn("download event without movie data")
		return outcome{status: http.StatusBadRequest, text: "Missing movie data"}
	}

	year := "N/A"
	if p.Movie.Year > 0 {
		year = strconv.Itoa(p.Movie.Year)
	}
	summary := fmt.Sprintf("✅ Downloaded: %s (%s) - Release: %s", orNA(p.Movie.Title), year, p.releaseTitle())

	if p.Movie.ID <= 0 {
		log.Warn("download event without movie id, sending basic notice", "title", p.Movie.Title)
		h.sendText(ctx, log, summary)
		return outcome{status: http.StatusOK, text: "Notification sent (basic text - missing ID)"}
	}

	log = log.With("movie_id", p.Movie.ID, "title", p.Movie.Title)
	movie, err := h.cfg.Radarr.Movie(ctx, p.Movie.ID)
	if err != nil {
		log.Error("failed to fetch movie details", "error", err)
		h.sendText(ctx, log, summary+" (Error fetching full details)")
		return outcome{status: http.StatusInternalServerError, text: "Failed to fetch full details from Radarr API"}
	}
	if movie.TMDBID == 0 {
		movie.TMDBID = p.Movie.TMDBID
	}

	h.sendCard(ctx, log, movie)
	return outcome{status: http.StatusOK, text: "Notification sent (full details)"}
}

func (h *Handler) processSonarr(ctx context.Context, log *slog.Logger, body []byte) outcome {
	var p sonarrPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return invalidPayload(log, err)
	}
	event := eventLabel(p.EventType)
	log.Info("sonarr webhook received", "event_type", p.EventType)

	switch p.EventType {
	case eventTest:
		h.sendText(ctx, log, "✅ Received Sonarr 'Test' webhook successfully!")
		return outcome{status: http.StatusOK, text: "Test webhook received", event: event}
	case eventDownload:
		out := h.sonarrDownload(ctx, log, &p)
		out.event = event
		return out
	default:
		log.Debug("ignoring sonarr event", "event_type", p.EventType)
		return outcome{status: http.StatusOK, text: "Event type ignored", event: event}
	}
}

func (h *Handler) sonarrDownload(ctx context.Context, log *slog.Logger, p *sonarrPayload) outcome {
	if p.Series == nil || len(p.Episodes) == 0 {
		log.Warn("download event without series or episodes")
		return outcome{status: http.StatusBadRequest, text: "Missing series or episodes data"}
	}

	release := p.releaseTitle()
	log = log.With("series_id", p.Series.ID, "series", p.Series.Title)
	log.Info("processing download", "episodes", len(p.Episodes), "release", release)

	attempted := 0
	for i := range p.Episodes {
		ep := &p.Episodes[i]
		if !ep.valid() {
			log.Warn("skipping episode with missing id, season or number", "index", i, "title", ep.Title)
			continue
		}

		rec := h.episodeRecord(ctx, log, p, ep)
		rec.ReleaseTitle = release
		h.sendCard(ctx, log, rec)
		attempted++
	}

	if attempted == 0 {
		log.Warn("no valid episodes in download event")
		return outcome{status: http.StatusOK, text: "Processed, but no notifications sent (check episode data)"}
	}
	return outcome{status: http.StatusOK, text: "Notification(s) sent"}
}

// episodeRecord fetches the episode from Sonarr, falling back to the
// webhook fields when that fails.
func (h *Handler) episodeRecord(ctx context.Context, log *slog.Logger, p *sonarrPayload, ep *sonarrEpisode) *media.Episode {
	rec, err := h.cfg.Sonarr.Episode(ctx, *ep.ID)
	if err != nil || rec == nil {
		log.Warn("failed to fetch episode details, using webhook data", "episode_id", *ep.ID, "error", err)
		rec = &media.Episode{
			ID:            *ep.ID,
			SeriesID:      p.Series.ID,
			SeasonNumber:  *ep.SeasonNumber,
			EpisodeNumber: *ep.EpisodeNumber,
			Title:         ep.Title,
		}
	}
	if rec.SeriesTitle == "" {
		rec.SeriesTitle = p.Series.Title
	}
	if rec.SeriesTVDBID == 0 {
		rec.SeriesTVDBID = p.Series.TVDBID
	}
	return rec
}

func (h *Handler) sendText(ctx context.Context, log *slog.Logger, text string) {
	if h.cfg.Room == "" {
		log.Warn("no target room configured, notification dropped")
		return
	}
	if err := h.cfg.Messenger.SendText(ctx, h.cfg.Room, text); err != nil {
		log.Error("failed to send notification", "error", err)
	}
}

func (h *Handler) sendCard(ctx context.Context, log *slog.Logger, rec media.Record) {
	if h.cfg.Room == "" {
		log.Warn("no target room configured, notification dropped")
		return
	}
	// The formatter logs its own send failures.
	_ = h.cfg.Cards.Send(ctx, h.cfg.Room, rec)
}

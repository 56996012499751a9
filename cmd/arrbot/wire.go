package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/vmunix/arrbot/internal/arr"
	"github.com/vmunix/arrbot/internal/card"
	"github.com/vmunix/arrbot/internal/chat"
	"github.com/vmunix/arrbot/internal/commands"
	"github.com/vmunix/arrbot/internal/config"
	"github.com/vmunix/arrbot/internal/metadata"
	"github.com/vmunix/arrbot/internal/metrics"
	"github.com/vmunix/arrbot/internal/server"
	"github.com/vmunix/arrbot/internal/status"
	"github.com/vmunix/arrbot/internal/tmdb"
	"github.com/vmunix/arrbot/internal/transport"
	"github.com/vmunix/arrbot/internal/webhook"
	"github.com/vmunix/arrbot/pkg/tvdb"
)

const (
	// Sync long-polls for 30s, so this must stay well above that.
	matrixTimeout   = 3 * time.Minute
	metadataTimeout = 15 * time.Second
	posterTimeout   = 45 * time.Second
)

// services holds the clients shared by the serve and status commands.
type services struct {
	matrix *chat.Matrix
	sonarr *arr.Sonarr
	radarr *arr.Radarr
	tvdb   *tvdb.Client
	tmdb   *tmdb.Client
}

func newServices(cfg *config.Config, logger *slog.Logger) (*services, error) {
	verify := cfg.VerifyTLS()

	matrix, err := chat.NewMatrix(cfg.Matrix, logger,
		chat.WithSDKLogOutput(os.Stderr),
		chat.WithMatrixHTTPClient(transport.NewHTTPClient("matrix", matrixTimeout, verify, logger)),
	)
	if err != nil {
		return nil, err
	}

	arrOpts := []arr.Option{arr.WithTLSVerify(verify), arr.WithLogger(logger)}
	return &services{
		matrix: matrix,
		sonarr: arr.NewSonarr(cfg.Sonarr.URL, cfg.Sonarr.APIKey, arrOpts...),
		radarr: arr.NewRadarr(cfg.Radarr.URL, cfg.Radarr.APIKey, arrOpts...),
		tvdb: tvdb.New(cfg.TVDB.APIKey,
			tvdb.WithBaseURL(cfg.TVDB.BaseURL),
			tvdb.WithHTTPClient(transport.NewHTTPClient("tvdb", metadataTimeout, verify, logger)),
			tvdb.WithLogger(logger),
			tvdb.WithRequestHook(func(err error) { metrics.RecordUpstream("tvdb", err) }),
		),
		tmdb: tmdb.NewClient(cfg.TMDB.APIKey,
			tmdb.WithHTTPClient(transport.NewHTTPClient("tmdb", metadataTimeout, verify, logger)),
			tmdb.WithLogger(logger),
		),
	}, nil
}

// checker probes Matrix and both services. includeChat is false when the
// session cannot be verified without logging in.
func (s *services) checker(logger *slog.Logger, includeChat bool) *status.Checker {
	var probes []status.Probe
	if includeChat {
		probes = append(probes, status.ChatProbe("Matrix", s.matrix))
	}
	probes = append(probes,
		status.ServiceProbe("Sonarr", s.sonarr),
		status.ServiceProbe("Radarr", s.radarr),
	)
	return status.NewChecker(logger, probes...)
}

// formatter builds the card formatter. Series posters come from TVDB;
// movie posters from TMDB when a key is set, falling back to TVDB.
func (s *services) formatter(cfg *config.Config, logger *slog.Logger) *card.Formatter {
	opts := []card.Option{
		card.WithSonarrURL(s.sonarr.BaseURL()),
		card.WithRadarrURL(s.radarr.BaseURL()),
		card.WithHTTPClient(transport.NewHTTPClient("poster", posterTimeout, cfg.VerifyTLS(), logger)),
		card.WithLogger(logger),
	}

	var tvdbSeries, tvdbMovies, tmdbMovies metadata.Lookup
	if s.tvdb.Enabled() {
		tvdbSeries = func(ctx context.Context, id int) (string, error) {
			return s.tvdb.PosterURL(ctx, tvdb.KindSeries, id)
		}
		tvdbMovies = func(ctx context.Context, id int) (string, error) {
			return s.tvdb.PosterURL(ctx, tvdb.KindMovie, id)
		}
	}
	if s.tmdb.Enabled() {
		tmdbMovies = s.tmdb.PosterURL
	}

	if series := metadata.NewPosters(logger, metadata.Source{Name: "tvdb", Lookup: tvdbSeries}); series.Len() > 0 {
		opts = append(opts, card.WithSeriesPosters(series))
	}
	movies := metadata.NewPosters(logger,
		metadata.Source{Name: "tmdb", Lookup: tmdbMovies},
		metadata.Source{Name: "tvdb", Lookup: tvdbMovies},
	)
	if movies.Len() > 0 {
		opts = append(opts, card.WithMoviePosters(movies))
	}
	return card.New(s.matrix, opts...)
}

// runner assembles the command router, webhook handler and runner.
func (s *services) runner(cfg *config.Config, logger *slog.Logger) *server.Runner {
	checker := s.checker(logger, true)
	cards := s.formatter(cfg, logger)

	router := commands.NewRouter(commands.RouterConfig{
		Prefix:     cfg.Matrix.CommandPrefix,
		Self:       s.matrix.UserID,
		TargetRoom: cfg.Matrix.TargetRoomID,
	}, s.matrix, logger,
		commands.NewSonarr(s.sonarr, cards, logger),
		commands.NewRadarr(s.radarr, cards, logger),
		commands.NewStatus(checker),
		commands.Echo{},
	)
	s.matrix.OnMessage(router.Handle)

	web := webhook.New(webhook.Config{
		Room:      cfg.Matrix.TargetRoomID,
		Messenger: s.matrix,
		Cards:     cards,
		Sonarr:    s.sonarr,
		Radarr:    s.radarr,
	}, logger)

	return server.NewRunner(server.Config{
		Addr:          cfg.WebhookAddr(),
		TargetRoom:    cfg.Matrix.TargetRoomID,
		StartupReport: cfg.StartupReport(),
	}, s.matrix, s.matrix, checker, web, logger)
}

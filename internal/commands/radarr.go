package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vmunix/arrbot/internal/card"
	"github.com/vmunix/arrbot/internal/media"
)

// Radarr searches Radarr and shows movie cards.
type Radarr struct {
	svc   MovieService
	cards CardSender
	log   *slog.Logger
}

// NewRadarr creates the radarr command.
func NewRadarr(svc MovieService, cards CardSender, log *slog.Logger) *Radarr {
	if log == nil {
		log = slog.Default()
	}
	return &Radarr{svc: svc, cards: cards, log: log.With("component", "cmd_radarr")}
}

func (c *Radarr) Name() string { return "radarr" }

func (c *Radarr) Help(prefix string) HelpEntry {
	cmd := prefix + "radarr"
	return HelpEntry{
		Name:        "radarr",
		Description: "Searches Radarr or gets info about a movie.",
		Usage: cmd + " [search] [--unadded] <search_term>\n" +
			"  `search`: Optional keyword.\n" +
			"  `--unadded`: Show only results not yet in Radarr.\n" +
			"  `<search_term>`: The name of the movie to search for.\n\n" +
			cmd + " info <tmdb_id>\n" +
			"  `info`: Get detailed info and poster for a specific movie.\n" +
			"  `<tmdb_id>`: The TMDb ID of the movie.",
	}
}

func (c *Radarr) usage(prefix string) string {
	return "Usage:\n  `" + prefix + "radarr [search] [" + UnaddedFlag + "] <search_term>`\n  `" + prefix + "radarr info <tmdb_id>`"
}

func (c *Radarr) Run(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		return req.Reply(ctx, c.usage(req.Prefix))
	}
	if isInfo(req.Args) {
		return c.info(ctx, req)
	}
	return c.search(ctx, req)
}

func (c *Radarr) info(ctx context.Context, req *Request) error {
	if len(req.Args) != 2 {
		return req.Reply(ctx, "Usage: `"+req.Prefix+"radarr info <tmdb_id>`")
	}
	tmdbID, err := parseID(req.Args[1])
	if err != nil {
		return req.Reply(ctx, "Invalid TMDb ID. Usage: `"+req.Prefix+"radarr info <tmdb_id>`")
	}
	if !c.svc.Configured() {
		return req.Reply(ctx, "Error: Radarr is not configured.")
	}

	c.log.Info("movie info requested", "tmdb_id", tmdbID, "sender", req.Sender)
	results, err := c.svc.LookupTMDB(ctx, tmdbID)
	if err != nil {
		c.log.Error("lookup failed", "tmdb_id", tmdbID, "error", err)
		return req.Reply(ctx, fmt.Sprintf("Error: Could not communicate with Radarr API while looking up TMDb ID %d.", tmdbID))
	}
	if len(results) == 0 {
		return req.Reply(ctx, fmt.Sprintf("Radarr could not find any movie matching TMDb ID %d.", tmdbID))
	}

	movie := results[0]
	shownID := tmdbID
	if movie.TMDBID > 0 {
		shownID = movie.TMDBID
	}
	if movie.Added() {
		details, err := c.svc.Movie(ctx, movie.ID)
		if err != nil {
			c.log.Error("movie details failed", "id", movie.ID, "error", err)
			return req.Reply(ctx, fmt.Sprintf("Found movie with TMDb ID %d in Radarr, but failed to fetch its details.", shownID))
		}
		movie = details
	}
	if movie.TMDBID == 0 {
		movie.TMDBID = shownID
	}

	if err := c.cards.Send(ctx, req.RoomID, movie); err != nil {
		c.log.Warn("movie card not sent", "tmdb_id", shownID, "error", err)
	}
	return nil
}

func (c *Radarr) search(ctx context.Context, req *Request) error {
	args := ParseSearchArgs(req.Args)
	if args.Term == "" {
		return req.Reply(ctx, c.usage(req.Prefix))
	}
	if !c.svc.Configured() {
		return req.Reply(ctx, "Error: Radarr is not configured.")
	}

	c.log.Info("movie search", "term", args.Term, "unadded_only", args.UnaddedOnly, "sender", req.Sender)
	results, err := c.svc.Lookup(ctx, args.Term)
	if err != nil {
		c.log.Error("lookup failed", "term", args.Term, "error", err)
		return req.Reply(ctx, "Error: Radarr API communication failed.")
	}
	if len(results) == 0 {
		return req.Reply(ctx, "No movies found matching '"+args.Term+"'.")
	}

	out := &searchResults{service: "Radarr", noun: "movies", term: args.Term, unaddedOnly: args.UnaddedOnly}
	for _, m := range results {
		if m.Added() {
			out.addAdded(addedMovieLine(m))
		} else {
			out.addUnadded(titleLine(m.Title, m.Year, "TMDb", m.TMDBID))
		}
	}

	plain, body := out.render()
	return req.ReplyFormatted(ctx, plain, body)
}

func addedMovieLine(m *media.Movie) resultLine {
	l := titleLine(m.Title, m.Year, "TMDb", m.TMDBID)
	switch {
	case m.HasFile:
		return l.withSuffix(" (Downloaded)")
	case m.Monitored:
		return l.withSuffix(" (Monitored)")
	case m.Status != "" && m.Status != "released":
		return l.withSuffix(" (" + card.Capitalize(m.Status) + ")")
	}
	return l
}

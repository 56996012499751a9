package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/vmunix/arrbot/internal/card"
	"github.com/vmunix/arrbot/internal/media"
)

// Sonarr searches Sonarr and shows series cards.
type Sonarr struct {
	svc   SeriesService
	cards CardSender
	log   *slog.Logger
}

// NewSonarr creates the sonarr command.
func NewSonarr(svc SeriesService, cards CardSender, log *slog.Logger) *Sonarr {
	if log == nil {
		log = slog.Default()
	}
	return &Sonarr{svc: svc, cards: cards, log: log.With("component", "cmd_sonarr")}
}

func (c *Sonarr) Name() string { return "sonarr" }

func (c *Sonarr) Help(prefix string) HelpEntry {
	cmd := prefix + "sonarr"
	return HelpEntry{
		Name:        "sonarr",
		Description: "Searches Sonarr or gets info about a series.",
		Usage: cmd + " [search] [--unadded] <search_term>\n" +
			"  `search`: Optional keyword.\n" +
			"  `--unadded`: Show only results not yet in Sonarr.\n" +
			"  `<search_term>`: The name of the series to search for.\n\n" +
			cmd + " info <tvdb_id>\n" +
			"  `info`: Get detailed info and poster for a specific series.\n" +
			"  `<tvdb_id>`: The TVDb ID of the series.",
	}
}

func (c *Sonarr) usage(prefix string) string {
	return "Usage:\n  `" + prefix + "sonarr [search] [" + UnaddedFlag + "] <search_term>`\n  `" + prefix + "sonarr info <tvdb_id>`"
}

func (c *Sonarr) Run(ctx context.Context, req *Request) error {
	if len(req.Args) == 0 {
		return req.Reply(ctx, c.usage(req.Prefix))
	}
	if isInfo(req.Args) {
		return c.info(ctx, req)
	}
	return c.search(ctx, req)
}

func (c *Sonarr) info(ctx context.Context, req *Request) error {
	if len(req.Args) != 2 {
		return req.Reply(ctx, "Usage: `"+req.Prefix+"sonarr info <tvdb_id>`")
	}
	tvdbID, err := parseID(req.Args[1])
	if err != nil {
		return req.Reply(ctx, "Invalid TVDb ID. Usage: `"+req.Prefix+"sonarr info <tvdb_id>`")
	}
	if !c.svc.Configured() {
		return req.Reply(ctx, "Error: Sonarr is not configured.")
	}

	c.log.Info("series info requested", "tvdb_id", tvdbID, "sender", req.Sender)
	results, err := c.svc.LookupTVDB(ctx, tvdbID)
	if err != nil {
		c.log.Error("lookup failed", "tvdb_id", tvdbID, "error", err)
		return req.Reply(ctx, fmt.Sprintf("Error: Could not communicate with Sonarr API while looking up TVDb ID %d.", tvdbID))
	}
	if len(results) == 0 {
		return req.Reply(ctx, fmt.Sprintf("Sonarr could not find any series matching TVDb ID %d.", tvdbID))
	}

	series := results[0]
	if series.Added() && series.TVDBID == tvdbID {
		details, err := c.svc.Series(ctx, series.ID)
		if err != nil {
			c.log.Error("series details failed", "id", series.ID, "error", err)
			return req.Reply(ctx, fmt.Sprintf("Found series with TVDb ID %d in Sonarr, but failed to fetch its details.", tvdbID))
		}
		series = details
	} else if series.Added() {
		// A lookup hit for another TVDB id is shown as not added.
		copied := *series
		copied.ID = 0
		series = &copied
	}
	if series.TVDBID == 0 {
		series.TVDBID = tvdbID
	}

	if err := c.cards.Send(ctx, req.RoomID, series); err != nil {
		c.log.Warn("series card not sent", "tvdb_id", tvdbID, "error", err)
	}
	return nil
}

func (c *Sonarr) search(ctx context.Context, req *Request) error {
	args := ParseSearchArgs(req.Args)
	if args.Term == "" {
		return req.Reply(ctx, c.usage(req.Prefix))
	}
	if !c.svc.Configured() {
		return req.Reply(ctx, "Error: Sonarr is not configured.")
	}

	c.log.Info("series search", "term", args.Term, "unadded_only", args.UnaddedOnly, "sender", req.Sender)
	results, err := c.svc.Lookup(ctx, args.Term)
	if err != nil {
		c.log.Error("lookup failed", "term", args.Term, "error", err)
		return req.Reply(ctx, "Error: Sonarr API communication failed.")
	}
	if len(results) == 0 {
		return req.Reply(ctx, "No series found matching '"+args.Term+"'.")
	}

	out := &searchResults{service: "Sonarr", noun: "series", term: args.Term, unaddedOnly: args.UnaddedOnly}
	for _, s := range results {
		if !s.Added() {
			out.addUnadded(seriesLine(s))
			continue
		}
		if args.UnaddedOnly {
			// Counted but not shown; skip the detail fetch.
			out.addAdded(seriesLine(s))
			continue
		}
		out.addAdded(c.addedSeriesLine(ctx, s))
	}

	plain, body := out.render()
	return req.ReplyFormatted(ctx, plain, body)
}

// addedSeriesLine refreshes s from the library for its season count,
// status and monitored flag, keeping the lookup values on failure.
func (c *Sonarr) addedSeriesLine(ctx context.Context, s *media.Series) resultLine {
	seasons, status, monitored := s.SeasonCount, s.Status, s.Monitored
	if details, err := c.svc.Series(ctx, s.ID); err != nil {
		c.log.Warn("could not fetch details for added series", "id", s.ID, "title", s.Title, "error", err)
	} else {
		seasons, status, monitored = details.SeasonCount, details.Status, details.Monitored
	}

	l := titleLine(s.Title, s.Year, "TVDb", s.TVDBID).withSuffix(" - " + strconv.Itoa(seasons) + " seasons")
	switch {
	case monitored:
		l = l.withSuffix(" (Monitored)")
	case status != "" && status != "ended":
		l = l.withSuffix(" (" + card.Capitalize(status) + ")")
	}
	return l
}

func seriesLine(s *media.Series) resultLine {
	return titleLine(s.Title, s.Year, "TVDb", s.TVDBID).withSuffix(" - " + strconv.Itoa(s.SeasonCount) + " seasons")
}

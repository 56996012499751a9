// Package status runs connectivity probes against the chat backend and the
// media services and renders the combined report.
package status

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/arrbot/internal/arr"
)

// Probe messages.
const (
	MessageOK            = "OK"
	MessageNotConfigured = "Not Configured"
	MessageFailed        = "Failed"
)

// Result is the outcome of one probe.
type Result struct {
	Service string
	OK      bool
	Message string
}

// counts reports whether the result affects the overall verdict.
func (r Result) counts() bool {
	return !r.OK && r.Message != MessageNotConfigured
}

// Probe checks one dependency. Check never returns an error; failures are
// reported through Result.
type Probe interface {
	Name() string
	Check(ctx context.Context) Result
}

// Whoamier is satisfied by the chat session.
type Whoamier interface {
	Whoami(ctx context.Context) (string, error)
}

// Pinger is satisfied by the Sonarr and Radarr clients.
type Pinger interface {
	Configured() bool
	Ping(ctx context.Context) error
}

type chatProbe struct {
	name string
	w    Whoamier
}

// ChatProbe checks the chat session by asking the homeserver who we are.
func ChatProbe(name string, w Whoamier) Probe {
	return &chatProbe{name: name, w: w}
}

func (p *chatProbe) Name() string { return p.name }

func (p *chatProbe) Check(ctx context.Context) Result {
	if p.w == nil {
		return Result{Service: p.name, Message: MessageNotConfigured}
	}
	if _, err := p.w.Whoami(ctx); err != nil {
		return Result{Service: p.name, Message: failure(err)}
	}
	return Result{Service: p.name, OK: true, Message: MessageOK}
}

type servicePing struct {
	name string
	p    Pinger
}

// ServiceProbe checks a media service with its status endpoint. A client
// without URL or API key reports Not Configured.
func ServiceProbe(name string, p Pinger) Probe {
	return &servicePing{name: name, p: p}
}

func (s *servicePing) Name() string { return s.name }

func (s *servicePing) Check(ctx context.Context) Result {
	if s.p == nil || !s.p.Configured() {
		return Result{Service: s.name, Message: MessageNotConfigured}
	}
	if err := s.p.Ping(ctx); err != nil {
		return Result{Service: s.name, Message: failure(err)}
	}
	return Result{Service: s.name, OK: true, Message: MessageOK}
}

func failure(err error) string {
	switch {
	case errors.Is(err, arr.ErrNotConfigured):
		return MessageNotConfigured
	case errors.Is(err, arr.ErrUnauthorized):
		return MessageFailed + ": Unauthorized"
	case errors.Is(err, context.DeadlineExceeded):
		return MessageFailed + ": Timeout"
	default:
		return MessageFailed
	}
}

// Run executes every probe concurrently and returns the results in probe
// order. A panicking probe yields a failed result; the others still run.
func Run(ctx context.Context, log *slog.Logger, probes ...Probe) []Result {
	results := make([]Result, len(probes))
	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error("status probe panicked", "service", p.Name(), "panic", r)
					results[i] = Result{Service: p.Name(), Message: "Error: panic"}
				}
			}()
			results[i] = p.Check(ctx)
			if !results[i].OK {
				log.Warn("status probe failed", "service", p.Name(), "message", results[i].Message)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Checker runs a fixed set of probes.
type Checker struct {
	probes []Probe
	log    *slog.Logger
}

// NewChecker creates a Checker. The report lists probes in the order given.
func NewChecker(log *slog.Logger, probes ...Probe) *Checker {
	if log == nil {
		log = slog.Default()
	}
	return &Checker{probes: probes, log: log.With("component", "status")}
}

// Check runs all probes.
func (c *Checker) Check(ctx context.Context) []Result {
	c.log.Info("running status check", "probes", len(c.probes))
	results := Run(ctx, c.log, c.probes...)
	c.log.Info("status check finished", "healthy", Healthy(results))
	return results
}

// Healthy reports whether no result counts as an issue. Unconfigured
// services are not issues.
func Healthy(results []Result) bool {
	for _, r := range results {
		if r.counts() {
			return false
		}
	}
	return true
}

// Report renders results as plain text and HTML.
func Report(results []Result) (plain, htmlBody string) {
	var p, h strings.Builder
	p.WriteString("Service Status Report:\n")
	h.WriteString("<h3>Service Status Report</h3><ul>")

	for _, r := range results {
		glyph := "❌"
		if r.OK {
			glyph = "✅"
		}
		fmt.Fprintf(&p, "\n%s %s: %s", glyph, r.Service, r.Message)
		fmt.Fprintf(&h, "<li>%s <strong>%s:</strong> %s</li>", glyph, html.EscapeString(r.Service), html.EscapeString(r.Message))
	}
	h.WriteString("</ul>")

	verdict := "OK"
	if !Healthy(results) {
		verdict = "Issues Detected"
	}
	p.WriteString("\n\nOverall Status: " + verdict)
	h.WriteString("<p><strong>Overall Status: " + verdict + "</strong></p>")
	return p.String(), h.String()
}

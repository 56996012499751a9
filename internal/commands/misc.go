package commands

import (
	"context"
	"strings"

	"github.com/vmunix/arrbot/internal/status"
)

// Status reports connectivity of the chat backend and media services.
type Status struct {
	checker StatusChecker
}

// NewStatus creates the status command.
func NewStatus(checker StatusChecker) *Status {
	return &Status{checker: checker}
}

func (c *Status) Name() string { return "status" }

func (c *Status) Help(prefix string) HelpEntry {
	return HelpEntry{
		Name:        "status",
		Description: "Checks connectivity to Matrix, Sonarr and Radarr.",
		Usage:       prefix + "status",
	}
}

func (c *Status) Run(ctx context.Context, req *Request) error {
	plain, body := status.Report(c.checker.Check(ctx))
	return req.ReplyFormatted(ctx, plain, body)
}

// Echo repeats its argument text.
type Echo struct{}

func (Echo) Name() string { return "echo" }

func (Echo) Help(prefix string) HelpEntry {
	return HelpEntry{
		Name:        "echo",
		Description: "Echoes back the message you send.",
		Usage:       prefix + "echo <message>",
	}
}

func (Echo) Run(ctx context.Context, req *Request) error {
	text := strings.TrimSpace(strings.TrimPrefix(req.Body, req.Prefix+"echo"))
	if text == "" {
		return req.Reply(ctx, "Usage: "+req.Prefix+"echo <message>")
	}
	return req.Reply(ctx, text)
}

package commands

import (
	"context"
	"html"
	"strings"

	"github.com/hbollon/go-edlib"
)

// suggestThreshold is the Jaro-Winkler similarity above which an unknown
// help topic gets a "Did you mean" hint.
const suggestThreshold = 0.8

// Help lists commands or shows one command's usage.
type Help struct {
	registry *Registry
}

func (h *Help) Name() string { return "help" }

func (h *Help) Help(prefix string) HelpEntry {
	return HelpEntry{
		Name:        "help",
		Description: "Shows this help message.",
		Usage:       prefix + "help [command]",
	}
}

func (h *Help) Run(ctx context.Context, req *Request) error {
	var plain, body string
	if len(req.Args) == 0 {
		plain, body = h.list(req.Prefix)
	} else {
		plain, body = h.describe(req.Prefix, req.Args[0])
	}
	return req.ReplyFormatted(ctx, plain, body)
}

func (h *Help) list(prefix string) (string, string) {
	var p, b strings.Builder
	p.WriteString("Available commands (prefix with '" + prefix + "'):\n\n")
	b.WriteString("Available commands (prefix with <code>" + html.EscapeString(prefix) + "</code>):<br/><br/>")

	for _, name := range h.registry.Names() {
		e, _ := h.registry.Lookup(name)
		p.WriteString(name + ": " + e.Description + "\n")
		b.WriteString("<strong>" + html.EscapeString(name) + "</strong>: " + html.EscapeString(e.Description) + "<br/>")
	}

	p.WriteString("\nType `" + prefix + "help <command>` for more details.")
	b.WriteString("<br/>Type <code>" + html.EscapeString(prefix) + "help &lt;command&gt;</code> for more details.")
	return p.String(), b.String()
}

func (h *Help) describe(prefix, topic string) (string, string) {
	target := strings.ToLower(topic)
	target = strings.TrimPrefix(target, prefix)

	e, ok := h.registry.Lookup(target)
	if !ok {
		return h.unknown(prefix, target)
	}

	full := prefix + e.Name
	plain := full + "\n\nDescription: " + e.Description + "\n\n"
	body := "<strong>" + html.EscapeString(full) + "</strong><br/><br/>Description: " + html.EscapeString(e.Description) + "<br/><br/>"
	if e.Usage == "" {
		return plain + "Usage: N/A", body + "Usage: N/A"
	}
	plain += "Usage:\n" + e.Usage
	body += "Usage:<br/><pre><code>" + html.EscapeString(e.Usage) + "</code></pre>"
	return plain, body
}

func (h *Help) unknown(prefix, target string) (string, string) {
	plain := "Unknown command: '" + target + "'. Type `" + prefix + "help` to see available commands."
	body := "Unknown command: <code>" + html.EscapeString(target) + "</code>. Type <code>" + html.EscapeString(prefix) + "help</code> to see available commands."

	if s := h.suggest(target); s != "" {
		plain += " Did you mean '" + s + "'?"
		body += " Did you mean <code>" + html.EscapeString(s) + "</code>?"
	}
	return plain, body
}

// suggest returns the registered name most similar to target, or "" when
// nothing is close enough.
func (h *Help) suggest(target string) string {
	best, bestScore := "", float32(0)
	for _, name := range h.registry.Names() {
		score := edlib.JaroWinklerSimilarity(target, name)
		if score > bestScore {
			best, bestScore = name, score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

package commands

import (
	"html"
	"strconv"
	"strings"
)

// maxUnadded caps the unadded section unless --unadded was given.
const maxUnadded = 5

// resultLine is one search result in both renderings.
type resultLine struct {
	plain string
	html  string
}

// searchResults collects rendered lines for one search.
type searchResults struct {
	service     string // "Sonarr" or "Radarr"
	noun        string // "series" or "movies"
	term        string
	unaddedOnly bool

	added        []resultLine
	unadded      []resultLine
	totalAdded   int
	totalUnadded int
}

func (s *searchResults) addAdded(l resultLine) {
	s.totalAdded++
	if !s.unaddedOnly {
		s.added = append(s.added, l)
	}
}

func (s *searchResults) addUnadded(l resultLine) {
	s.totalUnadded++
	if s.unaddedOnly || len(s.unadded) < maxUnadded {
		s.unadded = append(s.unadded, l)
	}
}

func (s *searchResults) render() (string, string) {
	var p, b strings.Builder
	header := s.service + " results for '" + s.term + "'"
	if s.unaddedOnly {
		header += " (Not Yet Added Only)"
	}
	p.WriteString(header + ":\n\n")
	b.WriteString("<strong>" + html.EscapeString(header) + ":</strong><br/><br/>")

	if s.unaddedOnly {
		if len(s.unadded) == 0 {
			p.WriteString("No unadded " + s.noun + " found.")
			b.WriteString("No unadded " + s.noun + " found.")
		} else {
			writeLines(&p, &b, s.unadded)
		}
		return p.String(), b.String()
	}

	p.WriteString("-- Already Added --\n")
	b.WriteString("<strong>-- Already Added --</strong>")
	if len(s.added) == 0 {
		p.WriteString("None found.")
		b.WriteString("<br/>None found.<br/>")
	} else {
		writeLines(&p, &b, s.added)
	}

	p.WriteString("\n\n-- Not Yet Added --\n")
	b.WriteString("<br/><strong>-- Not Yet Added --</strong>")
	switch {
	case len(s.unadded) > 0:
		writeLines(&p, &b, s.unadded)
		if more := s.totalUnadded - len(s.unadded); more > 0 {
			p.WriteString("\n... and " + strconv.Itoa(more) + " more.")
			b.WriteString("<em>... and " + strconv.Itoa(more) + " more.</em>")
		}
	case s.totalAdded > 0:
		p.WriteString("All matches found are added.")
		b.WriteString("<br/>All matches found are added.")
	default:
		p.WriteString("None found.")
		b.WriteString("<br/>None found.")
	}
	return p.String(), b.String()
}

func writeLines(p, b *strings.Builder, lines []resultLine) {
	plain := make([]string, len(lines))
	b.WriteString("<ul>")
	for i, l := range lines {
		plain[i] = "- " + l.plain
		b.WriteString("<li>" + l.html + "</li>")
	}
	b.WriteString("</ul>")
	p.WriteString(strings.Join(plain, "\n"))
}

// titleLine renders "Title (Year) [Source: id]" with N/A placeholders.
func titleLine(title string, year int, source string, id int) resultLine {
	if title == "" {
		title = "N/A"
	}
	y, ext := "N/A", "N/A"
	if year > 0 {
		y = strconv.Itoa(year)
	}
	if id > 0 {
		ext = strconv.Itoa(id)
	}
	tail := " (" + y + ") [" + source + ": " + ext + "]"
	return resultLine{plain: title + tail, html: html.EscapeString(title) + tail}
}

// withSuffix appends the same text to both renderings.
func (l resultLine) withSuffix(s string) resultLine {
	return resultLine{plain: l.plain + s, html: l.html + html.EscapeString(s)}
}

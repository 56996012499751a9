package commands

import (
	"errors"
	"strconv"
	"strings"
)

// UnaddedFlag restricts search output to results not yet in the library.
const UnaddedFlag = "--unadded"

// SearchArgs are the parsed arguments of a search command.
type SearchArgs struct {
	Term        string
	UnaddedOnly bool
}

// ParseSearchArgs parses "[search] [--unadded] <term...>". The flag may
// appear anywhere; the optional leading "search" keyword is matched
// case-insensitively. Term is empty when no words remain.
func ParseSearchArgs(args []string) SearchArgs {
	var out SearchArgs
	words := make([]string, 0, len(args))
	for _, a := range args {
		if a == UnaddedFlag {
			out.UnaddedOnly = true
			continue
		}
		words = append(words, a)
	}
	if len(words) > 0 && strings.EqualFold(words[0], "search") {
		words = words[1:]
	}
	out.Term = strings.Join(words, " ")
	return out
}

var errInvalidID = errors.New("invalid id")

// parseID parses a positive integer id.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// isInfo reports whether args select the info subcommand.
func isInfo(args []string) bool {
	return len(args) > 0 && strings.EqualFold(args[0], "info")
}

package commands

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSearchArgs(t *testing.T) {
	tests := []struct {
		in   string
		want SearchArgs
	}{
		{"breaking bad", SearchArgs{Term: "breaking bad"}},
		{"search breaking bad", SearchArgs{Term: "breaking bad"}},
		{"SEARCH dune", SearchArgs{Term: "dune"}},
		{"--unadded dune", SearchArgs{Term: "dune", UnaddedOnly: true}},
		{"search --unadded dune", SearchArgs{Term: "dune", UnaddedOnly: true}},
		{"dune --unadded part two", SearchArgs{Term: "dune part two", UnaddedOnly: true}},
		{"--unadded search dune", SearchArgs{Term: "dune", UnaddedOnly: true}},
		{"search", SearchArgs{}},
		{"--unadded", SearchArgs{UnaddedOnly: true}},
		{"the search party", SearchArgs{Term: "the search party"}},
		{"--UNADDED x", SearchArgs{Term: "--UNADDED x"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSearchArgs(strings.Fields(tt.in)))
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("81189")
	assert.NoError(t, err)
	assert.Equal(t, 81189, id)

	for _, bad := range []string{"0", "-1", "abc", "12x", "", "1.5"} {
		_, err := parseID(bad)
		assert.ErrorIs(t, err, errInvalidID, bad)
	}
}

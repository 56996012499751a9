package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	chatmocks "github.com/vmunix/arrbot/internal/chat/mocks"
	"github.com/vmunix/arrbot/internal/commands/mocks"
	"github.com/vmunix/arrbot/internal/media"
)

type sonarrFixture struct {
	msgr  *chatmocks.MockMessenger
	svc   *mocks.MockSeriesService
	cards *mocks.MockCardSender
	r     *Router
}

func newSonarrFixture(t *testing.T) *sonarrFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &sonarrFixture{
		msgr:  chatmocks.NewMockMessenger(ctrl),
		svc:   mocks.NewMockSeriesService(ctrl),
		cards: mocks.NewMockCardSender(ctrl),
	}
	f.r = newRouter(f.msgr, RouterConfig{}, NewSonarr(f.svc, f.cards, quietLog))
	return f
}

func TestSonarr_Usage(t *testing.T) {
	f := newSonarrFixture(t)
	usage := "Usage:\n  `!sonarr [search] [--unadded] <search_term>`\n  `!sonarr info <tvdb_id>`"
	f.msgr.EXPECT().SendText(gomock.Any(), testRoom, usage).Return(nil).Times(3)

	say(f.r, "!sonarr")
	say(f.r, "!sonarr search")
	say(f.r, "!sonarr --unadded")
}

func TestSonarr_NotConfigured(t *testing.T) {
	f := newSonarrFixture(t)
	f.svc.EXPECT().Configured().Return(false).Times(2)
	f.msgr.EXPECT().SendText(gomock.Any(), testRoom, "Error: Sonarr is not configured.").Return(nil).Times(2)

	say(f.r, "!sonarr breaking bad")
	say(f.r, "!sonarr info 81189")
}

func TestSonarr_SearchCommunicationFailure(t *testing.T) {
	for _, term := range []string{"breaking bad", "x", "the wire"} {
		t.Run(term, func(t *testing.T) {
			f := newSonarrFixture(t)
			f.svc.EXPECT().Configured().Return(true)
			f.svc.EXPECT().Lookup(gomock.Any(), term).Return(nil, errors.New("connection refused"))
			f.msgr.EXPECT().SendText(gomock.Any(), testRoom, "Error: Sonarr API communication failed.").Return(nil).Times(1)

			say(f.r, "!sonarr "+term)
		})
	}
}

func TestSonarr_SearchNoMatches(t *testing.T) {
	f := newSonarrFixture(t)
	f.svc.EXPECT().Configured().Return(true)
	f.svc.EXPECT().Lookup(gomock.Any(), "zzz qqq").Return([]*media.Series{}, nil)
	f.msgr.EXPECT().SendText(gomock.Any(), testRoom, "No series found matching 'zzz qqq'.").Return(nil).Times(1)

	say(f.r, "!sonarr search zzz   qqq")
}

func TestSonarr_SearchRendersSections(t *testing.T) {
	f := newSonarrFixture(t)

	results := []*media.Series{
		{ID: 7, Title: "Breaking Bad", Year: 2008, TVDBID: 81189, SeasonCount: 1},
		{ID: 9, Title: "Better Call Saul", Year: 2015, TVDBID: 273181, SeasonCount: 6},
	}
	for i := 1; i <= 7; i++ {
		results = append(results, &media.Series{Title: fmt.Sprintf("Bad %d", i), Year: 2000 + i, TVDBID: 100 + i, SeasonCount: i})
	}

	f.svc.EXPECT().Configured().Return(true)
	f.svc.EXPECT().Lookup(gomock.Any(), "bad").Return(results, nil)
	f.svc.EXPECT().Series(gomock.Any(), 7).Return(&media.Series{ID: 7, SeasonCount: 5, Status: "ended", Monitored: true}, nil)
	f.svc.EXPECT().Series(gomock.Any(), 9).Return(nil, errors.New("timeout"))

	var plain, body string
	f.msgr.EXPECT().SendFormatted(gomock.Any(), testRoom, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, p, h string) error { plain, body = p, h; return nil })

	say(f.r, "!sonarr bad")

	want := strings.Join([]string{
		"Sonarr results for 'bad':",
		"",
		"-- Already Added --",
		"- Breaking Bad (2008) [TVDb: 81189] - 5 seasons (Monitored)",
		"- Better Call Saul (2015) [TVDb: 273181] - 6 seasons",
		"",
		"-- Not Yet Added --",
		"- Bad 1 (2001) [TVDb: 101] - 1 seasons",
		"- Bad 2 (2002) [TVDb: 102] - 2 seasons",
		"- Bad 3 (2003) [TVDb: 103] - 3 seasons",
		"- Bad 4 (2004) [TVDb: 104] - 4 seasons",
		"- Bad 5 (2005) [TVDb: 105] - 5 seasons",
		"... and 2 more.",
	}, "\n")
	assert.Equal(t, want, plain)
	assert.Contains(t, body, "<li>Breaking Bad (2008) [TVDb: 81189] - 5 seasons (Monitored)</li>")
	assert.Contains(t, body, "<em>... and 2 more.</em>")
}

func TestSonarr_SearchStatusSuffix(t *testing.T) {
	f := newSonarrFixture(t)
	f.svc.EXPECT().Configured().Return(true)
	f.svc.EXPECT().Lookup(gomock.Any(), "show").Return([]*media.Series{{ID: 3, Title: "Show", Year: 2020, TVDBID: 5}}, nil)
	f.svc.EXPECT().Series(gomock.Any(), 3).Return(&media.Series{ID: 3, SeasonCount: 2, Status: "continuing"}, nil)

	var plain string
	f.msgr.EXPECT().SendFormatted(gomock.Any(), testRoom, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, p, _ string) error { plain = p; return nil })

	say(f.r, "!sonarr show")
	assert.Contains(t, plain, "- Show (2020) [TVDb: 5] - 2 seasons (Continuing)")
	assert.True(t, strings.HasSuffix(plain, "-- Not Yet Added --\nAll matches found are added."))
}

func TestSonarr_SearchUnaddedOnly(t *testing.T) {
	f := newSonarrFixture(t)
	f.svc.EXPECT().Configured().Return(true)
	f.svc.EXPECT().Lookup(gomock.Any(), "bad").Return([]*media.Series{
		{ID: 7, Title: "Breaking Bad", Year: 2008, TVDBID: 81189},
	}, nil)
	// No Series calls: added entries are not shown.

	var plain string
	f.msgr.EXPECT().SendFormatted(gomock.Any(), testRoom, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, p, _ string) error { plain = p; return nil })

	say(f.r, "!sonarr --unadded bad")
	assert.Equal(t, "Sonarr results for 'bad' (Not Yet Added Only):\n\nNo unadded series found.", plain)
}

func TestSonarr_InfoRejectsBadIDsWithoutCalls(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"!sonarr info", "Usage: `!sonarr info <tvdb_id>`"},
		{"!sonarr info 1 2", "Usage: `!sonarr info <tvdb_id>`"},
		{"!sonarr info 0", "Invalid TVDb ID. Usage: `!sonarr info <tvdb_id>`"},
		{"!sonarr info -5", "Invalid TVDb ID. Usage: `!sonarr info <tvdb_id>`"},
		{"!sonarr INFO abc", "Invalid TVDb ID. Usage: `!sonarr info <tvdb_id>`"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			f := newSonarrFixture(t)
			// Any service call fails the test.
			f.msgr.EXPECT().SendText(gomock.Any(), testRoom, tt.want).Return(nil)
			say(f.r, tt.body)
		})
	}
}

func TestSonarr_InfoAddedFetchesDetails(t *testing.T) {
	f := newSonarrFixture(t)
	details := &media.Series{ID: 7, Title: "Breaking Bad", TVDBID: 81189, Path: "/tv/bb"}

	f.svc.EXPECT().Configured().Return(true)
	f.svc.EXPECT().LookupTVDB(gomock.Any(), 81189).Return([]*media.Series{{ID: 7, TVDBID: 81189, Title: "Breaking Bad"}}, nil)
	f.svc.EXPECT().Series(gomock.Any(), 7).Return(details, nil)
	f.cards.EXPECT().Send(gomock.Any(), testRoom, details).Return(nil)

	say(f.r, "!sonarr info 81189")
}

func TestSonarr_InfoNotAddedUsesLookup(t *testing.T) {
	f := newSonarrFixture(t)

	f.svc.EXPECT().Configured().Return(true)
	f.svc.EXPECT().LookupTVDB(gomock.Any(), 42).Return([]*media.Series{{Title: "New Show"}}, nil)
	f.cards.EXPECT().Send(gomock.Any(), testRoom, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, rec media.Record) error {
			s, ok := rec.(*media.Series)
			require.True(t, ok)
			assert.False(t, s.Added())
			assert.Equal(t, 42, s.TVDBID, "requested id fills a missing TVDB id")
			return nil
		})

	say(f.r, "!sonarr info 42")
}

func TestSonarr_InfoFailures(t *testing.T) {
	t.Run("lookup error", func(t *testing.T) {
		f := newSonarrFixture(t)
		f.svc.EXPECT().Configured().Return(true)
		f.svc.EXPECT().LookupTVDB(gomock.Any(), 5).Return(nil, errors.New("boom"))
		f.msgr.EXPECT().SendText(gomock.Any(), testRoom, "Error: Could not communicate with Sonarr API while looking up TVDb ID 5.").Return(nil)
		say(f.r, "!sonarr info 5")
	})
	t.Run("no results", func(t *testing.T) {
		f := newSonarrFixture(t)
		f.svc.EXPECT().Configured().Return(true)
		f.svc.EXPECT().LookupTVDB(gomock.Any(), 5).Return(nil, nil)
		f.msgr.EXPECT().SendText(gomock.Any(), testRoom, "Sonarr could not find any series matching TVDb ID 5.").Return(nil)
		say(f.r, "!sonarr info 5")
	})
	t.Run("details error", func(t *testing.T) {
		f := newSonarrFixture(t)
		f.svc.EXPECT().Configured().Return(true)
		f.svc.EXPECT().LookupTVDB(gomock.Any(), 5).Return([]*media.Series{{ID: 2, TVDBID: 5}}, nil)
		f.svc.EXPECT().Series(gomock.Any(), 2).Return(nil, errors.New("500"))
		f.msgr.EXPECT().SendText(gomock.Any(), testRoom, "Found series with TVDb ID 5 in Sonarr, but failed to fetch its details.").Return(nil)
		say(f.r, "!sonarr info 5")
	})
	t.Run("card send error is not reported", func(t *testing.T) {
		f := newSonarrFixture(t)
		f.svc.EXPECT().Configured().Return(true)
		f.svc.EXPECT().LookupTVDB(gomock.Any(), 5).Return([]*media.Series{{TVDBID: 5}}, nil)
		f.cards.EXPECT().Send(gomock.Any(), testRoom, gomock.Any()).Return(errors.New("forbidden"))
		say(f.r, "!sonarr info 5")
	})
}

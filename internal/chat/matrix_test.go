package chat

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/vmunix/arrbot/internal/config"
)

// fakeHomeserver records the client-server API calls the adapter makes.
type fakeHomeserver struct {
	mu     sync.Mutex
	sent   []map[string]any
	joined []string
	logout bool
}

func (f *fakeHomeserver) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		path := r.URL.Path
		switch {
		case strings.HasSuffix(path, "/login"):
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret" {
				w.WriteHeader(http.StatusForbidden)
				_, _ = io.WriteString(w, `{"errcode":"M_FORBIDDEN","error":"bad password"}`)
				return
			}
			_, _ = io.WriteString(w, `{"user_id":"@bot:example.org","access_token":"tok","device_id":"DEV"}`)
		case strings.HasSuffix(path, "/account/whoami"):
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = io.WriteString(w, `{"errcode":"M_UNKNOWN_TOKEN","error":"unknown token"}`)
				return
			}
			_, _ = io.WriteString(w, `{"user_id":"@bot:example.org"}`)
		case strings.Contains(path, "/send/m.room.message/"):
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.mu.Lock()
			f.sent = append(f.sent, body)
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"event_id":"$evt"}`)
		case strings.HasSuffix(path, "/upload"):
			_, _ = io.WriteString(w, `{"content_uri":"mxc://example.org/poster"}`)
		case strings.HasSuffix(path, "/join"):
			f.mu.Lock()
			f.joined = append(f.joined, path)
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{"room_id":"!room:example.org"}`)
		case strings.HasSuffix(path, "/logout"):
			f.mu.Lock()
			f.logout = true
			f.mu.Unlock()
			_, _ = io.WriteString(w, `{}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"errcode":"M_UNRECOGNIZED"}`)
		}
	}
}

func newTestMatrix(t *testing.T, cfg config.MatrixConfig) (*Matrix, *fakeHomeserver) {
	t.Helper()
	fake := &fakeHomeserver{}
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	cfg.Homeserver = srv.URL
	if cfg.User == "" {
		cfg.User = "@bot:example.org"
	}
	m, err := NewMatrix(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), WithSDKLogOutput(io.Discard))
	require.NoError(t, err)
	return m, fake
}

func TestMatrix_PasswordLoginAndLogout(t *testing.T) {
	m, fake := newTestMatrix(t, config.MatrixConfig{Password: "secret"})
	ctx := context.Background()

	require.NoError(t, m.Login(ctx))
	assert.Equal(t, "@bot:example.org", m.UserID())

	who, err := m.Whoami(ctx)
	require.NoError(t, err)
	assert.Equal(t, "@bot:example.org", who)

	require.NoError(t, m.Close(ctx))
	assert.True(t, fake.logout)
}

func TestMatrix_LocalpartLoginResolvesUserID(t *testing.T) {
	m, _ := newTestMatrix(t, config.MatrixConfig{User: "bot", Password: "secret"})
	assert.Equal(t, "bot", m.UserID())

	require.NoError(t, m.Login(context.Background()))
	assert.Equal(t, "@bot:example.org", m.UserID())
}

func TestMatrix_BadPassword(t *testing.T) {
	m, _ := newTestMatrix(t, config.MatrixConfig{Password: "wrong"})
	require.Error(t, m.Login(context.Background()))
}

func TestMatrix_AccessTokenSessionIsNotLoggedOut(t *testing.T) {
	m, fake := newTestMatrix(t, config.MatrixConfig{AccessToken: "tok"})
	ctx := context.Background()

	require.NoError(t, m.Login(ctx))
	require.NoError(t, m.Close(ctx))
	assert.False(t, fake.logout)
}

func TestMatrix_SendAndUpload(t *testing.T) {
	m, fake := newTestMatrix(t, config.MatrixConfig{Password: "secret"})
	ctx := context.Background()
	require.NoError(t, m.Login(ctx))

	require.NoError(t, m.SendText(ctx, "!room:example.org", "hello"))
	require.NoError(t, m.SendFormatted(ctx, "!room:example.org", "plain", "<b>html</b>"))

	uri, err := m.Upload(ctx, []byte{0xff, 0xd8}, "image/jpeg", "poster.jpg")
	require.NoError(t, err)
	assert.Equal(t, "mxc://example.org/poster", uri)

	require.Len(t, fake.sent, 2)
	assert.Equal(t, "hello", fake.sent[0]["body"])
	assert.Nil(t, fake.sent[0]["formatted_body"])
	assert.Equal(t, "plain", fake.sent[1]["body"])
	assert.Equal(t, "org.matrix.custom.html", fake.sent[1]["format"])
	assert.Equal(t, "<b>html</b>", fake.sent[1]["formatted_body"])
}

func TestMatrix_HandleMessageDispatches(t *testing.T) {
	m, _ := newTestMatrix(t, config.MatrixConfig{Password: "secret"})

	got := make(chan Message, 1)
	m.OnMessage(func(_ context.Context, msg Message) { got <- msg })

	m.handleMessage(context.Background(), &event.Event{
		Type:   event.EventMessage,
		RoomID: id.RoomID("!room:example.org"),
		Sender: id.UserID("@alice:example.org"),
		Content: event.Content{Parsed: &event.MessageEventContent{
			MsgType: event.MsgText,
			Body:    "!echo hi",
		}},
	})

	select {
	case msg := <-got:
		assert.Equal(t, Message{RoomID: "!room:example.org", Sender: "@alice:example.org", Body: "!echo hi"}, msg)
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestMatrix_HandleMessageIgnoresNonText(t *testing.T) {
	m, _ := newTestMatrix(t, config.MatrixConfig{Password: "secret"})

	called := make(chan struct{}, 1)
	m.OnMessage(func(context.Context, Message) { called <- struct{}{} })

	m.handleMessage(context.Background(), &event.Event{
		Type: event.EventMessage,
		Content: event.Content{Parsed: &event.MessageEventContent{
			MsgType: event.MsgImage,
			Body:    "poster.jpg",
		}},
	})

	select {
	case <-called:
		t.Fatal("non-text message must not be dispatched")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMatrix_AutoJoinOnInvite(t *testing.T) {
	m, fake := newTestMatrix(t, config.MatrixConfig{Password: "secret"})
	ctx := context.Background()
	require.NoError(t, m.Login(ctx))

	stateKey := "@bot:example.org"
	m.handleMembership(ctx, &event.Event{
		Type:     event.StateMember,
		RoomID:   id.RoomID("!room:example.org"),
		Sender:   id.UserID("@alice:example.org"),
		StateKey: &stateKey,
		Content:  event.Content{Parsed: &event.MemberEventContent{Membership: event.MembershipInvite}},
	})

	other := "@someone:example.org"
	m.handleMembership(ctx, &event.Event{
		Type:     event.StateMember,
		RoomID:   id.RoomID("!other:example.org"),
		StateKey: &other,
		Content:  event.Content{Parsed: &event.MemberEventContent{Membership: event.MembershipInvite}},
	})

	require.Len(t, fake.joined, 1)
	assert.Contains(t, fake.joined[0], "!room:example.org")
}

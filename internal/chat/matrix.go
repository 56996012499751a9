package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/vmunix/arrbot/internal/config"
	"github.com/vmunix/arrbot/internal/metrics"
)

// Matrix is a Messenger backed by a Matrix homeserver session.
type Matrix struct {
	client *mautrix.Client
	cfg    config.MatrixConfig
	log    *slog.Logger

	mu          sync.RWMutex
	handler     Handler
	ownsSession bool
}

// MatrixOption configures a Matrix adapter.
type MatrixOption func(*matrixOptions)

type matrixOptions struct {
	sdkLog     io.Writer
	httpClient *http.Client
}

// WithMatrixHTTPClient sets the client used for homeserver requests.
func WithMatrixHTTPClient(hc *http.Client) MatrixOption {
	return func(o *matrixOptions) {
		o.httpClient = hc
	}
}

// WithSDKLogOutput directs the Matrix library's own log output.
func WithSDKLogOutput(w io.Writer) MatrixOption {
	return func(o *matrixOptions) {
		o.sdkLog = w
	}
}

// NewMatrix creates an adapter for the configured homeserver. No network
// calls are made until Login.
func NewMatrix(cfg config.MatrixConfig, log *slog.Logger, opts ...MatrixOption) (*Matrix, error) {
	o := matrixOptions{sdkLog: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.User), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("create matrix client: %w", err)
	}
	if o.httpClient != nil {
		client.Client = o.httpClient
	}
	// The SDK is chatty at info level; only its warnings are of interest.
	client.Log = zerolog.New(zerolog.ConsoleWriter{Out: o.sdkLog}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Str("component", "mautrix").Logger()

	m := &Matrix{
		client: client,
		cfg:    cfg,
		log:    log.With("component", "matrix"),
	}

	syncer, ok := client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return nil, errors.New("unexpected matrix syncer type")
	}
	syncer.OnSync(client.DontProcessOldEvents)
	syncer.OnEventType(event.EventMessage, m.handleMessage)
	syncer.OnEventType(event.StateMember, m.handleMembership)

	return m, nil
}

// OnMessage sets the inbound message handler. Each message is delivered on
// its own goroutine.
func (m *Matrix) OnMessage(h Handler) {
	m.mu.Lock()
	m.handler = h
	m.mu.Unlock()
}

// UserID returns the bot's own user id.
func (m *Matrix) UserID() string {
	return m.client.UserID.String()
}

// Login authenticates with the password when no access token is configured.
func (m *Matrix) Login(ctx context.Context) error {
	if m.cfg.AccessToken != "" {
		who, err := m.client.Whoami(ctx)
		if err != nil {
			return fmt.Errorf("verify access token: %w", err)
		}
		m.client.UserID = who.UserID
		m.log.Info("using access token", "user_id", who.UserID)
		return nil
	}

	resp, err := m.client.Login(ctx, &mautrix.ReqLogin{
		Type: mautrix.AuthTypePassword,
		Identifier: mautrix.UserIdentifier{
			Type: mautrix.IdentifierTypeUser,
			User: m.cfg.User,
		},
		Password:                 m.cfg.Password,
		InitialDeviceDisplayName: "arrbot",
		StoreCredentials:         true,
	})
	if err != nil {
		return fmt.Errorf("matrix login: %w", err)
	}
	m.mu.Lock()
	m.ownsSession = true
	m.mu.Unlock()
	m.log.Info("logged in", "user_id", resp.UserID, "device_id", resp.DeviceID)
	return nil
}

// Sync runs the sync loop until ctx is canceled or Stop is called.
func (m *Matrix) Sync(ctx context.Context) error {
	m.log.Info("starting sync loop")
	err := m.client.SyncWithContext(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("matrix sync: %w", err)
	}
	return nil
}

// Stop stops the sync loop; no further messages are delivered.
func (m *Matrix) Stop() {
	m.client.StopSync()
}

// Close ends the session if it was created by a password login. Sessions
// created from a configured access token are left intact.
func (m *Matrix) Close(ctx context.Context) error {
	m.mu.RLock()
	owns := m.ownsSession
	m.mu.RUnlock()
	if !owns {
		return nil
	}
	if _, err := m.client.Logout(ctx); err != nil {
		return fmt.Errorf("matrix logout: %w", err)
	}
	m.log.Info("logged out")
	return nil
}

// SendText sends a plain-text message.
func (m *Matrix) SendText(ctx context.Context, roomID, text string) error {
	return m.send(ctx, roomID, &event.MessageEventContent{
		MsgType: event.MsgText,
		Body:    text,
	})
}

// SendFormatted sends a message with a plain-text and an HTML body.
func (m *Matrix) SendFormatted(ctx context.Context, roomID, plain, html string) error {
	return m.send(ctx, roomID, &event.MessageEventContent{
		MsgType:       event.MsgText,
		Body:          plain,
		Format:        event.FormatHTML,
		FormattedBody: html,
	})
}

func (m *Matrix) send(ctx context.Context, roomID string, content *event.MessageEventContent) error {
	_, err := m.client.SendMessageEvent(ctx, id.RoomID(roomID), event.EventMessage, content)
	metrics.RecordMessage(err)
	if err != nil {
		return fmt.Errorf("send to %s: %w", roomID, err)
	}
	return nil
}

// Upload stores data in the homeserver's media repository and returns its mxc URI.
func (m *Matrix) Upload(ctx context.Context, data []byte, contentType, name string) (string, error) {
	resp, err := m.client.UploadBytesWithName(ctx, data, contentType, name)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	return resp.ContentURI.String(), nil
}

// Whoami returns the authenticated user id.
func (m *Matrix) Whoami(ctx context.Context) (string, error) {
	resp, err := m.client.Whoami(ctx)
	if err != nil {
		return "", err
	}
	return resp.UserID.String(), nil
}

func (m *Matrix) handleMessage(ctx context.Context, evt *event.Event) {
	content := evt.Content.AsMessage()
	if content.MsgType != event.MsgText {
		return
	}

	m.mu.RLock()
	h := m.handler
	m.mu.RUnlock()
	if h == nil {
		return
	}

	msg := Message{
		RoomID: evt.RoomID.String(),
		Sender: evt.Sender.String(),
		Body:   content.Body,
	}
	go h(context.WithoutCancel(ctx), msg)
}

func (m *Matrix) handleMembership(ctx context.Context, evt *event.Event) {
	if evt.GetStateKey() != m.client.UserID.String() {
		return
	}
	if evt.Content.AsMember().Membership != event.MembershipInvite {
		return
	}
	if _, err := m.client.JoinRoomByID(ctx, evt.RoomID); err != nil {
		m.log.Error("failed to join room", "room_id", evt.RoomID, "error", err)
		return
	}
	m.log.Info("joined room after invite", "room_id", evt.RoomID, "inviter", evt.Sender)
}

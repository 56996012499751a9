package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/vmunix/arrbot/internal/chat"
	"github.com/vmunix/arrbot/internal/metrics"
)

// GenericError is sent to the room when a command fails unexpectedly.
const GenericError = "An unexpected error occurred while processing your command."

type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("command panicked: %v", e.value)
}

// RouterConfig holds the message filters.
type RouterConfig struct {
	// Prefix is the single-character command prefix.
	Prefix string
	// Self returns the bot's own user id; its messages are ignored. It is
	// called per message because the id is only final after login.
	Self func() string
	// TargetRoom, when set, restricts commands to that room.
	TargetRoom string
}

// Router dispatches chat messages to commands by their first token.
type Router struct {
	cfg      RouterConfig
	msgr     chat.Messenger
	registry *Registry
	commands map[string]Command
	log      *slog.Logger
}

// NewRouter builds the help registry from cmds plus the built-in help
// command, then installs the dispatch table. A later command with a
// duplicate name replaces the earlier one.
func NewRouter(cfg RouterConfig, msgr chat.Messenger, log *slog.Logger, cmds ...Command) *Router {
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		cfg:      cfg,
		msgr:     msgr,
		registry: newRegistry(),
		commands: make(map[string]Command, len(cmds)+1),
		log:      log.With("component", "commands"),
	}

	all := append([]Command{&Help{registry: r.registry}}, cmds...)
	for _, c := range all {
		r.registry.add(c.Help(cfg.Prefix))
	}
	for _, c := range all {
		if _, dup := r.commands[c.Name()]; dup {
			r.log.Warn("duplicate command registration, last wins", "command", c.Name())
		}
		r.commands[c.Name()] = c
	}
	r.log.Info("commands registered", "commands", strings.Join(r.registry.Names(), ", "))
	return r
}

// Registry returns the help registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

// Handle filters msg and runs the matching command, if any. It blocks until
// the command finishes; the chat adapter calls it on its own goroutine.
func (r *Router) Handle(ctx context.Context, msg chat.Message) {
	if r.fromSelf(msg.Sender) {
		return
	}
	if r.cfg.TargetRoom != "" && msg.RoomID != r.cfg.TargetRoom {
		return
	}
	if !strings.HasPrefix(msg.Body, r.cfg.Prefix) {
		return
	}

	fields := strings.Fields(msg.Body)
	if len(fields) == 0 {
		return
	}
	name, ok := strings.CutPrefix(fields[0], r.cfg.Prefix)
	if !ok {
		return
	}
	cmd, ok := r.commands[name]
	if !ok {
		return
	}

	r.run(ctx, cmd, &Request{
		RoomID: msg.RoomID,
		Sender: msg.Sender,
		Body:   msg.Body,
		Args:   fields[1:],
		Prefix: r.cfg.Prefix,
		msgr:   r.msgr,
	})
}

func (r *Router) fromSelf(sender string) bool {
	if r.cfg.Self == nil {
		return false
	}
	self := r.cfg.Self()
	return self != "" && sender == self
}

// run executes cmd with panic recovery. Any failure is logged and answered
// with GenericError.
func (r *Router) run(ctx context.Context, cmd Command, req *Request) {
	log := r.log.With("command", cmd.Name(), "room_id", req.RoomID, "sender", req.Sender)
	log.Info("command received", "args", len(req.Args))

	err := safeRun(ctx, cmd, req)
	metrics.RecordCommand(cmd.Name(), err)
	if err == nil {
		return
	}

	var pe *panicError
	if errors.As(err, &pe) {
		log.Error("command panicked", "panic", pe.value, "stack", string(pe.stack))
	} else {
		log.Error("command failed", "error", err)
	}
	if sendErr := req.Reply(ctx, GenericError); sendErr != nil {
		log.Error("failed to send error notice", "error", sendErr)
	}
}

func safeRun(ctx context.Context, cmd Command, req *Request) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p, stack: debug.Stack()}
		}
	}()
	return cmd.Run(ctx, req)
}

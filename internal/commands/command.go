// Package commands implements the chat command router and the built-in
// commands: help, sonarr, radarr, status and echo.
package commands

import (
	"context"
	"sort"

	"github.com/vmunix/arrbot/internal/chat"
)

// Command is a chat command invoked as prefix+Name().
type Command interface {
	Name() string
	// Help describes the command. Usage text already carries the prefix.
	Help(prefix string) HelpEntry
	Run(ctx context.Context, req *Request) error
}

// HelpEntry is one command's help text.
type HelpEntry struct {
	Name        string
	Description string
	Usage       string
}

// Registry maps command names to help entries. It is filled once by
// NewRouter and only read afterwards.
type Registry struct {
	entries map[string]HelpEntry
}

func newRegistry() *Registry {
	return &Registry{entries: make(map[string]HelpEntry)}
}

// add stores e, replacing any entry with the same name.
func (r *Registry) add(e HelpEntry) {
	r.entries[e.Name] = e
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (HelpEntry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Request is one invocation of a command.
type Request struct {
	RoomID string
	Sender string
	Body   string
	// Args are the whitespace-separated tokens after the command token.
	Args []string
	// Prefix is the configured command prefix.
	Prefix string

	msgr chat.Messenger
}

// Reply sends a plain-text message to the request's room.
func (r *Request) Reply(ctx context.Context, text string) error {
	return r.msgr.SendText(ctx, r.RoomID, text)
}

// ReplyFormatted sends a plain+HTML message to the request's room.
func (r *Request) ReplyFormatted(ctx context.Context, plain, html string) error {
	return r.msgr.SendFormatted(ctx, r.RoomID, plain, html)
}

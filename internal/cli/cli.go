// Package cli implements the command-line interaction backend: synchronous
// stdout writes and blocking stdin reads, with user identity resolved from
// the local OS account. It is the minimal reference backend and has no
// concurrency or queueing.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/Slowki/chattermouth/pkg/interaction"
)

// UserInfo resolves identity from the local OS account.
type UserInfo struct {
	// Username is the local account name.
	Username string

	// UserID is the numeric account id as a string.
	UserID string

	// displayName is the account's registered full-name field (GECOS on
	// Unix-like systems). Empty if the platform does not provide one.
	displayName string
}

// CurrentUserInfo looks up the current OS account.
func CurrentUserInfo() (*UserInfo, error) {
	u, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("cli: look up current user: %w", err)
	}
	// The Name field may carry comma-separated GECOS subfields; the display
	// name is the first one.
	name, _, _ := strings.Cut(u.Name, ",")
	return &UserInfo{
		Username:    u.Username,
		UserID:      u.Uid,
		displayName: name,
	}, nil
}

// FullName returns the local account's registered full name.
func (u *UserInfo) FullName(_ context.Context) (string, error) {
	return u.displayName, nil
}

// FirstName returns the first whitespace-separated field of the full name.
func (u *UserInfo) FirstName(ctx context.Context) (string, error) {
	full, err := u.FullName(ctx)
	if err != nil {
		return "", err
	}
	return interaction.SplitFirstName(full), nil
}

// LastName returns the last whitespace-separated field of the full name.
func (u *UserInfo) LastName(ctx context.Context) (string, error) {
	full, err := u.FullName(ctx)
	if err != nil {
		return "", err
	}
	return interaction.SplitLastName(full), nil
}

// Email returns "": the local account database carries no email address.
func (u *UserInfo) Email(_ context.Context) (string, error) {
	return "", nil
}

// Context is the CLI interaction context. The zero value is not usable; use
// New.
type Context struct {
	in   *bufio.Reader
	out  io.Writer
	user *UserInfo
}

// Compile-time interface check.
var _ interaction.Context = (*Context)(nil)

// New creates a CLI interaction context reading from stdin and writing to
// stdout. The user is resolved from the local OS account.
func New() (*Context, error) {
	u, err := CurrentUserInfo()
	if err != nil {
		return nil, err
	}
	return NewWithIO(os.Stdin, os.Stdout, u), nil
}

// NewWithIO creates a CLI interaction context with explicit reader, writer,
// and user. Used by tests and by hosts that redirect the terminal.
func NewWithIO(in io.Reader, out io.Writer, u *UserInfo) *Context {
	return &Context{
		in:   bufio.NewReader(in),
		out:  out,
		user: u,
	}
}

// Tell writes the message and a trailing newline to the output.
func (c *Context) Tell(_ context.Context, text string) error {
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		return fmt.Errorf("cli: write message: %w", err)
	}
	return nil
}

// Listen blocks reading one line from the input and wraps it in a Message.
func (c *Context) Listen(_ context.Context) (interaction.Message, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return interaction.Message{}, fmt.Errorf("cli: read message: %w", err)
	}
	return interaction.Message{
		User:    c.user,
		Content: strings.TrimRight(line, "\r\n"),
	}, nil
}

// Ask sends a message and returns the user's next line.
func (c *Context) Ask(ctx context.Context, text string) (interaction.Message, error) {
	if err := c.Tell(ctx, text); err != nil {
		return interaction.Message{}, err
	}
	return c.Listen(ctx)
}

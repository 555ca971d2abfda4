package folio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const defaultTokenCommandTimeout = 10 * time.Second

// StaticToken returns a token source that always yields token.
//
// Useful for service accounts and tests. For short-lived credentials use a
// source that mints a fresh token per call, such as [CommandTokenSource].
func StaticToken(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// TokenFunc adapts an ordinary function to [oauth2.TokenSource].
type TokenFunc func() (string, error)

// Token calls f.
func (f TokenFunc) Token() (*oauth2.Token, error) {
	s, err := f()
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{AccessToken: s, TokenType: "Bearer"}, nil
}

// CommandTokenSource runs an external command on every Token call and uses
// its trimmed stdout as the bearer token, e.g. `gcloud auth print-identity-token`.
type CommandTokenSource struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// NewCommandTokenSource splits command on whitespace into a [CommandTokenSource].
func NewCommandTokenSource(command string) (*CommandTokenSource, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("token command cannot be empty")
	}
	return &CommandTokenSource{
		Name:    fields[0],
		Args:    fields[1:],
		Timeout: defaultTokenCommandTimeout,
	}, nil
}

// Token runs the command.
func (s *CommandTokenSource) Token() (*oauth2.Token, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTokenCommandTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Name, s.Args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("token command %q failed: %w: %s", s.Name, err, msg)
		}
		return nil, fmt.Errorf("token command %q failed: %w", s.Name, err)
	}

	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return nil, fmt.Errorf("token command %q printed no token", s.Name)
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// resolveToken mints a bearer credential. It is called once per attempt.
func resolveToken(ts oauth2.TokenSource) (string, error) {
	if ts == nil {
		return "", ErrNotAuthenticated
	}
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("authentication failed: %w", err)
	}
	if tok == nil || tok.AccessToken == "" {
		return "", ErrNotAuthenticated
	}
	return tok.AccessToken, nil
}

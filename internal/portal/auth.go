package portal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"

	"github.com/mberthou/satchel/internal/domain"
	"golang.org/x/term"
)

// Credentials holds the tokens returned by a successful login.
type Credentials struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	DisplayName  string `json:"displayName"`
}

// Login authenticates with username/password and installs the returned
// tokens on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*Credentials, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data Credentials `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	if payload.Data.Token == "" {
		return nil, domain.ErrAuthFailed
	}

	c.mu.Lock()
	c.token = payload.Data.Token
	c.refreshToken = payload.Data.RefreshToken
	c.mu.Unlock()

	c.logger.Info("authenticated", "user", payload.Data.DisplayName)
	return &payload.Data, nil
}

// Refresh exchanges the refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context) error {
	c.mu.RLock()
	refreshToken := c.refreshToken
	c.mu.RUnlock()

	if refreshToken == "" {
		return domain.ErrUnauthenticated
	}

	raw, err := c.doRequest(ctx, http.MethodPost, "/auth/refresh", nil, map[string]string{
		"refreshToken": refreshToken,
	})
	if err != nil {
		return err
	}

	var payload struct {
		Data Credentials `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if payload.Data.Token == "" {
		return domain.ErrAuthFailed
	}

	c.mu.Lock()
	c.token = payload.Data.Token
	if payload.Data.RefreshToken != "" {
		c.refreshToken = payload.Data.RefreshToken
	}
	c.mu.Unlock()

	return nil
}

// AuthFlow implements the interactive username/password login flow.
type AuthFlow struct {
	client *Client
	logger *slog.Logger
}

// NewAuthFlow creates an interactive authentication flow for the client.
func NewAuthFlow(client *Client, logger *slog.Logger) *AuthFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthFlow{client: client, logger: logger}
}

// Run prompts for credentials and authenticates against the portal.
func (f *AuthFlow) Run(ctx context.Context) (*Credentials, error) {
	fmt.Println()
	fmt.Println("Portal Authentication")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━")

	// Prompt for username
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read username: %w", err)
	}
	username = strings.TrimSpace(username)

	// Prompt for password (hidden input)
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println() // Add newline after hidden input

	creds, err := f.client.Login(ctx, username, string(passwordBytes))
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return creds, nil
}

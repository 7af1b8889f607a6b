// internal/domain/gating/provider.go
package gating

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/your-org/storefront-engine/internal/config"
)

// MembershipProvider answers guild membership and role questions for an
// external identity. Implementations must honor the context deadline;
// callers treat any error as a denial.
type MembershipProvider interface {
	// IsGuildMember reports whether the external user belongs to the guild.
	IsGuildMember(ctx context.Context, externalUserID, guildID string) (bool, error)
	// HasGuildRole reports whether the external user holds the role within
	// the guild. Requires a privileged lookup; plain membership data is not
	// sufficient.
	HasGuildRole(ctx context.Context, externalUserID, guildID, roleID string) (bool, error)
}

// TransientError marks a provider failure that is worth one retry, as
// opposed to an authoritative "not a member" answer.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient provider error: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// DiscordProvider implements MembershipProvider against the Discord REST API
// using a bot token with access to the gated guilds.
type DiscordProvider struct {
	apiBase  string
	botToken string
	client   *http.Client
}

// NewDiscordProvider creates a Discord-backed membership provider
func NewDiscordProvider(cfg *config.Config) *DiscordProvider {
	return &DiscordProvider{
		apiBase:  cfg.Discord.APIBase,
		botToken: cfg.Discord.BotToken,
		client:   &http.Client{},
	}
}

type guildMember struct {
	Roles []string `json:"roles"`
	User  struct {
		ID string `json:"id"`
	} `json:"user"`
}

func (p *DiscordProvider) fetchMember(ctx context.Context, externalUserID, guildID string) (*guildMember, error) {
	url := fmt.Sprintf("%s/guilds/%s/members/%s", p.apiBase, guildID, externalUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build member request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+p.botToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var member guildMember
		if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
			return nil, fmt.Errorf("failed to decode member response: %w", err)
		}
		return &member, nil
	case resp.StatusCode == http.StatusNotFound:
		// Authoritative: the user is not in the guild. Never retried.
		return nil, nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &TransientError{Err: fmt.Errorf("discord returned status %d", resp.StatusCode)}
	default:
		return nil, fmt.Errorf("discord returned status %d", resp.StatusCode)
	}
}

// IsGuildMember implements MembershipProvider
func (p *DiscordProvider) IsGuildMember(ctx context.Context, externalUserID, guildID string) (bool, error) {
	member, err := p.fetchMember(ctx, externalUserID, guildID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

// HasGuildRole implements MembershipProvider
func (p *DiscordProvider) HasGuildRole(ctx context.Context, externalUserID, guildID, roleID string) (bool, error) {
	member, err := p.fetchMember(ctx, externalUserID, guildID)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, nil
	}
	for _, role := range member.Roles {
		if role == roleID {
			return true, nil
		}
	}
	return false, nil
}

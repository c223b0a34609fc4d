package oauth

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubUserInfoURL = "https://api.github.com/user"

// GitHub implements Provider for GitHub OAuth.
type GitHub struct {
	baseProvider
}

// NewGitHub creates a GitHub provider.
func NewGitHub(clientID, clientSecret, redirectURL string) *GitHub {
	return &GitHub{baseProvider{
		name: "github",
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		userInfoURL: githubUserInfoURL,
	}}
}

func (p *GitHub) Authorize(ctx context.Context, code string) (*UserInfo, error) {
	tok, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	var payload struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := p.fetchUserInfo(ctx, tok, &payload); err != nil {
		return nil, err
	}

	name := payload.Name
	if name == "" {
		name = payload.Login
	}
	return &UserInfo{
		ID:      strconv.FormatInt(payload.ID, 10),
		Email:   payload.Email,
		Name:    name,
		Picture: payload.AvatarURL,
	}, nil
}

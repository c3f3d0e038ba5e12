package pyrus

import (
	"context"
	"errors"

	"crosstab/internal/domain/bot"
)

// Connector opens clients for bot runs. Webhook runs bring their own token;
// CLI runs authenticate with the configured credentials.
type Connector struct {
	cfg         Config
	login       string
	securityKey string
}

// NewConnector creates a connector. login and securityKey may be empty when
// only webhook tokens are used.
func NewConnector(cfg Config, login, securityKey string) *Connector {
	return &Connector{cfg: cfg, login: login, securityKey: securityKey}
}

// Connect implements bot.Connector.
func (c *Connector) Connect(ctx context.Context, accessToken string) (bot.Platform, error) {
	if accessToken == "" {
		if c.login == "" {
			return nil, errors.New("no access token and no bot credentials configured")
		}
		token, err := Authenticate(ctx, c.cfg, c.login, c.securityKey)
		if err != nil {
			return nil, err
		}
		accessToken = token
	}
	return New(c.cfg, accessToken), nil
}

package calendar

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

func GoogleConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL + "/" + ProviderGoogle,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar"},
		Endpoint:     google.Endpoint,
	}
}

func MicrosoftConfig(clientID, clientSecret, tenant, redirectURL string) *oauth2.Config {
	if tenant == "" {
		tenant = "common"
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL + "/" + ProviderMicrosoft,
		Scopes:       []string{"offline_access", "Calendars.ReadWrite"},
		Endpoint:     microsoft.AzureADEndpoint(tenant),
	}
}

// oauthClient builds an authenticated client for one user. The token source
// refreshes expired access tokens on its own.
type oauthClient struct {
	provider string
	conf     *oauth2.Config
	tokens   TokenStore
}

func (c *oauthClient) httpClient(ctx context.Context, userID string) (*http.Client, error) {
	tok, err := c.tokens.Token(ctx, userID, c.provider)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, ErrNotConnected
	}
	return c.conf.Client(ctx, tok), nil
}

// Connector runs the authorization code flow for the configured providers.
type Connector struct {
	configs map[string]*oauth2.Config
	tokens  TokenStore
}

func NewConnector(tokens TokenStore, configs map[string]*oauth2.Config) *Connector {
	return &Connector{configs: configs, tokens: tokens}
}

func (c *Connector) AuthURL(provider, state string) (string, error) {
	conf, ok := c.configs[provider]
	if !ok {
		return "", fmt.Errorf("unknown calendar provider %q", provider)
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades the callback code for a token and stores it for userID.
func (c *Connector) Exchange(ctx context.Context, provider, userID, code string) error {
	conf, ok := c.configs[provider]
	if !ok {
		return fmt.Errorf("unknown calendar provider %q", provider)
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange %s code: %w", provider, err)
	}
	return c.tokens.SaveToken(ctx, userID, provider, tok)
}

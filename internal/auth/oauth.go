package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/kakao"
)

// Supported OAuth2 provider names. These double as the registry keys and as
// the source for the user's LoginType.
const (
	ProviderGoogle = "google"
	ProviderKakao  = "kakao"
	ProviderNaver  = "naver"
)

// x/oauth2 ships Google and Kakao endpoints but not Naver's.
var naverEndpoint = oauth2.Endpoint{
	AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
	TokenURL: "https://nid.naver.com/oauth2.0/token",
}

// Identity is the canonical form of a provider profile. Every provider's raw
// payload is normalized into this shape before it touches the user store.
type Identity struct {
	Provider   string // one of the Provider* constants
	ProviderID string // provider's stable user ID, unique per provider
	Email      string
	Name       string // display name as reported by the provider
}

// normalizeFunc maps one provider's raw userinfo payload to an Identity.
// Each provider gets its own function — selected by provider name, not by
// subtyping.
type normalizeFunc func(attrs map[string]any) (*Identity, error)

// OAuthProvider wraps golang.org/x/oauth2 for one provider's Authorization
// Code flow: redirect URL construction, code-for-token exchange, userinfo
// fetch, and payload normalization.
type OAuthProvider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
	normalize   normalizeFunc
}

// ProviderConfig carries the credentials registered with a provider.
// CallbackURL must match the redirect URI configured there exactly.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// NewGoogleProvider builds the Google provider.
func NewGoogleProvider(cfg ProviderConfig) *OAuthProvider {
	return &OAuthProvider{
		name: ProviderGoogle,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: "https://www.googleapis.com/oauth2/v2/userinfo",
		normalize:   normalizeGoogle,
	}
}

// NewKakaoProvider builds the Kakao provider.
func NewKakaoProvider(cfg ProviderConfig) *OAuthProvider {
	return &OAuthProvider{
		name: ProviderKakao,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"account_email", "profile_nickname"},
			Endpoint:     kakao.Endpoint,
		},
		userInfoURL: "https://kapi.kakao.com/v2/user/me",
		normalize:   normalizeKakao,
	}
}

// NewNaverProvider builds the Naver provider.
func NewNaverProvider(cfg ProviderConfig) *OAuthProvider {
	return &OAuthProvider{
		name: ProviderNaver,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     naverEndpoint,
		},
		userInfoURL: "https://openapi.naver.com/v1/nid/me",
		normalize:   normalizeNaver,
	}
}

// Name returns the provider's registry name.
func (p *OAuthProvider) Name() string { return p.name }

// AuthURL returns the URL to redirect the user to for authorization.
// state is a random value stored in a short-lived cookie and verified on
// callback to block CSRF.
func (p *OAuthProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for the
// provider's access token, fetches the userinfo payload with it, and
// normalizes the payload into an Identity.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code with %s: %w", p.name, err)
	}

	// config.Client returns an *http.Client that attaches the bearer token
	// to every request.
	client := p.config.Client(ctx, oauthToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building %s userinfo request: %w", p.name, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling %s userinfo API: %w", p.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: %s userinfo API returned status %d", p.name, resp.StatusCode)
	}

	// Decode with UseNumber so numeric IDs (Kakao's) keep their exact
	// digits instead of going through float64.
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var attrs map[string]any
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("auth: decoding %s userinfo response: %w", p.name, err)
	}

	return p.normalize(attrs)
}

// Providers is a registry of configured OAuth2 providers keyed by name.
type Providers map[string]*OAuthProvider

// Lookup returns the provider for name, falling back to Google for unknown
// names (Google is the platform default).
func (ps Providers) Lookup(name string) (*OAuthProvider, bool) {
	if p, ok := ps[name]; ok {
		return p, true
	}
	p, ok := ps[ProviderGoogle]
	return p, ok
}

// normalizeGoogle reads Google's flat userinfo payload:
//
//	{"id": "1093...", "email": "a@gmail.com", "name": "Alice", ...}
func normalizeGoogle(attrs map[string]any) (*Identity, error) {
	id := stringAttr(attrs, "id")
	if id == "" {
		return nil, fmt.Errorf("auth: google userinfo has no id")
	}
	return &Identity{
		Provider:   ProviderGoogle,
		ProviderID: id,
		Email:      stringAttr(attrs, "email"),
		Name:       stringAttr(attrs, "name"),
	}, nil
}

// normalizeKakao reads Kakao's nested payload:
//
//	{"id": 2345..., "kakao_account": {"email": "...", "profile": {"nickname": "..."}}}
func normalizeKakao(attrs map[string]any) (*Identity, error) {
	id := stringAttr(attrs, "id")
	if id == "" {
		return nil, fmt.Errorf("auth: kakao userinfo has no id")
	}

	var email, name string
	if account, ok := attrs["kakao_account"].(map[string]any); ok {
		email = stringAttr(account, "email")
		if profile, ok := account["profile"].(map[string]any); ok {
			name = stringAttr(profile, "nickname")
		}
	}

	return &Identity{
		Provider:   ProviderKakao,
		ProviderID: id,
		Email:      email,
		Name:       name,
	}, nil
}

// normalizeNaver reads Naver's payload, which wraps the profile in a
// "response" object:
//
//	{"resultcode": "00", "message": "success", "response": {"id": "...", "email": "...", "name": "..."}}
func normalizeNaver(attrs map[string]any) (*Identity, error) {
	response, ok := attrs["response"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("auth: naver userinfo has no response object")
	}
	id := stringAttr(response, "id")
	if id == "" {
		return nil, fmt.Errorf("auth: naver userinfo has no id")
	}

	name := stringAttr(response, "name")
	if name == "" {
		name = stringAttr(response, "nickname")
	}

	return &Identity{
		Provider:   ProviderNaver,
		ProviderID: id,
		Email:      stringAttr(response, "email"),
		Name:       name,
	}, nil
}

// stringAttr reads attrs[key] as a string, converting json.Number values
// (Kakao's numeric user ID) to their decimal form.
func stringAttr(attrs map[string]any, key string) string {
	switch v := attrs[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	jwtvalidator "github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/authorizerdev/authorizer-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/localnerve/gigcrew/internal/authz"
	"github.com/localnerve/gigcrew/internal/config"
	"github.com/localnerve/gigcrew/internal/logging"
	"github.com/localnerve/gigcrew/internal/utils"
	"go.uber.org/zap"
)

// ErrInvalidToken is returned for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// TokenVerifier turns a bearer token into a verified identity.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*authz.Identity, error)
}

// NewVerifier builds the verifier for the configured AUTH_MODE.
func NewVerifier(cfg *config.Config) (TokenVerifier, error) {
	switch cfg.AuthMode {
	case config.AuthModeHMAC:
		return NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience), nil
	case config.AuthModeJWKS:
		return NewJWKSVerifier(cfg.JWTJWKSURL, cfg.JWTIssuer, cfg.JWTAudience)
	case config.AuthModeAuthorizer:
		return &AuthorizerVerifier{URL: cfg.AuthzURL, ClientID: cfg.AuthzClientID}, nil
	}
	return nil, fmt.Errorf("unsupported auth mode: %s", cfg.AuthMode)
}

// identityFromClaims maps verified claims onto an identity. sub is required.
func identityFromClaims(claims map[string]any) (*authz.Identity, error) {
	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return &authz.Identity{
		UserID:      sub,
		Email:       email,
		DisplayName: name,
		GlobalRole:  authz.GlobalRoleFromClaims(claims),
	}, nil
}

// HMACVerifier checks HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	parser *jwt.Parser
	secret []byte
}

// NewHMACVerifier checks issuer and audience only when they are set.
func NewHMACVerifier(secret, issuer, audience string) *HMACVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return &HMACVerifier{parser: jwt.NewParser(opts...), secret: []byte(secret)}
}

// Verify implements TokenVerifier.
func (v *HMACVerifier) Verify(_ context.Context, token string) (*authz.Identity, error) {
	claims := jwt.MapClaims{}
	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return identityFromClaims(claims)
}

// profileClaims carries the non-registered claims of an RS256 token.
type profileClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Validate implements jwtvalidator.CustomClaims.
func (profileClaims) Validate(context.Context) error { return nil }

// JWKSVerifier checks RS256 tokens against a cached remote key set.
type JWKSVerifier struct {
	validator *jwtvalidator.Validator
}

// NewJWKSVerifier caches the key set for five minutes.
func NewJWKSVerifier(jwksURL, issuer, audience string) (*JWKSVerifier, error) {
	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return nil, fmt.Errorf("invalid issuer url: %w", err)
	}
	keysURL, err := url.Parse(jwksURL)
	if err != nil {
		return nil, fmt.Errorf("invalid jwks url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute, jwks.WithCustomJWKSURI(keysURL))

	v, err := jwtvalidator.New(
		provider.KeyFunc,
		jwtvalidator.RS256,
		issuerURL.String(),
		[]string{audience},
		jwtvalidator.WithCustomClaims(func() jwtvalidator.CustomClaims { return &profileClaims{} }),
		jwtvalidator.WithAllowedClockSkew(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create jwks validator: %w", err)
	}
	return &JWKSVerifier{validator: v}, nil
}

// Verify implements TokenVerifier.
func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*authz.Identity, error) {
	raw, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	validated, ok := raw.(*jwtvalidator.ValidatedClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	claims := map[string]any{"sub": validated.RegisteredClaims.Subject}
	if profile, ok := validated.CustomClaims.(*profileClaims); ok {
		claims["email"] = profile.Email
		claims["name"] = profile.Name
		claims["role"] = profile.Role
	}
	return identityFromClaims(claims)
}

// AuthorizerVerifier validates access tokens with an Authorizer instance.
// The client is created on first use.
type AuthorizerVerifier struct {
	URL      string
	ClientID string

	once    sync.Once
	client  *authorizer.AuthorizerClient
	initErr error
}

func (v *AuthorizerVerifier) init() error {
	v.once.Do(func() {
		if err := utils.PingAuthorizer(v.URL); err != nil {
			v.initErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		logging.L().Info("initializing authorizer client",
			zap.String("authorizerURL", v.URL),
			zap.String("clientID", v.ClientID))

		v.client, v.initErr = authorizer.NewAuthorizerClient(v.ClientID, v.URL, "", nil)
		if v.initErr != nil {
			v.initErr = fmt.Errorf("failed to create authorizer client: %w", v.initErr)
		}
	})
	return v.initErr
}

// Verify implements TokenVerifier.
func (v *AuthorizerVerifier) Verify(_ context.Context, token string) (*authz.Identity, error) {
	if err := v.init(); err != nil {
		return nil, err
	}

	res, err := v.client.ValidateJWTToken(&authorizer.ValidateJWTTokenInput{
		TokenType: authorizer.TokenTypeAccessToken,
		Token:     token,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if res == nil || !res.IsValid {
		return nil, fmt.Errorf("%w: token is not valid", ErrInvalidToken)
	}
	return identityFromClaims(res.Claims)
}

package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"siphon/configs"
)

type ClaimsKey struct{}

// Error is an authorization failure. Every kind maps to HTTP 401; the
// code distinguishes authentication failures from permission failures.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

const (
	CodeMissingHeader  = "authorization_header_missing"
	CodeInvalidHeader  = "invalid_header"
	CodeTokenExpired   = "token_expired"
	CodeInvalidClaims  = "invalid_claims"
	CodeInvalidPayload = "invalid_payload"
	CodeUnauthorized   = "unauthorized"
)

var (
	errNoKeyID     = errors.New("token header has no kid")
	errKeyNotFound = errors.New("no matching key in key set")
)

// Claims is the decoded token payload. Permissions carries the
// operation grants the identity provider issued for this caller.
type Claims struct {
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type Manager struct {
	conf   *configs.Config
	logger *zap.Logger
	client *http.Client
}

const jwksTimeout = 5 * time.Second

func NewManager(conf *configs.Config, logger *zap.Logger) *Manager {
	return &Manager{conf: conf, logger: logger, client: &http.Client{Timeout: jwksTimeout}}
}

// RequirePermission wraps a handler so it only runs for requests
// carrying a verified token that grants the permission. The decoded
// claims are placed in the request context for the wrapped handler.
func (a *Manager) RequirePermission(permission string, next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		claims, authErr := a.Check(request, permission)
		if authErr != nil {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(authErr.Status)
			_ = json.NewEncoder(writer).Encode(map[string]interface{}{
				"success": false,
				"error":   authErr.Status,
				"message": authErr.Message,
			})

			return
		}

		ctx := context.WithValue(request.Context(), ClaimsKey{}, claims)
		next(writer, request.WithContext(ctx))
	}
}

// Check verifies the bearer token on the request and enforces the
// required permission. Each failure mode yields a distinct code.
func (a *Manager) Check(request *http.Request, permission string) (*Claims, *Error) {
	rawToken, authErr := extractTokenFromHeader(request.Header)
	if authErr != nil {
		return nil, authErr
	}

	token, err := jwt.ParseWithClaims(rawToken, &Claims{}, a.keyFunc, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		return nil, a.classifyParseError(err)
	}

	claims, found := token.Claims.(*Claims)
	if !found || !token.Valid {
		return nil, &Error{Code: CodeInvalidHeader, Status: http.StatusUnauthorized, Message: "invalid header"}
	}

	if !claims.VerifyAudience(a.conf.Auth.Audience, true) || !claims.VerifyIssuer(a.issuer(), true) {
		return nil, &Error{Code: CodeInvalidClaims, Status: http.StatusUnauthorized, Message: "invalid claims"}
	}

	if claims.Permissions == nil {
		a.logger.Error("token payload has no permissions claim", zap.String("subject", claims.Subject))

		return nil, &Error{Code: CodeInvalidPayload, Status: http.StatusUnauthorized, Message: "no permissions in payload"}
	}

	for _, granted := range claims.Permissions {
		if granted == permission {
			return claims, nil
		}
	}

	a.logger.Error("required permission not granted", zap.String("subject", claims.Subject), zap.String("permission", permission))

	return nil, &Error{Code: CodeUnauthorized, Status: http.StatusUnauthorized, Message: "unauthorized"}
}

func extractTokenFromHeader(header http.Header) (string, *Error) {
	authorization := header.Get("Authorization")
	if len(authorization) == 0 {
		return "", &Error{Code: CodeMissingHeader, Status: http.StatusUnauthorized, Message: "no authorization header"}
	}

	parts := strings.Split(authorization, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", &Error{Code: CodeInvalidHeader, Status: http.StatusUnauthorized, Message: "invalid header format"}
	}

	return parts[1], nil
}

func (a *Manager) classifyParseError(err error) *Error {
	a.logger.Error("error parsing token", zap.Error(err))

	switch {
	case errors.Is(err, errNoKeyID):
		return &Error{Code: CodeInvalidHeader, Status: http.StatusUnauthorized, Message: "malformed token header"}
	case errors.Is(err, errKeyNotFound):
		return &Error{Code: CodeInvalidHeader, Status: http.StatusUnauthorized, Message: "key not found"}
	}

	var validationErr *jwt.ValidationError
	if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
		return &Error{Code: CodeTokenExpired, Status: http.StatusUnauthorized, Message: "token expired"}
	}

	return &Error{Code: CodeInvalidHeader, Status: http.StatusUnauthorized, Message: "invalid header"}
}

func (a *Manager) keyFunc(token *jwt.Token) (interface{}, error) {
	keyID, found := token.Header["kid"].(string)
	if !found || keyID == "" {
		return nil, errNoKeyID
	}

	return a.signingKey(keyID)
}

type jsonWebKey struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type keySet struct {
	Keys []jsonWebKey `json:"keys"`
}

// signingKey fetches the provider's key set and resolves the key for
// the kid. The set is re-fetched on every check; it is read-mostly
// external state and the provider owns rotation.
func (a *Manager) signingKey(keyID string) (*rsa.PublicKey, error) {
	response, err := a.client.Get(a.jwksURL())
	if err != nil {
		return nil, err
	}
	defer response.Body.Close() //nolint:errcheck // nothing useful to do with a close error

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("key set endpoint returned status %d", response.StatusCode)
	}

	var document keySet
	if err := json.NewDecoder(response.Body).Decode(&document); err != nil {
		return nil, err
	}

	for _, key := range document.Keys {
		if key.Kid == keyID {
			return rsaPublicKey(key)
		}
	}

	return nil, errKeyNotFound
}

func rsaPublicKey(key jsonWebKey) (*rsa.PublicKey, error) {
	modulus, err := base64.RawURLEncoding.DecodeString(key.N)
	if err != nil {
		return nil, err
	}

	exponent, err := base64.RawURLEncoding.DecodeString(key.E)
	if err != nil {
		return nil, err
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: int(new(big.Int).SetBytes(exponent).Int64()),
	}, nil
}

func (a *Manager) jwksURL() string {
	if a.conf.Auth.JWKSURL != "" {
		return a.conf.Auth.JWKSURL
	}

	return fmt.Sprintf("https://%s/.well-known/jwks.json", a.conf.Auth.Domain)
}

func (a *Manager) issuer() string {
	return fmt.Sprintf("https://%s/", a.conf.Auth.Domain)
}

// ClaimsFromContext returns the claims a RequirePermission guard stored
// for the current request.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, found := ctx.Value(ClaimsKey{}).(*Claims)

	return claims, found
}

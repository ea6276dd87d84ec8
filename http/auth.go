package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/net/websocket"
)

const (
	ErrTypeUnauthorized = "unauthorized"

	// DefaultTokenTTL is the lifetime of a viewer token.
	DefaultTokenTTL = time.Hour * 24

	tokenQueryKey = "token"
)

// Viewer is the identity carried by a viewer token.
type Viewer struct {
	ID string

	// Operators can change the simulation of the level.
	Operator bool
}

// IssueViewerToken returns an HS256 token for v signed with secret.
func IssueViewerToken(secret []byte, v Viewer, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("signing viewer token requires a secret").
			WithTag("viewer_id", v.ID)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": v.ID,
		"op":  v.Operator,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})

	s, err := token.SignedString(secret)
	if err != nil {
		return "", errors.New("signing viewer token failed").
			WithTag("viewer_id", v.ID).
			Wrap(err)
	}
	return s, nil
}

// VerifyViewerToken checks the signature and expiry of a viewer token and
// returns the viewer it was issued for. Every token is rejected when secret
// is empty.
func VerifyViewerToken(secret []byte, tokenString string) (Viewer, error) {
	if len(secret) == 0 {
		return Viewer{}, errors.New("viewer tokens are disabled").
			WithType(ErrTypeUnauthorized)
	}
	if tokenString == "" {
		return Viewer{}, errors.New("missing viewer token").
			WithType(ErrTypeUnauthorized)
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method").
				WithTag("alg", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Viewer{}, errors.New("invalid viewer token").
			WithType(ErrTypeUnauthorized).
			Wrap(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Viewer{}, errors.New("invalid viewer token").
			WithType(ErrTypeUnauthorized)
	}

	id, ok := claims["sub"].(string)
	if !ok || id == "" {
		return Viewer{}, errors.New("viewer token has no subject").
			WithType(ErrTypeUnauthorized)
	}

	operator, _ := claims["op"].(bool)
	return Viewer{ID: id, Operator: operator}, nil
}

// TokenFromRequest returns the bearer token of r, or its token query
// parameter for clients that cannot set headers.
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get(tokenQueryKey)
}

// ViewerFromRequest verifies the token of r.
func ViewerFromRequest(secret []byte, r *http.Request) (Viewer, error) {
	return VerifyViewerToken(secret, TokenFromRequest(r))
}

// VerifyViewerHandshake rejects websocket handshakes without a valid
// viewer token.
func VerifyViewerHandshake(secret []byte) func(*websocket.Config, *http.Request) error {
	return func(c *websocket.Config, r *http.Request) error {
		if _, err := ViewerFromRequest(secret, r); err != nil {
			logs.Warn(errors.New("spectator handshake rejected").
				WithTag("remote_addr", r.RemoteAddr).
				Wrap(err))
			return err
		}
		return nil
	}
}

// VerifyViewerHandler responds with 401 to requests without a valid viewer
// token. Operator only handlers also reject plain viewers.
func VerifyViewerHandler(secret []byte, operatorOnly bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := ViewerFromRequest(secret, r)
		if err != nil {
			logs.Warn(errors.New("request rejected").
				WithTag("remote_addr", r.RemoteAddr).
				WithTag("path", r.URL.Path).
				Wrap(err))
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if operatorOnly && !v.Operator {
			writeError(w, http.StatusForbidden, "operator token required")
			return
		}

		next.ServeHTTP(w, r)
	}
}

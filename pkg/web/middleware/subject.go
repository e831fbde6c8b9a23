package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/conduit-lang/crudkit/pkg/crud"
)

// HeaderConfig names the trusted headers carrying the subject. Use it only
// behind a gateway that authenticates callers.
type HeaderConfig struct {
	Subject string
	Roles   string
}

// DefaultHeaderConfig reads X-Subject and a comma separated X-Roles.
func DefaultHeaderConfig() HeaderConfig {
	return HeaderConfig{Subject: "X-Subject", Roles: "X-Roles"}
}

// HeaderSubject attaches the subject named by trusted request headers.
// Requests without the subject header pass through anonymously.
func HeaderSubject(config HeaderConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(config.Subject))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			subject := &crud.Subject{ID: id}
			if config.Roles != "" {
				for _, role := range strings.Split(r.Header.Get(config.Roles), ",") {
					if role = strings.TrimSpace(role); role != "" {
						subject.Roles = append(subject.Roles, role)
					}
				}
			}
			next.ServeHTTP(w, r.WithContext(crud.WithSubject(r.Context(), subject)))
		})
	}
}

// BearerConfig holds configuration for bearer token authentication
type BearerConfig struct {
	// Secret signs HS256 tokens.
	Secret []byte
	// SkipPaths is a list of paths to skip authentication
	SkipPaths []string
}

// BearerSubject attaches the subject of a valid HS256 bearer token. The
// subject ID is the "sub" claim and roles come from "roles". A missing
// Authorization header passes through anonymously; a malformed or invalid
// token is rejected with 401.
func BearerSubject(config BearerConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || skipped(config.SkipPaths, r) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				crud.WriteError(w, r, crud.ErrUnauthorized)
				return
			}
			subject, err := ParseToken(config.Secret, token)
			if err != nil {
				crud.WriteError(w, r, crud.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(crud.WithSubject(r.Context(), subject)))
		})
	}
}

// IssueToken signs an HS256 token for subject valid for ttl.
func IssueToken(secret []byte, subject *crud.Subject, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   subject.ID,
		"roles": subject.Roles,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	for k, v := range subject.Claims {
		if _, reserved := claims[k]; !reserved {
			claims[k] = v
		}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken validates an HS256 token and returns its subject.
func ParseToken(secret []byte, tokenString string) (*crud.Subject, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	id, err := claims.GetSubject()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	subject := &crud.Subject{ID: id, Claims: claims}
	if roles, ok := claims["roles"].([]any); ok {
		for _, role := range roles {
			if s, ok := role.(string); ok {
				subject.Roles = append(subject.Roles, s)
			}
		}
	}
	return subject, nil
}

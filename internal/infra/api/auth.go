package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "admin_session"

var (
	errMissingToken = errors.New("missing token")
	errInvalidToken = errors.New("invalid token")
)

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthManager trades the admin API key for short-lived HS256 session tokens.
// The key itself is also accepted as a bearer token.
type AuthManager struct {
	apiKey []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthManager returns nil for an empty key, which leaves the API open.
func NewAuthManager(apiKey string, ttl time.Duration) *AuthManager {
	if apiKey == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthManager{
		apiKey: []byte(apiKey),
		secret: []byte("session:" + apiKey),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Mint signs a session token and returns it with its expiry.
func (a *AuthManager) Mint() (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			Subject:   "admin",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (a *AuthManager) keyMatches(key string) bool {
	return subtle.ConstantTimeCompare([]byte(key), a.apiKey) == 1
}

// Verify accepts "Authorization: Bearer <token|api key>" or the session cookie.
func (a *AuthManager) Verify(r *http.Request) error {
	var tok string
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		scheme, rest, ok := strings.Cut(hdr, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") {
			return errMissingToken
		}
		tok = strings.TrimSpace(rest)
	} else if c, err := r.Cookie(sessionCookie); err == nil {
		tok = c.Value
	}
	if tok == "" {
		return errMissingToken
	}
	if a.keyMatches(tok) {
		return nil
	}
	return a.parse(tok)
}

func (a *AuthManager) parse(tok string) error {
	claims := &AdminClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !tkn.Valid || claims.Role != "admin" {
		return errInvalidToken
	}
	return nil
}

// RequireAdmin rejects requests without a valid key or session. A nil manager disables the check.
func RequireAdmin(a *AuthManager) Middleware {
	return func(next http.Handler) http.Handler {
		if a == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch err := a.Verify(r); {
			case errors.Is(err, errMissingToken):
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
			case err != nil:
				http.Error(w, "Forbidden", http.StatusForbidden)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

type loginRequest struct {
	APIKey string `json:"api_key"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login handles POST /api/v1/auth/login. The token is returned in the body
// and set as an HttpOnly cookie.
func (a *AuthManager) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !a.keyMatches(req.APIKey) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tok, exp, err := a.Mint()
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    tok,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{Token: tok, ExpiresAt: exp})
}

package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/anicoll/anthem-integration/pkg/hasher"
)

var (
	errTokenExpired = errors.New("token expired")
	errTokenInvalid = errors.New("token invalid")
)

const tokenIssuer = "anthem-controller"

type tokenRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token        string `json:"token"`
	ExpiresInSec int    `json:"expires_in_sec"`
}

func (s *server) postAuthToken(w http.ResponseWriter, r *http.Request) {
	req, err := unmarshalPayload[tokenRequest](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if !hasher.PasswordCorrect(req.Password, s.cfg.PasswordHash) {
		s.logger.Warn("rejected token request", zap.String("remote", r.RemoteAddr))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid password"))
		return
	}

	token, err := s.generateToken()
	if err != nil {
		handleError(w, err)
		return
	}
	writeJSON(w, tokenResponse{
		Token:        token,
		ExpiresInSec: int(s.cfg.TokenExpiry.Seconds()),
	})
}

func (s *server) generateToken() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "api",
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenExpiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *server) verifyToken(token string) error {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
	)
	parsed, err := parser.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return errTokenExpired
		}
		return errTokenInvalid
	}
	if parsed == nil || !parsed.Valid {
		return errTokenInvalid
	}
	return nil
}

func (s *server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			// Websocket clients cannot set headers from a browser.
			token = r.URL.Query().Get("token")
		}
		if err := s.verifyToken(token); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(err.Error()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

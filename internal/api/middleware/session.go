package middleware

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/unidet/portal/internal/core/ports"
	"github.com/unidet/portal/internal/infrastructure/session"
)

const (
	// ClientCookie holds the signed identifier of one browser.
	ClientCookie = "unidet_client"

	clientIDKey     = "client_id"
	clientCookieTTL = 365 * 24 * time.Hour
)

type ClientSessionConfig struct {
	Secret     string
	Secure     bool
	Namespaces ports.Namespaces
	Logger     zerolog.Logger
}

// ClientSession identifies the browser by a signed cookie, minting a new
// identifier when the cookie is missing or fails verification, and binds
// that browser's key/value store to the request context.
func ClientSession(cfg ClientSessionConfig) echo.MiddlewareFunc {
	secret := []byte(cfg.Secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var id string
			if ck, err := c.Cookie(ClientCookie); err == nil {
				id = parseClientToken(ck.Value, secret)
			}

			if id == "" {
				id = uuid.NewString()
				signed, err := signClientToken(id, secret)
				if err != nil {
					return err
				}
				c.SetCookie(&http.Cookie{
					Name:     ClientCookie,
					Value:    signed,
					Path:     "/",
					MaxAge:   int(clientCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
				cfg.Logger.Debug().Str("client_id", id).Msg("issued client cookie")
			}

			c.Set(clientIDKey, id)
			req := c.Request()
			c.SetRequest(req.WithContext(session.WithStore(req.Context(), cfg.Namespaces.Namespace(id))))
			return next(c)
		}
	}
}

// ClientID returns the identifier set by ClientSession, or "".
func ClientID(c echo.Context) string {
	id, _ := c.Get(clientIDKey).(string)
	return id
}

func signClientToken(id string, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  id,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})
	return t.SignedString(secret)
}

// parseClientToken returns the client id of a valid cookie value, or "".
func parseClientToken(value string, secret []byte) string {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return ""
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return ""
	}
	return claims.Subject
}

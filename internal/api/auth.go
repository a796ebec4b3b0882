package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/balkashynov/tick/internal/config"
	"github.com/balkashynov/tick/internal/db"
	"github.com/balkashynov/tick/internal/models"
)

const userCtxKey = "user"

// Tokens issues and verifies the bearer tokens of the API. The subject of a
// token is the ID of the user it acts as.
type Tokens struct {
	issuer     string
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewTokens(cfg config.AuthConfig) (*Tokens, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("auth signing key is required")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid token ttl %s", cfg.TokenTTL)
	}
	return &Tokens{
		issuer:     cfg.Issuer,
		signingKey: []byte(cfg.SigningKey),
		ttl:        cfg.TokenTTL,
		now:        time.Now,
	}, nil
}

// Issue signs a token for userID and returns it with its expiry.
func (t *Tokens) Issue(userID uint) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    t.issuer,
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies token and returns the user ID it was issued for.
func (t *Tokens) Parse(token string) (uint, error) {
	parsed, err := jwt.ParseWithClaims(
		token,
		&jwt.RegisteredClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return t.signingKey, nil
		},
		jwt.WithIssuer(t.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("token is expired: %w", err)
		}
		return 0, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return 0, errors.New("failed to parse token claims")
	}
	userID, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("invalid token subject %q", claims.Subject)
	}
	return uint(userID), nil
}

// HandleAuthMiddleware resolves the bearer token to a user and stores it in
// the request context.
func (h *Handler) HandleAuthMiddleware(c *gin.Context) {
	log := requestLogger(c)

	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		log.Warn().Msg("authorization header required")
		abort(c, newUnauthorizedError("authorization header required"))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != bearerPrefix {
		log.Warn().Msg("invalid authorization header")
		abort(c, newUnauthorizedError("invalid authorization header"))
		return
	}

	userID, err := h.tokens.Parse(parts[1])
	if err != nil {
		log.Warn().
			Err(err).
			Msg("failed to parse token")
		abort(c, newUnauthorizedError("invalid token"))
		return
	}

	user, err := h.store.GetUser(c, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			log.Warn().
				Uint("user_id", userID).
				Msg("token for unknown user")
			abort(c, newUnauthorizedError("invalid token"))
			return
		}
		log.Error().
			Err(err).
			Msg("failed to fetch user")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.Set(userCtxKey, *user)
	c.Next()
}

// currentUser returns the user set by HandleAuthMiddleware.
func currentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get(userCtxKey)
	if !exists {
		return models.User{}, false
	}
	user, ok := value.(models.User)
	return user, ok
}

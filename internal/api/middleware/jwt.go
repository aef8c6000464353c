package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yoockh/dojoportal/internal/guard"
	"github.com/yoockh/dojoportal/internal/models"
	"github.com/yoockh/dojoportal/internal/utils"
)

const (
	ctxUserID      = "user_id"
	ctxIdentity    = "identity"
	ctxAccessToken = "access_token"
)

type apiError struct {
	Code     utils.Code `json:"code"`
	Message  string     `json:"message"`
	Redirect string     `json:"redirect,omitempty"`
}

type JWTConfig struct {
	Secret   string
	Issuer   string // optional
	Audience string // optional

	// Revoked rejects tokens signed out before they expire. Optional.
	Revoked func(token string) bool
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"` // usually "authenticated" / "anon"
}

// JWTAuth requires a valid supabase access token. Anonymous callers get
// the sign-in redirect the auth guard would give them.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return jwtAuth(cfg, true)
}

// OptionalJWT lets anonymous requests through. A token that is present but
// invalid is still rejected.
func OptionalJWT(cfg JWTConfig) gin.HandlerFunc {
	return jwtAuth(cfg, false)
}

func jwtAuth(cfg JWTConfig, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "SUPABASE_JWT_SECRET is not set",
			})
			return
		}

		raw := bearerToken(c)
		if raw == "" {
			if !required {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:     utils.CodeUnauthorized,
				Message:  "missing bearer token",
				Redirect: guard.RedirectSignIn.Target(),
			})
			return
		}

		claims := &supabaseClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(cfg.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || tok == nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid token",
			})
			return
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid token issuer",
			})
			return
		}

		if cfg.Audience != "" && !slices.Contains(claims.Audience, cfg.Audience) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "invalid token audience",
			})
			return
		}

		if cfg.Revoked != nil && cfg.Revoked(raw) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "token revoked",
			})
			return
		}

		userID := claims.Subject // supabase user uuid is in "sub"
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: "missing subject",
			})
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxIdentity, &models.Identity{ID: userID, Email: claims.Email})
		c.Set(ctxAccessToken, raw)
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter browsers must use for websocket upgrades.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return strings.TrimSpace(c.Query("access_token"))
}

// IdentityFrom returns the authenticated identity, or nil for anonymous
// requests.
func IdentityFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return nil
	}
	id, _ := v.(*models.Identity)
	return id
}

func AccessTokenFrom(c *gin.Context) string {
	return c.GetString(ctxAccessToken)
}

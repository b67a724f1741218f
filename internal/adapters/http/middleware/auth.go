// Package middleware は HTTP API 用の gin ミドルウェアをまとめます。
package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ogurasousui/hr-attendance/internal/platform/config"
)

const claimsKey = "claims"

var errMissingToken = errors.New("missing bearer token")

// Claims は検証済み JWT のペイロードです。role と roles の両方を受け付けます。
type Claims struct {
	Role  string   `json:"role,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// HasRole は指定のロールを持つかどうかを返します。
func (c Claims) HasRole(role string) bool {
	return c.Role == role || slices.Contains(c.Roles, role)
}

// Auth は HS256 で署名された Bearer トークンを検証します。トークンの発行は行いません。
type Auth struct {
	secret    []byte
	issuer    string
	adminRole string
}

// NewAuth は Auth を生成します。シークレットが空の場合、検証は行われません。
func NewAuth(cfg config.AuthConfig) *Auth {
	return &Auth{secret: []byte(cfg.JWTSecret), issuer: cfg.JWTIssuer, adminRole: cfg.AdminRole}
}

func (a *Auth) enabled() bool {
	return a != nil && len(a.secret) > 0
}

// Parse はトークン文字列を検証し、Claims を返します。
func (a *Auth) Parse(token string) (Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return Claims{}, err
	}
	if !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	return claims, nil
}

// Authenticate は Authorization ヘッダーのトークンを検証し、Claims をコンテキストに保存します。
func (a *Auth) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.enabled() {
			c.Next()
			return
		}

		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		claims, err := a.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin は管理者ロールを持たないリクエストを 403 で拒否します。
func (a *Auth) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.enabled() {
			c.Next()
			return
		}

		claims, ok := ClaimsFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMissingToken.Error()})
			return
		}
		if !claims.HasRole(a.adminRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// ClaimsFrom はコンテキストから Claims を取り出します。
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}

func bearerToken(header string) (string, error) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errMissingToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", errMissingToken
	}
	return token, nil
}

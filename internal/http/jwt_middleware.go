package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"teardown-leads/internal/service"
)

const authClaimsKey = "auth_claims"

// JWTAuthMiddleware exige el token de cliente de API (dashboard, integraciones) que emite
// `api -issue-token` y deja sus claims, con client_id y scopes, en el contexto.
// Los 401 llevan WWW-Authenticate para que el cliente sepa que debe pedir un token nuevo.
func JWTAuthMiddleware(jwtSvc *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "api auth not configured"})
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			abortUnauthorized(c, "", "missing bearer token")
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := jwtSvc.ParseAccessToken(token)
		if errors.Is(err, service.ErrJWTExpired) {
			abortUnauthorized(c, "invalid_token", "api token expired")
			return
		}
		if err != nil {
			abortUnauthorized(c, "invalid_token", "invalid api token")
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code, msg string) {
	challenge := `Bearer realm="teardown-leads"`
	if code != "" {
		challenge += `, error="` + code + `"`
	}
	c.Header("WWW-Authenticate", challenge)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// RequireScope corta con 403 si el token no trae el scope. Sin claims en el
// contexto (API abierta) deja pasar.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, present := c.Get(authClaimsKey); !present {
			c.Next()
			return
		}
		claims, ok := GetAuthClaims(c)
		if !ok || !claims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope", "required_scope": scope})
			return
		}
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

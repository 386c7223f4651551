package middleware

import (
	"net/http"
	"strings"

	"github.com/AssembleOrg/mistica-backend/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsKey = "authClaims"

// JWTClaims is the token payload shared by the auth service (signing) and
// this middleware (verification).
type JWTClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token and stores the claims in the context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			abortUnauthorized(c, "Token de autenticación requerido")
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Token inválido o expirado")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects authenticated requests whose role is not in the allow
// list. Must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortUnauthorized(c, "Token de autenticación requerido")
			return
		}
		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, apierror.APIError{
			Detail: "No tiene permisos para realizar esta operación",
		})
	}
}

// GetClaims returns the verified claims of the current request, or nil.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}

func abortUnauthorized(c *gin.Context, detail string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.APIError{Detail: detail})
}

package middleware

import (
	"net/http"
	"strings"

	"queueflow/internal/shared/config"
	"queueflow/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// JWTAuth creates a JWT authentication middleware
func JWTAuth() gin.HandlerFunc {
	return JWTAuthWithConfig(config.Load())
}

// JWTAuthWithConfig creates a JWT authentication middleware with config
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})

		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}

		if tokenType, exists := claims["type"]; !exists || tokenType != "access" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
			c.Abort()
			return
		}

		if sub, exists := claims["sub"]; exists {
			c.Set("user_id", sub)
		}
		if role, exists := claims["role"]; exists {
			c.Set("user_role", role)
		}
		if shopID, exists := claims["shop_id"]; exists {
			c.Set("token_shop_id", shopID)
		}

		c.Next()
	}
}

// RequireRoles allows only the listed roles through
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists {
			response.RespondJSON(c, "error", http.StatusForbidden, "role not present in token", nil, nil)
			c.Abort()
			return
		}

		roleStr, _ := role.(string)
		for _, allowed := range roles {
			if roleStr == allowed {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "insufficient permissions", nil, nil)
		c.Abort()
	}
}

// RequireShopAccess rejects requests whose token is scoped to a different shop
// than the :shop_id route parameter. Admin tokens carry no shop_id and pass.
func RequireShopAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		paramShopID := c.Param("shop_id")
		if paramShopID == "" {
			c.Next()
			return
		}

		tokenShopID, exists := c.Get("token_shop_id")
		if !exists {
			// No shop scoping on the token (admin)
			c.Next()
			return
		}

		if shopStr, _ := tokenShopID.(string); shopStr != paramShopID {
			response.RespondJSON(c, "error", http.StatusForbidden, "token is not scoped to this shop", nil, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

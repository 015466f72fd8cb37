package middleware

import (
	"net/http"
	"strings"

	"bidquotes/internal/models"
	"bidquotes/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the claims issued by the external identity provider.
// The subject is the provider's user id, which maps to users.external_auth_id.
type IdentityClaims struct {
	UserType string `json:"user_type"`
	jwt.RegisteredClaims
}

// AuthRequired validates the bearer token and resolves the external subject
// to an internal user. The internal user's id and type are what downstream
// handlers see; requests from subjects the sync webhook has not delivered yet
// are rejected.
func AuthRequired(jwtSecret string, userService services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*IdentityClaims)
		if !ok || claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		user, err := userService.GetByExternalAuthID(c.Request.Context(), claims.Subject)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			c.Abort()
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_type", string(user.UserType))

		c.Next()
	}
}

// BuyerRequired ensures the authenticated user is a buyer.
func BuyerRequired() gin.HandlerFunc {
	return requireUserType(models.UserTypeBuyer, "Buyer access required")
}

// ContractorRequired ensures the authenticated user is a contractor.
func ContractorRequired() gin.HandlerFunc {
	return requireUserType(models.UserTypeContractor, "Contractor access required")
}

// AdminRequired ensures the authenticated user is an admin.
func AdminRequired() gin.HandlerFunc {
	return requireUserType(models.UserTypeAdmin, "Admin access required")
}

func requireUserType(required models.UserType, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get("user_type")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User type not found"})
			c.Abort()
			return
		}

		userTypeStr, ok := userType.(string)
		if !ok || userTypeStr != string(required) {
			c.JSON(http.StatusForbidden, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Next()
	}
}

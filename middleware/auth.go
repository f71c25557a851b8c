package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/ftllc/credit-enroll-pro-sub001/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the session JWT claims. A session is bound to exactly
// one enrollment record.
type Claims struct {
	EnrollmentID int64  `json:"enrollment_id"`
	Email        string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken generates a session token bound to an enrollment record
func GenerateToken(enrollmentID int64, email string, cfg *config.AuthConfig) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		EnrollmentID: enrollmentID,
		Email:        email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// AuthMiddleware validates the session token and extracts the owned
// enrollment record ID
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Store session info in context
		c.Set("enrollment_id", claims.EnrollmentID)
		c.Set("email", claims.Email)

		c.Next()
	}
}

// GetEnrollmentID gets the session's enrollment record ID from context
func GetEnrollmentID(c *gin.Context) int64 {
	if id, exists := c.Get("enrollment_id"); exists {
		return id.(int64)
	}
	return 0
}

// GetEmail gets the session email from context
func GetEmail(c *gin.Context) string {
	if email, exists := c.Get("email"); exists {
		return email.(string)
	}
	return ""
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sanchitpandey/visitpass-api/models"
	"github.com/sanchitpandey/visitpass-api/store"
	"github.com/sanchitpandey/visitpass-api/utils"
)

const accountKey = "account"

// Protect verifies the Bearer token, re-fetches the account and confirms it is
// still active before letting the request through.
func Protect(secret []byte, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, no token provided"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			msg := "Not authorized, token failed"
			if errors.Is(err, utils.ErrTokenExpired) {
				msg = "Token has expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": msg})
			c.Abort()
			return
		}

		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, token failed"})
			c.Abort()
			return
		}

		account, err := st.AccountByID(c.Request.Context(), accountID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not found"})
			c.Abort()
			return
		}
		if !account.IsActive {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User account is disabled"})
			c.Abort()
			return
		}

		c.Set(accountKey, account)
		c.Next()
	}
}

// CurrentAccount returns the account the Protect middleware resolved.
func CurrentAccount(c *gin.Context) *models.Account {
	if v, ok := c.Get(accountKey); ok {
		if account, ok := v.(*models.Account); ok {
			return account
		}
	}
	return nil
}

// AdminOnly restricts a route to admin accounts.
func AdminOnly() gin.HandlerFunc {
	return requireRole("Not authorized as an admin", models.RoleAdmin)
}

// SecurityOnly restricts a route to security personnel; admins pass too.
func SecurityOnly() gin.HandlerFunc {
	return requireRole("Not authorized as security personnel", models.RoleSecurity, models.RoleAdmin)
}

// VisitorOnly restricts a route to visitor accounts.
func VisitorOnly() gin.HandlerFunc {
	return requireRole("Not authorized as a visitor", models.RoleVisitor)
}

func requireRole(message string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := CurrentAccount(c)
		if account != nil {
			for _, role := range roles {
				if account.Role == role {
					c.Next()
					return
				}
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": message})
		c.Abort()
	}
}

// File: internal/middleware/auth.go
package middleware

import (
	"marketplace_backend/internal/common"
	"marketplace_backend/internal/firebase"
	"marketplace_backend/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the Firebase ID token on the request and resolves
// the local user, storing {id, role} in the Gin context. The application
// trusts this resolved identity downstream and performs no further
// authentication of its own.
func AuthMiddleware(firebaseService *firebase.FirebaseService, userService user.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header must be 'Bearer <token>'."))
			return
		}

		token, err := firebaseService.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("Token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}

		resolvedUser, err := userService.GetOrCreateFromFirebaseToken(c.Request.Context(), token)
		if err != nil {
			logger.Error("Failed to resolve user for verified token", zap.Error(err), zap.String("uid", token.UID))
			common.RespondWithError(c, err)
			return
		}

		c.Set(common.UserIDKey, resolvedUser.ID)
		c.Set(common.UserRoleKey, resolvedUser.Role)
		c.Set(common.FirebaseUIDKey, token.UID)

		c.Next()
	}
}

// RoleAuthMiddleware checks that the authenticated user has one of the
// required roles. Must run after AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := common.GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}

		for _, role := range allowedRoles {
			if userRole == role {
				c.Next()
				return
			}
		}
		common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
	}
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/student-profile-api/internal/middleware"
	"github.com/noah-isme/student-profile-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// currentUserID returns the signed-in user id, or "" which services report as MISSING_IDENTITY.
func currentUserID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

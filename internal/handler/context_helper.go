package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fyp-manager-api/internal/middleware"
	"github.com/noah-isme/fyp-manager-api/internal/models"
	appErrors "github.com/noah-isme/fyp-manager-api/pkg/errors"
	"github.com/noah-isme/fyp-manager-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, _ := middleware.CurrentClaims(c)
	return claims
}

// requireClaims writes 401 and returns nil when the request carries no session.
func requireClaims(c *gin.Context) *models.JWTClaims {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "no token provided"))
	}
	return claims
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}

func respondWithMeta(c *gin.Context, status int, data interface{}) {
	response.JSON(c, status, data, nil, middleware.ExtractMeta(c))
}

func deleted(c *gin.Context, message string) {
	response.JSON(c, http.StatusOK, gin.H{"message": message}, nil)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/soundprediction/orgsignal/pkg/server/dto"
)

func abortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    status,
	})
}

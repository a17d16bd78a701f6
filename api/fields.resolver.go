package api

import (
	"stockscreener/internal/domain"

	"github.com/gin-gonic/gin"
)

type fieldsResponse struct {
	Fields []domain.FeatureField `json:"fields"`
}

func (m ApiHandler) fields(c *gin.Context) {
	c.JSON(200, fieldsResponse{
		Fields: domain.FeatureFields,
	})
}

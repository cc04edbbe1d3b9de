package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"toolboard/services"
	"toolboard/utils"
)

// serviceError maps the service error taxonomy onto HTTP responses.
func serviceError(ctx *gin.Context, err error) {
	switch {
	case services.IsNotFound(err):
		utils.Error(ctx, http.StatusNotFound, 40400, err.Error())
	case services.IsValidation(err):
		utils.Error(ctx, http.StatusBadRequest, 40000, err.Error())
	case services.IsConflict(err):
		utils.Error(ctx, http.StatusConflict, 40900, err.Error())
	default:
		utils.Sugar.Errorf("backend failure: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50000, "backend error")
	}
}

package auth

import (
	"github.com/labstack/echo/v4"

	"timechart/core/config"
	"timechart/modules/auth/controller"
	"timechart/modules/auth/service"
)

func Init(e *echo.Echo, cfg config.AuthConfig) {
	ctrl := controller.NewAuthController(service.NewAuthService(cfg))
	e.POST("/api/v1/auth/login", ctrl.Login)
}

package router

import (
	"github.com/labstack/echo/v4"

	"timechart/core/middleware"
	"timechart/modules/group/controller"
)

type GroupRouter struct {
	Controller *controller.GroupController
}

func NewGroupRouter(ctrl *controller.GroupController) *GroupRouter {
	return &GroupRouter{Controller: ctrl}
}

func (r *GroupRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	priv := v1.Group("/private", mw.AuthMiddleware())

	groups := priv.Group("/groups")
	groups.GET("", r.Controller.List)
	groups.POST("", r.Controller.Create)
	groups.GET("/:id", r.Controller.GetByID)
	groups.PUT("/:id", r.Controller.Update)
	groups.PUT("/:id/signup", r.Controller.SetSignup)
	groups.DELETE("/:id", r.Controller.Delete)
}

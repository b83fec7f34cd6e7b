package router

import (
	"github.com/labstack/echo/v4"

	"timechart/core/middleware"
	"timechart/modules/booking/controller"
)

type BookingRouter struct {
	Controller *controller.BookingController
}

func NewBookingRouter(ctrl *controller.BookingController) *BookingRouter {
	return &BookingRouter{Controller: ctrl}
}

func (r *BookingRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	priv := v1.Group("/private", mw.AuthMiddleware())

	bookings := priv.Group("/bookings")
	bookings.POST("", r.Controller.Book)
	bookings.POST("/cancel", r.Controller.Cancel)
	priv.GET("/users/:id/bookings", r.Controller.ListUserBookings)
}

package schedule

import (
	"github.com/labstack/echo/v4"

	"timechart/core/database"
	"timechart/core/middleware"
	"timechart/modules/schedule/controller"
	"timechart/modules/schedule/repository"
	"timechart/modules/schedule/service"
)

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware) (*service.ScheduleService, *repository.ScheduleRepository) {
	repo := repository.NewScheduleRepository(db)
	svc := service.NewScheduleService(repo)
	ctrl := controller.NewScheduleController(svc)

	v1 := e.Group("/api/v1")
	priv := v1.Group("/private", mw.AuthMiddleware())
	slots := priv.Group("/slots")
	slots.GET("", ctrl.List)
	slots.POST("/bulk", ctrl.BulkCreate)
	slots.PUT("/:id", ctrl.Update)
	slots.DELETE("/:id", ctrl.Delete)
	priv.GET("/attendance", ctrl.Attendance)

	return svc, repo
}

package place

import (
	"github.com/labstack/echo/v4"

	"timechart/core/cache"
	"timechart/core/database"
	"timechart/core/middleware"
	"timechart/modules/place/controller"
	"timechart/modules/place/repository"
	"timechart/modules/place/service"
)

func Init(e *echo.Echo, db database.IDatabase, cache cache.Cache, mw *middleware.Middleware) *service.PlaceService {
	repo := repository.NewPlaceRepository(db)
	svc := service.NewPlaceService(repo, cache)
	ctrl := controller.NewPlaceController(svc)

	v1 := e.Group("/api/v1")
	priv := v1.Group("/private", mw.AuthMiddleware())
	places := priv.Group("/places")
	places.GET("", ctrl.List)
	places.POST("", ctrl.Create)
	places.GET("/:id", ctrl.GetByID)
	places.PUT("/:id", ctrl.Update)
	places.DELETE("/:id", ctrl.Delete)

	return svc
}

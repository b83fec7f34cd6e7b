package group

import (
	"github.com/labstack/echo/v4"

	"timechart/core/cache"
	"timechart/core/database"
	"timechart/core/middleware"
	"timechart/modules/group/controller"
	"timechart/modules/group/repository"
	"timechart/modules/group/router"
	"timechart/modules/group/service"
)

func Init(e *echo.Echo, db database.IDatabase, cache cache.Cache, mw *middleware.Middleware, publisher service.SignupOpenedPublisher) *service.GroupService {
	repo := repository.NewGroupRepository(db)
	svc := service.NewGroupService(repo, cache, publisher)
	ctrl := controller.NewGroupController(svc)
	router.NewGroupRouter(ctrl).Setup(e, mw)
	return svc
}

package booking

import (
	"github.com/labstack/echo/v4"

	"timechart/core/config"
	"timechart/core/database"
	"timechart/core/middleware"
	"timechart/modules/booking/controller"
	"timechart/modules/booking/repository"
	"timechart/modules/booking/router"
	"timechart/modules/booking/service"
	groupRepository "timechart/modules/group/repository"
	scheduleRepository "timechart/modules/schedule/repository"
	userRepository "timechart/modules/user/repository"
)

func Init(
	e *echo.Echo,
	db database.IDatabase,
	mw *middleware.Middleware,
	cfg config.BookingConfig,
	scheduleRepo scheduleRepository.ScheduleRepositoryInterface,
) *service.BookingService {
	engine := service.NewEngine(cfg)
	svc := service.NewBookingService(
		engine,
		repository.NewBookingRepository(db),
		userRepository.NewUserRepository(db),
		groupRepository.NewGroupRepository(db),
		scheduleRepo,
	)
	ctrl := controller.NewBookingController(svc)
	router.NewBookingRouter(ctrl).Setup(e, mw)
	return svc
}

package notification

import (
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"timechart/core/database"
	"timechart/core/middleware"
	"timechart/core/queue"
	botService "timechart/modules/bot/service"
	groupRepository "timechart/modules/group/repository"
	"timechart/modules/notification/controller"
	"timechart/modules/notification/repository"
	"timechart/modules/notification/router"
	"timechart/modules/notification/service"
	userRepository "timechart/modules/user/repository"
)

func Init(
	e *echo.Echo,
	db database.IDatabase,
	mw *middleware.Middleware,
	client *asynq.Client,
	mux *asynq.ServeMux,
	sender botService.Sender,
) *service.Publisher {
	deliveries := repository.NewNotificationRepository(db)

	worker := service.NewWorker(
		groupRepository.NewGroupRepository(db),
		userRepository.NewUserRepository(db),
		deliveries,
		sender,
	)
	mux.HandleFunc(queue.TypeSignupOpened, worker.HandleSignupOpened)

	ctrl := controller.NewNotificationController(service.NewLogService(deliveries))
	router.NewNotificationRouter(ctrl).Setup(e, mw)

	return service.NewPublisher(client)
}

package controller

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"timechart/core/controller"
	"timechart/modules/notification/service"
)

type NotificationController struct {
	controller.BaseController
	service service.LogServiceInterface
}

func NewNotificationController(svc service.LogServiceInterface) *NotificationController {
	return &NotificationController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

func (ctrl *NotificationController) ListRecent(c echo.Context) error {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	deliveries, appErr := ctrl.service.ListRecent(c.Request().Context(), limit)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, deliveries, "notification deliveries")
}

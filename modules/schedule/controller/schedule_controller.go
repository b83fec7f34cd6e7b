package controller

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"timechart/core/constants"
	"timechart/core/controller"
	"timechart/core/errors"
	"timechart/modules/schedule/dto"
	"timechart/modules/schedule/service"
)

type ScheduleController struct {
	controller.BaseController
	service service.ScheduleServiceInterface
}

func NewScheduleController(svc service.ScheduleServiceInterface) *ScheduleController {
	return &ScheduleController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// BulkCreate materializes a schedule definition into time slot rows.
func (ctrl *ScheduleController) BulkCreate(c echo.Context) error {
	var req dto.BulkCreateRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	resp, appErr := ctrl.service.BulkCreate(c.Request().Context(), &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, resp, "time slots created")
}

func (ctrl *ScheduleController) List(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, err.Error())
	}
	slots, appErr := ctrl.service.ListByDateRange(c.Request().Context(), from, to)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, slots, "time slots")
}

func (ctrl *ScheduleController) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid slot id")
	}
	var req dto.UpdateSlotRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	if appErr := ctrl.service.Update(c.Request().Context(), id, &req); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "slot updated")
}

func (ctrl *ScheduleController) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid slot id")
	}
	if appErr := ctrl.service.Delete(c.Request().Context(), id); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "slot deleted")
}

// Attendance lists roster entries for a date range.
func (ctrl *ScheduleController) Attendance(c echo.Context) error {
	from, to, err := dateRange(c)
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, err.Error())
	}
	rows, appErr := ctrl.service.Attendance(c.Request().Context(), from, to)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, rows, "attendance")
}

func dateRange(c echo.Context) (time.Time, time.Time, error) {
	from, err := time.Parse(constants.DateFormat, c.QueryParam("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(constants.DateFormat, c.QueryParam("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

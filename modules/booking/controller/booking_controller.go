package controller

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"timechart/core/controller"
	"timechart/core/errors"
	"timechart/modules/booking/dto"
	"timechart/modules/booking/service"
)

type BookingController struct {
	controller.BaseController
	service service.BookingServiceInterface
}

func NewBookingController(svc service.BookingServiceInterface) *BookingController {
	return &BookingController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

// Book places a user on a slot roster, subject to the same eligibility rules
// the bot applies.
func (ctrl *BookingController) Book(c echo.Context) error {
	var req dto.BookingRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	if req.UserID == 0 {
		return ctrl.BadRequest(errors.ErrInvalidInput, "user_id is required")
	}
	verdict, appErr := ctrl.service.Book(c.Request().Context(), req.UserID, req.SlotID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, dto.ToVerdictResponse(verdict), "booking evaluated")
}

func (ctrl *BookingController) Cancel(c echo.Context) error {
	var req dto.BookingRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	if req.UserID == 0 {
		return ctrl.BadRequest(errors.ErrInvalidInput, "user_id is required")
	}
	verdict, appErr := ctrl.service.Cancel(c.Request().Context(), req.UserID, req.SlotID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, dto.ToVerdictResponse(verdict), "cancellation evaluated")
}

// ListUserBookings lists a user's upcoming bookings.
func (ctrl *BookingController) ListUserBookings(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid user id")
	}
	bookings, appErr := ctrl.service.ListUserFutureBookings(c.Request().Context(), userID)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, bookings, "bookings")
}

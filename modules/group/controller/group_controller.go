package controller

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"timechart/core/controller"
	"timechart/core/errors"
	"timechart/core/params"
	"timechart/modules/group/dto"
	"timechart/modules/group/service"
)

type GroupController struct {
	controller.BaseController
	service service.GroupServiceInterface
}

func NewGroupController(svc service.GroupServiceInterface) *GroupController {
	return &GroupController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

func (ctrl *GroupController) Create(c echo.Context) error {
	var req dto.GroupRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	resp, appErr := ctrl.service.Create(c.Request().Context(), &req)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, resp, "group created")
}

func (ctrl *GroupController) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid group id")
	}
	resp, appErr := ctrl.service.GetByID(c.Request().Context(), id)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, resp, "group")
}

func (ctrl *GroupController) List(c echo.Context) error {
	queryParams := params.NewQueryParams(c)
	resp, appErr := ctrl.service.List(c.Request().Context(), queryParams)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, resp, "groups")
}

func (ctrl *GroupController) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid group id")
	}
	var req dto.GroupRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	if appErr := ctrl.service.Update(c.Request().Context(), &req, id); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "group updated")
}

// SetSignup flips the group signup window; opening it notifies the members.
func (ctrl *GroupController) SetSignup(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid group id")
	}
	var req dto.SetSignupRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	if appErr := ctrl.service.SetSignupAllowed(c.Request().Context(), id, req.AllowSignup); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "signup flag updated")
}

func (ctrl *GroupController) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid group id")
	}
	if appErr := ctrl.service.Delete(c.Request().Context(), id); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "group deleted")
}

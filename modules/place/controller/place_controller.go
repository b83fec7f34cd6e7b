package controller

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"timechart/core/controller"
	"timechart/core/errors"
	"timechart/core/params"
	"timechart/modules/place/entity"
	"timechart/modules/place/service"
)

type PlaceRequest struct {
	Name     string `json:"name" validate:"required"`
	IsActive bool   `json:"is_active"`
}

type PlaceController struct {
	controller.BaseController
	service service.PlaceServiceInterface
}

func NewPlaceController(svc service.PlaceServiceInterface) *PlaceController {
	return &PlaceController{
		BaseController: controller.NewBaseController(),
		service:        svc,
	}
}

func (ctrl *PlaceController) Create(c echo.Context) error {
	var req PlaceRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	created, appErr := ctrl.service.Create(c.Request().Context(), &entity.Place{Name: req.Name, IsActive: req.IsActive})
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, created, "place created")
}

func (ctrl *PlaceController) List(c echo.Context) error {
	queryParams := params.NewQueryParams(c)
	places, appErr := ctrl.service.List(c.Request().Context(), queryParams)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, places, "places")
}

func (ctrl *PlaceController) GetByID(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid place id")
	}
	place, appErr := ctrl.service.GetByID(c.Request().Context(), id)
	if appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, place, "place")
}

func (ctrl *PlaceController) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid place id")
	}
	var req PlaceRequest
	if err := c.Bind(&req); err != nil {
		return ctrl.BadRequest(errors.ErrInvalidRequestData, "invalid request body")
	}
	if appErr := ctrl.service.Update(c.Request().Context(), &entity.Place{Name: req.Name, IsActive: req.IsActive}, id); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "place updated")
}

func (ctrl *PlaceController) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return ctrl.BadRequest(errors.ErrInvalidInput, "invalid place id")
	}
	if appErr := ctrl.service.Delete(c.Request().Context(), id); appErr != nil {
		return ctrl.ErrorResponse(c, appErr)
	}
	return ctrl.SuccessResponse(c, nil, "place deleted")
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tillpos/internal/apierror"
	"tillpos/internal/dto"
	"tillpos/internal/middleware"
	"tillpos/internal/service"
)

type RegistersHandler struct{ svc service.RegisterService }

func NewRegistersHandler(svc service.RegisterService) *RegistersHandler {
	return &RegistersHandler{svc: svc}
}

// Open godoc
// @Summary Opens a new till session
// @Tags registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenRegisterRequest true "Opening data"
// @Success 201 {object} dto.RegisterReportResponse
// @Failure 400 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/registers/open [post]
func (h *RegistersHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, err := operatorFromClaims(c)
	if err != nil {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), operatorID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// RecordMovement godoc
// @Summary Records a manual cash withdrawal or deposit
// @Tags registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CashMovementRequest true "Cash movement"
// @Success 204
// @Failure 400 {object} apierror.APIError
// @Router /v1/registers/movements [post]
func (h *RegistersHandler) RecordMovement(c *gin.Context) {
	var req dto.CashMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, err := operatorFromClaims(c)
	if err != nil {
		return
	}
	if err := h.svc.RecordMovement(c.Request.Context(), operatorID, req); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Close godoc
// @Summary Closes the operator's open till session with the counted balance
// @Tags registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseRegisterRequest true "Counted closing balance"
// @Success 200 {object} dto.RegisterReportResponse
// @Failure 409 {object} apierror.APIError
// @Router /v1/registers/close [post]
func (h *RegistersHandler) Close(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	operatorID, err := operatorFromClaims(c)
	if err != nil {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), operatorID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Active returns the currently open till session for the authenticated operator.
func (h *RegistersHandler) Active(c *gin.Context) {
	operatorID, err := operatorFromClaims(c)
	if err != nil {
		return
	}
	resp, err := h.svc.Active(c.Request.Context(), operatorID)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("no active session"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report godoc
// @Summary Returns the report of one till session
// @Tags registers
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} dto.RegisterReportResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/registers/{id}/report [get]
func (h *RegistersHandler) Report(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// History returns a paginated list of closed till sessions.
func (h *RegistersHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	resp, err := h.svc.History(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// operatorFromClaims extracts the authenticated operator id; writes the error
// response itself on failure.
func operatorFromClaims(c *gin.Context) (uuid.UUID, error) {
	claims := middleware.GetClaims(c)
	operatorID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid operator id"))
		return uuid.Nil, err
	}
	return operatorID, nil
}

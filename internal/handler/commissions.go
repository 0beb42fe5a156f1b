package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"tillpos/internal/apierror"
	"tillpos/internal/dto"
	"tillpos/internal/service"
)

type CommissionsHandler struct{ svc service.CommissionService }

func NewCommissionsHandler(svc service.CommissionService) *CommissionsHandler {
	return &CommissionsHandler{svc: svc}
}

// Pay godoc
// @Summary Marks one commission as paid (idempotent)
// @Tags commissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Commission ID"
// @Success 200 {object} dto.CommissionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/commissions/{id}/pay [post]
func (h *CommissionsHandler) Pay(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	resp, err := h.svc.Pay(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PayBatch godoc
// @Summary Marks a batch of commissions as paid, best-effort per id
// @Tags commissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.PayBatchRequest true "Commission IDs"
// @Success 200 {object} dto.PayBatchResponse
// @Router /v1/commissions/pay-batch [post]
func (h *CommissionsHandler) PayBatch(c *gin.Context) {
	var req dto.PayBatchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid id: "+raw))
			return
		}
		ids = append(ids, id)
	}
	resp, err := h.svc.PayBatch(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// List returns commissions, filtered by seller and/or status.
func (h *CommissionsHandler) List(c *gin.Context) {
	status := c.Query("status")
	if sellerRaw := c.Query("seller"); sellerRaw != "" {
		sellerID, err := uuid.Parse(sellerRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("invalid seller id"))
			return
		}
		resp, err := h.svc.ListBySeller(c.Request.Context(), sellerID, status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	resp, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

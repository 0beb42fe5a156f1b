package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"tillpos/internal/apierror"
	"tillpos/internal/service"
)

type ProductsHandler struct{ svc service.ProductService }

func NewProductsHandler(svc service.ProductService) *ProductsHandler {
	return &ProductsHandler{svc: svc}
}

// List returns the active catalog.
func (h *ProductsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PriceByCode godoc
// @Summary Looks up the current price of a product by its code
// @Tags products
// @Produce json
// @Param code path string true "Product code"
// @Success 200 {object} dto.PriceLookupResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{code} [get]
func (h *ProductsHandler) PriceByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, apierror.New("code is required"))
		return
	}
	resp, err := h.svc.PriceByCode(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("product not found"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

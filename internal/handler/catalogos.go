package handler

import (
	"net/http"

	"propostas/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogosHandler struct{ svc service.CatalogoService }

func NewCatalogosHandler(svc service.CatalogoService) *CatalogosHandler {
	return &CatalogosHandler{svc: svc}
}

// Listar godoc
// @Summary      Catálogos do assistente
// @Description  Tipos de gás ativos para o tipo de proposta, capacidades, unidades de medida e condições de pagamento.
// @Tags         catalogos
// @Produce      json
// @Security     BearerAuth
// @Param        tipo query string false "cilindro | liquido"
// @Success      200  {object} dto.CatalogosResponse
// @Failure      422  {object} apierror.APIError
// @Router       /v1/catalogos [get]
func (h *CatalogosHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), c.Query("tipo"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

package handler

import (
	"fmt"
	"net/http"

	"propostas/internal/apierror"
	"propostas/internal/dto"
	"propostas/internal/service"

	"github.com/gin-gonic/gin"
)

type PropostasHandler struct {
	svc  service.PropostaService
	docs service.DocumentoService
}

func NewPropostasHandler(svc service.PropostaService, docs service.DocumentoService) *PropostasHandler {
	return &PropostasHandler{svc: svc, docs: docs}
}

// Criar godoc
// @Summary      Gerar proposta
// @Description  Valida, numera e grava a proposta com seus itens em uma única transação.
// @Tags         propostas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarPropostaRequest true "Proposta"
// @Success      201  {object} dto.CriarPropostaResponse
// @Failure      403  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/propostas [post]
func (h *PropostasHandler) Criar(c *gin.Context) {
	var req dto.CriarPropostaRequest
	raw, ok := bindRaw(c, &req)
	if !ok {
		return
	}

	resp, err := h.svc.Criar(c.Request.Context(), principal(c), req, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", fmt.Sprintf("/v1/propostas/%d", resp.ID))
	c.JSON(http.StatusCreated, resp)
}

// Validar godoc
// @Summary      Validar etapas do assistente
// @Description  Executa as regras de cada etapa e retorna a etapa mais avançada alcançada.
// @Tags         propostas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CriarPropostaRequest true "Proposta em edição"
// @Success      200  {object} dto.ValidacaoResponse
// @Router       /v1/propostas/validar [post]
func (h *PropostasHandler) Validar(c *gin.Context) {
	var req dto.CriarPropostaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	etapa, err := service.ValidarTudo(&req)
	resp := dto.ValidacaoResponse{Valido: err == nil, Etapa: string(etapa)}
	if err != nil {
		resp.Erro = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar propostas
// @Description  Lista paginada, mais recentes primeiro. Usuários de unidade veem apenas a sua.
// @Tags         propostas
// @Produce      json
// @Security     BearerAuth
// @Param        tipo   query string false "cilindro | liquido"
// @Param        status query string false "rascunho | gerada | enviada"
// @Param        busca  query string false "Cliente ou número"
// @Param        page   query int    false "Página"
// @Param        limit  query int    false "Itens por página"
// @Success      200  {object} dto.PropostaListResponse
// @Router       /v1/propostas [get]
func (h *PropostasHandler) Listar(c *gin.Context) {
	var filter dto.PropostaFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Parâmetros inválidos: "+err.Error()))
		return
	}
	if !validar(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), principal(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Obter godoc
// @Summary      Obter proposta
// @Tags         propostas
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int true "ID da proposta"
// @Success      200  {object} dto.PropostaResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/propostas/{id} [get]
func (h *PropostasHandler) Obter(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Obter(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PDF godoc
// @Summary      Baixar PDF da proposta
// @Tags         propostas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id   path     int true "ID da proposta"
// @Success      200  {file}   binary
// @Failure      409  {object} apierror.APIError
// @Router       /v1/propostas/{id}/pdf [get]
func (h *PropostasHandler) PDF(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	doc, err := h.docs.GerarPDF(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.NomeArquivo))
	c.Data(http.StatusOK, "application/pdf", doc.Conteudo)
}

// Enviar godoc
// @Summary      Enviar proposta por e-mail
// @Description  Enfileira o envio do PDF; a proposta passa a "enviada" quando o e-mail sair.
// @Tags         propostas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path     int                       true "ID da proposta"
// @Param        body body     dto.EnviarPropostaRequest true "Destinatário"
// @Success      202  {object} map[string]string
// @Failure      409  {object} apierror.APIError
// @Router       /v1/propostas/{id}/enviar [post]
func (h *PropostasHandler) Enviar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req dto.EnviarPropostaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	jobID, err := h.svc.SolicitarEnvio(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// Excluir godoc
// @Summary      Excluir proposta
// @Tags         propostas
// @Security     BearerAuth
// @Param        id   path     int true "ID da proposta"
// @Success      204
// @Failure      403  {object} apierror.APIError
// @Router       /v1/propostas/{id} [delete]
func (h *PropostasHandler) Excluir(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Excluir(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

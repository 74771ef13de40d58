package work

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"doukeeper/internal/domain"
	apperror "doukeeper/internal/errors"
	"doukeeper/internal/pkg/logger"
	"doukeeper/internal/pkg/middleware"
)

// WorkService define o contrato que o Handler espera da camada de Serviço.
type WorkService interface {
	CreateWork(ctx context.Context, userID string, input domain.WorkInput) (domain.Work, error)
	GetWork(ctx context.Context, userID, id string) (domain.Work, error)
	ListWorks(ctx context.Context, userID string) ([]domain.Work, error)
	UpdateWork(ctx context.Context, userID, id string, updates domain.WorkUpdate) (domain.Work, error)
	DeleteWork(ctx context.Context, userID, id string) error
	Restock(ctx context.Context, userID, workID string, input domain.RestockInput) (domain.LedgerResult, error)
}

// Handler agrupa todos os métodos de Handler de obras.
type Handler struct {
	Service WorkService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc WorkService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// userID extrai o tenant autenticado do contexto. Sem claims a requisição
// nunca deveria ter chegado aqui (o middleware barra antes).
func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.Logger.Warn("Requisição sem claims de usuário no contexto.", map[string]interface{}{"path": r.URL.Path})
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Usuário não autenticado."), http.StatusOK)
		return "", false
	}
	return claims.UserID, true
}

// WorksHandler lida com a coleção /v1/works (POST cria, GET lista).
// @Summary Cria ou lista obras
// @Description POST valida e cria uma nova obra; GET lista todas as obras do usuário autenticado.
// @Tags works
// @Accept json
// @Produce json
// @Param work body domain.WorkInput true "Dados da obra (title obrigatório; initial_stock é saneado)"
// @Success 201 {object} domain.Work "Obra criada"
// @Success 200 {array} domain.Work "Lista de obras"
// @Failure 400 {object} domain.ErrorResponse "Título vazio ou payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Security BearerAuth
// @Router /works [post]
func (h *Handler) WorksHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var input domain.WorkInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
			return
		}
		created, err := h.Service.CreateWork(ctx, userID, input)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)

	case http.MethodGet:
		works, err := h.Service.ListWorks(ctx, userID)
		h.handleServiceResponse(w, r, works, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// WorkByIDHandler lida com /v1/works/{id} (GET, PUT, DELETE) e com a
// sub-rota de reposição /v1/works/{id}/restock (POST).
// @Summary Opera sobre uma obra específica
// @Description GET busca, PUT atualiza parcialmente (re-saneando cada campo), DELETE remove a obra e seus registros em cascata sem restaurar estoque.
// @Tags works
// @Accept json
// @Produce json
// @Param id path string true "ID da obra (UUID)"
// @Success 200 {object} domain.Work "Obra"
// @Failure 404 {object} domain.ErrorResponse "Obra não encontrada"
// @Failure 409 {object} domain.ErrorResponse "Conflito de versão (OCC)"
// @Security BearerAuth
// @Router /works/{id} [get]
func (h *Handler) WorkByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	// Segmentos esperados: ["v1", "works", "{id}"] ou ["v1", "works", "{id}", "restock"]
	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) < 3 || segments[2] == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}
	workID := segments[2]

	if len(segments) == 4 && segments[3] == "restock" {
		h.restock(w, r, userID, workID)
		return
	}
	if len(segments) != 3 {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido."), http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodGet:
		work, err := h.Service.GetWork(ctx, userID, workID)
		h.handleServiceResponse(w, r, work, err, http.StatusOK)

	case http.MethodPut:
		var updates domain.WorkUpdate
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
			return
		}
		updated, err := h.Service.UpdateWork(ctx, userID, workID, updates)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteWork(ctx, userID, workID)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// restock lida com POST /v1/works/{id}/restock.
// @Summary Repõe estoque de uma obra
// @Description Incrementa InitialStock e CurrentStock juntos (InitialStock é a marca d'água do total provisionado).
// @Tags works
// @Accept json
// @Produce json
// @Param id path string true "ID da obra (UUID)"
// @Param restock body domain.RestockInput true "Quantidade a repor (>= 1 após truncar)"
// @Success 200 {object} domain.LedgerResult "Resultado da reposição"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Security BearerAuth
// @Router /works/{id}/restock [post]
func (h *Handler) restock(w http.ResponseWriter, r *http.Request, userID, workID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var input domain.RestockInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
		return
	}

	result, err := h.Service.Restock(r.Context(), userID, workID, input)
	h.handleServiceResponse(w, r, result, err, http.StatusOK)
}

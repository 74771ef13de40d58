package distribution

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

// DistributionService define o contrato que o Handler espera da camada de Serviço.
type DistributionService interface {
	RegisterDistribution(ctx context.Context, userID string, input domain.DistributionInput) (domain.LedgerResult, error)
	GetDistribution(ctx context.Context, userID, id string) (domain.DistributionRecord, error)
	ListDistributions(ctx context.Context, userID string) ([]domain.DistributionRecord, error)
	UpdateDistribution(ctx context.Context, userID, id string, updates domain.DistributionUpdate) (domain.DistributionRecord, error)
	DeleteDistribution(ctx context.Context, userID, id string) error
}

// Handler agrupa todos os métodos de Handler de registros de distribuição.
type Handler struct {
	Service DistributionService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc DistributionService, log logger.Logger) *Handler {
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

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.Logger.Warn("Requisição sem claims de usuário no contexto.", map[string]interface{}{"path": r.URL.Path})
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Usuário não autenticado."), http.StatusOK)
		return "", false
	}
	return claims.UserID, true
}

// DistributionsHandler lida com a coleção /v1/distributions (POST registra, GET lista).
// @Summary Registra ou lista distribuições
// @Description POST registra uma distribuição com clamp contra o estoque atual (atendimento parcial é sucesso com mensagem, nunca estoque negativo); GET lista os registros do usuário, mais recentes primeiro.
// @Tags distributions
// @Accept json
// @Produce json
// @Param distribution body domain.DistributionInput true "Dados do registro (work_id e quantity obrigatórios; event_id opcional vira snapshot de nome)"
// @Success 201 {object} domain.LedgerResult "Resultado do registro (registered_quantity pode ser menor que o pedido)"
// @Success 200 {array} domain.DistributionRecord "Registros de distribuição"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Security BearerAuth
// @Router /distributions [post]
func (h *Handler) DistributionsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var input domain.DistributionInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
			return
		}
		result, err := h.Service.RegisterDistribution(ctx, userID, input)
		h.handleServiceResponse(w, r, result, err, http.StatusCreated)

	case http.MethodGet:
		records, err := h.Service.ListDistributions(ctx, userID)
		h.handleServiceResponse(w, r, records, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// DistributionByIDHandler lida com /v1/distributions/{id} (GET, PUT, DELETE).
// @Summary Opera sobre um registro de distribuição
// @Description PUT re-acerta a equação de estoque em duas fases (desfaz o efeito antigo, aplica o novo com clamp); DELETE restaura a quantidade ao estoque da obra, se ela ainda existir.
// @Tags distributions
// @Accept json
// @Produce json
// @Param id path string true "ID do registro (UUID)"
// @Success 200 {object} domain.DistributionRecord "Registro"
// @Failure 404 {object} domain.ErrorResponse "Registro não encontrado"
// @Failure 409 {object} domain.ErrorResponse "Conflito de versão no estoque da obra (OCC)"
// @Security BearerAuth
// @Router /distributions/{id} [put]
func (h *Handler) DistributionByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	segments := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(segments) != 3 || segments[2] == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
		return
	}
	recordID := segments[2]

	switch r.Method {
	case http.MethodGet:
		record, err := h.Service.GetDistribution(ctx, userID, recordID)
		h.handleServiceResponse(w, r, record, err, http.StatusOK)

	case http.MethodPut:
		var updates domain.DistributionUpdate
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
			return
		}
		updated, err := h.Service.UpdateDistribution(ctx, userID, recordID, updates)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteDistribution(ctx, userID, recordID)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"doukeeper/internal/domain"
	apperror "doukeeper/internal/errors"
	"doukeeper/internal/pkg/logger"
	"doukeeper/internal/pkg/middleware"
)

// DashboardService define o contrato que o Handler espera da camada de Serviço.
type DashboardService interface {
	GetDashboard(ctx context.Context, userID string) (domain.DashboardStats, error)
}

// Handler agrupa os métodos de Handler do dashboard.
type Handler struct {
	Service DashboardService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc DashboardService, log logger.Logger) *Handler {
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

// DashboardHandler lida com GET /v1/dashboard.
// @Summary Agregados do ledger
// @Description Recalcula sob demanda os agregados derivados: total de obras, estoque atual, total vendido, receita estimada, taxa de venda e última distribuição.
// @Tags dashboard
// @Produce json
// @Success 200 {object} domain.DashboardStats "Agregados calculados"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Security BearerAuth
// @Router /dashboard [get]
func (h *Handler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Usuário não autenticado."), http.StatusOK)
		return
	}

	stats, err := h.Service.GetDashboard(r.Context(), claims.UserID)
	h.handleServiceResponse(w, r, stats, err, http.StatusOK)
}

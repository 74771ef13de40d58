package snapshot

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

// SnapshotService define o contrato de carga/descarga das coleções do usuário.
type SnapshotService interface {
	ExportSnapshot(ctx context.Context, userID string) (domain.Snapshot, error)
	ImportSnapshot(ctx context.Context, userID string, snap domain.Snapshot) error
}

// Handler agrupa os métodos de Handler de snapshot.
type Handler struct {
	Service SnapshotService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SnapshotService, log logger.Logger) *Handler {
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

// SnapshotHandler lida com /v1/snapshot (GET exporta, PUT importa).
// @Summary Exporta ou importa as coleções completas do usuário
// @Description GET devolve obras, registros e eventos num único documento; PUT substitui atomicamente as coleções com coerção defensiva (timestamps malformados viram o instante atual, entradas irrecuperáveis são descartadas).
// @Tags snapshot
// @Accept json
// @Produce json
// @Param snapshot body domain.Snapshot true "Snapshot completo (apenas para PUT)"
// @Success 200 {object} domain.Snapshot "Snapshot exportado"
// @Success 204 "Snapshot importado"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 401 {object} domain.ErrorResponse "Token ausente ou inválido"
// @Security BearerAuth
// @Router /snapshot [get]
func (h *Handler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Usuário não autenticado."), http.StatusOK)
		return
	}
	userID := claims.UserID

	switch r.Method {
	case http.MethodGet:
		snap, err := h.Service.ExportSnapshot(ctx, userID)
		h.handleServiceResponse(w, r, snap, err, http.StatusOK)

	case http.MethodPut:
		var snap domain.Snapshot
		if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
			return
		}
		err := h.Service.ImportSnapshot(ctx, userID, snap)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

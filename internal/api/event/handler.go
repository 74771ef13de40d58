package event

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

// EventService define o contrato que o Handler espera da camada de Serviço.
type EventService interface {
	CreateEvent(ctx context.Context, userID string, input domain.EventInput) (domain.Event, error)
	GetEvent(ctx context.Context, userID, id string) (domain.Event, error)
	ListEvents(ctx context.Context, userID string) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, userID, id string, updates domain.EventUpdate) (domain.Event, error)
	DeleteEvent(ctx context.Context, userID, id string) error
}

// Handler agrupa todos os métodos de Handler de eventos.
type Handler struct {
	Service EventService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc EventService, log logger.Logger) *Handler {
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

// EventsHandler lida com a coleção /v1/events (POST cria, GET lista por data).
// @Summary Cria ou lista eventos
// @Description POST cria um evento (nome obrigatório; data inválida é coagida para agora); GET lista os eventos ordenados por data.
// @Tags events
// @Accept json
// @Produce json
// @Param event body domain.EventInput true "Dados do evento"
// @Success 201 {object} domain.Event "Evento criado"
// @Success 200 {array} domain.Event "Lista de eventos"
// @Failure 400 {object} domain.ErrorResponse "Nome vazio ou payload inválido"
// @Security BearerAuth
// @Router /events [post]
func (h *Handler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodPost:
		var input domain.EventInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusCreated)
			return
		}
		created, err := h.Service.CreateEvent(ctx, userID, input)
		h.handleServiceResponse(w, r, created, err, http.StatusCreated)

	case http.MethodGet:
		events, err := h.Service.ListEvents(ctx, userID)
		h.handleServiceResponse(w, r, events, err, http.StatusOK)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// EventByIDHandler lida com /v1/events/{id} (GET, PUT, DELETE).
// @Summary Opera sobre um evento específico
// @Description DELETE não tem cascata: registros de distribuição guardam apenas o snapshot do nome.
// @Tags events
// @Accept json
// @Produce json
// @Param id path string true "ID do evento (UUID)"
// @Success 200 {object} domain.Event "Evento"
// @Failure 404 {object} domain.ErrorResponse "Evento não encontrado"
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *Handler) EventByIDHandler(w http.ResponseWriter, r *http.Request) {
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
	eventID := segments[2]

	switch r.Method {
	case http.MethodGet:
		event, err := h.Service.GetEvent(ctx, userID, eventID)
		h.handleServiceResponse(w, r, event, err, http.StatusOK)

	case http.MethodPut:
		var updates domain.EventUpdate
		if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusOK)
			return
		}
		updated, err := h.Service.UpdateEvent(ctx, userID, eventID, updates)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.DeleteEvent(ctx, userID, eventID)
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

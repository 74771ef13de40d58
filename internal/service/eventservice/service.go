package eventservice

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"doukeeper/internal/domain"
	apperror "doukeeper/internal/errors"
	"doukeeper/internal/pkg/logger"
)

// EventRepository define o contrato que o serviço espera da persistência de eventos.
type EventRepository interface {
	CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	FindEventByID(ctx context.Context, userID, id string) (domain.Event, error)
	FindAllEvents(ctx context.Context, userID string) ([]domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error)
	DeleteEvent(ctx context.Context, userID, id string) error
}

// Service implementa as regras de negócio de eventos de venda. Eventos são
// independentes das obras: registros de distribuição guardam apenas um
// snapshot do nome, então nenhuma operação aqui tem efeito em cascata.
type Service struct {
	repo   EventRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do serviço de eventos.
func NewService(repo EventRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateEvent valida e cria um novo evento. O nome vazio é rejeição dura;
// data malformada ou ausente é coagida para o instante atual.
func (s *Service) CreateEvent(ctx context.Context, userID string, input domain.EventInput) (domain.Event, error) {
	s.logger.Debug("Iniciando criação de evento no serviço.", map[string]interface{}{"name": input.Name})

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Event{}, apperror.NewValidationError("O nome do evento não pode ser vazio.")
	}

	event := domain.Event{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Date:      input.Date.OrNow(),
		Location:  optionalText(input.Location),
		Memo:      optionalText(input.Memo),
		CreatedAt: time.Now().UTC(),
	}

	created, err := s.repo.CreateEvent(ctx, event)
	if err != nil {
		s.logger.Error("Falha ao criar evento no repositório.", err)
		return domain.Event{}, err
	}

	s.logger.Info("Evento criado com sucesso.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// GetEvent busca um evento pelo ID.
func (s *Service) GetEvent(ctx context.Context, userID, id string) (domain.Event, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Event{}, apperror.NewValidationError("O ID do evento deve ser um UUID válido.")
	}
	return s.repo.FindEventByID(ctx, userID, id)
}

// ListEvents devolve todos os eventos do usuário, ordenados por data.
func (s *Service) ListEvents(ctx context.Context, userID string) ([]domain.Event, error) {
	return s.repo.FindAllEvents(ctx, userID)
}

// UpdateEvent aplica uma atualização parcial com as mesmas regras da criação.
// Mudar o nome NÃO reescreve snapshots em registros de distribuição antigos.
func (s *Service) UpdateEvent(ctx context.Context, userID, id string, updates domain.EventUpdate) (domain.Event, error) {
	s.logger.Debug("Iniciando atualização de evento no serviço.", map[string]interface{}{"id": id})

	event, err := s.repo.FindEventByID(ctx, userID, id)
	if err != nil {
		return domain.Event{}, err
	}

	if updates.Name != nil {
		name := strings.TrimSpace(*updates.Name)
		if name == "" {
			return domain.Event{}, apperror.NewValidationError("O nome do evento não pode ser vazio.")
		}
		event.Name = name
	}
	if updates.Date != nil {
		event.Date = updates.Date.OrNow()
	}
	if updates.Location != nil {
		event.Location = optionalText(*updates.Location)
	}
	if updates.Memo != nil {
		event.Memo = optionalText(*updates.Memo)
	}

	updated, err := s.repo.UpdateEvent(ctx, event)
	if err != nil {
		s.logger.Error("Falha ao atualizar evento no repositório.", err)
		return domain.Event{}, err
	}
	return updated, nil
}

// DeleteEvent remove um evento. Registros históricos ficam intactos (o nome
// já foi desnormalizado no registro).
func (s *Service) DeleteEvent(ctx context.Context, userID, id string) error {
	s.logger.Debug("Iniciando exclusão de evento no serviço.", map[string]interface{}{"id": id})

	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID do evento deve ser um UUID válido.")
	}
	return s.repo.DeleteEvent(ctx, userID, id)
}

func optionalText(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

package eventrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"doukeeper/internal/domain"
	apperror "doukeeper/internal/errors"
	"doukeeper/internal/pkg/logger"
)

// EventRepository implementa a persistência de eventos no PostgreSQL.
// Eventos não têm cascata: registros de distribuição guardam apenas o
// snapshot do nome, então apagar um evento não toca em registros históricos.
type EventRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewEventRepository cria e retorna uma nova instância do Repositório de Eventos.
func NewEventRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *EventRepository {
	return &EventRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const eventColumns = `id, user_id, name, date, location, memo, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.Date, &e.Location, &e.Memo, &e.CreatedAt)
	return e, err
}

// CreateEvent insere um novo evento no banco de dados.
func (r *EventRepository) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	r.logger.Debug("Iniciando CreateEvent no repositório.", map[string]interface{}{"name": event.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO events (id, user_id, name, date, location, memo, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + eventColumns

	created, err := scanEvent(r.DB.QueryRowContext(ctxTimeout, query,
		event.ID, event.UserID, event.Name, event.Date, event.Location, event.Memo, event.CreatedAt,
	))
	if err != nil {
		r.logger.Error("Falha ao inserir evento no DB.", err)
		return domain.Event{}, apperror.NewDBError("Falha ao criar evento", err)
	}

	r.logger.Info("Evento criado com sucesso.", map[string]interface{}{"id": created.ID, "name": created.Name})
	return created, nil
}

// FindEventByID busca um evento pelo ID, escopado pelo usuário.
func (r *EventRepository) FindEventByID(ctx context.Context, userID, id string) (domain.Event, error) {
	r.logger.Debug("Iniciando FindEventByID no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND user_id = $2`

	event, err := scanEvent(r.DB.QueryRowContext(ctxTimeout, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Evento não encontrado.", map[string]interface{}{"id": id})
		return domain.Event{}, apperror.NewNotFoundError(fmt.Sprintf("Evento com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar evento no DB.", err)
		return domain.Event{}, apperror.NewDBError("Falha ao buscar evento", err)
	}

	return event, nil
}

// FindAllEvents busca todos os eventos do usuário, ordenados pela data.
func (r *EventRepository) FindAllEvents(ctx context.Context, userID string) ([]domain.Event, error) {
	r.logger.Debug("Iniciando FindAllEvents no repositório.", map[string]interface{}{"user_id": userID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + eventColumns + ` FROM events WHERE user_id = $1 ORDER BY date`

	rows, err := r.DB.QueryContext(ctxTimeout, query, userID)
	if err != nil {
		r.logger.Error("Falha ao executar FindAllEvents query.", err)
		return nil, apperror.NewDBError("Falha ao buscar eventos", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear evento na iteração de FindAllEvents.", err)
			return nil, apperror.NewDBError("Falha ao mapear eventos do DB", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de eventos.", err)
		return nil, apperror.NewDBError("Erro após iteração de eventos", err)
	}

	r.logger.Info("FindAllEvents concluído com sucesso.", map[string]interface{}{"total_events": len(events)})
	return events, nil
}

// UpdateEvent atualiza um evento existente.
func (r *EventRepository) UpdateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	r.logger.Debug("Iniciando UpdateEvent no repositório.", map[string]interface{}{"id": event.ID, "name": event.Name})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE events
        SET name = $1, date = $2, location = $3, memo = $4
        WHERE id = $5 AND user_id = $6
        RETURNING ` + eventColumns

	updated, err := scanEvent(r.DB.QueryRowContext(ctxTimeout, query,
		event.Name, event.Date, event.Location, event.Memo, event.ID, event.UserID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Evento não encontrado para atualização.", map[string]interface{}{"id": event.ID})
		return domain.Event{}, apperror.NewNotFoundError(fmt.Sprintf("Evento com ID %s não encontrado para atualização.", event.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar evento no DB.", err)
		return domain.Event{}, apperror.NewDBError("Falha ao atualizar evento", err)
	}

	r.logger.Info("Evento atualizado com sucesso.", map[string]interface{}{"id": updated.ID, "name": updated.Name})
	return updated, nil
}

// DeleteEvent remove um evento pelo ID. Sem cascata: registros de
// distribuição mantêm o snapshot do nome.
func (r *EventRepository) DeleteEvent(ctx context.Context, userID, id string) error {
	r.logger.Debug("Iniciando DeleteEvent no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout,
		`DELETE FROM events WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error("Falha ao deletar evento do DB.", err)
		return apperror.NewDBError("Falha ao deletar evento", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após DeleteEvent.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Evento não encontrado para exclusão.", map[string]interface{}{"id": id})
		return apperror.NewNotFoundError(fmt.Sprintf("Evento com ID %s não encontrado para exclusão.", id))
	}

	r.logger.Info("Evento deletado com sucesso.", map[string]interface{}{"id": id})
	return nil
}

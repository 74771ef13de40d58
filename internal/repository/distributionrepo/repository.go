package distributionrepo

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

// DistributionRepository implementa a persistência dos registros de
// distribuição no PostgreSQL. As operações compostas (registro + ajuste de
// estoque da obra) rodam numa única transação: um observador externo nunca vê
// o registro sem o decremento correspondente, nem o contrário.
type DistributionRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewDistributionRepository cria e retorna uma nova instância do Repositório de Distribuições.
func NewDistributionRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *DistributionRepository {
	return &DistributionRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const recordColumns = `id, user_id, work_id, quantity, event_name, memo, distributed_at`

func scanRecord(row interface{ Scan(...interface{}) error }) (domain.DistributionRecord, error) {
	var rec domain.DistributionRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.WorkID, &rec.Quantity,
		&rec.EventName, &rec.Memo, &rec.DistributedAt,
	)
	return rec, err
}

// updateWorkStockTx aplica os contadores de estoque da obra dentro da
// transação, com checagem de versão (OCC). Retorna ConflictError se a obra
// foi modificada por outra operação desde a leitura do chamador.
func updateWorkStockTx(ctx context.Context, tx *sql.Tx, work domain.Work) error {
	result, err := tx.ExecContext(ctx, `
        UPDATE works
        SET initial_stock = $1, current_stock = $2, version = version + 1, updated_at = $3
        WHERE id = $4 AND user_id = $5 AND version = $6`,
		work.InitialStock, work.CurrentStock, work.UpdatedAt,
		work.ID, work.UserID, work.Version,
	)
	if err != nil {
		return apperror.NewDBError("Falha ao ajustar estoque da obra", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		return apperror.NewConflictError("A obra foi modificada por outra operação. Tente novamente.")
	}
	return nil
}

// SaveWithStock insere o registro de distribuição e aplica o decremento de
// estoque na obra numa única transação.
func (r *DistributionRepository) SaveWithStock(ctx context.Context, record domain.DistributionRecord, work domain.Work) (domain.DistributionRecord, error) {
	r.logger.Debug("Iniciando SaveWithStock no repositório.", map[string]interface{}{
		"work_id":  record.WorkID,
		"quantity": record.Quantity,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de registro de distribuição.", err)
		return domain.DistributionRecord{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO distribution_records (id, user_id, work_id, quantity, event_name, memo, distributed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + recordColumns

	created, err := scanRecord(tx.QueryRowContext(ctxTimeout, query,
		record.ID, record.UserID, record.WorkID, record.Quantity,
		record.EventName, record.Memo, record.DistributedAt,
	))
	if err != nil {
		r.logger.Error("Falha ao inserir registro de distribuição.", err)
		return domain.DistributionRecord{}, apperror.NewDBError("Falha ao inserir registro de distribuição", err)
	}

	if err := updateWorkStockTx(ctxTimeout, tx, work); err != nil {
		r.logger.Error("Falha ao decrementar estoque da obra na transação.", err)
		return domain.DistributionRecord{}, err
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de distribuição.", commitErr)
		return domain.DistributionRecord{}, apperror.NewDBError("Falha ao commitar transação", commitErr)
	}

	r.logger.Info("Distribuição registrada com decremento de estoque.", map[string]interface{}{
		"record_id":       created.ID,
		"work_id":         work.ID,
		"new_stock_level": work.CurrentStock,
	})
	return created, nil
}

// FindByID busca um registro pelo ID, escopado pelo usuário.
func (r *DistributionRepository) FindByID(ctx context.Context, userID, id string) (domain.DistributionRecord, error) {
	r.logger.Debug("Iniciando FindByID de distribuição no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM distribution_records WHERE id = $1 AND user_id = $2`

	record, err := scanRecord(r.DB.QueryRowContext(ctxTimeout, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Registro de distribuição não encontrado.", map[string]interface{}{"id": id})
		return domain.DistributionRecord{}, apperror.NewNotFoundError(fmt.Sprintf("Registro de distribuição com ID %s não encontrado.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar registro de distribuição no DB.", err)
		return domain.DistributionRecord{}, apperror.NewDBError("Falha ao buscar registro de distribuição", err)
	}

	return record, nil
}

// FindAll busca todos os registros do usuário, mais recentes primeiro.
func (r *DistributionRepository) FindAll(ctx context.Context, userID string) ([]domain.DistributionRecord, error) {
	r.logger.Debug("Iniciando FindAll de distribuições no repositório.", map[string]interface{}{"user_id": userID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + recordColumns + ` FROM distribution_records WHERE user_id = $1 ORDER BY distributed_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, userID)
	if err != nil {
		r.logger.Error("Falha ao executar FindAll de distribuições.", err)
		return nil, apperror.NewDBError("Falha ao buscar registros de distribuição", err)
	}
	defer rows.Close()

	var records []domain.DistributionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear registro na iteração de FindAll.", err)
			return nil, apperror.NewDBError("Falha ao mapear registros do DB", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de distribuições.", err)
		return nil, apperror.NewDBError("Erro após iteração de distribuições", err)
	}

	r.logger.Info("FindAll de distribuições concluído.", map[string]interface{}{"total_records": len(records)})
	return records, nil
}

// UpdateWithStock atualiza o registro e, se work não for nil, re-acerta o
// estoque da obra na mesma transação. work nil cobre o caso do registro órfão
// (obra já apagada): só o registro é tocado.
func (r *DistributionRepository) UpdateWithStock(ctx context.Context, record domain.DistributionRecord, work *domain.Work) (domain.DistributionRecord, error) {
	r.logger.Debug("Iniciando UpdateWithStock no repositório.", map[string]interface{}{"record_id": record.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de atualização de distribuição.", err)
		return domain.DistributionRecord{}, apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	query := `
        UPDATE distribution_records
        SET quantity = $1, event_name = $2, memo = $3, distributed_at = $4
        WHERE id = $5 AND user_id = $6
        RETURNING ` + recordColumns

	updated, err := scanRecord(tx.QueryRowContext(ctxTimeout, query,
		record.Quantity, record.EventName, record.Memo, record.DistributedAt,
		record.ID, record.UserID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Registro de distribuição não encontrado para atualização.", map[string]interface{}{"id": record.ID})
		return domain.DistributionRecord{}, apperror.NewNotFoundError(fmt.Sprintf("Registro de distribuição com ID %s não encontrado para atualização.", record.ID))
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar registro de distribuição.", err)
		return domain.DistributionRecord{}, apperror.NewDBError("Falha ao atualizar registro de distribuição", err)
	}

	if work != nil {
		if err := updateWorkStockTx(ctxTimeout, tx, *work); err != nil {
			r.logger.Error("Falha ao re-acertar estoque da obra na transação.", err)
			return domain.DistributionRecord{}, err
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de atualização de distribuição.", commitErr)
		return domain.DistributionRecord{}, apperror.NewDBError("Falha ao commitar transação", commitErr)
	}

	r.logger.Info("Registro de distribuição atualizado.", map[string]interface{}{"record_id": updated.ID})
	return updated, nil
}

// DeleteWithStock remove o registro e, se work não for nil, devolve a
// quantidade ao estoque da obra na mesma transação (a exclusão é o inverso
// exato da criação para fins de estoque).
func (r *DistributionRepository) DeleteWithStock(ctx context.Context, userID, id string, work *domain.Work) error {
	r.logger.Debug("Iniciando DeleteWithStock no repositório.", map[string]interface{}{"record_id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de exclusão de distribuição.", err)
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout,
		`DELETE FROM distribution_records WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error("Falha ao deletar registro de distribuição.", err)
		return apperror.NewDBError("Falha ao deletar registro de distribuição", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após exclusão de distribuição.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Registro de distribuição não encontrado para exclusão.", map[string]interface{}{"id": id})
		return apperror.NewNotFoundError(fmt.Sprintf("Registro de distribuição com ID %s não encontrado para exclusão.", id))
	}

	if work != nil {
		if err := updateWorkStockTx(ctxTimeout, tx, *work); err != nil {
			r.logger.Error("Falha ao restaurar estoque da obra na transação.", err)
			return err
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de exclusão de distribuição.", commitErr)
		return apperror.NewDBError("Falha ao commitar transação", commitErr)
	}

	r.logger.Info("Registro de distribuição deletado.", map[string]interface{}{"record_id": id})
	return nil
}

// ReplaceAll substitui atomicamente as três coleções do usuário (contrato de
// importação de snapshot): apaga tudo e insere o conteúdo saneado numa única
// transação.
func (r *DistributionRepository) ReplaceAll(ctx context.Context, userID string, works []domain.Work, records []domain.DistributionRecord, events []domain.Event) error {
	r.logger.Debug("Iniciando ReplaceAll (importação de snapshot).", map[string]interface{}{
		"user_id": userID,
		"works":   len(works),
		"records": len(records),
		"events":  len(events),
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação de importação de snapshot.", err)
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"distribution_records", "works", "events"} {
		if _, err := tx.ExecContext(ctxTimeout, `DELETE FROM `+table+` WHERE user_id = $1`, userID); err != nil {
			r.logger.Error("Falha ao limpar coleção na importação de snapshot.", err)
			return apperror.NewDBError(fmt.Sprintf("Falha ao limpar %s", table), err)
		}
	}

	workSQL := `
        INSERT INTO works (id, user_id, title, initial_stock, current_stock, price, memo, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, w := range works {
		if _, err := tx.ExecContext(ctxTimeout, workSQL,
			w.ID, w.UserID, w.Title, w.InitialStock, w.CurrentStock,
			w.Price, w.Memo, w.Version, w.CreatedAt, w.UpdatedAt,
		); err != nil {
			r.logger.Error("Falha ao inserir obra do snapshot.", err)
			return apperror.NewDBError("Falha ao inserir obra do snapshot", err)
		}
	}

	recordSQL := `
        INSERT INTO distribution_records (id, user_id, work_id, quantity, event_name, memo, distributed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, rec := range records {
		if _, err := tx.ExecContext(ctxTimeout, recordSQL,
			rec.ID, rec.UserID, rec.WorkID, rec.Quantity,
			rec.EventName, rec.Memo, rec.DistributedAt,
		); err != nil {
			r.logger.Error("Falha ao inserir registro do snapshot.", err)
			return apperror.NewDBError("Falha ao inserir registro do snapshot", err)
		}
	}

	eventSQL := `
        INSERT INTO events (id, user_id, name, date, location, memo, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, e := range events {
		if _, err := tx.ExecContext(ctxTimeout, eventSQL,
			e.ID, e.UserID, e.Name, e.Date, e.Location, e.Memo, e.CreatedAt,
		); err != nil {
			r.logger.Error("Falha ao inserir evento do snapshot.", err)
			return apperror.NewDBError("Falha ao inserir evento do snapshot", err)
		}
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar importação de snapshot.", commitErr)
		return apperror.NewDBError("Falha ao commitar transação", commitErr)
	}

	r.logger.Info("Snapshot importado com sucesso.", map[string]interface{}{"user_id": userID})
	return nil
}

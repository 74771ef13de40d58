package workrepo

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

// WorkRepository implementa a persistência de obras no PostgreSQL.
// Todas as queries são escopadas pelo user_id: uma obra nunca é visível ou
// mutável fora do tenant do usuário autenticado.
type WorkRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewWorkRepository cria e retorna uma nova instância do Repositório de Obras.
func NewWorkRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *WorkRepository {
	return &WorkRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

const workColumns = `id, user_id, title, initial_stock, current_stock, price, memo, version, created_at, updated_at`

// scanWork mapeia uma linha de works para a struct domain.Work.
func scanWork(row interface{ Scan(...interface{}) error }) (domain.Work, error) {
	var w domain.Work
	err := row.Scan(
		&w.ID, &w.UserID, &w.Title, &w.InitialStock, &w.CurrentStock,
		&w.Price, &w.Memo, &w.Version, &w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

// CreateWork insere uma nova obra no banco de dados.
func (r *WorkRepository) CreateWork(ctx context.Context, work domain.Work) (domain.Work, error) {
	r.logger.Debug("Iniciando CreateWork no repositório.", map[string]interface{}{"title": work.Title, "user_id": work.UserID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        INSERT INTO works (id, user_id, title, initial_stock, current_stock, price, memo, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + workColumns

	created, err := scanWork(r.DB.QueryRowContext(ctxTimeout, query,
		work.ID, work.UserID, work.Title, work.InitialStock, work.CurrentStock,
		work.Price, work.Memo, work.Version, work.CreatedAt, work.UpdatedAt,
	))
	if err != nil {
		r.logger.Error("Falha ao inserir obra no DB.", err)
		return domain.Work{}, apperror.NewDBError("Falha ao criar obra", err)
	}

	r.logger.Info("Obra criada com sucesso.", map[string]interface{}{"id": created.ID, "title": created.Title})
	return created, nil
}

// FindWorkByID busca uma obra pelo ID, escopada pelo usuário.
func (r *WorkRepository) FindWorkByID(ctx context.Context, userID, id string) (domain.Work, error) {
	r.logger.Debug("Iniciando FindWorkByID no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + workColumns + ` FROM works WHERE id = $1 AND user_id = $2`

	work, err := scanWork(r.DB.QueryRowContext(ctxTimeout, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Info("Obra não encontrada.", map[string]interface{}{"id": id})
		return domain.Work{}, apperror.NewNotFoundError(fmt.Sprintf("Obra com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar obra no DB.", err)
		return domain.Work{}, apperror.NewDBError("Falha ao buscar obra", err)
	}

	return work, nil
}

// FindAllWorks busca todas as obras do usuário, mais recentes primeiro.
func (r *WorkRepository) FindAllWorks(ctx context.Context, userID string) ([]domain.Work, error) {
	r.logger.Debug("Iniciando FindAllWorks no repositório.", map[string]interface{}{"user_id": userID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + workColumns + ` FROM works WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, userID)
	if err != nil {
		r.logger.Error("Falha ao executar FindAllWorks query.", err)
		return nil, apperror.NewDBError("Falha ao buscar obras", err)
	}
	defer rows.Close()

	var works []domain.Work
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			r.logger.Error("Falha ao mapear obra na iteração de FindAllWorks.", err)
			return nil, apperror.NewDBError("Falha ao mapear obras do DB", err)
		}
		works = append(works, work)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Erro após iteração das linhas de obras.", err)
		return nil, apperror.NewDBError("Erro após iteração de obras", err)
	}

	r.logger.Info("FindAllWorks concluído com sucesso.", map[string]interface{}{"total_works": len(works)})
	return works, nil
}

// UpdateWork atualiza uma obra existente usando controle de concorrência
// otimista (OCC): a escrita só vale se a versão no DB ainda for a versão que
// o chamador leu. O contador de versão é incrementado na própria query.
func (r *WorkRepository) UpdateWork(ctx context.Context, work domain.Work) (domain.Work, error) {
	r.logger.Debug("Iniciando UpdateWork no repositório.", map[string]interface{}{"id": work.ID, "expected_version": work.Version})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        UPDATE works
        SET title = $1, initial_stock = $2, current_stock = $3, price = $4, memo = $5,
            version = version + 1, updated_at = $6
        WHERE id = $7 AND user_id = $8 AND version = $9
        RETURNING ` + workColumns

	updated, err := scanWork(r.DB.QueryRowContext(ctxTimeout, query,
		work.Title, work.InitialStock, work.CurrentStock, work.Price, work.Memo,
		work.UpdatedAt, work.ID, work.UserID, work.Version,
	))
	if errors.Is(err, sql.ErrNoRows) {
		// Ou a obra não existe, ou a versão está desatualizada. Distinguimos
		// com uma leitura extra para devolver o erro correto.
		if _, findErr := r.FindWorkByID(ctx, work.UserID, work.ID); findErr != nil {
			return domain.Work{}, findErr
		}
		r.logger.Warn("Falha no controle de concorrência otimista (OCC) em UpdateWork.", map[string]interface{}{
			"id":               work.ID,
			"expected_version": work.Version,
		})
		return domain.Work{}, apperror.NewConflictError("A obra foi modificada por outra operação. Tente novamente.")
	}
	if err != nil {
		r.logger.Error("Falha ao atualizar obra no DB.", err)
		return domain.Work{}, apperror.NewDBError("Falha ao atualizar obra", err)
	}

	r.logger.Info("Obra atualizada com sucesso.", map[string]interface{}{"id": updated.ID, "new_version": updated.Version})
	return updated, nil
}

// DeleteWork remove a obra e todos os seus registros de distribuição numa
// única transação (cascade). O estoque não é restaurado: a obra deixa de existir.
func (r *WorkRepository) DeleteWork(ctx context.Context, userID, id string) error {
	r.logger.Debug("Iniciando DeleteWork no repositório.", map[string]interface{}{"id": id})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		r.logger.Error("Falha ao iniciar transação para exclusão de obra.", err)
		return apperror.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctxTimeout,
		`DELETE FROM distribution_records WHERE work_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error("Falha ao deletar registros de distribuição da obra.", err)
		return apperror.NewDBError("Falha ao deletar registros da obra", err)
	}

	result, err := tx.ExecContext(ctxTimeout,
		`DELETE FROM works WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error("Falha ao deletar obra do DB.", err)
		return apperror.NewDBError("Falha ao deletar obra", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Falha ao verificar linhas afetadas após DeleteWork.", err)
		return apperror.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rowsAffected == 0 {
		r.logger.Info("Obra não encontrada para exclusão.", map[string]interface{}{"id": id})
		return apperror.NewNotFoundError(fmt.Sprintf("Obra com ID %s não encontrada para exclusão.", id))
	}

	if commitErr := tx.Commit(); commitErr != nil {
		r.logger.Error("Falha ao commitar transação de exclusão de obra.", commitErr)
		return apperror.NewDBError("Falha ao commitar transação", commitErr)
	}

	r.logger.Info("Obra e registros associados deletados com sucesso.", map[string]interface{}{"id": id})
	return nil
}

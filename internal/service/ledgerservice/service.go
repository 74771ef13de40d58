package ledgerservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"doukeeper/internal/domain"
	apperror "doukeeper/internal/errors"
	"doukeeper/internal/pkg/cache"
	"doukeeper/internal/pkg/logger"
)

// WorkRepository define o contrato que o Ledger espera da persistência de obras.
type WorkRepository interface {
	CreateWork(ctx context.Context, work domain.Work) (domain.Work, error)
	FindWorkByID(ctx context.Context, userID, id string) (domain.Work, error)
	FindAllWorks(ctx context.Context, userID string) ([]domain.Work, error)
	UpdateWork(ctx context.Context, work domain.Work) (domain.Work, error)
	DeleteWork(ctx context.Context, userID, id string) error
}

// DistributionRepository define o contrato da persistência de registros de
// distribuição. Os métodos *WithStock são compostos: registro e ajuste de
// estoque da obra acontecem numa única transação.
type DistributionRepository interface {
	SaveWithStock(ctx context.Context, record domain.DistributionRecord, work domain.Work) (domain.DistributionRecord, error)
	FindByID(ctx context.Context, userID, id string) (domain.DistributionRecord, error)
	FindAll(ctx context.Context, userID string) ([]domain.DistributionRecord, error)
	UpdateWithStock(ctx context.Context, record domain.DistributionRecord, work *domain.Work) (domain.DistributionRecord, error)
	DeleteWithStock(ctx context.Context, userID, id string, work *domain.Work) error
	ReplaceAll(ctx context.Context, userID string, works []domain.Work, records []domain.DistributionRecord, events []domain.Event) error
}

// EventResolver é o contrato mínimo para resolver a referência opcional de
// evento num snapshot de nome no momento do registro.
type EventResolver interface {
	FindEventByID(ctx context.Context, userID, id string) (domain.Event, error)
	FindAllEvents(ctx context.Context, userID string) ([]domain.Event, error)
}

// Service é o Stock Ledger: o dono das regras de consistência entre
// InitialStock, CurrentStock e a soma das quantidades dos registros de
// distribuição. Toda mutação re-acerta a equação de estoque.
type Service struct {
	workRepo  WorkRepository
	distRepo  DistributionRepository
	eventRepo EventResolver
	cache     cache.Client
	cacheTTL  time.Duration
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Stock Ledger.
func NewService(workRepo WorkRepository, distRepo DistributionRepository, eventRepo EventResolver, cacheClient cache.Client, cacheTTL time.Duration, logger logger.Logger) *Service {
	return &Service{
		workRepo:  workRepo,
		distRepo:  distRepo,
		eventRepo: eventRepo,
		cache:     cacheClient,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// --- Saneamento (política "best-effort sanitize" para campos opcionais) ---

// sanitizeStock coage um valor numérico de estoque para um inteiro >= 0.
// Não-finito ou negativo vira 0; fracionário é truncado para baixo.
func sanitizeStock(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return int(math.Floor(v))
}

// floorQuantity trunca uma quantidade pedida; não-finito vira 0 (e será
// rejeitado pela validação de quantidade mínima).
func floorQuantity(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Floor(v))
}

// sanitizePrice valida um preço opcional: não-finito ou negativo é
// silenciosamente descartado (vira ausente), nunca um erro.
func sanitizePrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil
	}
	return &v
}

// sanitizeOptionalText apara espaços; string vazia vira ausente (nil).
func sanitizeOptionalText(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// --- Obras ---

// CreateWork valida e cria uma nova obra. O título vazio é rejeição dura;
// os numéricos opcionais seguem a política de saneamento silencioso.
func (s *Service) CreateWork(ctx context.Context, userID string, input domain.WorkInput) (domain.Work, error) {
	s.logger.Debug("Iniciando criação de obra no serviço.", map[string]interface{}{"title": input.Title, "user_id": userID})

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return domain.Work{}, apperror.NewValidationError("O título da obra não pode ser vazio.")
	}

	stock := sanitizeStock(input.InitialStock)
	now := time.Now().UTC()

	work := domain.Work{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        title,
		InitialStock: stock,
		CurrentStock: stock,
		Price:        sanitizePrice(input.Price),
		Memo:         sanitizeOptionalText(input.Memo),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.workRepo.CreateWork(ctx, work)
	if err != nil {
		s.logger.Error("Falha ao criar obra no repositório.", err)
		return domain.Work{}, err
	}

	s.invalidateDashboard(ctx, userID)
	s.logger.Info("Obra criada com sucesso.", map[string]interface{}{"id": created.ID, "initial_stock": created.InitialStock})
	return created, nil
}

// GetWork busca uma obra pelo ID.
func (s *Service) GetWork(ctx context.Context, userID, id string) (domain.Work, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Work{}, apperror.NewValidationError("O ID da obra deve ser um UUID válido.")
	}
	return s.workRepo.FindWorkByID(ctx, userID, id)
}

// ListWorks devolve todas as obras do usuário.
func (s *Service) ListWorks(ctx context.Context, userID string) ([]domain.Work, error) {
	return s.workRepo.FindAllWorks(ctx, userID)
}

// UpdateWork aplica uma atualização parcial: cada campo presente é
// re-saneado com as mesmas regras da criação. UpdatedAt é sempre renovado,
// independentemente de quais campos mudaram.
func (s *Service) UpdateWork(ctx context.Context, userID, id string, updates domain.WorkUpdate) (domain.Work, error) {
	s.logger.Debug("Iniciando atualização de obra no serviço.", map[string]interface{}{"id": id})

	work, err := s.workRepo.FindWorkByID(ctx, userID, id)
	if err != nil {
		return domain.Work{}, err
	}

	if updates.Title != nil {
		title := strings.TrimSpace(*updates.Title)
		if title == "" {
			return domain.Work{}, apperror.NewValidationError("O título da obra não pode ser vazio.")
		}
		work.Title = title
	}
	if updates.InitialStock != nil {
		work.InitialStock = sanitizeStock(*updates.InitialStock)
	}
	if updates.CurrentStock != nil {
		work.CurrentStock = sanitizeStock(*updates.CurrentStock)
	}
	if updates.Price != nil {
		work.Price = sanitizePrice(updates.Price)
	}
	if updates.Memo != nil {
		work.Memo = sanitizeOptionalText(*updates.Memo)
	}
	work.UpdatedAt = time.Now().UTC()

	updated, err := s.workRepo.UpdateWork(ctx, work)
	if err != nil {
		s.logger.Error("Falha ao atualizar obra no repositório.", err)
		return domain.Work{}, err
	}

	s.invalidateDashboard(ctx, userID)
	return updated, nil
}

// DeleteWork remove a obra e todos os seus registros de distribuição
// (cascata, numa transação). O estoque não é restaurado. Irreversível.
func (s *Service) DeleteWork(ctx context.Context, userID, id string) error {
	s.logger.Debug("Iniciando exclusão de obra no serviço.", map[string]interface{}{"id": id})

	if _, err := uuid.Parse(id); err != nil {
		return apperror.NewValidationError("O ID da obra deve ser um UUID válido.")
	}

	if err := s.workRepo.DeleteWork(ctx, userID, id); err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			// Referência obsoleta: exclusão de obra inexistente é no-op.
			s.logger.Warn("Exclusão de obra inexistente ignorada.", map[string]interface{}{"id": id})
			return nil
		}
		s.logger.Error("Falha ao deletar obra no repositório.", err)
		return err
	}

	s.invalidateDashboard(ctx, userID)
	s.logger.Info("Obra deletada com registros associados.", map[string]interface{}{"id": id})
	return nil
}

// Restock repõe estoque: incrementa InitialStock E CurrentStock juntos.
// InitialStock é portanto a marca d'água do total já provisionado, não o
// valor original imutável.
func (s *Service) Restock(ctx context.Context, userID, workID string, input domain.RestockInput) (domain.LedgerResult, error) {
	s.logger.Debug("Iniciando reposição de estoque no serviço.", map[string]interface{}{"work_id": workID, "quantity": input.Quantity})

	qty := floorQuantity(input.Quantity)
	if qty <= 0 {
		return domain.LedgerResult{Success: false, Message: "A quantidade de reposição deve ser no mínimo 1."}, nil
	}

	work, err := s.workRepo.FindWorkByID(ctx, userID, workID)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.LedgerResult{Success: false, Message: "Obra não encontrada."}, nil
		}
		return domain.LedgerResult{}, err
	}

	work.InitialStock += qty
	work.CurrentStock += qty
	work.UpdatedAt = time.Now().UTC()

	if _, err := s.workRepo.UpdateWork(ctx, work); err != nil {
		s.logger.Error("Falha ao repor estoque no repositório.", err)
		return domain.LedgerResult{}, err
	}

	s.invalidateDashboard(ctx, userID)
	s.logger.Info("Estoque reposto com sucesso.", map[string]interface{}{
		"work_id":           workID,
		"applied_quantity":  qty,
		"new_current_stock": work.CurrentStock,
	})
	return domain.LedgerResult{
		Success:            true,
		Message:            fmt.Sprintf("%d unidades repostas.", qty),
		RegisteredQuantity: qty,
	}, nil
}

// --- Registros de Distribuição ---

// RegisterDistribution registra uma distribuição contra o estoque vivo da
// obra. A quantidade efetiva é min(pedida, estoque atual): nunca criamos um
// registro que levaria o estoque a negativo. Atendimento parcial é sucesso
// com mensagem informativa, não erro.
func (s *Service) RegisterDistribution(ctx context.Context, userID string, input domain.DistributionInput) (domain.LedgerResult, error) {
	s.logger.Debug("Iniciando registro de distribuição no serviço.", map[string]interface{}{
		"work_id":  input.WorkID,
		"quantity": input.Quantity,
	})

	qty := floorQuantity(input.Quantity)
	if qty <= 0 {
		return domain.LedgerResult{Success: false, Message: "A quantidade de distribuição deve ser no mínimo 1."}, nil
	}

	work, err := s.workRepo.FindWorkByID(ctx, userID, input.WorkID)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.LedgerResult{Success: false, Message: "Obra não encontrada."}, nil
		}
		return domain.LedgerResult{}, err
	}

	if work.CurrentStock <= 0 {
		return domain.LedgerResult{Success: false, Message: "Não há estoque disponível. Reponha o estoque antes de registrar."}, nil
	}

	clamped := qty
	if clamped > work.CurrentStock {
		clamped = work.CurrentStock
	}

	// Snapshot desnormalizado do nome do evento: referência que não resolve
	// não é erro, apenas fica sem snapshot.
	var eventName *string
	if input.EventID != "" {
		event, err := s.eventRepo.FindEventByID(ctx, userID, input.EventID)
		if err == nil {
			eventName = &event.Name
		} else {
			var notFound *apperror.NotFoundError
			if !errors.As(err, &notFound) {
				s.logger.Warn("Falha ao resolver evento para snapshot de nome.", map[string]interface{}{"event_id": input.EventID, "error": err.Error()})
			}
		}
	}

	record := domain.DistributionRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		WorkID:        work.ID,
		Quantity:      clamped,
		EventName:     eventName,
		Memo:          sanitizeOptionalText(input.Memo),
		DistributedAt: input.DistributedAt.OrNow(),
	}

	work.CurrentStock -= clamped
	work.UpdatedAt = time.Now().UTC()

	if _, err := s.distRepo.SaveWithStock(ctx, record, work); err != nil {
		s.logger.Error("Falha ao registrar distribuição no repositório.", err)
		return domain.LedgerResult{}, err
	}

	s.invalidateDashboard(ctx, userID)
	s.logger.Info("Distribuição registrada.", map[string]interface{}{
		"record_id":           record.ID,
		"work_id":             work.ID,
		"registered_quantity": clamped,
		"new_current_stock":   work.CurrentStock,
	})

	if clamped < qty {
		return domain.LedgerResult{
			Success:            true,
			Message:            fmt.Sprintf("Estoque insuficiente: %d de %d unidades foram registradas.", clamped, qty),
			RegisteredQuantity: clamped,
		}, nil
	}

	return domain.LedgerResult{Success: true, RegisteredQuantity: clamped}, nil
}

// GetDistribution busca um registro pelo ID.
func (s *Service) GetDistribution(ctx context.Context, userID, id string) (domain.DistributionRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.DistributionRecord{}, apperror.NewValidationError("O ID do registro deve ser um UUID válido.")
	}
	return s.distRepo.FindByID(ctx, userID, id)
}

// ListDistributions devolve todos os registros do usuário, mais recentes primeiro.
func (s *Service) ListDistributions(ctx context.Context, userID string) ([]domain.DistributionRecord, error) {
	return s.distRepo.FindAll(ctx, userID)
}

// UpdateDistribution atualiza um registro em duas fases: primeiro desfaz
// algebricamente o efeito atual sobre o estoque (restaurado = atual +
// quantidadeAntiga), depois aplica a nova quantidade com clamp contra o
// estoque restaurado. O teto do clamp usa dados vivos: distribuições e
// reposições ocorridas no meio tempo contam.
func (s *Service) UpdateDistribution(ctx context.Context, userID, id string, updates domain.DistributionUpdate) (domain.DistributionRecord, error) {
	s.logger.Debug("Iniciando atualização de distribuição no serviço.", map[string]interface{}{"record_id": id})

	record, err := s.distRepo.FindByID(ctx, userID, id)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			// Referência obsoleta: atualização de registro inexistente é no-op.
			s.logger.Warn("Atualização de registro inexistente ignorada.", map[string]interface{}{"record_id": id})
			return domain.DistributionRecord{}, nil
		}
		return domain.DistributionRecord{}, err
	}

	work, err := s.workRepo.FindWorkByID(ctx, userID, record.WorkID)
	workExists := err == nil
	if err != nil {
		var notFound *apperror.NotFoundError
		if !errors.As(err, &notFound) {
			return domain.DistributionRecord{}, err
		}
	}

	if updates.Quantity != nil && !workExists {
		// Registro órfão: sem a obra não há equação de estoque para
		// re-acertar, então a atualização inteira vira no-op.
		s.logger.Warn("Atualização de registro órfão ignorada.", map[string]interface{}{"record_id": id, "work_id": record.WorkID})
		return record, nil
	}

	var workUpdate *domain.Work
	if updates.Quantity != nil {
		newQty := floorQuantity(*updates.Quantity)
		if newQty <= 0 {
			return domain.DistributionRecord{}, apperror.NewValidationError("A quantidade de distribuição deve ser no mínimo 1.")
		}

		restored := work.CurrentStock + record.Quantity
		if newQty > restored {
			newQty = restored
		}
		newCurrent := restored - newQty
		if newCurrent < 0 {
			newCurrent = 0
		}

		record.Quantity = newQty
		work.CurrentStock = newCurrent
		work.UpdatedAt = time.Now().UTC()
		workUpdate = &work
	}

	if updates.EventName != nil {
		record.EventName = sanitizeOptionalText(*updates.EventName)
	}
	if updates.Memo != nil {
		record.Memo = sanitizeOptionalText(*updates.Memo)
	}
	if updates.DistributedAt != nil {
		record.DistributedAt = updates.DistributedAt.OrNow()
	}

	updated, err := s.distRepo.UpdateWithStock(ctx, record, workUpdate)
	if err != nil {
		s.logger.Error("Falha ao atualizar distribuição no repositório.", err)
		return domain.DistributionRecord{}, err
	}

	s.invalidateDashboard(ctx, userID)
	return updated, nil
}

// DeleteDistribution remove um registro e devolve a quantidade ao estoque da
// obra, se ela ainda existir (a exclusão é o inverso exato da criação). Obra
// ausente é tratada graciosamente: só o registro some.
func (s *Service) DeleteDistribution(ctx context.Context, userID, id string) error {
	s.logger.Debug("Iniciando exclusão de distribuição no serviço.", map[string]interface{}{"record_id": id})

	record, err := s.distRepo.FindByID(ctx, userID, id)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			// Referência obsoleta: exclusão de registro inexistente é no-op.
			s.logger.Warn("Exclusão de registro inexistente ignorada.", map[string]interface{}{"record_id": id})
			return nil
		}
		return err
	}

	var workUpdate *domain.Work
	work, err := s.workRepo.FindWorkByID(ctx, userID, record.WorkID)
	if err == nil {
		work.CurrentStock += record.Quantity
		work.UpdatedAt = time.Now().UTC()
		workUpdate = &work
	} else {
		var notFound *apperror.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	if err := s.distRepo.DeleteWithStock(ctx, userID, id, workUpdate); err != nil {
		s.logger.Error("Falha ao deletar distribuição no repositório.", err)
		return err
	}

	s.invalidateDashboard(ctx, userID)
	s.logger.Info("Registro de distribuição deletado com restauração de estoque.", map[string]interface{}{
		"record_id":      id,
		"restored_stock": record.Quantity,
		"work_found":     workUpdate != nil,
	})
	return nil
}

// --- Agregados do Dashboard ---

const dashboardCacheKey = "dashboard:%s"

// GetDashboard recalcula os agregados derivados do ledger sob demanda, com
// estratégia Cache-Aside no Redis (invalidado a cada mutação).
func (s *Service) GetDashboard(ctx context.Context, userID string) (domain.DashboardStats, error) {
	key := fmt.Sprintf(dashboardCacheKey, userID)

	var stats domain.DashboardStats
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if json.Unmarshal([]byte(cached), &stats) == nil {
			return stats, nil
		}
	} else if err != cache.ErrCacheMiss {
		s.logger.Warn("Falha ao ler cache do dashboard; recalculando.", map[string]interface{}{"error": err.Error()})
	}

	works, err := s.workRepo.FindAllWorks(ctx, userID)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	records, err := s.distRepo.FindAll(ctx, userID)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	stats = computeStats(works, records)

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
			s.logger.Warn("Falha ao gravar cache do dashboard.", map[string]interface{}{"error": err.Error()})
		}
	}

	return stats, nil
}

// computeStats deriva os agregados a partir das coleções. Obras sem preço
// contribuem zero para a receita (não são excluídas da soma).
func computeStats(works []domain.Work, records []domain.DistributionRecord) domain.DashboardStats {
	var stats domain.DashboardStats
	stats.TotalWorks = len(works)

	totalInitial := 0
	for _, w := range works {
		totalInitial += w.InitialStock
		stats.TotalCurrentStock += w.CurrentStock

		sold := w.SoldCount()
		price := 0.0
		if w.Price != nil {
			price = *w.Price
		}
		stats.EstimatedRevenue += float64(sold) * price
	}

	totalSold := totalInitial - stats.TotalCurrentStock
	if totalSold < 0 {
		totalSold = 0
	}
	stats.TotalSold = totalSold

	// Guarda contra divisão por zero: sem estoque inicial, a taxa é 0.
	if totalInitial > 0 {
		stats.SoldRatio = int(math.Round(float64(totalSold) / float64(totalInitial) * 100))
	}

	for _, r := range records {
		if stats.LastDistributedAt == nil || r.DistributedAt.After(*stats.LastDistributedAt) {
			t := r.DistributedAt
			stats.LastDistributedAt = &t
		}
	}

	return stats
}

// invalidateDashboard descarta o agregado em cache após qualquer mutação.
func (s *Service) invalidateDashboard(ctx context.Context, userID string) {
	key := fmt.Sprintf(dashboardCacheKey, userID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.Warn("Falha ao invalidar cache do dashboard.", map[string]interface{}{"error": err.Error()})
	}
}

// --- Snapshot (contrato de carga/descarga com a persistência externa) ---

// ExportSnapshot devolve as três coleções completas do usuário.
func (s *Service) ExportSnapshot(ctx context.Context, userID string) (domain.Snapshot, error) {
	works, err := s.workRepo.FindAllWorks(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	records, err := s.distRepo.FindAll(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	events, err := s.eventRepo.FindAllEvents(ctx, userID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	snap := domain.Snapshot{
		Works:               make([]domain.SnapshotWork, 0, len(works)),
		DistributionRecords: make([]domain.SnapshotDistribution, 0, len(records)),
		Events:              make([]domain.SnapshotEvent, 0, len(events)),
	}
	for _, w := range works {
		sw := domain.SnapshotWork{
			ID:           w.ID,
			Title:        w.Title,
			InitialStock: float64(w.InitialStock),
			CurrentStock: float64(w.CurrentStock),
			Price:        w.Price,
			CreatedAt:    domain.NewFlexTime(w.CreatedAt),
			UpdatedAt:    domain.NewFlexTime(w.UpdatedAt),
		}
		if w.Memo != nil {
			sw.Memo = *w.Memo
		}
		snap.Works = append(snap.Works, sw)
	}
	for _, r := range records {
		sr := domain.SnapshotDistribution{
			ID:            r.ID,
			WorkID:        r.WorkID,
			Quantity:      float64(r.Quantity),
			DistributedAt: domain.NewFlexTime(r.DistributedAt),
		}
		if r.EventName != nil {
			sr.EventName = *r.EventName
		}
		if r.Memo != nil {
			sr.Memo = *r.Memo
		}
		snap.DistributionRecords = append(snap.DistributionRecords, sr)
	}
	for _, e := range events {
		se := domain.SnapshotEvent{
			ID:        e.ID,
			Name:      e.Name,
			Date:      domain.NewFlexTime(e.Date),
			CreatedAt: domain.NewFlexTime(e.CreatedAt),
		}
		if e.Location != nil {
			se.Location = *e.Location
		}
		if e.Memo != nil {
			se.Memo = *e.Memo
		}
		snap.Events = append(snap.Events, se)
	}

	return snap, nil
}

// ImportSnapshot substitui atomicamente as coleções do usuário pelo conteúdo
// do snapshot, com coerção defensiva: timestamps malformados viram "agora",
// numéricos passam pelo mesmo saneamento do ledger, entradas irrecuperáveis
// (sem título, quantidade inválida, referência pendurada) são descartadas com
// aviso. O ledger nunca quebra por causa de entrada persistida corrompida.
func (s *Service) ImportSnapshot(ctx context.Context, userID string, snap domain.Snapshot) error {
	s.logger.Debug("Iniciando importação de snapshot no serviço.", map[string]interface{}{"user_id": userID})

	workIDs := make(map[string]bool)

	works := make([]domain.Work, 0, len(snap.Works))
	for _, sw := range snap.Works {
		title := strings.TrimSpace(sw.Title)
		if title == "" {
			s.logger.Warn("Obra do snapshot sem título descartada.", map[string]interface{}{"id": sw.ID})
			continue
		}
		id := sw.ID
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		work := domain.Work{
			ID:           id,
			UserID:       userID,
			Title:        title,
			InitialStock: sanitizeStock(sw.InitialStock),
			CurrentStock: sanitizeStock(sw.CurrentStock),
			Price:        sanitizePrice(sw.Price),
			Memo:         sanitizeOptionalText(sw.Memo),
			Version:      1,
			CreatedAt:    sw.CreatedAt.OrNow(),
			UpdatedAt:    sw.UpdatedAt.OrNow(),
		}
		works = append(works, work)
		workIDs[work.ID] = true
	}

	records := make([]domain.DistributionRecord, 0, len(snap.DistributionRecords))
	for _, sr := range snap.DistributionRecords {
		qty := floorQuantity(sr.Quantity)
		if qty <= 0 {
			s.logger.Warn("Registro do snapshot com quantidade inválida descartado.", map[string]interface{}{"id": sr.ID})
			continue
		}
		if !workIDs[sr.WorkID] {
			// Referência pendurada nunca pode ser criada.
			s.logger.Warn("Registro do snapshot com obra desconhecida descartado.", map[string]interface{}{"id": sr.ID, "work_id": sr.WorkID})
			continue
		}
		id := sr.ID
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		records = append(records, domain.DistributionRecord{
			ID:            id,
			UserID:        userID,
			WorkID:        sr.WorkID,
			Quantity:      qty,
			EventName:     sanitizeOptionalText(sr.EventName),
			Memo:          sanitizeOptionalText(sr.Memo),
			DistributedAt: sr.DistributedAt.OrNow(),
		})
	}

	events := make([]domain.Event, 0, len(snap.Events))
	for _, se := range snap.Events {
		name := strings.TrimSpace(se.Name)
		if name == "" {
			s.logger.Warn("Evento do snapshot sem nome descartado.", map[string]interface{}{"id": se.ID})
			continue
		}
		id := se.ID
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		events = append(events, domain.Event{
			ID:        id,
			UserID:    userID,
			Name:      name,
			Date:      se.Date.OrNow(),
			Location:  sanitizeOptionalText(se.Location),
			Memo:      sanitizeOptionalText(se.Memo),
			CreatedAt: se.CreatedAt.OrNow(),
		})
	}

	if err := s.distRepo.ReplaceAll(ctx, userID, works, records, events); err != nil {
		s.logger.Error("Falha ao importar snapshot no repositório.", err)
		return err
	}

	s.invalidateDashboard(ctx, userID)
	s.logger.Info("Snapshot importado.", map[string]interface{}{
		"works":   len(works),
		"records": len(records),
		"events":  len(events),
	})
	return nil
}

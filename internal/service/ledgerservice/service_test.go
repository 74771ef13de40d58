package ledgerservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"doukeeper/internal/domain"
	apperror "doukeeper/internal/errors"
	"doukeeper/internal/pkg/cache"
	"doukeeper/internal/pkg/logger"
	"doukeeper/internal/service/ledgerservice"
)

// MockWorkRepository é uma implementação mock da interface WorkRepository
type MockWorkRepository struct {
	mock.Mock
}

func (m *MockWorkRepository) CreateWork(ctx context.Context, work domain.Work) (domain.Work, error) {
	args := m.Called(ctx, work)
	return args.Get(0).(domain.Work), args.Error(1)
}

func (m *MockWorkRepository) FindWorkByID(ctx context.Context, userID, id string) (domain.Work, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(domain.Work), args.Error(1)
}

func (m *MockWorkRepository) FindAllWorks(ctx context.Context, userID string) ([]domain.Work, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Work), args.Error(1)
}

func (m *MockWorkRepository) UpdateWork(ctx context.Context, work domain.Work) (domain.Work, error) {
	args := m.Called(ctx, work)
	return args.Get(0).(domain.Work), args.Error(1)
}

func (m *MockWorkRepository) DeleteWork(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// MockDistributionRepository é uma implementação mock da interface DistributionRepository
type MockDistributionRepository struct {
	mock.Mock
}

func (m *MockDistributionRepository) SaveWithStock(ctx context.Context, record domain.DistributionRecord, work domain.Work) (domain.DistributionRecord, error) {
	args := m.Called(ctx, record, work)
	return args.Get(0).(domain.DistributionRecord), args.Error(1)
}

func (m *MockDistributionRepository) FindByID(ctx context.Context, userID, id string) (domain.DistributionRecord, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(domain.DistributionRecord), args.Error(1)
}

func (m *MockDistributionRepository) FindAll(ctx context.Context, userID string) ([]domain.DistributionRecord, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.DistributionRecord), args.Error(1)
}

func (m *MockDistributionRepository) UpdateWithStock(ctx context.Context, record domain.DistributionRecord, work *domain.Work) (domain.DistributionRecord, error) {
	args := m.Called(ctx, record, work)
	return args.Get(0).(domain.DistributionRecord), args.Error(1)
}

func (m *MockDistributionRepository) DeleteWithStock(ctx context.Context, userID, id string, work *domain.Work) error {
	args := m.Called(ctx, userID, id, work)
	return args.Error(0)
}

func (m *MockDistributionRepository) ReplaceAll(ctx context.Context, userID string, works []domain.Work, records []domain.DistributionRecord, events []domain.Event) error {
	args := m.Called(ctx, userID, works, records, events)
	return args.Error(0)
}

// MockEventResolver é uma implementação mock da interface EventResolver
type MockEventResolver struct {
	mock.Mock
}

func (m *MockEventResolver) FindEventByID(ctx context.Context, userID, id string) (domain.Event, error) {
	args := m.Called(ctx, userID, id)
	return args.Get(0).(domain.Event), args.Error(1)
}

func (m *MockEventResolver) FindAllEvents(ctx context.Context, userID string) ([]domain.Event, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Event), args.Error(1)
}

// MockCacheClient é uma implementação mock da interface cache.Client
type MockCacheClient struct {
	mock.Mock
}

func (m *MockCacheClient) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheClient) GetInt(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}

func (m *MockCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheClient) Incr(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheClient) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func newTestService(workRepo *MockWorkRepository, distRepo *MockDistributionRepository, eventRepo *MockEventResolver, cacheClient *MockCacheClient) *ledgerservice.Service {
	mockLogger := logger.NewLogger("fatal")
	return ledgerservice.NewService(workRepo, distRepo, eventRepo, cacheClient, time.Minute, mockLogger)
}

const testUserID = "b3b2a1f0-0000-4000-8000-000000000001"

// --- Obras ---

// TestCreateWork_Success testa a criação de uma obra com payload válido.
func TestCreateWork_Success(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	eventRepo := new(MockEventResolver)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, eventRepo, cacheMock)

	price := 500.0
	input := domain.WorkInput{Title: "  Comic Vol.1  ", InitialStock: 10, Price: &price, Memo: "primeira tiragem"}

	workRepo.On("CreateWork", mock.Anything, mock.MatchedBy(func(w domain.Work) bool {
		return w.Title == "Comic Vol.1" &&
			w.InitialStock == 10 &&
			w.CurrentStock == 10 &&
			w.Price != nil && *w.Price == 500.0 &&
			w.Memo != nil && *w.Memo == "primeira tiragem" &&
			w.UserID == testUserID &&
			w.Version == 1
	})).Return(domain.Work{ID: uuid.NewString(), Title: "Comic Vol.1", InitialStock: 10, CurrentStock: 10}, nil)
	cacheMock.On("Delete", mock.Anything, "dashboard:"+testUserID).Return(nil)

	created, err := svc.CreateWork(context.Background(), testUserID, input)

	assert.NoError(t, err)
	assert.Equal(t, "Comic Vol.1", created.Title)
	assert.Equal(t, 10, created.CurrentStock)
	workRepo.AssertExpectations(t)
}

// TestCreateWork_Fail_EmptyTitle testa a rejeição dura de título vazio.
func TestCreateWork_Fail_EmptyTitle(t *testing.T) {
	workRepo := new(MockWorkRepository)
	svc := newTestService(workRepo, new(MockDistributionRepository), new(MockEventResolver), new(MockCacheClient))

	_, err := svc.CreateWork(context.Background(), testUserID, domain.WorkInput{Title: "   "})

	assert.Error(t, err)
	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	workRepo.AssertNotCalled(t, "CreateWork")
}

// TestCreateWork_Success_SanitizesStock testa a coerção silenciosa de
// estoques inválidos: negativo vira 0, fracionário é truncado.
func TestCreateWork_Success_SanitizesStock(t *testing.T) {
	cases := []struct {
		name     string
		input    float64
		expected int
	}{
		{"negativo vira zero", -5, 0},
		{"fracionário é truncado", 3.7, 3},
		{"zero permanece zero", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			workRepo := new(MockWorkRepository)
			cacheMock := new(MockCacheClient)
			svc := newTestService(workRepo, new(MockDistributionRepository), new(MockEventResolver), cacheMock)

			workRepo.On("CreateWork", mock.Anything, mock.MatchedBy(func(w domain.Work) bool {
				return w.InitialStock == tc.expected && w.CurrentStock == tc.expected
			})).Return(domain.Work{InitialStock: tc.expected, CurrentStock: tc.expected}, nil)
			cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

			_, err := svc.CreateWork(context.Background(), testUserID, domain.WorkInput{Title: "Obra", InitialStock: tc.input})

			assert.NoError(t, err)
			workRepo.AssertExpectations(t)
		})
	}
}

// TestCreateWork_Success_DropsInvalidPrice testa que preço negativo é
// descartado em vez de rejeitar a criação.
func TestCreateWork_Success_DropsInvalidPrice(t *testing.T) {
	workRepo := new(MockWorkRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, new(MockDistributionRepository), new(MockEventResolver), cacheMock)

	badPrice := -100.0
	workRepo.On("CreateWork", mock.Anything, mock.MatchedBy(func(w domain.Work) bool {
		return w.Price == nil
	})).Return(domain.Work{}, nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CreateWork(context.Background(), testUserID, domain.WorkInput{Title: "Obra", InitialStock: 5, Price: &badPrice})

	assert.NoError(t, err)
	workRepo.AssertExpectations(t)
}

// TestUpdateWork_Fail_EmptyTitle testa que a atualização re-aplica a mesma
// validação de título da criação.
func TestUpdateWork_Fail_EmptyTitle(t *testing.T) {
	workRepo := new(MockWorkRepository)
	svc := newTestService(workRepo, new(MockDistributionRepository), new(MockEventResolver), new(MockCacheClient))

	workID := uuid.NewString()
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, Title: "Antiga"}, nil)

	empty := "  "
	_, err := svc.UpdateWork(context.Background(), testUserID, workID, domain.WorkUpdate{Title: &empty})

	assert.Error(t, err)
	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	workRepo.AssertNotCalled(t, "UpdateWork")
}

// TestDeleteWork_Success testa a exclusão em cascata (sem restauração de estoque).
func TestDeleteWork_Success(t *testing.T) {
	workRepo := new(MockWorkRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, new(MockDistributionRepository), new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	workRepo.On("DeleteWork", mock.Anything, testUserID, workID).Return(nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	err := svc.DeleteWork(context.Background(), testUserID, workID)

	assert.NoError(t, err)
	workRepo.AssertExpectations(t)
}

// TestDeleteWork_Success_MissingIsNoOp testa que excluir uma obra já
// inexistente não propaga erro.
func TestDeleteWork_Success_MissingIsNoOp(t *testing.T) {
	workRepo := new(MockWorkRepository)
	svc := newTestService(workRepo, new(MockDistributionRepository), new(MockEventResolver), new(MockCacheClient))

	workID := uuid.NewString()
	workRepo.On("DeleteWork", mock.Anything, testUserID, workID).
		Return(apperror.NewNotFoundError("Obra não encontrada."))

	err := svc.DeleteWork(context.Background(), testUserID, workID)

	assert.NoError(t, err)
}

// --- Reposição ---

// TestRestock_Success testa que a reposição incrementa InitialStock e
// CurrentStock juntos (marca d'água).
func TestRestock_Success(t *testing.T) {
	workRepo := new(MockWorkRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, new(MockDistributionRepository), new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, UserID: testUserID, Title: "Obra", InitialStock: 10, CurrentStock: 2, Version: 3}, nil)
	workRepo.On("UpdateWork", mock.Anything, mock.MatchedBy(func(w domain.Work) bool {
		return w.InitialStock == 15 && w.CurrentStock == 7 && w.Version == 3
	})).Return(domain.Work{}, nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.Restock(context.Background(), testUserID, workID, domain.RestockInput{Quantity: 5})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 5, result.RegisteredQuantity)
	workRepo.AssertExpectations(t)
}

// TestRestock_Fail_InvalidQuantity testa quantidade <= 0 na reposição.
func TestRestock_Fail_InvalidQuantity(t *testing.T) {
	workRepo := new(MockWorkRepository)
	svc := newTestService(workRepo, new(MockDistributionRepository), new(MockEventResolver), new(MockCacheClient))

	result, err := svc.Restock(context.Background(), testUserID, uuid.NewString(), domain.RestockInput{Quantity: 0})

	assert.NoError(t, err)
	assert.False(t, result.Success)
	workRepo.AssertNotCalled(t, "FindWorkByID")
}

// --- Registro de distribuição ---

// TestRegisterDistribution_Success_FullFulfillment testa o caminho feliz:
// estoque 10, pedido 3, estoque final 7.
func TestRegisterDistribution_Success_FullFulfillment(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, UserID: testUserID, InitialStock: 10, CurrentStock: 10}, nil)
	distRepo.On("SaveWithStock", mock.Anything,
		mock.MatchedBy(func(r domain.DistributionRecord) bool {
			return r.Quantity == 3 && r.WorkID == workID && r.UserID == testUserID
		}),
		mock.MatchedBy(func(w domain.Work) bool {
			return w.CurrentStock == 7 && w.InitialStock == 10
		}),
	).Return(domain.DistributionRecord{Quantity: 3}, nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.RegisterDistribution(context.Background(), testUserID, domain.DistributionInput{WorkID: workID, Quantity: 3})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Message)
	assert.Equal(t, 3, result.RegisteredQuantity)
	distRepo.AssertExpectations(t)
}

// TestRegisterDistribution_Success_PartialClamp testa o atendimento parcial:
// estoque 5, pedido 8, registra 5, estoque final 0, mensagem informativa.
func TestRegisterDistribution_Success_PartialClamp(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, UserID: testUserID, InitialStock: 5, CurrentStock: 5}, nil)
	distRepo.On("SaveWithStock", mock.Anything,
		mock.MatchedBy(func(r domain.DistributionRecord) bool { return r.Quantity == 5 }),
		mock.MatchedBy(func(w domain.Work) bool { return w.CurrentStock == 0 }),
	).Return(domain.DistributionRecord{Quantity: 5}, nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	result, err := svc.RegisterDistribution(context.Background(), testUserID, domain.DistributionInput{WorkID: workID, Quantity: 8})

	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Message)
	assert.Equal(t, 5, result.RegisteredQuantity)
	distRepo.AssertExpectations(t)
}

// TestRegisterDistribution_Fail_OutOfStock testa a recusa com estoque zerado.
func TestRegisterDistribution_Fail_OutOfStock(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), new(MockCacheClient))

	workID := uuid.NewString()
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, InitialStock: 10, CurrentStock: 0}, nil)

	result, err := svc.RegisterDistribution(context.Background(), testUserID, domain.DistributionInput{WorkID: workID, Quantity: 1})

	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.RegisteredQuantity)
	distRepo.AssertNotCalled(t, "SaveWithStock")
}

// TestRegisterDistribution_Fail_WorkNotFound testa o registro contra obra
// inexistente: resultado sem sucesso, não erro.
func TestRegisterDistribution_Fail_WorkNotFound(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), new(MockCacheClient))

	workID := uuid.NewString()
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{}, apperror.NewNotFoundError("Obra não encontrada."))

	result, err := svc.RegisterDistribution(context.Background(), testUserID, domain.DistributionInput{WorkID: workID, Quantity: 1})

	assert.NoError(t, err)
	assert.False(t, result.Success)
	distRepo.AssertNotCalled(t, "SaveWithStock")
}

// TestRegisterDistribution_Success_EventSnapshot testa o snapshot
// desnormalizado do nome do evento no momento do registro.
func TestRegisterDistribution_Success_EventSnapshot(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	eventRepo := new(MockEventResolver)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, eventRepo, cacheMock)

	workID := uuid.NewString()
	eventID := uuid.NewString()
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, UserID: testUserID, InitialStock: 10, CurrentStock: 10}, nil)
	eventRepo.On("FindEventByID", mock.Anything, testUserID, eventID).
		Return(domain.Event{ID: eventID, Name: "Comiket 99"}, nil)
	distRepo.On("SaveWithStock", mock.Anything,
		mock.MatchedBy(func(r domain.DistributionRecord) bool {
			return r.EventName != nil && *r.EventName == "Comiket 99"
		}),
		mock.Anything,
	).Return(domain.DistributionRecord{}, nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.RegisterDistribution(context.Background(), testUserID, domain.DistributionInput{WorkID: workID, Quantity: 2, EventID: eventID})

	assert.NoError(t, err)
	distRepo.AssertExpectations(t)
	eventRepo.AssertExpectations(t)
}

// --- Atualização de registro (re-acerto em duas fases) ---

// TestUpdateDistribution_Success_Resettle testa o re-acerto: estoque 7,
// registro de 3, nova quantidade 5 -> restaurado 10, estoque final 5.
func TestUpdateDistribution_Success_Resettle(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	recordID := uuid.NewString()
	distRepo.On("FindByID", mock.Anything, testUserID, recordID).
		Return(domain.DistributionRecord{ID: recordID, UserID: testUserID, WorkID: workID, Quantity: 3}, nil)
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, UserID: testUserID, InitialStock: 10, CurrentStock: 7}, nil)
	distRepo.On("UpdateWithStock", mock.Anything,
		mock.MatchedBy(func(r domain.DistributionRecord) bool { return r.Quantity == 5 }),
		mock.MatchedBy(func(w *domain.Work) bool { return w != nil && w.CurrentStock == 5 }),
	).Return(domain.DistributionRecord{Quantity: 5}, nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	newQty := 5.0
	updated, err := svc.UpdateDistribution(context.Background(), testUserID, recordID, domain.DistributionUpdate{Quantity: &newQty})

	assert.NoError(t, err)
	assert.Equal(t, 5, updated.Quantity)
	distRepo.AssertExpectations(t)
}

// TestUpdateDistribution_Success_ClampAgainstRestored testa que a nova
// quantidade é limitada pelo estoque restaurado (dados vivos).
func TestUpdateDistribution_Success_ClampAgainstRestored(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	recordID := uuid.NewString()
	distRepo.On("FindByID", mock.Anything, testUserID, recordID).
		Return(domain.DistributionRecord{ID: recordID, WorkID: workID, Quantity: 4}, nil)
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, InitialStock: 10, CurrentStock: 6}, nil)
	// restaurado = 6 + 4 = 10; pedido 15 -> clamp em 10; estoque final 0
	distRepo.On("UpdateWithStock", mock.Anything,
		mock.MatchedBy(func(r domain.DistributionRecord) bool { return r.Quantity == 10 }),
		mock.MatchedBy(func(w *domain.Work) bool { return w != nil && w.CurrentStock == 0 }),
	).Return(domain.DistributionRecord{Quantity: 10}, nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	newQty := 15.0
	updated, err := svc.UpdateDistribution(context.Background(), testUserID, recordID, domain.DistributionUpdate{Quantity: &newQty})

	assert.NoError(t, err)
	assert.Equal(t, 10, updated.Quantity)
	distRepo.AssertExpectations(t)
}

// TestUpdateDistribution_NoOp_OrphanRecord testa que mudar a quantidade de
// um registro órfão (obra excluída) é no-op.
func TestUpdateDistribution_NoOp_OrphanRecord(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), new(MockCacheClient))

	workID := uuid.NewString()
	recordID := uuid.NewString()
	distRepo.On("FindByID", mock.Anything, testUserID, recordID).
		Return(domain.DistributionRecord{ID: recordID, WorkID: workID, Quantity: 2}, nil)
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{}, apperror.NewNotFoundError("Obra não encontrada."))

	newQty := 9.0
	updated, err := svc.UpdateDistribution(context.Background(), testUserID, recordID, domain.DistributionUpdate{Quantity: &newQty})

	assert.NoError(t, err)
	assert.Equal(t, 2, updated.Quantity) // quantidade original preservada
	distRepo.AssertNotCalled(t, "UpdateWithStock")
}

// TestUpdateDistribution_NoOp_MissingRecord testa que atualizar um registro
// inexistente é no-op silencioso, não erro.
func TestUpdateDistribution_NoOp_MissingRecord(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), new(MockCacheClient))

	recordID := uuid.NewString()
	distRepo.On("FindByID", mock.Anything, testUserID, recordID).
		Return(domain.DistributionRecord{}, apperror.NewNotFoundError("Registro não encontrado."))

	newQty := 4.0
	_, err := svc.UpdateDistribution(context.Background(), testUserID, recordID, domain.DistributionUpdate{Quantity: &newQty})

	assert.NoError(t, err)
	distRepo.AssertNotCalled(t, "UpdateWithStock")
	workRepo.AssertNotCalled(t, "FindWorkByID")
}

// TestUpdateDistribution_Success_MetadataOnly testa que atualizar só memo e
// nome de evento não toca no estoque da obra.
func TestUpdateDistribution_Success_MetadataOnly(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	recordID := uuid.NewString()
	distRepo.On("FindByID", mock.Anything, testUserID, recordID).
		Return(domain.DistributionRecord{ID: recordID, WorkID: workID, Quantity: 2}, nil)
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, CurrentStock: 8}, nil)
	distRepo.On("UpdateWithStock", mock.Anything,
		mock.MatchedBy(func(r domain.DistributionRecord) bool {
			return r.Quantity == 2 && r.Memo != nil && *r.Memo == "anotação"
		}),
		mock.MatchedBy(func(w *domain.Work) bool { return w == nil }),
	).Return(domain.DistributionRecord{}, nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	memo := "  anotação  "
	_, err := svc.UpdateDistribution(context.Background(), testUserID, recordID, domain.DistributionUpdate{Memo: &memo})

	assert.NoError(t, err)
	distRepo.AssertExpectations(t)
}

// --- Exclusão de registro ---

// TestDeleteDistribution_Success_RestoresStock testa a restauração de
// estoque na exclusão (inverso exato da criação).
func TestDeleteDistribution_Success_RestoresStock(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	recordID := uuid.NewString()
	distRepo.On("FindByID", mock.Anything, testUserID, recordID).
		Return(domain.DistributionRecord{ID: recordID, WorkID: workID, Quantity: 3}, nil)
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{ID: workID, InitialStock: 10, CurrentStock: 7}, nil)
	distRepo.On("DeleteWithStock", mock.Anything, testUserID, recordID,
		mock.MatchedBy(func(w *domain.Work) bool { return w != nil && w.CurrentStock == 10 }),
	).Return(nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	err := svc.DeleteDistribution(context.Background(), testUserID, recordID)

	assert.NoError(t, err)
	distRepo.AssertExpectations(t)
}

// TestDeleteDistribution_Success_WorkMissing testa a exclusão graciosa de
// registro órfão: só o registro some, sem restauração.
func TestDeleteDistribution_Success_WorkMissing(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	workID := uuid.NewString()
	recordID := uuid.NewString()
	distRepo.On("FindByID", mock.Anything, testUserID, recordID).
		Return(domain.DistributionRecord{ID: recordID, WorkID: workID, Quantity: 3}, nil)
	workRepo.On("FindWorkByID", mock.Anything, testUserID, workID).
		Return(domain.Work{}, apperror.NewNotFoundError("Obra não encontrada."))
	distRepo.On("DeleteWithStock", mock.Anything, testUserID, recordID,
		mock.MatchedBy(func(w *domain.Work) bool { return w == nil }),
	).Return(nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	err := svc.DeleteDistribution(context.Background(), testUserID, recordID)

	assert.NoError(t, err)
	distRepo.AssertExpectations(t)
}

// TestDeleteDistribution_Success_MissingIsNoOp testa exclusão de registro
// inexistente como no-op silencioso.
func TestDeleteDistribution_Success_MissingIsNoOp(t *testing.T) {
	distRepo := new(MockDistributionRepository)
	svc := newTestService(new(MockWorkRepository), distRepo, new(MockEventResolver), new(MockCacheClient))

	recordID := uuid.NewString()
	distRepo.On("FindByID", mock.Anything, testUserID, recordID).
		Return(domain.DistributionRecord{}, apperror.NewNotFoundError("Registro não encontrado."))

	err := svc.DeleteDistribution(context.Background(), testUserID, recordID)

	assert.NoError(t, err)
	distRepo.AssertNotCalled(t, "DeleteWithStock")
}

// --- Dashboard ---

// TestGetDashboard_Success_Aggregates testa o cálculo dos agregados
// derivados a partir das coleções.
func TestGetDashboard_Success_Aggregates(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	price := 500.0
	works := []domain.Work{
		{InitialStock: 10, CurrentStock: 7, Price: &price}, // 3 vendidos, 1500 de receita
		{InitialStock: 10, CurrentStock: 10},               // sem preço, sem vendas
	}
	last := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	records := []domain.DistributionRecord{
		{Quantity: 1, DistributedAt: last.Add(-24 * time.Hour)},
		{Quantity: 2, DistributedAt: last},
	}

	cacheMock.On("Get", mock.Anything, "dashboard:"+testUserID).Return("", cache.ErrCacheMiss)
	workRepo.On("FindAllWorks", mock.Anything, testUserID).Return(works, nil)
	distRepo.On("FindAll", mock.Anything, testUserID).Return(records, nil)
	cacheMock.On("Set", mock.Anything, "dashboard:"+testUserID, mock.Anything, time.Minute).Return(nil)

	stats, err := svc.GetDashboard(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 2, stats.TotalWorks)
	assert.Equal(t, 17, stats.TotalCurrentStock)
	assert.Equal(t, 3, stats.TotalSold)
	assert.Equal(t, 15, stats.SoldRatio) // 3/20 = 15%
	assert.Equal(t, 1500.0, stats.EstimatedRevenue)
	assert.NotNil(t, stats.LastDistributedAt)
	assert.Equal(t, last, *stats.LastDistributedAt)
}

// TestGetDashboard_Success_EmptyLedger testa a guarda contra divisão por
// zero quando não há estoque inicial.
func TestGetDashboard_Success_EmptyLedger(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	cacheMock.On("Get", mock.Anything, mock.Anything).Return("", cache.ErrCacheMiss)
	workRepo.On("FindAllWorks", mock.Anything, testUserID).Return([]domain.Work{}, nil)
	distRepo.On("FindAll", mock.Anything, testUserID).Return([]domain.DistributionRecord{}, nil)
	cacheMock.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	stats, err := svc.GetDashboard(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 0, stats.SoldRatio)
	assert.Equal(t, 0.0, stats.EstimatedRevenue)
	assert.Nil(t, stats.LastDistributedAt)
}

// TestGetDashboard_Success_CacheHit testa que o cache evita o recálculo.
func TestGetDashboard_Success_CacheHit(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	cacheMock.On("Get", mock.Anything, "dashboard:"+testUserID).
		Return(`{"total_works":4,"total_current_stock":20,"total_sold":5,"estimated_revenue":2500,"sold_ratio":20}`, nil)

	stats, err := svc.GetDashboard(context.Background(), testUserID)

	assert.NoError(t, err)
	assert.Equal(t, 4, stats.TotalWorks)
	assert.Equal(t, 20, stats.SoldRatio)
	workRepo.AssertNotCalled(t, "FindAllWorks")
	distRepo.AssertNotCalled(t, "FindAll")
}

// --- Snapshot ---

// TestImportSnapshot_Success_Sanitizes testa a importação defensiva:
// timestamps inválidos viram "agora", registros pendurados e obras sem
// título são descartados.
func TestImportSnapshot_Success_Sanitizes(t *testing.T) {
	workRepo := new(MockWorkRepository)
	distRepo := new(MockDistributionRepository)
	cacheMock := new(MockCacheClient)
	svc := newTestService(workRepo, distRepo, new(MockEventResolver), cacheMock)

	goodWorkID := uuid.NewString()
	snap := domain.Snapshot{
		Works: []domain.SnapshotWork{
			{ID: goodWorkID, Title: "Obra Válida", InitialStock: 10, CurrentStock: -2},
			{ID: uuid.NewString(), Title: "   "}, // descartada
		},
		DistributionRecords: []domain.SnapshotDistribution{
			{ID: uuid.NewString(), WorkID: goodWorkID, Quantity: 2.9},
			{ID: uuid.NewString(), WorkID: "obra-inexistente", Quantity: 1}, // pendurado
			{ID: uuid.NewString(), WorkID: goodWorkID, Quantity: 0},         // inválido
		},
		Events: []domain.SnapshotEvent{
			{ID: uuid.NewString(), Name: "Evento A"},
		},
	}

	distRepo.On("ReplaceAll", mock.Anything, testUserID,
		mock.MatchedBy(func(works []domain.Work) bool {
			return len(works) == 1 && works[0].Title == "Obra Válida" &&
				works[0].CurrentStock == 0 && !works[0].CreatedAt.IsZero()
		}),
		mock.MatchedBy(func(records []domain.DistributionRecord) bool {
			return len(records) == 1 && records[0].Quantity == 2 && !records[0].DistributedAt.IsZero()
		}),
		mock.MatchedBy(func(events []domain.Event) bool {
			return len(events) == 1 && !events[0].Date.IsZero()
		}),
	).Return(nil)
	cacheMock.On("Delete", mock.Anything, mock.Anything).Return(nil)

	err := svc.ImportSnapshot(context.Background(), testUserID, snap)

	assert.NoError(t, err)
	distRepo.AssertExpectations(t)
}

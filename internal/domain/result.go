package domain

import "time"

// LedgerResult é o resultado estruturado das operações que suportam
// atendimento parcial (registrar distribuição e repor estoque).
// Atendimento parcial é uma variante de SUCESSO com mensagem informativa,
// não um erro: Success fica true e RegisteredQuantity carrega o valor
// efetivamente aplicado (que pode ser menor do que o pedido).
type LedgerResult struct {
	Success            bool   `json:"success"`
	Message            string `json:"message,omitempty"`
	RegisteredQuantity int    `json:"registered_quantity,omitempty"`
}

// DashboardStats são os agregados derivados do ledger, recalculados sob
// demanda (nunca armazenados como estado).
type DashboardStats struct {
	TotalWorks        int        `json:"total_works"`
	TotalCurrentStock int        `json:"total_current_stock"`
	TotalSold         int        `json:"total_sold"`
	EstimatedRevenue  float64    `json:"estimated_revenue"`
	SoldRatio         int        `json:"sold_ratio"` // Percentual inteiro, 0 se não há estoque inicial
	LastDistributedAt *time.Time `json:"last_distributed_at,omitempty"`
}

// Snapshot é o contrato de carga/descarga com o colaborador de persistência:
// as três coleções completas de um usuário. Na importação todos os campos de
// timestamp passam por coerção defensiva (FlexTime).
type Snapshot struct {
	Works               []SnapshotWork         `json:"works"`
	DistributionRecords []SnapshotDistribution `json:"distribution_records"`
	Events              []SnapshotEvent        `json:"events"`
}

// SnapshotWork é a forma tolerante de Work usada no snapshot.
type SnapshotWork struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	InitialStock float64  `json:"initial_stock"`
	CurrentStock float64  `json:"current_stock"`
	Price        *float64 `json:"price,omitempty"`
	Memo         string   `json:"memo,omitempty"`
	CreatedAt    FlexTime `json:"created_at,omitempty"`
	UpdatedAt    FlexTime `json:"updated_at,omitempty"`
}

// SnapshotDistribution é a forma tolerante de DistributionRecord.
type SnapshotDistribution struct {
	ID            string   `json:"id"`
	WorkID        string   `json:"work_id"`
	Quantity      float64  `json:"quantity"`
	EventName     string   `json:"event_name,omitempty"`
	Memo          string   `json:"memo,omitempty"`
	DistributedAt FlexTime `json:"distributed_at,omitempty"`
}

// SnapshotEvent é a forma tolerante de Event.
type SnapshotEvent struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Date      FlexTime `json:"date,omitempty"`
	Location  string   `json:"location,omitempty"`
	Memo      string   `json:"memo,omitempty"`
	CreatedAt FlexTime `json:"created_at,omitempty"`
}

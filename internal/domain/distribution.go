package domain

import "time"

// DistributionRecord representa uma entrada do log de distribuição (venda ou
// doação) de uma obra. EventName é um snapshot desnormalizado do nome do
// evento no momento do registro: renomear ou apagar o Evento depois não
// altera registros históricos.
type DistributionRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	WorkID        string    `json:"work_id"`
	Quantity      int       `json:"quantity"` // Sempre > 0 após o clamp
	EventName     *string   `json:"event_name,omitempty"`
	Memo          *string   `json:"memo,omitempty"`
	DistributedAt time.Time `json:"distributed_at"`
}

// DistributionInput é o payload para registrar uma distribuição.
// A quantidade chega como float64 e é truncada; EventID é opcional e, se
// resolver para um evento do usuário, vira snapshot de nome.
type DistributionInput struct {
	WorkID        string   `json:"work_id"`
	Quantity      float64  `json:"quantity"`
	EventID       string   `json:"event_id,omitempty"`
	Memo          string   `json:"memo,omitempty"`
	DistributedAt FlexTime `json:"distributed_at,omitempty"`
}

// DistributionUpdate é o payload de atualização parcial de um registro.
// Mudança de quantidade exige re-acerto da equação de estoque contra o
// estoque vivo da obra (desfaz o efeito antigo, aplica o novo com clamp).
type DistributionUpdate struct {
	Quantity      *float64  `json:"quantity,omitempty"`
	EventName     *string   `json:"event_name,omitempty"`
	Memo          *string   `json:"memo,omitempty"`
	DistributedAt *FlexTime `json:"distributed_at,omitempty"`
}

// RestockInput é o payload para repor estoque de uma obra.
type RestockInput struct {
	Quantity float64 `json:"quantity"`
}

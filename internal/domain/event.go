package domain

import "time"

// Event representa um evento de venda (e.g., uma feira ou convenção).
// Registros de distribuição referenciam eventos apenas por snapshot de nome,
// então apagar um Evento não tem cascata.
type Event struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Location  *string   `json:"location,omitempty"`
	Memo      *string   `json:"memo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventInput é o payload de criação de evento. Date inválida ou ausente é
// coagida para o instante atual (política permissiva, não erro).
type EventInput struct {
	Name     string   `json:"name"`
	Date     FlexTime `json:"date,omitempty"`
	Location string   `json:"location,omitempty"`
	Memo     string   `json:"memo,omitempty"`
}

// EventUpdate é o payload de atualização parcial de evento.
type EventUpdate struct {
	Name     *string   `json:"name,omitempty"`
	Date     *FlexTime `json:"date,omitempty"`
	Location *string   `json:"location,omitempty"`
	Memo     *string   `json:"memo,omitempty"`
}

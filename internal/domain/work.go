package domain

import (
	"time"
)

// Work representa uma obra de tiragem limitada (a Entidade principal do ledger).
// InitialStock é a marca d'água do estoque total já provisionado: a reposição
// (restock) aumenta InitialStock e CurrentStock juntos.
type Work struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	InitialStock int        `json:"initial_stock"` // Estoque total provisionado (marca d'água)
	CurrentStock int        `json:"current_stock"` // Nunca pode ficar negativo
	Price        *float64   `json:"price,omitempty"` // Preço unitário (opcional; ausência exclui da receita)
	Memo         *string    `json:"memo,omitempty"`
	Version      int        `json:"version"` // Para Controle de Concorrência Otimista (OCC)
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SoldCount calcula a quantidade distribuída derivada dos contadores.
// Invariante do ledger: CurrentStock == InitialStock - soma das quantidades
// dos registros de distribuição vivos.
func (w Work) SoldCount() int {
	sold := w.InitialStock - w.CurrentStock
	if sold < 0 {
		return 0
	}
	return sold
}

// WorkInput é o payload de criação de uma obra. O estoque chega como float64
// e é saneado pelo serviço (não-finito/negativo vira 0, fracionário é truncado).
type WorkInput struct {
	Title        string   `json:"title"`
	InitialStock float64  `json:"initial_stock"`
	Price        *float64 `json:"price,omitempty"`
	Memo         string   `json:"memo,omitempty"`
}

// WorkUpdate é o payload de atualização parcial: campos nil não são tocados.
// Cada campo presente é re-saneado com as mesmas regras da criação.
type WorkUpdate struct {
	Title        *string  `json:"title,omitempty"`
	InitialStock *float64 `json:"initial_stock,omitempty"`
	CurrentStock *float64 `json:"current_stock,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Memo         *string  `json:"memo,omitempty"`
}

package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexTime é um time.Time com desserialização JSON tolerante. Snapshots
// persistidos podem chegar com timestamps em formatos variados (string
// RFC3339, data simples, epoch numérico) ou simplesmente corrompidos; o
// ledger nunca pode quebrar por causa disso. Valores não interpretáveis
// resultam em tempo zero, que as camadas de serviço coagem para "agora".
type FlexTime struct {
	time.Time
}

// Layouts aceitos na ordem de tentativa.
var flexLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NewFlexTime embrulha um time.Time em FlexTime.
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{Time: t}
}

// UnmarshalJSON nunca retorna erro: entrada malformada vira tempo zero.
func (ft *FlexTime) UnmarshalJSON(data []byte) error {
	ft.Time = time.Time{}

	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}

	// Epoch numérico (segundos ou milissegundos)
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if n > 1e12 {
			ft.Time = time.UnixMilli(n).UTC()
		} else if n > 0 {
			ft.Time = time.Unix(n, 0).UTC()
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range flexLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ft.Time = t
			return nil
		}
	}

	return nil
}

// MarshalJSON serializa como RFC3339 padrão.
func (ft FlexTime) MarshalJSON() ([]byte, error) {
	if ft.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ft.Time.Format(time.RFC3339Nano))
}

// OrNow devolve o tempo embrulhado, ou o instante atual se ele for zero.
func (ft FlexTime) OrNow() time.Time {
	if ft.Time.IsZero() {
		return time.Now().UTC()
	}
	return ft.Time
}

package archive

import (
	"time"

	"github.com/google/uuid"
)

// Record is an archived report with its export address, if any.
type Record struct {
	ItemID      uuid.UUID  `json:"item_id"`
	Name        string     `json:"name"`
	Report      string     `json:"report"`
	GeneratedAt time.Time  `json:"generated_at"`
	Address     *string    `json:"address,omitempty"`
	ExportedAt  *time.Time `json:"exported_at,omitempty"`
}

type kind int

const (
	kindReport kind = iota
	kindExport
)

func (k kind) String() string {
	if k == kindExport {
		return "export"
	}
	return "report"
}

type entry struct {
	kind   kind
	itemID uuid.UUID
	name   string
	body   string
	at     time.Time
}

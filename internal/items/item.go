// Package items tracks submitted documents through report generation and
// export. The registry is the single source of truth for item state.
package items

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var namespace = uuid.MustParse("6f1c7a52-2d0e-4c59-9a37-5b8e0f4d6a11")

// Item is one submitted document and its pipeline state.
type Item struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	ModTime    time.Time  `json:"mod_time"`
	Size       int64      `json:"size"`
	AddedAt    time.Time  `json:"added_at"`
	Generation Generation `json:"generation"`
	Export     Export     `json:"export"`
	Source     Source     `json:"-"`
}

// Change mutates a working copy of an item inside Registry.Update.
type Change func(*Item)

// SetGeneration replaces the generation state.
func SetGeneration(g Generation) Change {
	return func(it *Item) { it.Generation = g }
}

// SetExport replaces the export state.
func SetExport(e Export) Change {
	return func(it *Item) { it.Export = e }
}

func identity(name string, modTime time.Time, seq uint64) uuid.UUID {
	key := fmt.Sprintf("%s\x00%d\x00%d", name, modTime.UnixNano(), seq)
	return uuid.NewSHA1(namespace, []byte(key))
}

func (it Item) validate() error {
	if it.Export.Phase() != ExportNotStarted && it.Generation.Phase() != GenerationDone {
		return ErrExportBeforeGeneration
	}
	return nil
}

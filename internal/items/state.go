package items

import (
	"encoding/json"
	"fmt"
)

// GenerationPhase enumerates the report generation state machine.
type GenerationPhase int

const (
	GenerationPending GenerationPhase = iota
	GenerationProcessing
	GenerationDone
	GenerationFailed
)

var generationNames = [...]string{"pending", "processing", "done", "failed"}

func (p GenerationPhase) String() string {
	if p < 0 || int(p) >= len(generationNames) {
		return fmt.Sprintf("generation(%d)", int(p))
	}
	return generationNames[p]
}

// ParseGenerationPhase resolves a phase from its string form.
func ParseGenerationPhase(s string) (GenerationPhase, error) {
	for i, name := range generationNames {
		if name == s {
			return GenerationPhase(i), nil
		}
	}
	return 0, fmt.Errorf("%w: generation phase %q", ErrInvalidPhase, s)
}

// Generation is the closed generation state of an item. The report is
// only carried by the done phase and the reason only by the failed phase.
type Generation struct {
	phase  GenerationPhase
	report string
	reason string
}

// Pending is the initial generation state.
func Pending() Generation { return Generation{phase: GenerationPending} }

// Processing marks extraction and report generation underway.
func Processing() Generation { return Generation{phase: GenerationProcessing} }

// Generated completes generation with a report.
func Generated(report string) Generation {
	return Generation{phase: GenerationDone, report: report}
}

// GenerationFailure terminates generation with a reason.
func GenerationFailure(reason string) Generation {
	return Generation{phase: GenerationFailed, reason: reason}
}

func (g Generation) Phase() GenerationPhase { return g.phase }

// Report returns the generated report when the phase is done.
func (g Generation) Report() (string, bool) {
	return g.report, g.phase == GenerationDone
}

// Reason returns the failure reason when the phase is failed.
func (g Generation) Reason() (string, bool) {
	return g.reason, g.phase == GenerationFailed
}

func (g Generation) MarshalJSON() ([]byte, error) {
	v := struct {
		Phase  string `json:"phase"`
		Report string `json:"report,omitempty"`
		Error  string `json:"error,omitempty"`
	}{Phase: g.phase.String(), Report: g.report, Error: g.reason}
	return json.Marshal(v)
}

// ExportPhase enumerates the export state machine.
type ExportPhase int

const (
	ExportNotStarted ExportPhase = iota
	ExportInProgress
	ExportDone
	ExportFailed
)

var exportNames = [...]string{"not_started", "in_progress", "done", "failed"}

func (p ExportPhase) String() string {
	if p < 0 || int(p) >= len(exportNames) {
		return fmt.Sprintf("export(%d)", int(p))
	}
	return exportNames[p]
}

// ParseExportPhase resolves a phase from its string form.
func ParseExportPhase(s string) (ExportPhase, error) {
	for i, name := range exportNames {
		if name == s {
			return ExportPhase(i), nil
		}
	}
	return 0, fmt.Errorf("%w: export phase %q", ErrInvalidPhase, s)
}

// Export is the closed export state of an item.
type Export struct {
	phase   ExportPhase
	address string
	reason  string
}

// NotStarted is the initial export state.
func NotStarted() Export { return Export{phase: ExportNotStarted} }

// Exporting marks an export call underway.
func Exporting() Export { return Export{phase: ExportInProgress} }

// Exported completes an export with the remote document address.
func Exported(address string) Export {
	return Export{phase: ExportDone, address: address}
}

// ExportFailure terminates an export attempt with a reason.
func ExportFailure(reason string) Export {
	return Export{phase: ExportFailed, reason: reason}
}

func (e Export) Phase() ExportPhase { return e.phase }

// Address returns the remote address when the phase is done.
func (e Export) Address() (string, bool) {
	return e.address, e.phase == ExportDone
}

// Reason returns the failure reason when the phase is failed.
func (e Export) Reason() (string, bool) {
	return e.reason, e.phase == ExportFailed
}

func (e Export) MarshalJSON() ([]byte, error) {
	v := struct {
		Phase   string `json:"phase"`
		Address string `json:"address,omitempty"`
		Error   string `json:"error,omitempty"`
	}{Phase: e.phase.String(), Address: e.address, Error: e.reason}
	return json.Marshal(v)
}

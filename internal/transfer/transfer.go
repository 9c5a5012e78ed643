// Package transfer serializes the full store to a portable document and
// reintegrates externally supplied documents with merge or replace
// semantics. Every import entry point (file, pasted text, compact transfer)
// funnels through the same validation and reconciliation logic.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"eventmemo/internal/models"
	"eventmemo/internal/store"
)

// FormatVersion tags exported documents.
const FormatVersion = "1.0.0"

// DefaultMaxImportBytes is the default import size ceiling.
const DefaultMaxImportBytes = 10 * 1024 * 1024

// Mode selects the reconciliation policy for an import.
type Mode string

const (
	// ModeReplace makes the imported collection the entire store.
	ModeReplace Mode = "replace"
	// ModeMerge keeps existing events and adds incoming ones whose id is
	// not already present. An id collision drops the incoming event; it is
	// never merged field-by-field.
	ModeMerge Mode = "merge"
)

// Document is the portable export format.
type Document struct {
	Version     string         `json:"version"`
	ExportDate  time.Time      `json:"exportDate"`
	EventsCount int            `json:"eventsCount"`
	Events      []models.Event `json:"events"`
}

// CompactDocument is the size-constrained transfer variant: shortened
// field names, active events only.
type CompactDocument struct {
	V string         `json:"v"`
	D time.Time      `json:"d"`
	E []models.Event `json:"e"`
}

// Reason categorizes an import rejection for display.
type Reason string

const (
	ReasonEmpty     Reason = "empty"
	ReasonOversize  Reason = "oversize"
	ReasonTruncated Reason = "truncated"
	ReasonMalformed Reason = "malformed"
	ReasonSchema    Reason = "schema"
)

// ImportError is a categorized import rejection. The existing store is
// untouched whenever one is returned.
type ImportError struct {
	Reason  Reason
	Message string
}

func (e *ImportError) Error() string { return e.Message }

// Report summarizes a successful import.
type Report struct {
	Mode Mode
	// Added is the number of events written that were not already present.
	Added int
	// Skipped is the number of incoming events dropped as id duplicates.
	Skipped int
	// Total is the number of events in the imported document.
	Total int
}

// Engine ties the transfer logic to an event store.
type Engine struct {
	store    *store.Store
	maxBytes int
	now      func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxImportBytes overrides the import size ceiling.
func WithMaxImportBytes(n int) Option {
	return func(e *Engine) { e.maxBytes = n }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a transfer engine over the store.
func NewEngine(s *store.Store, opts ...Option) *Engine {
	e := &Engine{store: s, maxBytes: DefaultMaxImportBytes, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export produces the full portable document. The declared count always
// equals the serialized collection length.
func (e *Engine) Export() (Document, error) {
	events, err := e.store.Load()
	if err != nil {
		return Document{}, err
	}
	return Document{
		Version:     FormatVersion,
		ExportDate:  e.now(),
		EventsCount: len(events),
		Events:      events,
	}, nil
}

// ExportText serializes the export document, indented when pretty is set
// (the file form), single-line otherwise (the copy-paste form).
func (e *Engine) ExportText(pretty bool) (string, error) {
	doc, err := e.Export()
	if err != nil {
		return "", err
	}
	var raw []byte
	if pretty {
		raw, err = json.MarshalIndent(doc, "", "  ")
	} else {
		raw, err = json.Marshal(doc)
	}
	if err != nil {
		return "", fmt.Errorf("marshal export: %w", err)
	}
	return string(raw), nil
}

// ExportToFile writes the pretty-printed export document to path.
func (e *Engine) ExportToFile(path string) error {
	text, err := e.ExportText(true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// ExportCompact produces the compact transfer text: shortened field names,
// active (non-completed, non-expired) events only.
func (e *Engine) ExportCompact() (string, error) {
	events, err := e.store.Load()
	if err != nil {
		return "", err
	}
	active := store.FilterActive(events)
	if active == nil {
		active = []models.Event{}
	}
	raw, err := json.Marshal(CompactDocument{V: FormatVersion, D: e.now(), E: active})
	if err != nil {
		return "", fmt.Errorf("marshal compact export: %w", err)
	}
	return string(raw), nil
}

// Import validates text and reconciles it into the store under the given
// mode. Validation failures return an *ImportError and leave the store
// untouched; nothing is ever partially applied.
func (e *Engine) Import(text string, mode Mode) (Report, error) {
	events, ierr := e.parse(text)
	if ierr != nil {
		return Report{}, ierr
	}
	return e.reconcile(events, mode)
}

// ImportFromFile reads path and imports its contents.
func (e *Engine) ImportFromFile(path string, mode Mode) (Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read import file: %w", err)
	}
	return e.Import(string(raw), mode)
}

// ImportCompact reconciles a compact transfer payload. Compact imports
// always merge. Both the shortened and the full field name are accepted;
// a document carrying neither merges nothing.
func (e *Engine) ImportCompact(text string) (Report, error) {
	var doc struct {
		E      []models.Event `json:"e"`
		Events []models.Event `json:"events"`
	}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Report{}, &ImportError{Reason: ReasonMalformed, Message: "compact transfer data is not valid JSON"}
	}
	events := doc.E
	if events == nil {
		events = doc.Events
	}
	if events == nil {
		events = []models.Event{}
	}
	return e.reconcile(events, ModeMerge)
}

// parse runs the staged text-level validation: empty input, size ceiling,
// brace/bracket balance, JSON parse with classified failures, and the
// events-array schema check. The declared-count check is soft.
func (e *Engine) parse(text string) ([]models.Event, *ImportError) {
	if strings.TrimSpace(text) == "" {
		return nil, &ImportError{Reason: ReasonEmpty, Message: "import data is empty"}
	}

	if len(text) > e.maxBytes {
		return nil, &ImportError{
			Reason:  ReasonOversize,
			Message: fmt.Sprintf("import data too large: %.2fMB (limit %.2fMB)", float64(len(text))/1024/1024, float64(e.maxBytes)/1024/1024),
		}
	}

	// A cheap structural check catches truncated pastes before the full
	// parse produces a less helpful message.
	if strings.Count(text, "{") != strings.Count(text, "}") ||
		strings.Count(text, "[") != strings.Count(text, "]") {
		return nil, &ImportError{
			Reason:  ReasonTruncated,
			Message: "import data looks truncated: unbalanced braces or brackets; re-export and copy the complete document",
		}
	}

	var doc struct {
		Version     string          `json:"version"`
		EventsCount *int            `json:"eventsCount"`
		Events      json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, classifyParseError(err)
	}

	if len(doc.Events) == 0 || string(doc.Events) == "null" {
		return nil, &ImportError{Reason: ReasonSchema, Message: "import data is missing the events array"}
	}
	var events []models.Event
	if err := json.Unmarshal(doc.Events, &events); err != nil {
		return nil, &ImportError{Reason: ReasonSchema, Message: "import data has a malformed events array"}
	}

	if doc.EventsCount != nil && *doc.EventsCount != len(events) {
		log.Warn().
			Int("declared", *doc.EventsCount).
			Int("actual", len(events)).
			Msg("import declared count disagrees with events array length")
	}

	return events, nil
}

// classifyParseError maps the JSON decoder's complaint onto the small set
// of user-facing categories instead of surfacing the raw parser error.
func classifyParseError(err error) *ImportError {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		if strings.Contains(syn.Error(), "unexpected end") {
			return &ImportError{
				Reason:  ReasonTruncated,
				Message: "import data is incomplete, likely truncated; re-export and copy the complete document",
			}
		}
		return &ImportError{
			Reason:  ReasonMalformed,
			Message: fmt.Sprintf("import data is not valid JSON: %s", syn.Error()),
		}
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return &ImportError{
			Reason:  ReasonMalformed,
			Message: fmt.Sprintf("import data has an unexpected value for %q", typ.Field),
		}
	}
	return &ImportError{Reason: ReasonMalformed, Message: fmt.Sprintf("import data could not be parsed: %s", err)}
}

// reconcile applies the imported events to the store under the given mode.
func (e *Engine) reconcile(incoming []models.Event, mode Mode) (Report, error) {
	switch mode {
	case ModeReplace:
		if err := e.store.Save(incoming); err != nil {
			return Report{}, err
		}
		return Report{Mode: mode, Added: len(incoming), Total: len(incoming)}, nil

	case ModeMerge:
		existing, err := e.store.Load()
		if err != nil {
			return Report{}, err
		}
		seen := make(map[string]bool, len(existing))
		for _, ev := range existing {
			seen[ev.ID] = true
		}
		merged := existing
		added := 0
		for _, ev := range incoming {
			if seen[ev.ID] {
				continue
			}
			seen[ev.ID] = true
			merged = append(merged, ev)
			added++
		}
		if err := e.store.Save(merged); err != nil {
			return Report{}, err
		}
		return Report{Mode: mode, Added: added, Skipped: len(incoming) - added, Total: len(incoming)}, nil

	default:
		return Report{}, fmt.Errorf("unknown import mode %q", mode)
	}
}

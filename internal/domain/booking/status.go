package booking

import (
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/turtacn/StayLedger/pkg/errors"
)

type statusKey struct {
	provenance Provenance
	raw        string
}

// StatusEntry maps one raw status of one provenance.
type StatusEntry struct {
	Provenance Provenance
	Raw        string
	Status     SemanticStatus
}

// StatusTable resolves (provenance, raw status) pairs. It is immutable after
// construction.
type StatusTable struct {
	entries map[statusKey]SemanticStatus
}

// DefaultStatusEntries is the production mapping.
func DefaultStatusEntries() []StatusEntry {
	return []StatusEntry{
		{ProvenanceLegacy, "confirmed", StatusConfirmed},
		{ProvenanceLegacy, "checked-in", StatusConfirmed},
		{ProvenanceLegacy, "checked-out", StatusConfirmed},
		{ProvenanceLegacy, "pending", StatusPending},
		{ProvenanceLegacy, "inquiry", StatusPending},
		{ProvenanceLegacy, "cancelled", StatusCancelled},

		{ProvenanceRevenueTable, "paid", StatusConfirmed},
		{ProvenanceRevenueTable, "pending", StatusPending},
		{ProvenanceRevenueTable, "pending_payment", StatusPending},
		{ProvenanceRevenueTable, "awaiting_payment", StatusPending},
		{ProvenanceRevenueTable, "cancelled", StatusCancelled},
		{ProvenanceRevenueTable, "refunded", StatusCancelled},
	}
}

// NewStatusTable builds and validates a table. Every provenance must map at
// least one raw status to each of confirmed, pending and cancelled, and a
// raw status may not be mapped twice.
func NewStatusTable(entries []StatusEntry) (*StatusTable, error) {
	t := &StatusTable{entries: make(map[statusKey]SemanticStatus, len(entries))}
	for _, e := range entries {
		k := statusKey{e.Provenance, normalizeRaw(e.Raw)}
		if k.raw == "" {
			return nil, apperrors.New(apperrors.ErrCodeStatusTableInvalid, "empty raw status").WithDetail(string(e.Provenance))
		}
		if prev, dup := t.entries[k]; dup && prev != e.Status {
			return nil, apperrors.New(apperrors.ErrCodeStatusTableInvalid, "conflicting mapping").
				WithDetail(fmt.Sprintf("%s/%s", e.Provenance, k.raw))
		}
		t.entries[k] = e.Status
	}

	var gaps []string
	for _, p := range Provenances {
		for _, want := range []SemanticStatus{StatusConfirmed, StatusPending, StatusCancelled} {
			if !t.covers(p, want) {
				gaps = append(gaps, fmt.Sprintf("%s->%s", p, want))
			}
		}
	}
	if len(gaps) > 0 {
		sort.Strings(gaps)
		return nil, apperrors.New(apperrors.ErrCodeStatusTableInvalid, "status table incomplete").
			WithDetail(strings.Join(gaps, ","))
	}
	return t, nil
}

// MustDefaultStatusTable returns the validated production table.
func MustDefaultStatusTable() *StatusTable {
	t, err := NewStatusTable(DefaultStatusEntries())
	if err != nil {
		panic(err)
	}
	return t
}

func (t *StatusTable) covers(p Provenance, s SemanticStatus) bool {
	for k, v := range t.entries {
		if k.provenance == p && v == s {
			return true
		}
	}
	return false
}

// Resolve maps a raw status. Unknown values resolve to StatusExcluded.
func (t *StatusTable) Resolve(p Provenance, raw string) SemanticStatus {
	if s, ok := t.entries[statusKey{p, normalizeRaw(raw)}]; ok {
		return s
	}
	return StatusExcluded
}

func normalizeRaw(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

//Personal.AI order the ending

package channel

import (
	"strings"

	"channel-manager/core/booking"
)

// StatusTable is a provider's bidirectional status vocabulary.
type StatusTable struct {
	provider     string
	toProvider   map[booking.Status]string
	fromProvider map[string]booking.Status
}

// NewStatusTable builds a table from the canonical -> provider mapping.
// The reverse direction is derived from it; aliases add inbound-only values
// (for example "MODIFIED" meaning confirmed) that never go outbound.
func NewStatusTable(provider string, outbound map[booking.Status]string, aliases map[string]booking.Status) *StatusTable {
	t := &StatusTable{
		provider:     provider,
		toProvider:   make(map[booking.Status]string, len(outbound)),
		fromProvider: make(map[string]booking.Status, len(outbound)+len(aliases)),
	}
	for native, canonical := range aliases {
		t.fromProvider[normalizeNative(native)] = canonical
	}
	for canonical, native := range outbound {
		t.toProvider[canonical] = native
		t.fromProvider[normalizeNative(native)] = canonical
	}
	return t
}

// ToCanonical maps a provider status into the canonical vocabulary. Unknown
// values pass through lower-cased so the fetch does not fail on them.
func (t *StatusTable) ToCanonical(native string) booking.Status {
	if s, ok := t.fromProvider[normalizeNative(native)]; ok {
		return s
	}
	return booking.Status(strings.ToLower(strings.TrimSpace(native)))
}

// ToProvider maps a canonical status into the provider vocabulary.
func (t *StatusTable) ToProvider(s booking.Status) (string, bool) {
	native, ok := t.toProvider[s]
	return native, ok
}

// Missing lists canonical statuses with no outbound mapping.
func (t *StatusTable) Missing() []booking.Status {
	var missing []booking.Status
	for _, s := range booking.Statuses() {
		if _, ok := t.toProvider[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}

func normalizeNative(native string) string {
	return strings.ToLower(strings.TrimSpace(native))
}

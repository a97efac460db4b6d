package pickup

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Table is an immutable lookup of descriptors by function name. It is built
// once and shared read-only by every scan.
type Table struct {
	byID        map[string]Descriptor
	order       []string
	fingerprint string
}

// NewTable parses every spec. When two specs share an id the later one wins.
func NewTable(specs []string) *Table {
	t := &Table{byID: make(map[string]Descriptor, len(specs))}
	for _, s := range specs {
		d := Parse(s)
		if _, seen := t.byID[d.id]; !seen {
			t.order = append(t.order, d.id)
		}
		t.byID[d.id] = d
	}

	h := sha256.New()
	for _, id := range t.order {
		h.Write([]byte(t.byID[id].spec))
		h.Write([]byte{0})
	}
	t.fingerprint = hex.EncodeToString(h.Sum(nil))
	return t
}

// Lookup returns the descriptor registered for id.
func (t *Table) Lookup(id string) (Descriptor, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// Descriptors lists the table in first-registration order.
func (t *Table) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.byID[id])
	}
	return out
}

// Len reports the number of distinct pickup ids.
func (t *Table) Len() int { return len(t.order) }

// Fingerprint identifies the table's effective configuration. Two tables with
// the same fingerprint extract identical messages from identical input.
func (t *Table) Fingerprint() string { return t.fingerprint }

func (t *Table) String() string {
	lines := make([]string, 0, len(t.order))
	for _, d := range t.Descriptors() {
		lines = append(lines, d.String())
	}
	return strings.Join(lines, "\n")
}

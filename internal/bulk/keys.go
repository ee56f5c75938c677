package bulk

import "sort"

// KeySet holds the column names that identify a row for Update.
type KeySet map[string]struct{}

func NewKeySet(cols ...string) KeySet {
	ks := make(KeySet, len(cols))
	for _, c := range cols {
		if c != "" {
			ks[c] = struct{}{}
		}
	}
	return ks
}

func (ks KeySet) Has(col string) bool {
	_, ok := ks[col]
	return ok
}

// Sorted returns the key names in lexical order.
func (ks KeySet) Sorted() []string {
	out := make([]string, 0, len(ks))
	for k := range ks {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

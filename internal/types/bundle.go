package types

import (
	"fmt"
	"strings"
)

// BundleEntry is one category verdict.
type BundleEntry struct {
	Category Category
	Result   StageResult
}

// Bundle collects the five category results. Entries always come back in
// aggregation order, whatever order they were set in.
type Bundle struct {
	results [len(categories)]StageResult
	present [len(categories)]bool
}

// Set records the result for a category. Setting the same category twice is an error.
func (b *Bundle) Set(c Category, r StageResult) error {
	i := c.index()
	if i < 0 {
		return fmt.Errorf("unknown category %q", c)
	}
	if b.present[i] {
		return fmt.Errorf("category %q already set", c)
	}
	b.results[i] = r
	b.present[i] = true
	return nil
}

// Get returns the result for a category.
func (b Bundle) Get(c Category) (StageResult, bool) {
	i := c.index()
	if i < 0 || !b.present[i] {
		return "", false
	}
	return b.results[i], true
}

// Complete reports an error naming every category still missing.
func (b Bundle) Complete() error {
	var missing []string
	for i, ok := range b.present {
		if !ok {
			missing = append(missing, string(categories[i]))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("evaluation bundle incomplete: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Entries returns the recorded results in aggregation order.
func (b Bundle) Entries() []BundleEntry {
	out := make([]BundleEntry, 0, len(categories))
	for i, ok := range b.present {
		if ok {
			out = append(out, BundleEntry{Category: categories[i], Result: b.results[i]})
		}
	}
	return out
}

package aggregator

import (
	"strings"

	"telecheck-go/internal/types"
)

// Combine renders the bundle as one text block for the aggregation stage:
// a "## <category>" heading over each result, blocks separated by a blank
// line, in the fixed category order. The bundle must be complete.
func Combine(b types.Bundle) (string, error) {
	if err := b.Complete(); err != nil {
		return "", err
	}
	entries := b.Entries()
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, "## "+string(e.Category)+"\n"+e.Result.String())
	}
	return strings.Join(blocks, "\n\n"), nil
}

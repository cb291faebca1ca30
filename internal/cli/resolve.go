package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kloir-z/gantt/internal/domain"
	"github.com/spf13/cobra"
)

// chartRef returns the chart named by the first positional argument, or
// by --chart when there is none.
func chartRef(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	ref, _ := cmd.Flags().GetString("chart")
	if ref == "" {
		return "", fmt.Errorf("no chart selected: pass --chart or set GANTT_CHART")
	}
	return ref, nil
}

// resolveRow resolves a row reference which can be:
//   - a row number as shown in the No column
//   - a full row id
//   - a unique row id prefix
func resolveRow(doc *domain.Document, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("row reference is required")
	}
	if no, err := strconv.Atoi(ref); err == nil {
		r, ok := doc.ByNo(no)
		if !ok {
			return "", fmt.Errorf("%w: #%d", domain.ErrRowNotFound, no)
		}
		return r.RowID(), nil
	}
	if _, ok := doc.Get(ref); ok {
		return ref, nil
	}

	var matches []string
	for _, id := range doc.IDs() {
		if strings.HasPrefix(id, ref) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %q", domain.ErrRowNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("row id prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// resolveRows resolves every reference, dropping repeats.
func resolveRows(doc *domain.Document, refs []string) ([]string, error) {
	seen := make(map[string]bool, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		id, err := resolveRow(doc, ref)
		if err != nil {
			return nil, err
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// rowLabel renders "#3 Build" for messages.
func rowLabel(doc *domain.Document, id string) string {
	r, ok := doc.Get(id)
	if !ok {
		return id
	}
	if r.Name() == "" {
		return fmt.Sprintf("#%d", r.RowNo())
	}
	return fmt.Sprintf("#%d %s", r.RowNo(), r.Name())
}

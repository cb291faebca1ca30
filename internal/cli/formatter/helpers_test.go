package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated", 5, "trun…"},
		{"日本語のタスク", 4, "日本語…"},
		{"x", 0, ""},
		{"ab", 1, "…"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestTimestamp(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "09:30", Timestamp(time.Date(2026, 2, 7, 9, 30, 0, 0, time.Local), now))
	assert.Equal(t, "2026-02-06", Timestamp(time.Date(2026, 2, 6, 9, 30, 0, 0, time.Local), now))
}

func TestRenderBox_Title(t *testing.T) {
	got := RenderBox("rows", "body")
	assert.Contains(t, got, "ROWS")
	assert.Contains(t, got, "body")
	assert.Contains(t, got, "╭")
}

func TestTable_RightAlign(t *testing.T) {
	got := Table{
		Headers:    []string{"No", "Name"},
		Rows:       [][]string{{"1", "a"}, {"10", "b"}},
		RightAlign: map[int]bool{0: true},
	}.Render()
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, " 1  a", lines[2])
	assert.Equal(t, "10  b", lines[3])
	assert.Equal(t, 8, lipgloss.Width(lines[1]))
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, RenderTable(nil, [][]string{{"x"}}))
}

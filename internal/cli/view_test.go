package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kloir-z/gantt/internal/cli/formatter"
	"github.com/kloir-z/gantt/internal/teatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViewer(t *testing.T) *teatest.Driver {
	t.Helper()
	app := testApp(t)
	seedPlan(t, app)
	sess, err := app.Charts.Open(context.Background(), "plan")
	require.NoError(t, err)
	return teatest.New(t, newChartViewer(sess, formatter.GanttOptions{}), teatest.WithSize(120, 30))
}

func TestChartViewer_BarsAndTable(t *testing.T) {
	d := newTestViewer(t)

	view := d.View()
	assert.Contains(t, view, "Design")
	assert.Contains(t, view, "█")
	assert.Contains(t, view, "[TOP]")
	assert.Contains(t, view, "bars")

	d.Press('t')
	view = d.View()
	assert.Contains(t, view, "Kind")
	assert.Contains(t, view, "table")

	d.PressKey(tea.KeyTab)
	assert.Contains(t, d.View(), "bars")
}

func TestChartViewer_ShiftAndReset(t *testing.T) {
	d := newTestViewer(t)

	d.Press('l')
	d.PressKey(tea.KeyRight)
	assert.Equal(t, 2*viewShiftStep, d.Model.(*chartViewer).opts.Shift)

	d.Press('h')
	assert.Equal(t, viewShiftStep, d.Model.(*chartViewer).opts.Shift)

	d.Press('g')
	assert.Zero(t, d.Model.(*chartViewer).opts.Shift)
}

func TestChartViewer_Quit(t *testing.T) {
	d := newTestViewer(t)
	assert.False(t, d.Quitting)
	d.Press('q')
	assert.True(t, d.Quitting)
}

func TestChartViewer_EmptyBeforeSize(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)
	sess, err := app.Charts.Open(context.Background(), "plan")
	require.NoError(t, err)

	d := teatest.New(t, newChartViewer(sess, formatter.GanttOptions{}))
	assert.Empty(t, d.View())
}

func TestChartCmd_ViewRunsProgram(t *testing.T) {
	app := testApp(t)
	seedPlan(t, app)

	var got tea.Model
	app.RunProgram = func(m tea.Model) error {
		got = m
		return nil
	}
	mustRun(t, app, "chart", "view", "--days", "30")

	viewer, ok := got.(*chartViewer)
	require.True(t, ok)
	assert.Equal(t, "plan", viewer.sess.Chart.Name)
	assert.Equal(t, 30, viewer.opts.MaxDays)
}

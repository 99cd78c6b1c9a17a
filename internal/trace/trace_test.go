package trace

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s2.Close())
}

func TestRecorder_RecordsStepsInOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	rec, err := s.BeginRun(ctx, "fix.dsl", "dict.xlsx")
	require.NoError(t, err)
	require.NotEmpty(t, rec.RunID())

	obs := rec.Observer()
	obs(1, `CreateOutputSheet("REDCap")`, "CreateOutputSheet", "ok")
	obs(2, `Frobnicate(2)`, "", "skipped")
	obs(3, `LowercaseVariableName(2)`, "LowercaseVariableName", "fatal")
	require.NoError(t, rec.Err())
	require.NoError(t, rec.Finish(ctx, "fatal"))

	steps, err := s.Steps(ctx, rec.RunID())
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, 1, steps[0].Seq)
	assert.Equal(t, "CreateOutputSheet", steps[0].Primitive)
	assert.Equal(t, "ok", steps[0].Status)
	assert.Equal(t, 2, steps[1].Line)
	assert.Equal(t, "skipped", steps[1].Status)
	assert.Equal(t, "fatal", steps[2].Status)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, rec.RunID(), runs[0].ID)
	assert.Equal(t, "fix.dsl", runs[0].Script)
	assert.Equal(t, "dict.xlsx", runs[0].Source)
	assert.Equal(t, "fatal", runs[0].Status)
	assert.NotEmpty(t, runs[0].FinishedAt)
}

func TestStore_SeparateRunsDoNotInterleave(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a, err := s.BeginRun(ctx, "a.dsl", "a.csv")
	require.NoError(t, err)
	b, err := s.BeginRun(ctx, "b.dsl", "b.csv")
	require.NoError(t, err)

	a.Observer()(1, "x", "SetCell", "ok")
	b.Observer()(1, "y", "SetCell", "ok")
	b.Observer()(2, "z", "SetCell", "ok")

	stepsA, err := s.Steps(ctx, a.RunID())
	require.NoError(t, err)
	stepsB, err := s.Steps(ctx, b.RunID())
	require.NoError(t, err)
	assert.Len(t, stepsA, 1)
	assert.Len(t, stepsB, 2)
}

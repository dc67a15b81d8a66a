package workflow

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seoforge/seoforge/internal/conversation"
	"github.com/seoforge/seoforge/internal/knowledge"
	"github.com/seoforge/seoforge/internal/profile"
)

func TestSessionsSurviveRestart(t *testing.T) {
	dir := t.TempDir()
	convStore, err := conversation.NewStore(filepath.Join(dir, "conversations"))
	require.NoError(t, err)
	snapStore, err := NewSnapshotStore(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)

	profiles := profile.NewMemoryStore()
	o := NewOrchestrator(newMockBackend(), profiles, knowledge.NewDefaultBase(), convStore)
	o.AttachSnapshots(snapStore)

	view := startSession(t, o)
	driveToSolutions(t, o, view.ID)
	beforeMsgs, beforeDeact, err := o.Transcript(view.ID)
	require.NoError(t, err)

	// a fresh orchestrator over the same stores sees the same session
	o2 := NewOrchestrator(newMockBackend(), profiles, knowledge.NewDefaultBase(), convStore)
	o2.AttachSnapshots(snapStore)
	restored, err := o2.RestoreSessions(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, restored)

	after, err := o2.SessionView(view.ID)
	require.NoError(t, err)
	require.Equal(t, StepSolution, after.CurrentStep)
	require.Len(t, after.State.Solutions, 3)
	require.NotNil(t, after.State.Diagnosis)

	afterMsgs, afterDeact, err := o2.Transcript(view.ID)
	require.NoError(t, err)
	require.Len(t, afterMsgs, len(beforeMsgs))
	require.Len(t, afterDeact, len(beforeDeact))

	// the restored session keeps working
	next, err := o2.SelectSolution(context.Background(), view.ID, "sol-1")
	require.NoError(t, err)
	require.Equal(t, StepBrief, next.CurrentStep)
}

func TestResetSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	convStore, err := conversation.NewStore(filepath.Join(dir, "conversations"))
	require.NoError(t, err)
	snapStore, err := NewSnapshotStore(filepath.Join(dir, "snapshots"))
	require.NoError(t, err)

	profiles := profile.NewMemoryStore()
	o := NewOrchestrator(newMockBackend(), profiles, knowledge.NewDefaultBase(), convStore)
	o.AttachSnapshots(snapStore)

	view := startSession(t, o)
	driveToSolutions(t, o, view.ID)
	_, err = o.ResetSession(context.Background(), view.ID)
	require.NoError(t, err)
	resetMsgs, _, err := o.Transcript(view.ID)
	require.NoError(t, err)

	o2 := NewOrchestrator(newMockBackend(), profiles, knowledge.NewDefaultBase(), convStore)
	o2.AttachSnapshots(snapStore)
	_, err = o2.RestoreSessions(context.Background())
	require.NoError(t, err)

	after, err := o2.SessionView(view.ID)
	require.NoError(t, err)
	require.Equal(t, StepCompetitors, after.CurrentStep)

	afterMsgs, afterDeact, err := o2.Transcript(view.ID)
	require.NoError(t, err)
	require.Len(t, afterMsgs, len(resetMsgs), "only post-reset history is replayed")
	require.Empty(t, afterDeact)
}

func TestSnapshotStoreAtomicWrite(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	require.NoError(t, err)

	snap := Snapshot{ID: "abc", SiteURL: "https://example.com", CurrentStep: StepAnalysis}
	require.NoError(t, store.Save(snap))
	require.NoError(t, store.Save(snap)) // overwrite is fine

	loaded, err := store.Load("abc")
	require.NoError(t, err)
	require.Equal(t, StepAnalysis, loaded.CurrentStep)

	ids, err := store.List()
	require.NoError(t, err)
	require.Equal(t, []string{"abc"}, ids)

	_, err = store.Load("missing")
	require.Error(t, err)
}

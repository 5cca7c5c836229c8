package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotleni/cats/internal/models"
)

type fakeController struct {
	calls []string
	err   error
}

func (f *fakeController) Watch(_ context.Context) (<-chan models.Snapshot, error) {
	return nil, nil
}

func (f *fakeController) record(name string) (models.Snapshot, error) {
	f.calls = append(f.calls, name)
	return models.Snapshot{}, f.err
}

func (f *fakeController) Start(_ context.Context) (models.Snapshot, error) {
	return f.record("start")
}

func (f *fakeController) Pause(_ context.Context) (models.Snapshot, error) {
	return f.record("pause")
}

func (f *fakeController) Resume(_ context.Context) (models.Snapshot, error) {
	return f.record("resume")
}

func (f *fakeController) Skip(_ context.Context) (models.Snapshot, error) {
	return f.record("skip")
}

func (f *fakeController) ResetServiceIsNotStarted(_ context.Context) (models.Snapshot, error) {
	return f.record("release")
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(state models.RunState, elapsed int) models.Snapshot {
	return models.Snapshot{
		Timer: models.TimerDefinition{
			ID:             1,
			Name:           "Focus",
			WorkTime:       1800,
			ShortBreakTime: 300,
			TotalWorkTime:  3600,
		},
		Session: models.Session{
			RunState:       state,
			Stage:          models.Work,
			ElapsedSeconds: elapsed,
		},
		StageDuration: 1800,
		Active:        state != models.Stopped,
		Loaded:        true,
	}
}

func newTestModel(ctrl *fakeController, snap models.Snapshot) *Model {
	updates := make(chan models.Snapshot, 1)

	m := New(context.Background(), ctrl, updates, true)
	m.Update(snapshotMsg(snap))

	return m
}

func TestToggleFollowsRunState(t *testing.T) {
	testCases := []struct {
		state models.RunState
		want  string
	}{
		{models.Stopped, "start"},
		{models.Started, "pause"},
		{models.Paused, "resume"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.state), func(t *testing.T) {
			ctrl := &fakeController{}
			m := newTestModel(ctrl, loaded(tc.state, 0))

			_, cmd := m.Update(runes("p"))
			require.NotNil(t, cmd)

			cmd()

			assert.Equal(t, []string{tc.want}, ctrl.calls)
		})
	}
}

func TestToggleWithoutTimer(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl, models.Snapshot{})

	_, cmd := m.Update(runes("p"))
	assert.Nil(t, cmd)
}

func TestSkip(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl, loaded(models.Started, 10))

	_, cmd := m.Update(runes("s"))
	require.NotNil(t, cmd)

	msg := cmd()
	assert.Equal(t, []string{"skip"}, ctrl.calls)

	m.Update(msg)
	assert.NoError(t, m.Err())
}

func TestCommandErrorIsShown(t *testing.T) {
	ctrl := &fakeController{err: errors.New("cannot pause a stopped session")}
	m := newTestModel(ctrl, loaded(models.Started, 10))

	_, cmd := m.Update(runes("p"))
	m.Update(cmd())

	require.Error(t, m.Err())
	assert.Contains(t, m.View(), "cannot pause a stopped session")
}

func TestLeaveRunningSessionReleasesWithoutPrompt(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl, loaded(models.Started, 10))

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Nil(t, m.confirm)

	msg := cmd()
	assert.Equal(t, []string{"release"}, ctrl.calls)

	_, cmd = m.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestLeavePausedSessionAsksFirst(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl, loaded(models.Paused, 10))

	m.Update(runes("q"))

	require.NotNil(t, m.confirm)
	assert.Empty(t, ctrl.calls)
	assert.Contains(t, m.View(), "Leave this timer?")
}

func TestDetach(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl, loaded(models.Paused, 10))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, ctrl.calls, "detaching leaves the session alone")
}

func TestStreamEndQuits(t *testing.T) {
	m := newTestModel(&fakeController{}, loaded(models.Started, 1))

	_, cmd := m.Update(streamEndMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestView(t *testing.T) {
	m := newTestModel(&fakeController{}, loaded(models.Paused, 600))

	view := m.View()
	assert.Contains(t, view, "Focus")
	assert.Contains(t, view, "Work time")
	assert.Contains(t, view, "[Paused]")
	assert.Contains(t, view, "20:00")
	assert.Contains(t, view, "Total work 60 min")
}

func TestViewWithoutTimer(t *testing.T) {
	m := newTestModel(&fakeController{}, models.Snapshot{})
	assert.Contains(t, m.View(), "No timer is loaded")
}

func TestSnapshotsAreConsumed(t *testing.T) {
	updates := make(chan models.Snapshot, 1)
	m := New(context.Background(), &fakeController{}, updates, false)

	updates <- loaded(models.Started, 42)

	msg := m.Init()()

	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, 42, m.snap.Session.ElapsedSeconds)

	close(updates)
	assert.Equal(t, streamEndMsg{}, cmd())
}

// Package tui renders the live session of the daemon and sends commands to
// it from the keyboard
package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/davecgh/go-spew/spew"

	"github.com/kotleni/cats/internal/models"
)

// Controller is the daemon surface used by the UI.
type Controller interface {
	Watch(ctx context.Context) (<-chan models.Snapshot, error)
	Start(ctx context.Context) (models.Snapshot, error)
	Pause(ctx context.Context) (models.Snapshot, error)
	Resume(ctx context.Context) (models.Snapshot, error)
	Skip(ctx context.Context) (models.Snapshot, error)
	ResetServiceIsNotStarted(ctx context.Context) (models.Snapshot, error)
}

type (
	snapshotMsg  models.Snapshot
	streamEndMsg struct{}

	commandMsg struct {
		err  error
		snap models.Snapshot
	}

	releasedMsg struct {
		err error
	}
)

// Model is the bubbletea model of the attach screen.
type Model struct {
	ctx      context.Context
	ctrl     Controller
	updates  <-chan models.Snapshot
	confirm  *huh.Form
	err      error
	help     help.Model
	progress progress.Model
	style    style
	snap     models.Snapshot
	leave    bool
	quitting bool
}

// New returns a model that renders snapshots from updates.
func New(ctx context.Context, ctrl Controller, updates <-chan models.Snapshot, darkTheme bool) *Model {
	return &Model{
		ctx:      ctx,
		ctrl:     ctrl,
		updates:  updates,
		help:     help.New(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		style:    newStyle(darkTheme),
	}
}

// Attach binds to the daemon and runs the UI until the user leaves.
func Attach(ctx context.Context, ctrl Controller, darkTheme bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, err := ctrl.Watch(ctx)
	if err != nil {
		return err
	}

	m := New(ctx, ctrl, updates, darkTheme)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

func waitForSnapshot(updates <-chan models.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return streamEndMsg{}
		}

		return snapshotMsg(snap)
	}
}

func (m *Model) Init() tea.Cmd {
	return waitForSnapshot(m.updates)
}

func (m *Model) run(fn func(context.Context) (models.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := fn(m.ctx)
		return commandMsg{snap: snap, err: err}
	}
}

func (m *Model) release() tea.Cmd {
	return func() tea.Msg {
		_, err := m.ctrl.ResetServiceIsNotStarted(m.ctx)
		return releasedMsg{err: err}
	}
}

// toggle picks the command the single play button sends in the current
// state.
func (m *Model) toggle() tea.Cmd {
	switch m.snap.Session.RunState {
	case models.Started:
		return m.run(m.ctrl.Pause)
	case models.Paused:
		return m.run(m.ctrl.Resume)
	default:
		return m.run(m.ctrl.Start)
	}
}

// leaveScreen releases the session unless it is running. A paused session
// asks for confirmation first because its progress would be discarded.
func (m *Model) leaveScreen() tea.Cmd {
	if m.snap.Session.RunState == models.Paused {
		m.leave = false
		m.confirm = huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title("Leave this timer?").
				Description("The paused stage will be reset and its progress lost.").
				Affirmative("Leave").
				Negative("Stay").
				Value(&m.leave),
		)).WithShowHelp(false)

		return m.confirm.Init()
	}

	return m.release()
}

func (m *Model) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.confirm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.confirm = f
	}

	switch m.confirm.State {
	case huh.StateCompleted:
		m.confirm = nil

		if m.leave {
			return m, m.release()
		}

		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		return m, nil
	}

	return m, cmd
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = models.Snapshot(msg)
		return m, waitForSnapshot(m.updates)

	case streamEndMsg:
		m.quitting = true
		return m, tea.Quit

	case commandMsg:
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
		}

		return m, nil

	case releasedMsg:
		m.err = msg.err
		m.quitting = true

		return m, tea.Quit

	case tea.WindowSizeMsg:
		m.progress.Width = min(msg.Width-4, 60)
		return m, nil

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		if p, ok := pm.(progress.Model); ok {
			m.progress = p
		}

		return m, cmd
	}

	slog.Debug(spew.Sdump(msg))

	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, defaultKeymap.detach) {
		m.quitting = true
		return m, tea.Quit
	}

	if m.confirm != nil {
		return m.updateConfirm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, defaultKeymap.toggle):
		if !m.snap.Loaded {
			return m, nil
		}

		return m, m.toggle()
	case key.Matches(keyMsg, defaultKeymap.skip):
		return m, m.run(m.ctrl.Skip)
	case key.Matches(keyMsg, defaultKeymap.back):
		return m, m.leaveScreen()
	}

	return m, nil
}

// Err returns the last command error shown to the user.
func (m *Model) Err() error {
	return m.err
}

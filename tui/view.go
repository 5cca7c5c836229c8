package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/kotleni/cats/internal/models"
	"github.com/kotleni/cats/internal/timeutil"
	"github.com/kotleni/cats/internal/ui"
)

type style struct {
	base   lipgloss.Style
	main   lipgloss.Style
	work   lipgloss.Style
	brk    lipgloss.Style
	hint   lipgloss.Style
	errMsg lipgloss.Style
}

func newStyle(dark bool) style {
	hint := lipgloss.Color("240")
	if dark {
		hint = lipgloss.Color("245")
	}

	return style{
		base:   lipgloss.NewStyle().Padding(1, 2),
		main:   lipgloss.NewStyle().Bold(true),
		work:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5F87")),
		brk:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5FD787")),
		hint:   lipgloss.NewStyle().Foreground(hint),
		errMsg: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),
	}
}

func (m *Model) stageView() string {
	label := m.snap.Session.Stage.String()

	if m.snap.Session.Stage == models.Break {
		return m.style.brk.Render(label)
	}

	return m.style.work.Render(label)
}

func (m *Model) stateView() string {
	switch m.snap.Session.RunState {
	case models.Paused:
		return m.style.hint.Render(" [Paused]")
	case models.Stopped:
		return m.style.hint.Render(" [Stopped]")
	default:
		return ""
	}
}

func (m *Model) totalsView() string {
	t := m.snap.Timer

	return m.style.hint.Render(fmt.Sprintf(
		"Total work %s · Total break %s",
		timeutil.Minutes(t.TotalWorkTime),
		timeutil.Minutes(t.TotalBreakTime),
	))
}

func (m *Model) helpView() string {
	return m.help.ShortHelpView([]key.Binding{
		defaultKeymap.toggle,
		defaultKeymap.skip,
		defaultKeymap.back,
		defaultKeymap.detach,
	})
}

func (m *Model) timerView() string {
	var s strings.Builder

	s.WriteString(m.style.main.Render(ui.Icon(m.snap.Timer.IconID) + " " + m.snap.Timer.Name))
	s.WriteString("\n\n")
	s.WriteString(m.stageView())
	s.WriteString(m.stateView())
	s.WriteString("\n\n")
	s.WriteString(m.style.main.Render(timeutil.Clock(m.snap.Remaining())))
	s.WriteString("\n\n")
	s.WriteString(m.progress.ViewAs(m.snap.Progress()))
	s.WriteString("\n\n")
	s.WriteString(m.totalsView())

	if m.err != nil {
		s.WriteString("\n\n" + m.style.errMsg.Render(m.err.Error()))
	}

	if m.confirm != nil {
		s.WriteString("\n\n" + m.confirm.View())
	} else {
		s.WriteString("\n\n" + m.helpView())
	}

	return s.String()
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.snap.Loaded {
		return m.style.base.Render(
			"No timer is loaded.\n\n" +
				m.style.hint.Render("Load one with 'cats start <id>'.") +
				"\n\n" + m.helpView(),
		)
	}

	return m.style.base.Render(m.timerView())
}

// Package ui holds terminal styling helpers shared by the CLI commands
package ui

import (
	"github.com/pterm/pterm"

	"github.com/kotleni/cats/internal/models"
)

// DarkTheme selects the light variants of each color.
var DarkTheme bool

// Green renders a in green.
func Green(a any) string {
	if DarkTheme {
		return pterm.LightGreen(a)
	}

	return pterm.Green(a)
}

func Cyan(a any) string {
	if DarkTheme {
		return pterm.LightCyan(a)
	}

	return pterm.Cyan(a)
}

func Magenta(a any) string {
	if DarkTheme {
		return pterm.LightMagenta(a)
	}

	return pterm.Magenta(a)
}

func Yellow(a any) string {
	if DarkTheme {
		return pterm.LightYellow(a)
	}

	return pterm.Yellow(a)
}

func Red(a any) string {
	if DarkTheme {
		return pterm.LightRed(a)
	}

	return pterm.Red(a)
}

func Highlight(a any) string {
	if DarkTheme {
		return pterm.LightWhite(a)
	}

	return pterm.Black(a)
}

// StageColor colors text by stage: work is red, break is green.
func StageColor(stage models.Stage, a any) string {
	if stage == models.Break {
		return Green(a)
	}

	return Red(a)
}

// StateColor colors a run state label.
func StateColor(state models.RunState) string {
	switch state {
	case models.Started:
		return Green(state)
	case models.Paused:
		return Yellow(state)
	default:
		return Magenta(state)
	}
}

// DisableColor turns off all pterm styling.
func DisableColor() {
	pterm.DisableColor()
}

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWhite     = lipgloss.Color("#FFFFFF")
	colorLightGray = lipgloss.Color("#CCCCCC")
	colorGray      = lipgloss.Color("#888888")
	colorDarkGray  = lipgloss.Color("#444444")
	colorGreen     = lipgloss.Color("#3FB950")
	colorYellow    = lipgloss.Color("#D29922")
	colorRed       = lipgloss.Color("#F85149")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen).
			MarginTop(1).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colorLightGray).
			MarginBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	commandStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	commandDescStyle = lipgloss.NewStyle().
				Foreground(colorGray).
				PaddingLeft(1)

	inputStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(colorLightGray)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Width(18)

	labelFocusedStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Bold(true).
				Width(18)

	infoStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorDarkGray).
			Italic(true).
			MarginTop(1)

	flashStyles = map[FlashLevel]lipgloss.Style{
		FlashSuccess: lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
		FlashInfo:    lipgloss.NewStyle().Foreground(colorLightGray),
		FlashWarning: lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
		FlashError:   lipgloss.NewStyle().Foreground(colorRed).Bold(true),
	}
)

const logo = `
 █░█░█ ▄▀█ █▀ ▀█▀ █▀▀ █░█░█ ▄▀█ ▀█▀ █▀▀ █░█
 ▀▄▀▄▀ █▀█ ▄█ ░█░ ██▄ ▀▄▀▄▀ █▀█ ░█░ █▄▄ █▀█
`

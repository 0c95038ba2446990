package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors of the posts TUI. ANSI 256-color codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	CompletedText lipgloss.Color

	HeaderForeground lipgloss.Color
	ErrorForeground  lipgloss.Color
	ErrorBackground  lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	SpinnerColor     lipgloss.Color
}

// DefaultTheme is a dark-terminal palette.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),

	SelectedBackground: lipgloss.Color("237"),
	SelectedForeground: lipgloss.Color("255"),

	CompletedText: lipgloss.Color("71"),

	HeaderForeground: lipgloss.Color("111"),
	ErrorForeground:  lipgloss.Color("231"),
	ErrorBackground:  lipgloss.Color("124"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("245"),
	SpinnerColor:     lipgloss.Color("214"),
}

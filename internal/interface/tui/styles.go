package tui

import "github.com/charmbracelet/lipgloss"

// Global styles used across views
var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("246"))

	activeTabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(lipgloss.Color("205"))

	// Status bar
	onlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green")).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red")).
			Bold(true)

	checkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow"))

	// Chat view
	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("cyan")).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green")).
			Bold(true)

	errorBubbleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("red"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))

	noAnswerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("yellow")).
			Italic(true)

	// Sidebar
	sidebarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	selectedSessionStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("170")).
				Bold(true)

	sessionStyle = lipgloss.NewStyle().
			PaddingLeft(2)

	sessionMetaStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(lipgloss.Color("246"))

	// Files view
	selectedFileStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("170")).
				Bold(true)

	bannerOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("green"))

	bannerErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("red"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

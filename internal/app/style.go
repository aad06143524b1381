package app

import "github.com/charmbracelet/lipgloss"

type Style struct {
	Sidebar      lipgloss.Style
	SidebarTitle lipgloss.Style
	Folder       lipgloss.Style
	File         lipgloss.Style
	Selected     lipgloss.Style
	Current      lipgloss.Style

	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Title     lipgloss.Style
	Dirty     lipgloss.Style

	Status   lipgloss.Style
	Info     lipgloss.Style
	Error    lipgloss.Style
	Prompt   lipgloss.Style
	Match    lipgloss.Style
	Selector lipgloss.Style
}

func DefaultStyle() Style {
	muted := lipgloss.Color("244")
	accent := lipgloss.Color("75")
	return Style{
		Sidebar:      lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		SidebarTitle: lipgloss.NewStyle().Bold(true).Foreground(muted),
		Folder:       lipgloss.NewStyle().Foreground(accent),
		File:         lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Reverse(true),
		Current:      lipgloss.NewStyle().Bold(true),

		Tab:       lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		ActiveTab: lipgloss.NewStyle().Bold(true).Underline(true).Padding(0, 1),
		Title:     lipgloss.NewStyle().Bold(true),
		Dirty:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

		Status:   lipgloss.NewStyle().Foreground(muted),
		Info:     lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		Prompt:   lipgloss.NewStyle().Foreground(accent).Bold(true),
		Match:    lipgloss.NewStyle(),
		Selector: lipgloss.NewStyle().Reverse(true),
	}
}

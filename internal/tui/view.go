package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/runoshun/git-issue/internal/domain"
)

const (
	idColumnWidth     = 12
	statusColumnWidth = 13
)

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeDetail:
		content = m.viewDetail()
	case ModeList:
		content = m.viewList()
	}
	return m.styles.App.Render(content)
}

// viewList renders the paged issue list.
func (m *Model) viewList() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Issues"))
	b.WriteString("  ")
	b.WriteString(m.styles.Subtitle.Render(m.summaryLine()))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render("Error: "+m.err.Error()) + "\n\n")
	}

	switch {
	case m.loading && m.page == nil:
		b.WriteString(m.styles.Loading.Render("Loading issues..."))
		b.WriteString("\n")
	case m.issueCount() == 0:
		b.WriteString(m.styles.Subtitle.Render("No issues on this page."))
		b.WriteString("\n")
	default:
		for i, issue := range m.page.Issues {
			b.WriteString(m.renderRow(issue, i == m.cursor))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// summaryLine describes the current page and total.
func (m *Model) summaryLine() string {
	label := m.pageLabel()
	if m.loading {
		label += " (loading)"
	}
	if m.page != nil && m.page.TotalKnown {
		label += fmt.Sprintf(" · %d issues", m.page.Total)
	}
	return label
}

// renderRow renders one list row truncated to the content width.
func (m *Model) renderRow(issue domain.Issue, selected bool) string {
	width := max(m.width-4, 20)
	summaryWidth := max(width-idColumnWidth-statusColumnWidth-2, 8)

	id := m.styles.IssueID.Render(padRight(issue.ID, idColumnWidth))
	status := m.styles.Status(issue.Status).Render(padRight(issue.Status, statusColumnWidth))
	summary := truncate.StringWithTail(issue.Summary, uint(summaryWidth), "…") //nolint:gosec // summaryWidth is at least 8

	if selected {
		line := "> " + padRight(issue.ID, idColumnWidth) + padRight(issue.Status, statusColumnWidth) + summary
		return m.styles.Selected.Render(line)
	}
	return "  " + id + status + m.styles.Normal.Render(summary)
}

// viewDetail renders the detail view.
func (m *Model) viewDetail() string {
	var b strings.Builder
	if m.detail == nil {
		b.WriteString(m.styles.Loading.Render("Loading issue..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.styles.Title.Render(m.detail.Issue.ID))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("↑/↓ scroll · esc back · q quit"))
	return b.String()
}

// renderDetail renders the scrollable issue body.
func (m *Model) renderDetail() string {
	issue := m.detail.Issue
	wrap := max(m.viewport.Width, 20)

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(wordwrap.String(issue.Summary, wrap)))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		b.WriteString(m.styles.Label.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	field("Status", m.styles.Status(issue.Status).Render(issue.Status))
	field("Date", issue.Date)
	field("Reporter", userString(issue.Reporter))
	field("Assignee", userString(issue.Assignee))
	subs := make([]string, 0, len(issue.Subscribers))
	for _, s := range issue.Subscribers {
		subs = append(subs, s.String())
	}
	field("Subscribers", strings.Join(subs, ", "))

	if issue.Description != "" {
		b.WriteString("\n")
		b.WriteString(wordwrap.String(issue.Description, wrap))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Comments (%d)", len(m.detail.Comments))))
	b.WriteString("\n")
	for _, c := range m.detail.Comments {
		header := userString(c.User)
		if c.Date != "" {
			header += "  " + c.Date
		}
		body := m.styles.Subtitle.Render(header) + "\n" + wordwrap.String(c.Comment, max(wrap-2, 10))
		b.WriteString(m.styles.Comment.Render(body))
		b.WriteString("\n")
	}
	return b.String()
}

// viewHelp renders every key binding.
func (m *Model) viewHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Keys"))
	b.WriteString("\n\n")
	for _, group := range m.keys.FullHelp() {
		for _, k := range group {
			h := k.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("? or esc to close"))
	return b.String()
}

func userString(u *domain.GitUser) string {
	if u == nil {
		return ""
	}
	return u.String()
}

// padRight pads s with spaces to width cells, truncating when longer.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate.String(s, uint(width-1)) + " " //nolint:gosec // column widths are constants
	}
	return s + strings.Repeat(" ", width-w)
}

package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runoshun/git-issue/internal/usecase"
)

// IssueLister loads one page of issues.
type IssueLister interface {
	Execute(ctx context.Context, in usecase.ListIssuesInput) (*usecase.ListIssuesOutput, error)
}

// IssueShower loads a single issue with its comments.
type IssueShower interface {
	Execute(ctx context.Context, in usecase.ShowIssueInput) (*usecase.ShowIssueOutput, error)
}

// Model is the issue browser model.
// Fields are ordered to minimize memory padding.
type Model struct {
	// Dependencies
	lister IssueLister
	shower IssueShower

	// State
	page   *usecase.ListIssuesOutput
	detail *usecase.ShowIssueOutput
	err    error

	// Components
	keys     KeyMap
	styles   Styles
	help     help.Model
	viewport viewport.Model

	// Numeric state
	pageNum  int
	limit    int
	cursor   int
	width    int
	height   int
	mode     Mode
	prevMode Mode

	// Boolean state
	loading bool
}

// New creates a browser that starts on the first page.
// limit is the page size; 0 uses the configured default.
func New(lister IssueLister, shower IssueShower, limit int) *Model {
	return &Model{
		lister:   lister,
		shower:   shower,
		keys:     DefaultKeyMap(),
		styles:   DefaultStyles(),
		help:     help.New(),
		viewport: viewport.New(0, 0),
		pageNum:  1,
		limit:    limit,
		mode:     ModeList,
		loading:  true,
	}
}

// Init loads the first page.
func (m *Model) Init() tea.Cmd {
	return m.loadPage(m.pageNum)
}

func (m *Model) loadPage(page int) tea.Cmd {
	return m.fetchPage(usecase.ListIssuesInput{Page: page, Limit: m.limit})
}

// reloadPage fetches the current page from the server, bypassing the cache.
func (m *Model) reloadPage() tea.Cmd {
	return m.fetchPage(usecase.ListIssuesInput{Page: m.pageNum, Limit: m.limit, Refresh: true})
}

func (m *Model) fetchPage(in usecase.ListIssuesInput) tea.Cmd {
	lister := m.lister
	return func() tea.Msg {
		out, err := lister.Execute(context.Background(), in)
		return MsgPageLoaded{Out: out, Err: err}
	}
}

func (m *Model) loadIssue(id string) tea.Cmd {
	shower := m.shower
	return func() tea.Msg {
		out, err := shower.Execute(context.Background(), usecase.ShowIssueInput{ID: id, WithComments: true})
		return MsgIssueLoaded{Out: out, Err: err}
	}
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.updateViewportSize()
		return m, nil

	case MsgPageLoaded:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.err = nil
		m.page = msg.Out
		m.pageNum = msg.Out.Page
		if m.cursor >= len(msg.Out.Issues) {
			m.cursor = max(len(msg.Out.Issues)-1, 0)
		}
		return m, nil

	case MsgIssueLoaded:
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			m.mode = ModeList
			return m, nil
		}
		m.err = nil
		m.detail = msg.Out
		m.viewport.SetContent(m.renderDetail())
		m.viewport.GotoTop()
		return m, nil
	}

	return m, nil
}

// handleKey handles key events.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Escape) {
			m.mode = m.prevMode
		}
		return m, nil
	case ModeDetail:
		return m.handleDetailMode(msg)
	case ModeList:
		return m.handleListMode(msg)
	}
	return m, nil
}

// handleListMode handles keys in the issue list.
func (m *Model) handleListMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.issueCount()-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		if m.loading || !m.hasNextPage() {
			return m, nil
		}
		m.loading = true
		m.cursor = 0
		return m, m.loadPage(m.pageNum + 1)

	case key.Matches(msg, m.keys.PrevPage):
		if m.loading || m.pageNum <= 1 {
			return m, nil
		}
		m.loading = true
		m.cursor = 0
		return m, m.loadPage(m.pageNum - 1)

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.reloadPage()

	case key.Matches(msg, m.keys.Enter):
		if m.issueCount() == 0 {
			return m, nil
		}
		m.mode = ModeDetail
		m.detail = nil
		m.loading = true
		return m, m.loadIssue(m.page.Issues[m.cursor].ID)

	case key.Matches(msg, m.keys.Help):
		m.prevMode = m.mode
		m.mode = ModeHelp
		return m, nil
	}
	return m, nil
}

// handleDetailMode handles keys in the detail view.
func (m *Model) handleDetailMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeList
		m.detail = nil
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.prevMode = m.mode
		m.mode = ModeHelp
		return m, nil
	}

	// Forward scrolling keys to the viewport.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) issueCount() int {
	if m.page == nil {
		return 0
	}
	return len(m.page.Issues)
}

// hasNextPage reports whether a page after the current one may exist.
// Without a known total, a full page suggests there is more.
func (m *Model) hasNextPage() bool {
	if m.page == nil {
		return false
	}
	if m.page.TotalKnown {
		return m.page.Page*m.page.Limit < m.page.Total
	}
	return len(m.page.Issues) == m.page.Limit
}

// pageCount returns the number of pages, or 0 when the total is unknown.
func (m *Model) pageCount() int {
	if m.page == nil || !m.page.TotalKnown || m.page.Limit == 0 {
		return 0
	}
	return max((m.page.Total+m.page.Limit-1)/m.page.Limit, 1)
}

func (m *Model) updateViewportSize() {
	const chrome = 6 // padding, header and footer lines
	m.viewport.Width = max(m.width-4, 0)
	m.viewport.Height = max(m.height-chrome, 0)
	if m.detail != nil {
		m.viewport.SetContent(m.renderDetail())
	}
}

// pageLabel returns "page N/M", or "page N" when the total is unknown.
func (m *Model) pageLabel() string {
	if n := m.pageCount(); n > 0 {
		return fmt.Sprintf("page %d/%d", m.pageNum, n)
	}
	return fmt.Sprintf("page %d", m.pageNum)
}

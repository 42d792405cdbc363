package tui

import "github.com/runoshun/git-issue/internal/usecase"

// Msg is the sealed interface for all TUI messages.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgPageLoaded is sent when a page of issues has been loaded.
type MsgPageLoaded struct {
	Out *usecase.ListIssuesOutput
	Err error
}

func (MsgPageLoaded) sealed() {}

// MsgIssueLoaded is sent when a single issue has been loaded for the detail view.
type MsgIssueLoaded struct {
	Out *usecase.ShowIssueOutput
	Err error
}

func (MsgIssueLoaded) sealed() {}

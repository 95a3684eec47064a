package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/linknova/internal/models"
)

// ConfirmationDialog represents a yes/no confirmation dialog
type ConfirmationDialog struct {
	Title       string
	Message     string
	YesSelected bool
}

// NewConfirmationDialog creates a new confirmation dialog
func NewConfirmationDialog(title, message string) ConfirmationDialog {
	return ConfirmationDialog{Title: title, Message: message}
}

// Update moves the selection. It reports whether enter was pressed.
func (d *ConfirmationDialog) Update(msg tea.Msg) (done bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}
	switch key.String() {
	case "left", "h", "y":
		d.YesSelected = true
	case "right", "l", "n":
		d.YesSelected = false
	case "enter":
		return true
	}
	return false
}

// View renders the confirmation dialog
func (d ConfirmationDialog) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(d.Title))
	b.WriteString("\n\n")
	b.WriteString(d.Message)
	b.WriteString("\n\n")

	yesButton := inactiveButtonStyle.Render("Yes")
	noButton := inactiveButtonStyle.Render("No")
	if d.YesSelected {
		yesButton = activeButtonStyle.Render("Yes")
	} else {
		noButton = activeButtonStyle.Render("No")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Left, yesButton, "  ", noButton))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(FormatKey("←/→", "navigate") + " • " + FormatKey("enter", "confirm") + " • " + FormatKey("esc", "cancel")))

	return boxStyle.Render(b.String())
}

// MigrationItem represents a migration in the list
type MigrationItem struct {
	Version   string
	Name      string
	Status    string
	AppliedAt string
}

func (i MigrationItem) FilterValue() string { return i.Name }
func (i MigrationItem) Title() string {
	return fmt.Sprintf("%s %s - %s", FormatStatus(i.Status), i.Version, i.Name)
}
func (i MigrationItem) Description() string {
	if i.AppliedAt != "" {
		return mutedStyle.Render("Applied: " + i.AppliedAt)
	}
	return mutedStyle.Render("Not applied")
}

// BookmarkItem is a bookmark in the browser list.
type BookmarkItem struct {
	Bookmark models.BookmarkView
}

func (i BookmarkItem) FilterValue() string {
	b := i.Bookmark
	if b.Title != nil {
		return *b.Title + " " + b.URL
	}
	return b.URL
}
func (i BookmarkItem) Title() string {
	b := i.Bookmark
	title := b.URL
	if b.Title != nil && *b.Title != "" {
		title = *b.Title
	}
	return fmt.Sprintf("%s %s", FormatBookmarkStatus(b.Status), title)
}
func (i BookmarkItem) Description() string {
	b := i.Bookmark
	tags := mutedStyle.Render("untagged")
	if len(b.Categories) > 0 {
		tags = tagStyle.Render(strings.Join(b.Categories, ", "))
	}
	return mutedStyle.Render(b.URL) + "  " + tags
}

type titled interface {
	list.Item
	Title() string
	Description() string
}

// ItemDelegate renders two-line list items with a selection marker.
type ItemDelegate struct{}

func (d ItemDelegate) Height() int                             { return 2 }
func (d ItemDelegate) Spacing() int                            { return 1 }
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(titled)
	if !ok {
		return
	}

	var s string
	if index == m.Index() {
		s = selectedItemStyle.Render("▸ " + i.Title() + "\n  " + i.Description())
	} else {
		s = unselectedItemStyle.Render("  " + i.Title() + "\n  " + i.Description())
	}

	_, _ = fmt.Fprint(w, s)
}

// LogView displays the latest log lines
type LogView struct {
	Logs   []string
	MaxLen int
}

// NewLogView creates a new log view
func NewLogView(maxLen int) LogView {
	return LogView{
		Logs:   make([]string, 0),
		MaxLen: maxLen,
	}
}

// AddLog adds a log entry
func (l *LogView) AddLog(entry string) {
	l.Logs = append(l.Logs, entry)
	if len(l.Logs) > l.MaxLen {
		l.Logs = l.Logs[1:]
	}
}

// View renders the log view
func (l LogView) View() string {
	if len(l.Logs) == 0 {
		return mutedStyle.Render("No logs")
	}

	var b strings.Builder
	for _, log := range l.Logs {
		b.WriteString(mutedStyle.Render("• "))
		b.WriteString(log)
		b.WriteString("\n")
	}

	return boxStyle.Render(b.String())
}

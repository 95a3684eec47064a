package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/linknova/pkg/migration"
)

// MigrateMode represents the current mode of the migration UI
type MigrateMode int

const (
	ModeList MigrateMode = iota
	ModeConfirm
	ModeExecuting
	ModeComplete
	ModeError
)

// MigrateModel is the Bubbletea model for interactive migrations
type MigrateModel struct {
	ctx          context.Context
	mode         MigrateMode
	action       string // "up" or "down"
	list         list.Model
	confirmation ConfirmationDialog
	logs         LogView
	err          error
	width        int
	height       int
	executor     *migration.Executor
	migrations   []migration.Migration
	status       []migration.MigrationRecord
	selected     int
}

// NewMigrateModel creates a new migration UI model
func NewMigrateModel(ctx context.Context, action string, executor *migration.Executor, migrations []migration.Migration) MigrateModel {
	l := list.New([]list.Item{}, ItemDelegate{}, 0, 0)
	l.Title = "Database Migrations"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return MigrateModel{
		ctx:        ctx,
		mode:       ModeList,
		action:     action,
		list:       l,
		logs:       NewLogView(10),
		executor:   executor,
		migrations: migrations,
	}
}

// Init initializes the model
func (m MigrateModel) Init() tea.Cmd {
	return tea.Batch(loadStatusCmd(m.ctx, m.executor, m.migrations), tea.EnterAltScreen)
}

type statusLoadedMsg struct {
	status []migration.MigrationRecord
}

type migrationExecutedMsg struct {
	version string
	err     error
}

type errorMsg struct {
	err error
}

func loadStatusCmd(ctx context.Context, executor *migration.Executor, migrations []migration.Migration) tea.Cmd {
	return func() tea.Msg {
		status, err := executor.GetStatus(ctx, migrations)
		if err != nil {
			return errorMsg{err: fmt.Errorf("failed to get migration status: %w", err)}
		}
		return statusLoadedMsg{status: status}
	}
}

// executeMigrationCmd runs one migration while holding the advisory lock.
func executeMigrationCmd(ctx context.Context, executor *migration.Executor, mig migration.Migration, action string) tea.Cmd {
	return func() tea.Msg {
		unlock, err := executor.Lock(ctx)
		if err != nil {
			return migrationExecutedMsg{version: mig.Version, err: err}
		}
		defer func() { _ = unlock(context.WithoutCancel(ctx)) }()

		if action == "up" {
			err = executor.Apply(ctx, mig)
		} else {
			err = executor.Rollback(ctx, mig)
		}
		return migrationExecutedMsg{version: mig.Version, err: err}
	}
}

func (m MigrateModel) findMigration(version string) (migration.Migration, bool) {
	for _, mig := range m.migrations {
		if mig.Version == version {
			return mig, true
		}
	}
	return migration.Migration{}, false
}

// canExecute reports whether the selected record can run in this mode.
func (m MigrateModel) canExecute(idx int) bool {
	if idx < 0 || idx >= len(m.status) {
		return false
	}
	if m.action == "up" {
		return m.status[idx].Status != migration.StatusApplied
	}
	return m.status[idx].Status == migration.StatusApplied
}

// Update handles messages
func (m MigrateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case statusLoadedMsg:
		m.status = msg.status
		items := make([]list.Item, len(msg.status))
		for i, s := range msg.status {
			appliedAt := ""
			if s.AppliedAt != nil {
				appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			items[i] = MigrationItem{
				Version:   s.Version,
				Name:      s.Name,
				Status:    string(s.Status),
				AppliedAt: appliedAt,
			}
		}
		return m, m.list.SetItems(items)

	case migrationExecutedMsg:
		if msg.err != nil {
			m.mode = ModeError
			m.err = msg.err
			m.logs.AddLog(dangerStyle.Render("Failed: " + msg.version + " - " + msg.err.Error()))
			return m, nil
		}
		m.logs.AddLog(successStyle.Render("✓ Completed: " + msg.version))
		m.mode = ModeComplete
		return m, nil

	case errorMsg:
		m.mode = ModeError
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeList:
			if m.list.FilterState() == list.Filtering {
				break
			}
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit

			case "enter", " ":
				idx := m.list.Index()
				if !m.canExecute(idx) {
					return m, nil
				}
				m.selected = idx
				m.confirmation = NewConfirmationDialog(
					fmt.Sprintf("Confirm Migration %s", strings.ToUpper(m.action)),
					fmt.Sprintf("Are you sure you want to %s migration:\n%s - %s",
						m.action, m.status[idx].Version, m.status[idx].Name),
				)
				m.mode = ModeConfirm
				return m, nil
			}

		case ModeConfirm:
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				m.mode = ModeList
				return m, nil
			}
			if !m.confirmation.Update(msg) {
				return m, nil
			}
			if !m.confirmation.YesSelected {
				m.mode = ModeList
				return m, nil
			}
			record := m.status[m.selected]
			mig, ok := m.findMigration(record.Version)
			if !ok {
				m.mode = ModeError
				m.err = fmt.Errorf("migration %s is not known", record.Version)
				return m, nil
			}
			m.mode = ModeExecuting
			m.logs.AddLog(infoStyle.Render("Executing: " + mig.Version + " - " + mig.Name))
			return m, executeMigrationCmd(m.ctx, m.executor, mig, m.action)

		case ModeComplete, ModeError:
			switch msg.String() {
			case "ctrl+c", "q", "enter":
				return m, tea.Quit
			}
		}
	}

	if m.mode == ModeList {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI
func (m MigrateModel) View() string {
	center := func(s string) string {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
	}

	switch m.mode {
	case ModeList:
		help := helpStyle.Render(
			FormatKey("↑/↓", "navigate") + " • " +
				FormatKey("enter", "execute") + " • " +
				FormatKey("q", "quit"),
		)
		return lipgloss.JoinVertical(lipgloss.Left, m.list.View(), help)

	case ModeConfirm:
		return center(m.confirmation.View())

	case ModeExecuting:
		return center(m.logs.View())

	case ModeComplete:
		return center(boxStyle.Render(
			titleStyle.Render("Migration Complete!") + "\n\n" +
				m.logs.View() + "\n" +
				helpStyle.Render(FormatKey("enter/q", "exit"))))

	case ModeError:
		return center(boxStyle.Render(
			titleStyle.Render("Migration Failed") + "\n\n" +
				errorStyle.Render(m.err.Error()) + "\n\n" +
				helpStyle.Render(FormatKey("enter/q", "exit"))))
	}

	return "Unknown mode"
}

// RunMigrateUI starts the interactive migration UI
func RunMigrateUI(ctx context.Context, action string, executor *migration.Executor, migrations []migration.Migration) error {
	p := tea.NewProgram(NewMigrateModel(ctx, action, executor, migrations), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

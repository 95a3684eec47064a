package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/linknova/internal/models"
)

// Bookmarks is the part of the store the browser needs.
type Bookmarks interface {
	ListBookmarks(ctx context.Context, f models.BookmarkFilter) (models.Page[models.BookmarkView], error)
	DeleteBookmark(ctx context.Context, userID string, id int64) error
}

// BrowseModel pages through a user's bookmarks.
type BrowseModel struct {
	ctx         context.Context
	store       Bookmarks
	filter      models.BookmarkFilter
	page        models.Page[models.BookmarkView]
	list        list.Model
	confirm     ConfirmationDialog
	confirming  bool
	pendingID   int64
	loading     bool
	err         error
	width       int
	height      int
	lastDeleted int64
}

// NewBrowseModel creates a browser starting at the filter's page.
func NewBrowseModel(ctx context.Context, store Bookmarks, filter models.BookmarkFilter) BrowseModel {
	l := list.New([]list.Item{}, ItemDelegate{}, 0, 0)
	l.Title = "Bookmarks"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	if filter.Page < 1 {
		filter.Page = 1
	}
	return BrowseModel{ctx: ctx, store: store, filter: filter, list: l, loading: true}
}

type pageLoadedMsg struct {
	page models.Page[models.BookmarkView]
	err  error
}

type bookmarkDeletedMsg struct {
	id  int64
	err error
}

func loadPageCmd(ctx context.Context, store Bookmarks, f models.BookmarkFilter) tea.Cmd {
	return func() tea.Msg {
		page, err := store.ListBookmarks(ctx, f)
		return pageLoadedMsg{page: page, err: err}
	}
}

func deleteCmd(ctx context.Context, store Bookmarks, userID string, id int64) tea.Cmd {
	return func() tea.Msg {
		return bookmarkDeletedMsg{id: id, err: store.DeleteBookmark(ctx, userID, id)}
	}
}

// Init loads the first page
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(loadPageCmd(m.ctx, m.store, m.filter), tea.EnterAltScreen)
}

func (m BrowseModel) reload() (BrowseModel, tea.Cmd) {
	m.loading = true
	return m, loadPageCmd(m.ctx, m.store, m.filter)
}

// Update handles messages
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.page = msg.page
		m.filter.Page = msg.page.Page
		items := make([]list.Item, len(msg.page.Items))
		for i, b := range msg.page.Items {
			items[i] = BookmarkItem{Bookmark: b}
		}
		m.list.Title = m.title()
		return m, m.list.SetItems(items)

	case bookmarkDeletedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.lastDeleted = msg.id
		return m.reload()

	case tea.KeyMsg:
		if m.confirming {
			if msg.String() == "esc" {
				m.confirming = false
				return m, nil
			}
			if !m.confirm.Update(msg) {
				return m, nil
			}
			m.confirming = false
			if !m.confirm.YesSelected {
				return m, nil
			}
			return m, deleteCmd(m.ctx, m.store, m.filter.UserID, m.pendingID)
		}

		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "n", "right":
			if m.page.HasNext && !m.loading {
				m.filter.Page++
				return m.reload()
			}
			return m, nil
		case "p", "left":
			if m.page.HasPrev && !m.loading {
				m.filter.Page--
				return m.reload()
			}
			return m, nil
		case "r":
			m.err = nil
			return m.reload()
		case "d":
			item, ok := m.list.SelectedItem().(BookmarkItem)
			if !ok {
				return m, nil
			}
			m.pendingID = item.Bookmark.ID
			m.confirm = NewConfirmationDialog("Delete bookmark",
				fmt.Sprintf("Delete #%d %s and its category links?", item.Bookmark.ID, item.Bookmark.URL))
			m.confirming = true
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowseModel) title() string {
	parts := []string{fmt.Sprintf("Bookmarks, page %d", m.filter.Page)}
	if m.filter.Topic != "" {
		parts = append(parts, "topic "+m.filter.Topic)
	}
	if len(m.filter.Categories) > 0 {
		parts = append(parts, "categories "+strings.Join(m.filter.Categories, ", "))
	}
	if m.filter.Status != "" {
		parts = append(parts, "status "+m.filter.Status)
	}
	return strings.Join(parts, " · ")
}

// View renders the browser
func (m BrowseModel) View() string {
	if m.confirming {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.confirm.View())
	}

	var status string
	switch {
	case m.err != nil:
		status = errorStyle.Render(m.err.Error())
	case m.loading:
		status = infoStyle.Render("Loading…")
	case m.lastDeleted != 0:
		status = successStyle.Render(fmt.Sprintf("Deleted #%d", m.lastDeleted))
	}

	keys := []string{FormatKey("↑/↓", "navigate")}
	if m.page.HasPrev {
		keys = append(keys, FormatKey("p", "previous page"))
	}
	if m.page.HasNext {
		keys = append(keys, FormatKey("n", "next page"))
	}
	keys = append(keys, FormatKey("d", "delete"), FormatKey("r", "refresh"), FormatKey("q", "quit"))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.list.View(),
		status,
		helpStyle.Render(strings.Join(keys, " • ")),
	)
}

// RunBrowser starts the interactive bookmark browser
func RunBrowser(ctx context.Context, store Bookmarks, filter models.BookmarkFilter) error {
	p := tea.NewProgram(NewBrowseModel(ctx, store, filter), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

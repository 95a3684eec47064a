// Package output renders command results as styled text or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/marshallshelly/linknova/internal/models"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	tagStyle     = lipgloss.NewStyle().Foreground(colorPrimary)
)

// Out is where results are written.
var Out io.Writer = os.Stdout

// Success prints a success message
func Success(format string, args ...interface{}) {
	fmt.Fprint(Out, successStyle.Render("✓ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Warning prints a warning message
func Warning(format string, args ...interface{}) {
	fmt.Fprint(Out, warningStyle.Render("⚠ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Error prints an error message to stderr
func Error(format string, args ...interface{}) {
	fmt.Fprint(os.Stderr, errorStyle.Render("✗ "))
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	fmt.Fprint(Out, infoStyle.Render("ℹ "))
	fmt.Fprintf(Out, format+"\n", args...)
}

// Muted prints a muted message
func Muted(format string, args ...interface{}) {
	fmt.Fprintln(Out, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func Section(title string) {
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, primaryStyle.Render(title))
	fmt.Fprintln(Out, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
	fmt.Fprintln(Out)
}

// StatusIcon returns a colored migration status icon
func StatusIcon(status string) string {
	switch status {
	case "applied":
		return successStyle.Render("✓")
	case "pending":
		return warningStyle.Render("○")
	case "failed":
		return errorStyle.Render("✗")
	default:
		return mutedStyle.Render("•")
	}
}

// JSON writes v as indented JSON.
func JSON(v interface{}) error {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Tags renders category names as a styled, comma separated list.
func Tags(names []string) string {
	if len(names) == 0 {
		return mutedStyle.Render("untagged")
	}
	return tagStyle.Render(strings.Join(names, ", "))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Bookmarks prints one page of bookmarks as a table.
func Bookmarks(p models.Page[models.BookmarkView]) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tURL\tTITLE\tCATEGORIES")
	for _, b := range p.Items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Status, b.URL, deref(b.Title), Tags(b.Categories))
	}
	_ = w.Flush()
	pageFooter(p.Page, p.Size, len(p.Items), p.HasPrev, p.HasNext)
}

// Bookmark prints a single bookmark.
func Bookmark(b *models.BookmarkView) {
	fmt.Fprintln(Out, primaryStyle.Render(fmt.Sprintf("#%d %s", b.ID, b.URL)))
	if t := deref(b.Title); t != "" {
		fmt.Fprintf(Out, "  title:      %s\n", t)
	}
	if r := deref(b.Referrer); r != "" {
		fmt.Fprintf(Out, "  referrer:   %s\n", r)
	}
	fmt.Fprintf(Out, "  status:     %s\n", b.Status)
	fmt.Fprintf(Out, "  categories: %s\n", Tags(b.Categories))
	fmt.Fprintf(Out, "  saved:      %s\n", b.CreatedOn.Format("2006-01-02 15:04:05"))
}

// Categories prints category views as a table.
func Categories(cs []models.CategoryView) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDISPLAY NAME\tPRIORITY\tACTIVE\tPUBLIC")
	for _, c := range cs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%t\t%t\n", c.ID, c.Name, deref(c.DisplayName), c.Priority, c.Active, c.Public)
	}
	_ = w.Flush()
}

// Topics prints topic views as a table.
func Topics(ts []models.TopicView) {
	w := tabwriter.NewWriter(Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tACTIVE\tCATEGORIES")
	for _, t := range ts {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", t.ID, t.Name, t.Active, Tags(t.Categories))
	}
	_ = w.Flush()
}

// TopicPage prints one page of topics.
func TopicPage(p models.Page[models.TopicView]) {
	Topics(p.Items)
	pageFooter(p.Page, p.Size, len(p.Items), p.HasPrev, p.HasNext)
}

func pageFooter(page, size, n int, prev, next bool) {
	var nav []string
	if prev {
		nav = append(nav, fmt.Sprintf("--page %d for previous", page-1))
	}
	if next {
		nav = append(nav, fmt.Sprintf("--page %d for more", page+1))
	}
	footer := fmt.Sprintf("page %d, %d of up to %d", page, n, size)
	if len(nav) > 0 {
		footer += " (" + strings.Join(nav, ", ") + ")"
	}
	Muted("%s", footer)
}

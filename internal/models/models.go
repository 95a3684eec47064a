// Package models holds the taxonomy records, their listing projections and
// the request inputs accepted by the store.
package models

import "time"

// DefaultName is the name of the per-user fallback topic and category.
const DefaultName = "default"

// StatusUnread is the status of a freshly saved bookmark.
const StatusUnread = "UN"

// Topic is a user-owned top-level grouping of categories.
type Topic struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName *string   `db:"display_name" json:"display_name,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	About       *string   `db:"about" json:"about,omitempty"`
	Priority    int32     `db:"priority" json:"priority"`
	Active      bool      `db:"active" json:"active"`
	Public      bool      `db:"public" json:"public"`
	UserID      string    `db:"user_id" json:"user_id"`
	CreatedOn   time.Time `db:"created_on" json:"created_on"`
	UpdatedOn   time.Time `db:"updated_on" json:"updated_on"`
}

// Category is a user-owned tag attached to bookmarks and topics.
type Category struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName *string   `db:"display_name" json:"display_name,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	About       *string   `db:"about" json:"about,omitempty"`
	Priority    int32     `db:"priority" json:"priority"`
	Active      bool      `db:"active" json:"active"`
	Public      bool      `db:"public" json:"public"`
	UserID      string    `db:"user_id" json:"user_id"`
	CreatedOn   time.Time `db:"created_on" json:"created_on"`
	UpdatedOn   time.Time `db:"updated_on" json:"updated_on"`
}

// CategoryView is the listing projection of a Category; it omits About.
type CategoryView struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName *string   `db:"display_name" json:"display_name,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	Priority    int32     `db:"priority" json:"priority"`
	Active      bool      `db:"active" json:"active"`
	Public      bool      `db:"public" json:"public"`
	UserID      string    `db:"user_id" json:"user_id"`
	CreatedOn   time.Time `db:"created_on" json:"created_on"`
	UpdatedOn   time.Time `db:"updated_on" json:"updated_on"`
}

// TopicView is the listing projection of a Topic with its category names
// sorted alphabetically; it omits About.
type TopicView struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	DisplayName *string   `db:"display_name" json:"display_name,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	Priority    int32     `db:"priority" json:"priority"`
	Active      bool      `db:"active" json:"active"`
	Public      bool      `db:"public" json:"public"`
	UserID      string    `db:"user_id" json:"user_id"`
	CreatedOn   time.Time `db:"created_on" json:"created_on"`
	UpdatedOn   time.Time `db:"updated_on" json:"updated_on"`
	Categories  []string  `db:"categories" json:"categories"`
}

// Bookmark is a saved link.
type Bookmark struct {
	ID        int64     `db:"id" json:"id"`
	URL       string    `db:"url" json:"url"`
	UserID    string    `db:"user_id" json:"user_id"`
	Title     *string   `db:"title" json:"title,omitempty"`
	Content   *string   `db:"content" json:"content,omitempty"`
	Referrer  *string   `db:"referrer" json:"referrer,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedOn time.Time `db:"created_on" json:"created_on"`
	UpdatedOn time.Time `db:"updated_on" json:"updated_on"`
}

// BookmarkView is a Bookmark with its category names sorted alphabetically.
type BookmarkView struct {
	ID         int64     `db:"id" json:"id"`
	URL        string    `db:"url" json:"url"`
	UserID     string    `db:"user_id" json:"user_id"`
	Title      *string   `db:"title" json:"title,omitempty"`
	Content    *string   `db:"content" json:"content,omitempty"`
	Referrer   *string   `db:"referrer" json:"referrer,omitempty"`
	Status     string    `db:"status" json:"status"`
	CreatedOn  time.Time `db:"created_on" json:"created_on"`
	UpdatedOn  time.Time `db:"updated_on" json:"updated_on"`
	Categories []string  `db:"categories" json:"categories"`
}

// Page is one window of a listing.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Size    int  `json:"size"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

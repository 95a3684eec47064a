package models

import "strings"

// TaxonInput creates or updates a topic or category by (name, user).
type TaxonInput struct {
	UserID      string  `json:"user_id" validate:"required,max=255"`
	Name        string  `json:"name" validate:"required,max=255,excludesall=0x2C"`
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1024"`
	About       *string `json:"about,omitempty"`
	Priority    int32   `json:"priority"`
	Active      bool    `json:"active"`
	Public      bool    `json:"public"`
}

// NewTaxonInput returns an active, private input with no metadata.
func NewTaxonInput(userID, name string) TaxonInput {
	return TaxonInput{UserID: userID, Name: name, Active: true}
}

// TopicInput creates a topic and links it to the named categories.
type TopicInput struct {
	TaxonInput
	Categories []string `json:"categories" validate:"dive,max=255,excludesall=0x2C"`
	// AllowUntagged skips linking the default category when Categories is empty.
	AllowUntagged bool `json:"allow_untagged"`
}

// BookmarkInput saves a link under the named categories.
type BookmarkInput struct {
	UserID     string   `json:"user_id" validate:"required,max=255"`
	URL        string   `json:"url" validate:"required,url,max=2048"`
	Title      *string  `json:"title,omitempty" validate:"omitempty,max=512"`
	Content    *string  `json:"content,omitempty"`
	Referrer   *string  `json:"referrer,omitempty" validate:"omitempty,max=2048"`
	Status     string   `json:"status" validate:"omitempty,max=16"`
	Categories []string `json:"categories" validate:"dive,max=255,excludesall=0x2C"`
	// AllowUntagged skips linking the default category when Categories is empty.
	AllowUntagged bool `json:"allow_untagged"`
}

// BookmarkPatch changes the provided bookmark fields; nil means unchanged.
type BookmarkPatch struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,max=512"`
	Content  *string `json:"content,omitempty"`
	Referrer *string `json:"referrer,omitempty" validate:"omitempty,max=2048"`
	Status   *string `json:"status,omitempty" validate:"omitempty,min=1,max=16"`
}

// IsEmpty reports whether the patch changes nothing.
func (p BookmarkPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Referrer == nil && p.Status == nil
}

// BookmarkFilter selects a page of a user's bookmarks. Empty fields do not filter.
type BookmarkFilter struct {
	UserID     string   `json:"user_id" validate:"required,max=255"`
	Topic      string   `json:"topic,omitempty" validate:"max=255"`
	Categories []string `json:"categories,omitempty"`
	Status     string   `json:"status,omitempty" validate:"max=16"`
	Page       int      `json:"page" validate:"gte=0,lte=1000000"`
	Size       int      `json:"size" validate:"gte=0"`
}

// TopicFilter selects a page of a user's topics. Empty fields do not filter.
type TopicFilter struct {
	UserID     string   `json:"user_id" validate:"required,max=255"`
	Categories []string `json:"categories,omitempty"`
	Active     *bool    `json:"active,omitempty"`
	Page       int      `json:"page" validate:"gte=0,lte=1000000"`
	Size       int      `json:"size" validate:"gte=0"`
}

// NormalizeNames trims names, drops empty ones and collapses duplicates
// while keeping first-seen order.
func NormalizeNames(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Package posts decodes post/project manifests and renders them as card lists.
package posts

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Post is one manifest entry.
type Post struct {
	URL     string   `json:"url"`
	Title   string   `json:"title"`
	Date    string   `json:"date,omitempty"`
	Tags    []string `json:"tags"`
	Excerpt string   `json:"excerpt,omitempty"`
}

// dateLayouts are tried in order when parsing Post.Date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// ParsedDate returns the post date, or false if it is absent or unparsable.
func (p Post) ParsedDate() (time.Time, bool) {
	s := strings.TrimSpace(p.Date)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Decode reads a JSON manifest. Entries without tags get an empty slice.
func Decode(r io.Reader) ([]Post, error) {
	var list []Post
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("decoding manifest: %w", err)
	}
	for i := range list {
		if list[i].Tags == nil {
			list[i].Tags = []string{}
		}
	}
	return list, nil
}

// Sort orders posts newest first. Posts without a usable date go last and
// keep their relative order.
func Sort(list []Post) {
	sort.SliceStable(list, func(i, j int) bool {
		a, aok := list[i].ParsedDate()
		b, bok := list[j].ParsedDate()
		if !aok || !bok {
			return aok && !bok
		}
		return a.After(b)
	})
}

// Merge flattens manifests in source order and sorts the result.
func Merge(manifests ...[]Post) []Post {
	var all []Post
	for _, m := range manifests {
		all = append(all, m...)
	}
	Sort(all)
	return all
}

// Limit returns the first max posts. max <= 0 means no limit.
func Limit(list []Post, max int) []Post {
	if max <= 0 || max >= len(list) {
		return list
	}
	return list[:max]
}

// Meta builds the card metadata line: "DATE • tag · tag". Either segment is
// left out when empty, along with the separator between them.
func (p Post) Meta() string {
	tags := strings.Join(p.Tags, " · ")
	switch {
	case p.Date == "":
		return tags
	case tags == "":
		return p.Date
	default:
		return p.Date + " • " + tags
	}
}

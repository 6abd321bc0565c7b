// Package exporter writes saved items out as bookmark HTML, JSON or YAML.
package exporter

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/nikbrunner/spots/internal/model"
)

// ExportHTML exports items to Netscape bookmark HTML format.
// Each category becomes a folder; uncategorized items stay at the root.
func ExportHTML(items []model.SavedItem) string {
	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Spots</TITLE>\n")
	b.WriteString("<H1>Spots</H1>\n")
	b.WriteString("<DL><p>\n")

	groups, names := groupByCategory(items)
	for _, name := range names {
		fmt.Fprintf(&b, "    <DT><H3>%s</H3>\n", html.EscapeString(name))
		b.WriteString("    <DL><p>\n")
		writeItems(&b, groups[name], 2)
		b.WriteString("    </DL><p>\n")
	}
	writeItems(&b, groups[""], 1)

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String()
}

// groupByCategory buckets items by category, keeping input order inside
// each bucket. names is sorted and excludes the uncategorized bucket.
func groupByCategory(items []model.SavedItem) (map[string][]model.SavedItem, []string) {
	groups := make(map[string][]model.SavedItem)
	var names []string
	for _, item := range items {
		c := item.CategoryName()
		if _, ok := groups[c]; !ok && c != "" {
			names = append(names, c)
		}
		groups[c] = append(groups[c], item)
	}
	sort.Strings(names)
	return groups, names
}

func writeItems(b *strings.Builder, items []model.SavedItem, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, item := range items {
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			prefix,
			html.EscapeString(item.URL),
			item.SavedAt.Unix(),
			html.EscapeString(item.DisplayName()),
		)
		if note := describe(item); note != "" {
			fmt.Fprintf(b, "%s<DD>%s\n", prefix, html.EscapeString(note))
		}
	}
}

// describe joins the location and date of an item for the <DD> line.
func describe(item model.SavedItem) string {
	var parts []string
	if item.Address != nil && *item.Address != "" {
		parts = append(parts, *item.Address)
	}
	if item.EventDate != nil && *item.EventDate != "" {
		parts = append(parts, *item.EventDate)
	}
	return strings.Join(parts, " | ")
}

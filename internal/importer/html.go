// Package importer reads post links out of bookmark exports.
package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/nikbrunner/spots/internal/capture"
	"github.com/nikbrunner/spots/internal/model"
)

// Post is a captured post read from an export, with the time it was bookmarked.
type Post struct {
	model.CapturedPost
	AddedAt time.Time
}

// Result holds the imported posts and the links that were not posts.
type Result struct {
	Posts   []Post
	Skipped []string
}

// ParseHTMLBookmarks parses Netscape bookmark HTML and keeps the Instagram
// and TikTok post links. The innermost folder name becomes the category;
// link text other than the URL itself becomes the name.
func ParseHTMLBookmarks(r io.Reader, now time.Time) (Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Result{}, err
	}

	var res Result

	// Folder names, innermost last
	var folderStack []string
	pendingFolder := "" // folder waiting to be pushed on next DL
	hasPending := false

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				if name := getTextContent(n); name != "" {
					pendingFolder, hasPending = name, true
				}
				return // Don't recurse into H3

			case "a":
				href := getAttr(n, "href")
				if href == "" {
					return
				}

				post, err := capture.ParsePostURL(href)
				if err != nil {
					res.Skipped = append(res.Skipped, href)
					return
				}

				if title := getTextContent(n); title != "" && title != href {
					post.Name = title
				}
				if len(folderStack) > 0 {
					post.Category = folderStack[len(folderStack)-1]
				}

				addedAt := now
				if addDate := getAttr(n, "add_date"); addDate != "" {
					if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
						addedAt = time.Unix(ts, 0)
					}
				}

				res.Posts = append(res.Posts, Post{CapturedPost: *post, AddedAt: addedAt})
				return // Don't recurse into A

			case "dl":
				// Definition list - marks folder contents
				pushed := false
				if hasPending {
					folderStack = append(folderStack, pendingFolder)
					hasPending = false
					pushed = true
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}

				if pushed {
					folderStack = folderStack[:len(folderStack)-1]
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return res, nil
}

// Item converts an imported post into a stored item without enrichment.
func (p Post) Item() model.SavedItem {
	name := p.Name
	if name == "" {
		name = model.DefaultName(p.Content)
	}
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return model.SavedItem{
		Platform:  p.Platform,
		URL:       p.URL,
		Author:    p.Author,
		Content:   p.Content,
		Images:    images,
		EventName: model.StringPtr(name),
		Category:  model.StringPtr(p.Category),
		SavedAt:   p.AddedAt,
	}
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}

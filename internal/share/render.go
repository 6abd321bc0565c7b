package share

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/share.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/share.html"))

type page struct {
	ID        string
	Category  string
	CountText string
	Views     int
	Located   []Card
	Missing   []Card
}

// Render writes the share page for list.
func Render(w io.Writer, list *List) error {
	located, missing := Cards(list.Items)
	return pageTemplate.Execute(w, page{
		ID:        list.ID,
		Category:  list.Category,
		CountText: CountText(list.Items),
		Views:     list.Views,
		Located:   located,
		Missing:   missing,
	})
}

package fixture

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/moolen/pagecheck/internal/elements"
	"github.com/moolen/pagecheck/internal/logging"
)

//go:embed assets
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html.tmpl"))

// navItem is one entry of a navigation group.
type navItem struct {
	Label string
	Path  string
}

type navGroup struct {
	Name  string
	Open  bool
	Items []navItem
}

// elementPaths are the routes of the Elements navigation list, in order.
var elementPaths = []string{
	"/text-box",
	"/checkbox",
	"/radio-button",
	"/webtables",
	"/buttons",
	"/links",
	"/broken",
	"/upload-download",
	"/dynamic-properties",
}

func navGroups() []navGroup {
	group := navGroup{Name: "Elements", Open: true}
	for i, label := range elements.NavItems {
		group.Items = append(group.Items, navItem{Label: label, Path: elementPaths[i]})
	}
	// A collapsed second group reuses the item ids, as the live page does.
	forms := navGroup{Name: "Forms", Items: []navItem{{Label: "Practice Form", Path: "/automation-practice-form"}}}
	return []navGroup{group, forms}
}

// pageTitles maps every served route to its main header.
func pageTitles() map[string]string {
	titles := map[string]string{"/elements": ""}
	for i, label := range elements.NavItems {
		titles[elementPaths[i]] = label
	}
	return titles
}

type pageData struct {
	Title  string
	Groups []navGroup
	Pages  map[string]string
	Tree   elements.Node
}

func staticFS() http.FileSystem {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	titles := pageTitles()
	title, ok := titles[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if title == "" {
		title = "Elements"
	}

	data := pageData{
		Title:  "DEMOQA - " + title,
		Groups: navGroups(),
		Pages:  titles,
		Tree:   elements.CheckboxTree(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.ErrorWithFields("Failed to render page",
			logging.Field("path", r.URL.Path),
			logging.Field("error", err.Error()))
	}
}

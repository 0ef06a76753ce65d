package http

import (
	"embed"
	"html/template"

	"github.com/halalcheck/client/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

// loadTemplates parses every page template together with the shared layout.
func loadTemplates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

// pageMeta is embedded in every page model; the layout reads it.
type pageMeta struct {
	Title   string
	Refresh int // seconds; zero disables auto refresh
}

type uploadPage struct {
	pageMeta
	VisitID  string
	FileName string
	Loading  bool
	Error    string
	View     *usecase.AnalysisView
}

type chatPage struct {
	pageMeta
	VisitID  string
	Question string
	Loading  bool
	Error    string
	View     *usecase.ChatView
}

type messagePage struct {
	pageMeta
	Message string
	Restart string
}

package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/ebitech02/WanderWise/internal/modules/recommend/types"
)

//go:embed templates
var viewsFS embed.FS

var pagesTmpl *template.Template

var funcs = template.FuncMap{
	"hasPrefix": strings.HasPrefix,
	// paragraphs splits a description into its non-empty lines.
	"paragraphs": func(s string) []string {
		var out []string
		for _, p := range strings.Split(s, "\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
}

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("pages").Funcs(funcs).ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	pagesTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type Page struct {
	Title string
}

type FormData struct {
	Page
	Continents        []string
	Climates          []string
	SelectedContinent string
	SelectedClimate   string
	Error             string
}

type RecommendationsData struct {
	Page
	Continent string
	Climate   string
	Countries []types.CountryBundle
	Skipped   int
}

type ErrorData struct {
	Page
	Status  int
	Message string
}

func (d ErrorData) StatusText() string { return http.StatusText(d.Status) }

func render(w io.Writer, name string, data any) error {
	if pagesTmpl == nil {
		return errors.New("page templates not loaded: call views.LoadTemplates during startup")
	}
	return pagesTmpl.ExecuteTemplate(w, name, data)
}

func RenderIndex(w io.Writer) error {
	return render(w, "index.html", Page{})
}

func RenderForm(w io.Writer, data *FormData) error {
	if data.Title == "" {
		data.Title = "Plan a trip"
	}
	return render(w, "form.html", data)
}

func RenderRecommendations(w io.Writer, data *RecommendationsData) error {
	if data.Title == "" {
		data.Title = "Recommendations"
	}
	return render(w, "recommendations.html", data)
}

func RenderError(w io.Writer, data *ErrorData) error {
	if data.Title == "" {
		data.Title = http.StatusText(data.Status)
	}
	return render(w, "error.html", data)
}

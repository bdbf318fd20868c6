package export

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

var reportTemplate *template.Template

func init() {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
		"formatDate": func(t time.Time, layout string) string {
			return t.Format(layout)
		},
	}
	reportTemplate = template.Must(
		template.New("report.html").Funcs(funcMap).ParseFS(templateFS, "templates/report.html"),
	)
}

// TemplateData holds data for report rendering.
type TemplateData struct {
	Title       string
	Subtitle    string
	GeneratedAt time.Time
	Groups      []TemplateGroup
}

// TemplateGroup holds one group section of the report.
type TemplateGroup struct {
	Name       string
	Progress   int
	Objectives []TemplateObjective
}

// TemplateObjective holds objective data for the template.
type TemplateObjective struct {
	Title      string
	Purpose    string
	Progress   int
	Weight     int
	TargetDate string
	Overdue    bool
	KeyResults []TemplateKeyResult
}

// TemplateKeyResult holds key result data for the template.
type TemplateKeyResult struct {
	Title           string
	Progress        int
	Current         string
	Target          string
	StatusLabel     string
	ConfidenceLabel string
}

// RenderReportHTML renders the report template with provided data.
func RenderReportHTML(data TemplateData) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

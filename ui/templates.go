package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"absentee/internal/dashboard"
	"absentee/internal/errors"
	"absentee/ui/templates/fragments"
)

// parseTemplates parses every page and fragment, naming each by its path under templates/
func parseTemplates(files fs.FS) (*template.Template, error) {
	templatesFS, err := fs.Sub(files, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create templates filesystem: %w", err)
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}
	templates := template.New("").Funcs(funcMap)

	for _, path := range fragments.GetAllTemplatePaths() {
		content, err := fs.ReadFile(templatesFS, path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", path, err)
		}
		if _, err := templates.New(path).Parse(string(content)); err != nil {
			return nil, fmt.Errorf("failed to parse %s template %s: %w", fragments.GetTemplateCategory(path), path, err)
		}
	}
	return templates, nil
}

// renderTemplate executes a template into a buffer first so a failing template never sends a partial page
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("template rendering failed", "template", templateName, "data_type", fmt.Sprintf("%T", data), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(errors.InternalError("template rendering failed")))
		return
	}

	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// page carries the fields every page template reads
type page struct {
	Title      string
	Error      string
	HasSession bool
	Query      string
}

type indexView struct {
	page
	MaxUploadMB int64
}

type dashboardView struct {
	page
	Dashboard *dashboard.Dashboard
	Charts    []chartView
	Table     tableView
}

type chartView struct {
	Name  string
	Title string
	URL   string
}

type tableView struct {
	Headers []string
	Rows    [][]string
	Shown   int
	Total   int
}

type reportView struct {
	page
	Body template.HTML
}

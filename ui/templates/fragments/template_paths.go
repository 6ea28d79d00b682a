// Package fragments provides template path constants for organized template management
package fragments

import "strings"

// Template path constants, relative to ui/templates
const (
	// Pages
	IndexPage     = "index.html"
	DashboardPage = "dashboard.html"
	ReportPage    = "report.html"

	// Layout templates
	Head   = "fragments/layout/head.html"
	Header = "fragments/layout/header.html"
	Footer = "fragments/layout/footer.html"

	// Dashboard templates
	Thresholds = "fragments/dashboard/thresholds.html"
	Verdicts   = "fragments/dashboard/verdicts.html"
	Charts     = "fragments/dashboard/charts.html"
	DataTable  = "fragments/dashboard/data_table.html"

	// Status templates
	ErrorBanner = "fragments/status/error_banner.html"
)

// GetAllTemplatePaths returns all template paths for registration; fragments come first
func GetAllTemplatePaths() []string {
	return []string{
		// Layout
		Head,
		Header,
		Footer,

		// Dashboard
		Thresholds,
		Verdicts,
		Charts,
		DataTable,

		// Status
		ErrorBanner,

		// Pages
		IndexPage,
		DashboardPage,
		ReportPage,
	}
}

// GetTemplateCategory returns the category for a given template path
func GetTemplateCategory(templatePath string) string {
	switch {
	case strings.HasPrefix(templatePath, "fragments/layout/"):
		return "layout"
	case strings.HasPrefix(templatePath, "fragments/dashboard/"):
		return "dashboard"
	case strings.HasPrefix(templatePath, "fragments/status/"):
		return "status"
	case !strings.Contains(templatePath, "/"):
		return "page"
	default:
		return "unknown"
	}
}

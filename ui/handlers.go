package ui

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"absentee/adapters/excel"
	"absentee/domain/attendance"
	"absentee/internal/dashboard"
	"absentee/internal/errors"
	"absentee/internal/observability"
	"absentee/internal/report"
	"absentee/ui/middleware"
	"absentee/ui/templates/fragments"
)

var chartTitles = map[string]string{
	dashboard.ChartBoxSex:  "Box plot: men and women",
	dashboard.ChartHistSex: "Histogram: men and women",
	dashboard.ChartBoxAge:  "Box plot: older and younger employees",
	dashboard.ChartHistAge: "Histogram: older and younger employees",
}

// handleIndex shows the upload form, or sends a caller with a live session to the dashboard
func (s *Server) handleIndex(c *gin.Context) {
	if id, err := c.Cookie(s.config.Session.CookieName); err == nil {
		if _, err := s.sessions.Get(id); err == nil {
			c.Redirect(http.StatusSeeOther, "/dashboard")
			return
		}
	}
	s.renderTemplate(c, http.StatusOK, fragments.IndexPage, s.indexView(""))
}

// handleUpload loads the posted file into a new session, replacing the caller's previous one
func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.config.Upload.MaxBytes)

	file, header, err := c.Request.FormFile(uploadField)
	if err != nil {
		if isTooLarge(err) {
			s.rejectUpload(c, http.StatusRequestEntityTooLarge,
				errors.InvalidInput(fmt.Sprintf("the file exceeds the %d MB upload limit", s.maxUploadMB())))
			return
		}
		s.rejectUpload(c, http.StatusBadRequest, errors.InvalidInput("choose a CSV or XLSX file to upload"))
		return
	}
	defer file.Close()

	ds, err := excel.Load(file, header.Filename)
	if err != nil {
		s.rejectUpload(c, errors.HTTPStatus(err), err)
		return
	}

	previous, _ := c.Cookie(s.config.Session.CookieName)
	sess := s.sessions.Replace(previous, ds)
	observability.UploadsTotal.WithLabelValues(observability.UploadAccepted).Inc()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.config.Session.CookieName, sess.ID.String(), int(s.config.Session.TTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) rejectUpload(c *gin.Context, status int, err error) {
	observability.UploadsTotal.WithLabelValues(observability.UploadRejected).Inc()
	s.logger.Warn("upload rejected", "status", status, "code", errors.GetCode(err), "error", err)
	_ = c.Error(err)

	if wantsJSON(c) {
		c.AbortWithStatusJSON(status, errorBody(err))
		return
	}
	s.renderTemplate(c, status, fragments.IndexPage, s.indexView(err.Error()))
}

// handleReset drops the caller's session
func (s *Server) handleReset(c *gin.Context) {
	if id, err := c.Cookie(s.config.Session.CookieName); err == nil {
		s.sessions.Delete(id)
	}
	c.SetCookie(s.config.Session.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// handleDashboard renders the dashboard. Bad thresholds keep the page up with the
// defaults and an error banner.
func (s *Server) handleDashboard(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)
	ds := sess.Dataset

	status := http.StatusOK
	var banner string
	d, err := s.dashboardFor(c, ds)
	if err != nil {
		switch errors.GetCode(err) {
		case errors.CodeRangeError, errors.CodeInvalidInput:
			status, banner = errors.HTTPStatus(err), err.Error()
			_ = c.Error(err)
			d, err = s.compute(ds, ds.DefaultThresholds())
		}
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	s.recordVerdicts(d)

	query := thresholdQuery(d.Thresholds)
	view := dashboardView{
		page:      page{Title: "Dashboard", Error: banner, HasSession: true, Query: query},
		Dashboard: d,
		Table:     s.tableView(ds),
	}
	for _, name := range dashboard.ChartNames {
		view.Charts = append(view.Charts, chartView{
			Name:  name,
			Title: chartTitles[name],
			URL:   "/charts/" + name + ".svg" + query,
		})
	}
	s.renderTemplate(c, status, fragments.DashboardPage, view)
}

// handleAPIDashboard returns the dashboard computation as JSON
func (s *Server) handleAPIDashboard(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	d, err := s.dashboardFor(c, sess.Dataset)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.recordVerdicts(d)
	c.JSON(http.StatusOK, d)
}

// handleChart renders one of the four charts as SVG
func (s *Server) handleChart(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	file := c.Param("file")
	name, ok := strings.CutSuffix(file, ".svg")
	if !ok {
		s.fail(c, errors.NotFound(fmt.Sprintf("chart %q", file)))
		return
	}

	d, err := s.dashboardFor(c, sess.Dataset)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.charts.Render(&buf, name, d); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml", buf.Bytes())
}

// handleReport renders the markdown report as an HTML page
func (s *Server) handleReport(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	d, md, err := s.report(c, sess.Dataset)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.renderTemplate(c, http.StatusOK, fragments.ReportPage, reportView{
		page: page{Title: "Report", HasSession: true, Query: thresholdQuery(d.Thresholds)},
		Body: template.HTML(report.HTML(md)),
	})
}

// handleReportMarkdown serves the report source
func (s *Server) handleReportMarkdown(c *gin.Context) {
	sess, _ := middleware.CurrentSession(c)

	_, md, err := s.report(c, sess.Dataset)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", md)
}

func (s *Server) report(c *gin.Context, ds *attendance.Dataset) (*dashboard.Dashboard, []byte, error) {
	d, err := s.dashboardFor(c, ds)
	if err != nil {
		return nil, nil, err
	}
	md, err := report.Markdown(d)
	if err != nil {
		return nil, nil, err
	}
	return d, md, nil
}

// dashboardFor computes the dashboard for the thresholds in the query string
func (s *Server) dashboardFor(c *gin.Context, ds *attendance.Dataset) (*dashboard.Dashboard, error) {
	th, err := parseThresholds(c, ds)
	if err != nil {
		return nil, err
	}
	return s.compute(ds, th)
}

func (s *Server) compute(ds *attendance.Dataset, th attendance.Thresholds) (*dashboard.Dashboard, error) {
	return dashboard.Compute(ds, th, dashboard.Options{Bins: s.config.Dashboard.HistogramBins})
}

// parseThresholds reads ?age= and ?sick_days=; a missing value falls back to the column minimum
func parseThresholds(c *gin.Context, ds *attendance.Dataset) (attendance.Thresholds, error) {
	th := ds.DefaultThresholds()
	if err := c.ShouldBindQuery(&th); err != nil {
		return attendance.Thresholds{}, errors.InvalidInput("age and sick_days must be integers")
	}
	return th, nil
}

func thresholdQuery(th attendance.Thresholds) string {
	return fmt.Sprintf("?age=%d&sick_days=%d", th.AgeThreshold, th.SickDaysThreshold)
}

func (s *Server) recordVerdicts(d *dashboard.Dashboard) {
	for _, h := range d.Hypotheses {
		observability.VerdictsTotal.WithLabelValues(h.Key, string(h.Verdict.Status)).Inc()
	}
}

func (s *Server) tableView(ds *attendance.Dataset) tableView {
	rows := ds.Raw
	if limit := s.config.Dashboard.TableRowLimit; limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return tableView{Headers: ds.Headers, Rows: rows, Shown: len(rows), Total: len(ds.Raw)}
}

func (s *Server) indexView(message string) indexView {
	return indexView{
		page:        page{Title: "Upload", Error: message},
		MaxUploadMB: s.maxUploadMB(),
	}
}

func (s *Server) maxUploadMB() int64 {
	return s.config.Upload.MaxBytes / (1024 * 1024)
}

// fail answers with the JSON error body and the status mapped from the error code
func (s *Server) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorBody(err))
}

func errorBody(err error) gin.H {
	return gin.H{"error": gin.H{"code": errors.GetCode(err), "message": err.Error()}}
}

func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return stderrors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

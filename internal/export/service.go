package export

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"northstar/api/internal/okr"
)

// Service renders progress reports from the live document.
type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Report renders a progress report for the objectives matching req, as PDF
// by default or raw HTML when requested.
func (s *Service) Report(doc *okr.Document, today time.Time, req Request) (*Result, error) {
	data := BuildReportData(doc, today, req)
	html, err := RenderReportHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render report template: %w", err)
	}
	switch req.Format {
	case FormatHTML:
		return &Result{
			Data:     []byte(html),
			Filename: sanitizeFilename(data.Title) + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF, "":
		return exportPDF(html, data.Title)
	default:
		return nil, fmt.Errorf("unsupported format: %s", req.Format)
	}
}

// BuildReportData assembles the template data for a report. Groups appear in
// their canonical order and empty groups are dropped.
func BuildReportData(doc *okr.Document, today time.Time, req Request) TemplateData {
	data := TemplateData{
		Title:       "OKR Progress Report",
		Subtitle:    reportSubtitle(req),
		GeneratedAt: today,
	}

	for _, group := range []string{okr.GroupPersonal, okr.GroupTeam, okr.GroupCompany} {
		if req.Group != "" && req.Group != group {
			continue
		}
		var section TemplateGroup
		section.Name = group
		sum := 0
		for _, obj := range doc.Objectives {
			if obj.Group != group {
				continue
			}
			if req.Year != 0 && obj.Year != req.Year {
				continue
			}
			if req.Quarter != 0 && obj.Quarter != req.Quarter {
				continue
			}
			view := okr.BuildObjectiveView(today, obj)
			section.Objectives = append(section.Objectives, templateObjective(view))
			sum += view.Progress
		}
		if len(section.Objectives) == 0 {
			continue
		}
		section.Progress = int(math.Round(float64(sum) / float64(len(section.Objectives))))
		data.Groups = append(data.Groups, section)
	}
	return data
}

func reportSubtitle(req Request) string {
	if req.Year == 0 && req.Quarter == 0 {
		return ""
	}
	if req.Quarter == 0 {
		return strconv.Itoa(req.Year)
	}
	if req.Year == 0 {
		return fmt.Sprintf("Q%d", req.Quarter)
	}
	return fmt.Sprintf("Q%d %d", req.Quarter, req.Year)
}

func templateObjective(view okr.ObjectiveView) TemplateObjective {
	obj := TemplateObjective{
		Title:      view.Objective.Title,
		Purpose:    view.Objective.Purpose,
		Progress:   view.Progress,
		Weight:     view.Objective.Weight,
		TargetDate: view.Objective.TargetDate,
		Overdue:    view.OutlineClass == okr.OutlineOverdueRed || view.OutlineClass == okr.OutlineOverdueYellow,
	}
	for _, kr := range view.KeyResults {
		obj.KeyResults = append(obj.KeyResults, TemplateKeyResult{
			Title:           kr.KeyResult.Title,
			Progress:        kr.Progress,
			Current:         formatNumber(kr.KeyResult.Current),
			Target:          formatNumber(kr.KeyResult.Target),
			StatusLabel:     kr.StatusLabel,
			ConfidenceLabel: kr.ConfidenceLabel,
		})
	}
	return obj
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

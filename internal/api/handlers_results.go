package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/pchreport/internal/pipeline"
	"github.com/dgallion1/pchreport/internal/report"
	"github.com/go-chi/chi/v5"
)

const (
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// completedResult returns the job result, writing an error response when the
// job is unknown or not yet completed.
func (s *Server) completedResult(w http.ResponseWriter, r *http.Request) (*pipeline.Job, *pipeline.Result, bool) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil, nil, false
	}
	res := job.Result()
	if res == nil {
		snap := job.Snapshot()
		jsonError(w, fmt.Sprintf("job is %s", snap.Status), http.StatusConflict)
		return nil, nil, false
	}
	return job, res, true
}

func (s *Server) handleReportRMS(w http.ResponseWriter, r *http.Request) {
	job, res, ok := s.completedResult(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		JobID string `json:"job_id"`
		report.RMSJSON
	}{job.ID, report.NewRMSJSON(res.RMS, res.RSS.Skipped, s.labels)})
}

func (s *Server) handleReportDocument(w http.ResponseWriter, r *http.Request) {
	job, res, ok := s.completedResult(w, r)
	if !ok {
		return
	}
	serveArtifact(w, contentTypeDocx, artifactName(job.Filename, "docx"), res.Document)
}

func (s *Server) handleReportWorkbook(w http.ResponseWriter, r *http.Request) {
	job, res, ok := s.completedResult(w, r)
	if !ok {
		return
	}
	serveArtifact(w, contentTypeXlsx, artifactName(job.Filename, "xlsx"), res.Workbook)
}

func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.completedResult(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(res.SummaryHTML)
}

func serveArtifact(w http.ResponseWriter, contentType, name string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(data)
}

// artifactName derives a download name from the uploaded file, e.g.
// run.pch -> run_report.docx.
func artifactName(filename, ext string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		base = "report"
	}
	return base + "_report." + ext
}

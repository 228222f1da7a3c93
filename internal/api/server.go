package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fmuoria/resume-reviser/internal/apperr"
	"github.com/fmuoria/resume-reviser/internal/export"
	"github.com/fmuoria/resume-reviser/internal/ingestion"
	"github.com/fmuoria/resume-reviser/internal/logging"
	"github.com/fmuoria/resume-reviser/internal/render"
	"github.com/fmuoria/resume-reviser/internal/session"
)

// Content types of the downloads
const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypePDF  = "application/pdf"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PostingFetcher returns the readable text of a job posting URL
type PostingFetcher func(ctx context.Context, url string) (string, error)

// Server handles HTTP requests
type Server struct {
	registry     *Registry
	fileHandler  *ingestion.FileHandler
	fetchPosting PostingFetcher
}

// NewServer creates a new API server
func NewServer(registry *Registry, fileHandler *ingestion.FileHandler, fetchPosting PostingFetcher) *Server {
	if fetchPosting == nil {
		fetchPosting = func(ctx context.Context, url string) (string, error) {
			return ingestion.FetchJobPosting(ctx, nil, url)
		}
	}
	return &Server{
		registry:     registry,
		fileHandler:  fileHandler,
		fetchPosting: fetchPosting,
	}
}

// Router returns the HTTP router
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = s.fileHandler.MaxBytes() + 1<<20
	router.Use(RequestID(), Logging(), Recovery())

	router.GET("/", s.handleRoot)

	v1 := router.Group("/api/v1")
	v1.GET("/health", s.handleHealth)
	v1.POST("/sessions", s.handleCreateSession)

	sessions := v1.Group("/sessions/:id")
	sessions.Use(s.loadSession)
	sessions.GET("", s.handleGetSession)
	sessions.DELETE("", s.handleDeleteSession)
	sessions.POST("/reset", s.handleReset)
	sessions.PUT("/file", s.handleUploadFile)
	sessions.DELETE("/file", s.handleRemoveFile)
	sessions.PUT("/job-description", s.handleJobDescription)
	sessions.POST("/analysis", s.handleAnalysis)
	sessions.GET("/resume.txt", s.handleText)
	sessions.GET("/resume.pdf", s.download(render.PDFFileName, contentTypePDF, (*session.Session).PDF))
	sessions.GET("/resume.docx", s.download(render.DOCXFileName, contentTypeDOCX, (*session.Session).DOCX))
	sessions.GET("/report.xlsx", s.download(export.WorkbookFileName, contentTypeXLSX, (*session.Session).Workbook))

	return router
}

// handleRoot provides API information
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "Resume Reviser",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"POST /api/v1/sessions":                    "Start a revision session",
			"PUT /api/v1/sessions/:id/file":            "Upload a resume (.pdf or .docx)",
			"PUT /api/v1/sessions/:id/job-description": "Set the job description text or URL",
			"POST /api/v1/sessions/:id/analysis":       "Score and revise the resume",
			"GET /api/v1/sessions/:id/resume.pdf":      "Download the revised resume",
			"GET /api/v1/sessions/:id/report.xlsx":     "Download the analysis workbook",
			"GET /api/v1/health":                       "Health check",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"sessions": s.registry.Len(),
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	id, sess := s.registry.Create()
	c.JSON(http.StatusCreated, gin.H{
		"id":      id,
		"session": sess.Snapshot(),
	})
}

// loadSession resolves :id or aborts with 404
func (s *Server) loadSession(c *gin.Context) {
	sess, ok := s.registry.Get(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, string(apperr.NotFound), "Session not found.")
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

const sessionKey = "session"

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

func (s *Server) handleGetSession(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Snapshot())
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	s.registry.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleReset(c *gin.Context) {
	sess := currentSession(c)
	sess.Reset()
	c.JSON(http.StatusOK, sess.Snapshot())
}

// handleUploadFile reads the multipart "file" field and parses it
func (s *Server) handleUploadFile(c *gin.Context) {
	sess := currentSession(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "A multipart field named \"file\" is required.")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondAppError(c, err)
		return
	}
	defer file.Close()

	upload, err := s.fileHandler.ReadUpload(fileHeader.Filename, file)
	if err != nil {
		respondAppError(c, err)
		return
	}

	if err := sess.SelectFile(c.Request.Context(), upload); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (s *Server) handleRemoveFile(c *gin.Context) {
	sess := currentSession(c)
	if err := sess.RemoveFile(); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

type jobDescriptionRequest struct {
	JobDescription string `json:"jobDescription"`
	JobURL         string `json:"jobUrl" binding:"omitempty,url"`
}

// handleJobDescription sets the job description from text or from a posting URL
func (s *Server) handleJobDescription(c *gin.Context) {
	sess := currentSession(c)

	var req jobDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", "Send {\"jobDescription\": \"...\"} or {\"jobUrl\": \"https://...\"}.")
		return
	}

	text := req.JobDescription
	if url := strings.TrimSpace(req.JobURL); url != "" {
		fetched, err := s.fetchPosting(c.Request.Context(), url)
		if err != nil {
			logging.FromContext(c.Request.Context()).Warn("failed to fetch job posting", "url", url, "error", err)
			respondAppError(c, apperr.Wrap(apperr.IncompleteUserInput,
				"Could not read a job description from that URL. Paste the text instead.", err))
			return
		}
		text = fetched
	}

	if err := sess.SetJobDescription(text); err != nil {
		respondAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// handleAnalysis runs the analysis and blocks until it completes
func (s *Server) handleAnalysis(c *gin.Context) {
	sess := currentSession(c)

	// a dropped client does not cancel the model call
	result, err := sess.Submit(context.WithoutCancel(c.Request.Context()))
	if errors.Is(err, session.ErrSuperseded) {
		respondError(c, http.StatusConflict, "superseded", "The session was reset while the analysis was running.")
		return
	}
	if err != nil {
		respondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"session": sess.Snapshot(),
	})
}

func (s *Server) handleText(c *gin.Context) {
	text, err := currentSession(c).RevisedText()
	if err != nil {
		respondAppError(c, err)
		return
	}
	attach(c, export.TextFileName, contentTypeText, []byte(text))
}

// download serves one rendering of the current result as an attachment
func (s *Server) download(filename, contentType string, produce func(*session.Session) ([]byte, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := produce(currentSession(c))
		if err != nil {
			respondAppError(c, err)
			return
		}
		attach(c, filename, contentType, data)
	}
}

func attach(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

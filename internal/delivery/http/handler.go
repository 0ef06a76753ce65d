package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/halalcheck/client/internal/domain"
	"github.com/halalcheck/client/internal/usecase"
	"go.uber.org/zap"
)

const version = "1.0.0"

// HandlerConfig holds the settings the pages need
type HandlerConfig struct {
	ConfidenceThreshold float64
	VisitTTL            time.Duration
	PollInterval        time.Duration
	Observer            domain.Observer
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	client   domain.AnalysisClient
	visits   *visitRegistry
	config   HandlerConfig
	observer domain.Observer
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(client domain.AnalysisClient, visits domain.VisitRepository, config HandlerConfig, logger *zap.Logger) *Handler {
	if config.VisitTTL <= 0 {
		config.VisitTTL = 30 * time.Minute
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}
	if config.ConfidenceThreshold == 0 {
		config.ConfidenceThreshold = domain.DefaultConfidenceThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := config.Observer
	if observer == nil {
		observer = domain.NopObserver
	}

	return &Handler{
		client:   client,
		visits:   &visitRegistry{repo: visits, ttl: config.VisitTTL},
		config:   config,
		observer: observer,
		logger:   logger,
	}
}

// Drain waits for submissions still in flight on any live visit. Call it
// after the server stops accepting requests.
func (h *Handler) Drain(ctx context.Context) error {
	return h.visits.drain(ctx)
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(c *gin.Context) {
	resp := gin.H{
		"status":  "healthy",
		"service": "halalcheck-web",
		"version": version,
	}
	if n, ok := h.visits.active(); ok {
		resp["active_visits"] = n
	}
	c.JSON(http.StatusOK, resp)
}

// Home renders the landing page
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", messagePage{pageMeta: pageMeta{Title: "Home"}})
}

// Guide renders the usage guide
func (h *Handler) Guide(c *gin.Context) {
	c.HTML(http.StatusOK, "guide.html", messagePage{pageMeta: pageMeta{Title: "Guide"}})
}

// NewUploadVisit mounts a fresh analysis workflow and redirects to it
func (h *Handler) NewUploadVisit(c *gin.Context) {
	id := newVisitID()
	workflow := usecase.NewAnalysisWorkflow(h.client, usecase.AnalysisWorkflowConfig{
		ConfidenceThreshold: h.config.ConfidenceThreshold,
		VisitID:             id,
		Observer:            h.observer,
	})
	if err := h.visits.put(c.Request.Context(), id, workflow); err != nil {
		h.internalError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/upload/"+id)
}

// UploadPage renders the current state of an upload visit
func (h *Handler) UploadPage(c *gin.Context) {
	id := c.Param("visit")
	workflow, err := h.visits.analysis(c.Request.Context(), id)
	if err != nil {
		h.visitError(c, err, "/upload")
		return
	}

	state := workflow.Snapshot()
	page := uploadPage{
		pageMeta: pageMeta{Title: "Upload"},
		VisitID:  id,
		FileName: state.FileName,
		Loading:  state.Loading(),
		Error:    state.Error,
	}
	if state.Loading() {
		page.Refresh = h.pollSeconds()
	}
	page.View = usecase.BuildAnalysisView(state.Result)
	c.HTML(http.StatusOK, "upload.html", page)
}

// SelectFile replaces the visit's chosen image
func (h *Handler) SelectFile(c *gin.Context) {
	id := c.Param("visit")
	workflow, err := h.visits.analysis(c.Request.Context(), id)
	if err != nil {
		h.visitError(c, err, "/upload")
		return
	}

	upload, present, err := readUpload(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}
	if !present {
		upload = domain.Upload{}
	} else {
		h.noteUpload(id, upload)
	}
	if err := workflow.SelectFile(upload); err != nil {
		h.visitError(c, err, "/upload")
		return
	}
	c.Redirect(http.StatusSeeOther, "/upload/"+id)
}

// SubmitUpload selects the posted image, if any, and starts the analysis
func (h *Handler) SubmitUpload(c *gin.Context) {
	id := c.Param("visit")
	workflow, err := h.visits.analysis(c.Request.Context(), id)
	if err != nil {
		h.visitError(c, err, "/upload")
		return
	}

	upload, present, err := readUpload(c)
	if err != nil {
		h.uploadError(c, err)
		return
	}
	if present {
		h.noteUpload(id, upload)
		if err := workflow.SelectFile(upload); err != nil {
			h.visitError(c, err, "/upload")
			return
		}
	}

	h.afterSubmit(c, workflow.Submit(c.Request.Context()), "/upload/"+id)
}

// NewChatVisit mounts a fresh chat workflow and redirects to it
func (h *Handler) NewChatVisit(c *gin.Context) {
	id := newVisitID()
	workflow := usecase.NewChatWorkflow(h.client, usecase.ChatWorkflowConfig{
		VisitID:  id,
		Observer: h.observer,
	})
	if err := h.visits.put(c.Request.Context(), id, workflow); err != nil {
		h.internalError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/chat/"+id)
}

// ChatPage renders the current state of a chat visit
func (h *Handler) ChatPage(c *gin.Context) {
	id := c.Param("visit")
	workflow, err := h.visits.chat(c.Request.Context(), id)
	if err != nil {
		h.visitError(c, err, "/chat")
		return
	}

	state := workflow.Snapshot()
	page := chatPage{
		pageMeta: pageMeta{Title: "Chatbot"},
		VisitID:  id,
		Question: state.Question,
		Loading:  state.Loading(),
		Error:    state.Error,
	}
	if state.Loading() {
		page.Refresh = h.pollSeconds()
	}
	page.View = usecase.BuildChatView(state.Result)
	c.HTML(http.StatusOK, "chat.html", page)
}

// SubmitChat asks the posted question
func (h *Handler) SubmitChat(c *gin.Context) {
	id := c.Param("visit")
	workflow, err := h.visits.chat(c.Request.Context(), id)
	if err != nil {
		h.visitError(c, err, "/chat")
		return
	}

	h.afterSubmit(c, workflow.Ask(c.Request.Context(), c.PostForm("question")), "/chat/"+id)
}

// visitResponse is the JSON snapshot of a page visit
type visitResponse struct {
	VisitID  string                `json:"visit_id"`
	Workflow string                `json:"workflow"`
	Phase    usecase.Phase         `json:"phase"`
	Loading  bool                  `json:"loading"`
	Error    string                `json:"error,omitempty"`
	FileName string                `json:"file_name,omitempty"`
	Question string                `json:"question,omitempty"`
	Analysis *usecase.AnalysisView `json:"analysis,omitempty"`
	Chat     *usecase.ChatView     `json:"chat,omitempty"`
}

// GetVisit returns the visit state as JSON
func (h *Handler) GetVisit(c *gin.Context) {
	id := c.Param("visit")
	value, err := h.visits.lookup(c.Request.Context(), id)
	if err != nil {
		h.jsonVisitError(c, err)
		return
	}

	resp := visitResponse{VisitID: id}
	switch w := value.(type) {
	case *usecase.AnalysisWorkflow:
		s := w.Snapshot()
		resp.Workflow = domain.WorkflowAnalysis
		resp.Phase, resp.Loading, resp.Error, resp.FileName = s.Phase, s.Loading(), s.Error, s.FileName
		resp.Analysis = usecase.BuildAnalysisView(s.Result)
	case *usecase.ChatWorkflow:
		s := w.Snapshot()
		resp.Workflow = domain.WorkflowChat
		resp.Phase, resp.Loading, resp.Error, resp.Question = s.Phase, s.Loading(), s.Error, s.Question
		resp.Chat = usecase.BuildChatView(s.Result)
	default:
		h.jsonVisitError(c, domain.ErrVisitNotFound)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteVisit unmounts a page visit; an in-flight result is discarded
func (h *Handler) DeleteVisit(c *gin.Context) {
	if err := h.visits.remove(c.Request.Context(), c.Param("visit")); err != nil {
		h.jsonVisitError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// afterSubmit maps the immediate outcome of Submit. Validation failures are
// part of the workflow state, so the page simply shows them.
func (h *Handler) afterSubmit(c *gin.Context, err error, location string) {
	var vErr *domain.ValidationError
	switch {
	case err == nil, errors.As(err, &vErr), errors.Is(err, domain.ErrSubmissionInFlight):
		c.Redirect(http.StatusSeeOther, location)
	case errors.Is(err, domain.ErrWorkflowClosed):
		h.visitError(c, domain.ErrVisitNotFound, location)
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) pollSeconds() int {
	secs := int(h.config.PollInterval / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// readUpload pulls the "file" part out of a multipart form. present is false
// when the browser sent no file.
func readUpload(c *gin.Context) (upload domain.Upload, present bool, err error) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return domain.Upload{}, false, nil
		}
		return domain.Upload{}, false, err
	}
	if header.Size > domain.MaxUploadSize {
		return domain.Upload{}, false, errUploadTooLarge
	}

	f, err := header.Open()
	if err != nil {
		return domain.Upload{}, false, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, domain.MaxUploadSize+1))
	if err != nil {
		return domain.Upload{}, false, err
	}
	if len(data) > domain.MaxUploadSize {
		return domain.Upload{}, false, errUploadTooLarge
	}
	if len(data) == 0 {
		return domain.Upload{}, false, nil
	}

	return domain.Upload{
		Name:        header.Filename,
		ContentType: mimetype.Detect(data).String(),
		Data:        data,
	}, true, nil
}

// noteUpload logs uploads that do not sniff as images. They are still
// forwarded; the analysis service owns the rejection message.
func (h *Handler) noteUpload(visitID string, upload domain.Upload) {
	if !upload.IsImage() {
		h.logger.Debug("non-image upload selected",
			zap.String("visit_id", visitID),
			zap.String("content_type", upload.ContentType),
		)
	}
}

var errUploadTooLarge = fmt.Errorf("%w: image is larger than 10 MB", domain.ErrInvalidRequest)

func (h *Handler) uploadError(c *gin.Context, err error) {
	if errors.Is(err, errUploadTooLarge) {
		c.HTML(http.StatusRequestEntityTooLarge, "not_found.html", messagePage{
			pageMeta: pageMeta{Title: "Image too large"},
			Message:  "Please choose an image smaller than 10 MB.",
			Restart:  "/upload",
		})
		return
	}
	h.logger.Warn("could not read upload", zap.Error(err))
	c.HTML(http.StatusBadRequest, "not_found.html", messagePage{
		pageMeta: pageMeta{Title: "Upload failed"},
		Message:  "The image could not be read. Please try again.",
		Restart:  "/upload",
	})
}

func (h *Handler) visitError(c *gin.Context, err error, restart string) {
	if errors.Is(err, domain.ErrVisitNotFound) || errors.Is(err, domain.ErrWorkflowClosed) {
		c.HTML(http.StatusNotFound, "not_found.html", messagePage{
			pageMeta: pageMeta{Title: "Page expired"},
			Message:  "This page has expired. Start a new one to continue.",
			Restart:  restart,
		})
		return
	}
	h.internalError(c, err)
}

func (h *Handler) jsonVisitError(c *gin.Context, err error) {
	if errors.Is(err, domain.ErrVisitNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.logger.Error("visit lookup failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.HTML(http.StatusInternalServerError, "not_found.html", messagePage{
		pageMeta: pageMeta{Title: "Something went wrong"},
		Message:  domain.MsgGenericFailure,
		Restart:  "/",
	})
}

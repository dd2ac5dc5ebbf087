package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"civictracker/backend/internal/analysis"
	"civictracker/backend/internal/api/middleware"
	"civictracker/backend/internal/blob"
	"civictracker/backend/internal/complaint"
	"civictracker/backend/internal/config"
	"civictracker/backend/internal/models"
	"civictracker/backend/internal/query"

	"github.com/gin-gonic/gin"
)

// ListComplaints filters the current snapshot. Filter values outside the
// enumerations simply match nothing.
// GET /api/complaints?search=&status=&category=&department=
func (h *Handler) ListComplaints(c *gin.Context) {
	var p query.Predicate
	if err := c.ShouldBindQuery(&p); err != nil {
		h.respondError(c, &models.ValidationError{Field: "query", Value: err.Error()})
		return
	}

	snap, err := h.Snapshots.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, query.Filter(snap.Complaints, p))
}

// GetComplaint reads one complaint from the store.
func (h *Handler) GetComplaint(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	found, err := h.Manager.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

type createRequest struct {
	ReporterID  string   `json:"reporter_id"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Department  string   `json:"department"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// CreateComplaint accepts JSON or multipart/form-data with an optional "image" file.
func (h *Handler) CreateComplaint(c *gin.Context) {
	var (
		params complaint.SubmitParams
		err    error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var closer io.Closer
		params, closer, err = submitFromForm(c)
		if closer != nil {
			defer closer.Close()
		}
	} else {
		params, err = submitFromJSON(c)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	// A verified token always wins over a reporter id sent in the body.
	if reporter := middleware.ReporterID(c); reporter != "" {
		params.ReporterID = reporter
	}

	created, err := h.Manager.Submit(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func submitFromJSON(c *gin.Context) (complaint.SubmitParams, error) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return complaint.SubmitParams{}, &models.ValidationError{Field: "body", Value: err.Error()}
	}
	return complaint.SubmitParams{
		ReporterID:  req.ReporterID,
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
		Department:  req.Department,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}, nil
}

func submitFromForm(c *gin.Context) (complaint.SubmitParams, io.Closer, error) {
	p := complaint.SubmitParams{
		ReporterID:  c.PostForm("reporter_id"),
		Category:    c.PostForm("category"),
		Description: c.PostForm("description"),
		Location:    c.PostForm("location"),
		Department:  c.PostForm("department"),
	}

	var err error
	if p.Latitude, err = optionalFloat(c, "latitude"); err != nil {
		return p, nil, err
	}
	if p.Longitude, err = optionalFloat(c, "longitude"); err != nil {
		return p, nil, err
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return p, nil, nil
	}
	if err != nil {
		return p, nil, &models.ValidationError{Field: "image", Value: err.Error()}
	}
	if header.Size > config.MaxImageSizeBytes {
		return p, nil, &models.ValidationError{Field: "image", Value: strconv.FormatInt(header.Size, 10) + " bytes", Kind: blob.ErrTooLarge}
	}

	var file multipart.File
	if file, err = header.Open(); err != nil {
		return p, nil, &models.ValidationError{Field: "image", Value: err.Error()}
	}
	p.Image = file
	p.ImageContentType = header.Header.Get("Content-Type")
	return p, file, nil
}

func optionalFloat(c *gin.Context, field string) (*float64, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &models.ValidationError{Field: field, Value: raw}
	}
	return &v, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus transitions a complaint. PATCH /api/complaints/:id/status
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, &models.ValidationError{Field: "body", Value: err.Error()})
		return
	}

	updated, err := h.Manager.TransitionStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

type departmentRequest struct {
	Department string `json:"department"`
}

// UpdateDepartment reassigns a complaint. PATCH /api/complaints/:id/department
func (h *Handler) UpdateDepartment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req departmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, &models.ValidationError{Field: "body", Value: err.Error()})
		return
	}

	updated, err := h.Manager.ReassignDepartment(c.Request.Context(), id, req.Department)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Manager.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUpdates returns the audit trail of one complaint.
func (h *Handler) ListUpdates(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	updates, err := h.Manager.History(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updates)
}

// Analytics summarizes the current snapshot.
func (h *Handler) Analytics(c *gin.Context) {
	snap, err := h.Snapshots.Get(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis.Summarize(snap.Complaints, h.now()))
}

// RefreshSnapshot drops the cached snapshot and rebuilds it.
func (h *Handler) RefreshSnapshot(c *gin.Context) {
	snap, err := h.Snapshots.Refresh(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(snap.Complaints), "fetched_at": snap.FetchedAt})
}

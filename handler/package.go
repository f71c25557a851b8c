package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ftllc/credit-enroll-pro-sub001/middleware"
	"github.com/ftllc/credit-enroll-pro-sub001/model"
	"github.com/ftllc/credit-enroll-pro-sub001/pipeline"
	"github.com/ftllc/credit-enroll-pro-sub001/pkg/logger"
)

// EnrollmentStore is the slice of the enrollment store the package
// endpoints need.
type EnrollmentStore interface {
	Get(ctx context.Context, id int64) (*model.Enrollment, error)
	SetPackageID(ctx context.Context, id int64, packageID string) error
	ClaimForProcessing(ctx context.Context, id int64) (bool, error)
	MarkFailed(ctx context.Context, id int64, msg string) error
}

// JobDispatcher enqueues package generation jobs.
type JobDispatcher interface {
	Dispatch(job pipeline.Job) error
}

type PackageHandler struct {
	enrollments EnrollmentStore
	dispatcher  JobDispatcher
}

func NewPackageHandler(enrollments EnrollmentStore, dispatcher JobDispatcher) *PackageHandler {
	return &PackageHandler{
		enrollments: enrollments,
		dispatcher:  dispatcher,
	}
}

type TriggerRequest struct {
	RecordID        int64  `json:"record_id" binding:"required"`
	ClientIP        string `json:"client_ip"`
	ClientUserAgent string `json:"client_user_agent"`
}

// Trigger starts package generation for an enrollment record. The caller
// fires this server-to-server with a very short timeout and ignores the
// response; idempotency lives in the conditional claim.
func (h *PackageHandler) Trigger(c *gin.Context) {
	var req TriggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	e, err := h.enrollments.Get(ctx, req.RecordID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record"})
		return
	}
	if e == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	if e.PackageID == "" {
		packageID := model.NewPackageID()
		if err := h.enrollments.SetPackageID(ctx, e.ID, packageID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign package ID"})
			return
		}
		e.PackageID = packageID
	}

	if !model.CanDispatch(e.PackageStatus, e.PackageID) {
		c.JSON(http.StatusOK, gin.H{
			"record_id": e.ID,
			"status":    e.PackageStatus,
		})
		return
	}

	claimed, err := h.enrollments.ClaimForProcessing(ctx, e.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim record"})
		return
	}
	if !claimed {
		// Another trigger won the claim
		c.JSON(http.StatusOK, gin.H{
			"record_id": e.ID,
			"status":    model.PackageStatusProcessing,
		})
		return
	}

	job := pipeline.Job{
		EnrollmentID: e.ID,
		ClientIP:     req.ClientIP,
		UserAgent:    req.ClientUserAgent,
	}
	if err := h.dispatcher.Dispatch(job); err != nil {
		logger.Error(ctx, "job dispatch failed", "enrollment_id", e.ID, "error", err)
		if mErr := h.enrollments.MarkFailed(ctx, e.ID, fmt.Sprintf("dispatch failed: %v", err)); mErr != nil {
			logger.Error(ctx, "could not persist failed status after dispatch failure", "enrollment_id", e.ID, "error", mErr)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Worker queue unavailable"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"record_id": e.ID,
		"status":    model.PackageStatusProcessing,
	})
}

// Status returns the package job status for the session's own record.
func (h *PackageHandler) Status(c *gin.Context) {
	e := h.ownedRecord(c)
	if e == nil {
		return
	}

	resp := gin.H{
		"record_id": e.ID,
		"status":    e.PackageStatus,
	}
	switch e.PackageStatus {
	case model.PackageStatusCompleted:
		resp["package_id"] = e.PackageID
		resp["file_size"] = e.PackageFileSize
		resp["total_pages"] = e.PackageTotalPages
		if e.PackageCompletedAt != nil {
			resp["completed_at"] = e.PackageCompletedAt.Format("2006-01-02T15:04:05Z07:00")
		}
	case model.PackageStatusFailed:
		resp["error_msg"] = e.PackageError
	}

	c.JSON(http.StatusOK, resp)
}

// Download streams the completed package PDF. 404 unless the job completed
// and the artifact is present.
func (h *PackageHandler) Download(c *gin.Context) {
	e := h.ownedRecord(c)
	if e == nil {
		return
	}

	if e.PackageStatus != model.PackageStatusCompleted || len(e.PackagePDF) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Package not available"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", e.PackageID+".pdf"))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, "application/pdf", e.PackagePDF)
}

// ownedRecord loads the record from the :id param and enforces that the
// session owns it. Writes the error response and returns nil on failure.
func (h *PackageHandler) ownedRecord(c *gin.Context) *model.Enrollment {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid record ID"})
		return nil
	}

	e, err := h.enrollments.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record"})
		return nil
	}
	// Ownership failures look identical to missing records
	if e == nil || middleware.GetEnrollmentID(c) != id {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return nil
	}
	return e
}

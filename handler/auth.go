package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ftllc/credit-enroll-pro-sub001/config"
	"github.com/ftllc/credit-enroll-pro-sub001/middleware"
)

type AuthHandler struct {
	config      *config.Config
	enrollments EnrollmentStore
}

func NewAuthHandler(cfg *config.Config, enrollments EnrollmentStore) *AuthHandler {
	return &AuthHandler{config: cfg, enrollments: enrollments}
}

type SessionRequest struct {
	RecordID int64  `json:"record_id" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	RecordID  int64  `json:"record_id"`
}

// CreateSession issues a session token for an enrollment record. The
// caller must present the email on file for the record.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	e, err := h.enrollments.Get(c.Request.Context(), req.RecordID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record"})
		return
	}
	if e == nil || !strings.EqualFold(e.Email, req.Email) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid record or email"})
		return
	}

	token, expiresAt, err := middleware.GenerateToken(e.ID, e.Email, &h.config.Auth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format("2006-01-02T15:04:05Z07:00"),
		RecordID:  e.ID,
	})
}

// GetCurrentSession returns the session's record binding
func (h *AuthHandler) GetCurrentSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"record_id": middleware.GetEnrollmentID(c),
		"email":     middleware.GetEmail(c),
	})
}

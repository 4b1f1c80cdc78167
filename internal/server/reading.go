package server

import (
	"net/http"
	"strings"
	"time"

	readingdomain "github.com/aquabill/aquabill/internal/reading/domain"
	"github.com/gin-gonic/gin"
)

type submitReadingRequest struct {
	ConnectionID string  `json:"connection_id"`
	CurrentValue float64 `json:"current_value"`
	Latitude     string  `json:"latitude"`
	Longitude    string  `json:"longitude"`
	Notes        string  `json:"notes,omitempty"`
	PhotoRef     string  `json:"photo_ref,omitempty"`
	RecordedBy   string  `json:"recorded_by,omitempty"`
	ReadAt       string  `json:"read_at,omitempty"`
}

type correctReadingRequest struct {
	CurrentValue float64 `json:"current_value"`
	Notes        string  `json:"notes,omitempty"`
	ActorID      string  `json:"actor_id,omitempty"`
}

func (s *Server) SubmitReading(c *gin.Context) {
	var req submitReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var readAt time.Time
	if raw := strings.TrimSpace(req.ReadAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("read_at", "invalid_read_at", "invalid read_at"))
			return
		}
		readAt = parsed
	}

	result, err := s.readingSvc.Submit(c.Request.Context(), readingdomain.SubmitRequest{
		ConnectionID: strings.TrimSpace(req.ConnectionID),
		CurrentValue: req.CurrentValue,
		Latitude:     strings.TrimSpace(req.Latitude),
		Longitude:    strings.TrimSpace(req.Longitude),
		Notes:        strings.TrimSpace(req.Notes),
		PhotoRef:     strings.TrimSpace(req.PhotoRef),
		RecordedBy:   strings.TrimSpace(req.RecordedBy),
		ReadAt:       readAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": result})
}

func (s *Server) GetReading(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	reading, err := s.readingSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": reading})
}

func (s *Server) CorrectReading(c *gin.Context) {
	var req correctReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.readingSvc.Correct(c.Request.Context(), readingdomain.CorrectRequest{
		ReadingID:    strings.TrimSpace(c.Param("id")),
		CurrentValue: req.CurrentValue,
		Notes:        strings.TrimSpace(req.Notes),
		ActorID:      strings.TrimSpace(req.ActorID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": result})
}

func (s *Server) ReverseReading(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.readingSvc.Reverse(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"reversed": true}})
}

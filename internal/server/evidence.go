package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxEvidenceBytes caps photo uploads at 10 MiB.
const maxEvidenceBytes = 10 << 20

func (s *Server) UploadEvidence(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, newValidationError("file", "invalid_file", "file is required"))
		return
	}
	if header.Size > maxEvidenceBytes {
		AbortWithError(c, newValidationError("file", "invalid_file", "file too large"))
		return
	}

	f, err := header.Open()
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer f.Close()

	ref, err := s.evidence.Save(c.Request.Context(), header.Filename, f)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"photo_ref": ref}})
}

package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"autobbq/internal/subtitle"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleUpload(c *gin.Context) {
	maxBytes := s.cfg.Uploads.MaxUploadMB << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "upload requires a 'file' form field"})
		return
	}

	tempPath := filepath.Join(s.cfg.TempDir(), "upload-"+uuid.NewString())
	if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
		s.respondError(c, err)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	record, err := s.videos.CreateFromUpload(c.Request.Context(), tempPath, fileHeader.Filename, contentType)
	if err != nil {
		_ = os.Remove(tempPath)
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newVideoView(s.videos, record))
}

func (s *Server) handleListVideos(c *gin.Context) {
	records, err := s.videos.Store().List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	views := make([]VideoView, 0, len(records))
	for _, record := range records {
		views = append(views, newVideoView(s.videos, record))
	}
	c.JSON(http.StatusOK, gin.H{"videos": views})
}

func (s *Server) handleGetVideo(c *gin.Context) {
	record, err := s.videos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	c.JSON(http.StatusOK, newVideoView(s.videos, record))
}

func (s *Server) handleProcess(c *gin.Context) {
	record, err := s.videos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	job, err := s.pool.EnqueueProcess(c.Request.Context(), record.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"jobId": job.ID, "status": job.Status})
}

func (s *Server) handleRender(c *gin.Context) {
	record, err := s.videos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}

	var style subtitle.StyleConfig
	if err := c.ShouldBindJSON(&style); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid style payload: " + err.Error()})
		return
	}
	if err := style.Normalize(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	styleJSON, err := json.Marshal(style)
	if err != nil {
		s.respondError(c, err)
		return
	}
	job, err := s.pool.EnqueueRender(c.Request.Context(), record.ID, string(styleJSON))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"jobId": job.ID, "status": job.Status})
}

func (s *Server) handleGetJob(c *gin.Context) {
	job, err := s.pool.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, newJobView(*job))
}

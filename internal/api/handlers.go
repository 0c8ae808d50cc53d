package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/heart-risk-predictor/internal/domain"
	"github.com/heart-risk-predictor/internal/middleware"
)

// UploadedModelName is the file name an uploaded model is saved under.
const UploadedModelName = "uploaded_model.json"

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": s.predictor.ModelInfo().ModelLoaded,
		"message":      "Heart Disease Prediction API is running",
	})
}

func (s *Server) handleModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.predictor.ModelInfo())
}

func (s *Server) handleDefaultValues(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"default_values": toRequestKeys(s.predictor.DefaultValues()),
	})
}

// handlePredict maps the camelCase body onto a patient record and returns
// the prediction. The predictor itself cannot fail.
func (s *Server) handlePredict(c *gin.Context) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid JSON body", err.Error())
		return
	}
	if len(body) == 0 {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "No data provided", "")
		return
	}

	record, err := toPatientRecord(body)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			s.respondError(c, http.StatusBadRequest, domain.ErrCodeValidation, validationErr.Message, validationErr.Field)
			return
		}
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, err.Error(), "")
		return
	}

	c.JSON(http.StatusOK, s.predictor.PredictRisk(record))
}

// handleLoadModel stores an uploaded model file and activates it.
func (s *Server) handleLoadModel(c *gin.Context) {
	serverCfg := s.configManager.GetServerConfig()
	if c.Request.ContentLength > serverCfg.MaxUploadBytes {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Model file too large", "")
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, serverCfg.MaxUploadBytes)

	file, err := c.FormFile("model_file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Model file too large", err.Error())
		case errors.Is(err, http.ErrMissingFile):
			s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "No model file provided", "")
		default:
			s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Invalid upload", err.Error())
		}
		return
	}

	if strings.TrimSpace(file.Filename) == "" {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "No file selected", "")
		return
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".json") {
		s.respondError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "Please upload a .json model file", file.Filename)
		return
	}

	dst := filepath.Join(s.configManager.GetPredictorConfig().UploadDir, UploadedModelName)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		s.logger.WithError(err).WithField("path", dst).Error("Failed to save uploaded model")
		s.respondError(c, http.StatusInternalServerError, domain.ErrCodeInternalServer, "Failed to save model file", "")
		return
	}

	if err := s.predictor.LoadModel(dst); err != nil {
		s.respondError(c, http.StatusUnprocessableEntity, domain.ErrCodeModelLoad, "Failed to load model", err.Error())
		return
	}

	s.logger.WithFields(logrus.Fields{
		"filename": file.Filename,
		"size":     file.Size,
	}).Info("Uploaded model activated")

	c.JSON(http.StatusOK, gin.H{
		"message":    "Model loaded successfully",
		"model_info": s.predictor.ModelInfo(),
	})
}

func (s *Server) respondError(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, c.GetString(middleware.CorrelationIDKey)))
}

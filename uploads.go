package main

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
	"github.com/techpros/finops_backend/workflow"
)

// Direct upload path: documents that never touched the Drive inbox are
// posted here as multipart form data, stored on GCS, and enter the inbox as
// pending with no drive file id.

const maxUploadSizeBytes int64 = 20 * 1024 * 1024

var documentMimeTypes = map[string]bool{
	"application/pdf":          true,
	"application/msword":       true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"text/csv":   true,
	"image/jpeg": true,
	"image/png":  true,
}

func uploadDocumentHandler(c *gin.Context) {
	logger := config.GetLogger()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 20MB limit"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if !documentMimeTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type"})
		return
	}

	category, err := models.ParseDocumentCategory(c.PostForm("category"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSizeBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read file"})
		return
	}
	if int64(len(data)) > maxUploadSizeBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size exceeds 20MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = extensionFromMimeType(mimeType)
	}
	objectKey := path.Join("uploads", string(category), utils.GenerateUniqueFilename()+ext)

	ctx := c.Request.Context()
	if err := utils.UploadBytesToGCS(ctx, objectKey, data, mimeType); err != nil {
		logger.WithFields(logrus.Fields{
			"object_key": objectKey,
			"error":      err.Error(),
		}).Error("[upload.error]")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	doc := &models.Document{
		StoragePath:      objectKey,
		Name:             sanitizeFilename(fileHeader.Filename),
		MimeType:         mimeType,
		DocumentCategory: &category,
		InboxStatus:      models.InboxStatusPending,
	}
	if month := c.PostForm("month"); month != "" {
		if !utils.IsValidMonth(month) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
			return
		}
		doc.AppliesToMonth = &month
	}
	if err := doc.Store(config.GetDB(), ctx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logger.WithFields(logrus.Fields{
		"object_key":  objectKey,
		"document_id": doc.ID,
		"mime_type":   mimeType,
		"size":        len(data),
	}).Info("[upload.complete]")

	workflow.Bus().Publish(workflow.TopicDocuments)
	c.JSON(http.StatusCreated, gin.H{
		"document":   doc,
		"access_url": utils.BuildObjectAccessURL(objectKey),
	})
}

func sanitizeFilename(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "" || base == "." {
		return fmt.Sprintf("upload-%d", time.Now().UnixNano())
	}
	return base
}

func extensionFromMimeType(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	case "application/msword":
		return ".doc"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "application/vnd.ms-excel":
		return ".xls"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return ".xlsx"
	case "text/csv":
		return ".csv"
	default:
		return ""
	}
}

package tools

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SaveImageUpload grava o arquivo enviado no campo multipart informado dentro
// de uploadsDir e devolve a URL pública relativa (ex: /uploads/abc.jpg).
// Nome do arquivo é um uuid para não colidir nem vazar o nome original.
func SaveImageUpload(c *gin.Context, file *multipart.FileHeader, uploadsDir string) (string, error) {
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("criar diretório de uploads: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		ext = ".jpg"
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(uploadsDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}

	return "/uploads/" + name, nil
}

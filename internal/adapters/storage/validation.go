package storage

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

// allowedContentTypes are the file types clients send with a consultation:
// scanned documents, contracts, photos of notices and voice notes.
var allowedContentTypes = map[string]bool{
	"application/pdf":                                                         true,
	"application/msword":                                                      true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel":                                                true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       true,
	"text/plain":                                                              true,
	"image/jpeg":                                                              true,
	"image/png":                                                               true,
	"image/webp":                                                              true,
	"image/heic":                                                              true,
	"audio/mpeg":                                                              true,
	"audio/ogg":                                                               true,
	"audio/mp4":                                                               true,
}

const maxFileNameRunes = 180

// NormalizeContentType lower-cases and strips parameters such as charset.
func NormalizeContentType(contentType string) string {
	return strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
}

// ValidateContentType checks if the content type is allowed.
func ValidateContentType(contentType string) error {
	if !allowedContentTypes[NormalizeContentType(contentType)] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileSize checks 0 < size <= max.
func ValidateFileSize(sizeBytes, max int64) error {
	if sizeBytes <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if sizeBytes > max {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", sizeBytes, max)
	}
	return nil
}

// SafeFileName drops any directory part and characters that break headers.
func SafeFileName(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' || r == '/' {
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "archivo"
	}
	if runes := []rune(cleaned); len(runes) > maxFileNameRunes {
		ext := path.Ext(cleaned)
		cleaned = string(runes[:maxFileNameRunes-len([]rune(ext))]) + ext
	}
	return cleaned
}

package dto

import (
	"errors"
	"mime/multipart"
	"strings"
)

// ParseStatementRequest represents the incoming multipart upload.
type ParseStatementRequest struct {
	File     *multipart.FileHeader `form:"statement" binding:"required"`
	Password string                `form:"password"`
}

// Validate performs basic validation on the request
func (r *ParseStatementRequest) Validate(maxFileSize int64) error {
	if r.File == nil {
		return errors.New("statement file is required")
	}
	if !strings.HasSuffix(strings.ToLower(r.File.Filename), ".pdf") {
		return errors.New("only PDF statements are supported")
	}
	if maxFileSize > 0 && r.File.Size > maxFileSize {
		return errors.New("statement file exceeds the maximum upload size")
	}
	return nil
}

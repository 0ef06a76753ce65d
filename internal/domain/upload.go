package domain

import (
	"fmt"
	"strings"
)

const (
	// DefaultConfidenceThreshold is used when no threshold is configured.
	DefaultConfidenceThreshold = 0.5

	// MaxUploadSize mirrors the limit advertised on the upload page.
	MaxUploadSize = 10 << 20
)

// Upload is an image chosen by the user.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (u Upload) Size() int {
	return len(u.Data)
}

// IsImage reports whether the detected content type is an image type.
func (u Upload) IsImage() bool {
	return strings.HasPrefix(u.ContentType, "image/")
}

// AnalysisRequest is constructed at submission time and dropped once the call returns.
type AnalysisRequest struct {
	File                Upload
	ConfidenceThreshold float64
}

// ValidateThreshold checks that t lies in (0,1].
func ValidateThreshold(t float64) error {
	if t <= 0 || t > 1 {
		return fmt.Errorf("%w: confidence threshold %v outside (0,1]", ErrInvalidRequest, t)
	}
	return nil
}

package types

import "time"

// Media types.
const (
	MediaPhoto = "photo"
	MediaVideo = "video"
)

// IsValidMediaType reports whether s is a recognized media type.
func IsValidMediaType(s string) bool {
	return s == MediaPhoto || s == MediaVideo
}

// RefMedia is a photo or video attached to a ref. Lower SortOrder values
// display first.
type RefMedia struct {
	ID        string    `json:"id"`
	RefID     string    `json:"refId"`
	MediaType string    `json:"mediaType"`
	FilePath  string    `json:"filePath"`
	MimeType  string    `json:"mimeType"`
	FileSize  int64     `json:"fileSize"`
	SortOrder int       `json:"sortOrder"`
	CreatedAt time.Time `json:"createdAt"`
}

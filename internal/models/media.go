package models

// MediaObject is an uploaded file stored in object storage.
type MediaObject struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

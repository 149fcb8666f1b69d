package models

// Destination is a stored publish target. Type is one of "local", "s3",
// "gcs" or "sftp"; Settings carries the backend-specific keys.
type Destination struct {
	Type     string            `json:"type"`
	Settings map[string]string `json:"settings"`
}

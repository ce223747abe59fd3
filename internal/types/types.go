package types

// UploadParams is the input of the upload workflow and activity.
// With SourceURI empty, Data is the payload (nil and empty both mean zero bytes).
// Keep Data small since it travels through workflow history.
type UploadParams struct {
	Name      string `json:"name"`
	SourceURI string `json:"source_uri,omitempty"` // "-", file:// or a local path on the worker
	Data      []byte `json:"data"`
}

// UploadResult is the serializable part of the store acknowledgement.
type UploadResult struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	ETag      string `json:"etag,omitempty"`
	VersionID string `json:"version_id,omitempty"`
	Size      int64  `json:"size"`
}

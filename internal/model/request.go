package model

import "encoding/json"

// UploadEvent identifies a newly stored object. The first "/" segment of
// ObjectKey is the subject's name.
type UploadEvent struct {
	Bucket    string
	ObjectKey string
}

// QueryRequest is the body accepted by the query pipeline.
type QueryRequest struct {
	ImageURL string `json:"imageURL"`
}

// QueryEvent is the payload delivered to the query function. Body is either a
// JSON object or a JSON-encoded string depending on the gateway integration.
// Proxy integrations may base64-encode a string body and set IsBase64Encoded.
type QueryEvent struct {
	Body            json.RawMessage `json:"body"`
	IsBase64Encoded bool            `json:"isBase64Encoded"`
}

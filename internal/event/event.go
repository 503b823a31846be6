// Package event turns inbound notification and request payloads into validated
// pipeline inputs. Payloads that do not match the expected shape are rejected.
package event

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"faceindex/internal/model"
)

var (
	// ErrInvalidEvent marks a malformed object store notification.
	ErrInvalidEvent = errors.New("invalid event")
	// ErrInvalidRequest marks a malformed query request.
	ErrInvalidRequest = errors.New("invalid request")
)

// ParseS3Event validates the first record of an S3 notification and returns its
// decoded bucket and key. Later records are ignored.
func ParseS3Event(evt events.S3Event) (model.UploadEvent, error) {
	if len(evt.Records) == 0 {
		return model.UploadEvent{}, fmt.Errorf("%w: no records", ErrInvalidEvent)
	}
	rec := evt.Records[0].S3

	if rec.Bucket.Name == "" {
		return model.UploadEvent{}, fmt.Errorf("%w: missing bucket name", ErrInvalidEvent)
	}
	if rec.Object.Key == "" {
		return model.UploadEvent{}, fmt.Errorf("%w: missing object key", ErrInvalidEvent)
	}

	bucket, err := url.QueryUnescape(rec.Bucket.Name)
	if err != nil {
		return model.UploadEvent{}, fmt.Errorf("%w: bucket name: %w", ErrInvalidEvent, err)
	}
	// S3 form-encodes keys in notifications, so "+" is a space.
	key, err := url.QueryUnescape(rec.Object.Key)
	if err != nil {
		return model.UploadEvent{}, fmt.Errorf("%w: object key: %w", ErrInvalidEvent, err)
	}

	if SubjectName(key) == "" {
		return model.UploadEvent{}, fmt.Errorf("%w: object key %q has no subject segment", ErrInvalidEvent, key)
	}
	return model.UploadEvent{Bucket: bucket, ObjectKey: key}, nil
}

// DecodeS3Event parses raw notification JSON and validates it.
func DecodeS3Event(data []byte) (model.UploadEvent, error) {
	var evt events.S3Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return model.UploadEvent{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	return ParseS3Event(evt)
}

// SubjectName returns the first "/"-delimited segment of key.
func SubjectName(key string) string {
	name, _, _ := strings.Cut(key, "/")
	return name
}

// ObjectARN returns the S3 resource name of an object.
func ObjectARN(bucket, key string) string {
	return "arn:aws:s3:::" + bucket + "/" + key
}

// ParseQueryEvent extracts the request from a gateway payload. The body may be
// a JSON object or a JSON string holding one, base64-encoded when the event says so.
func ParseQueryEvent(evt model.QueryEvent) (model.QueryRequest, error) {
	body := bytes.TrimSpace(evt.Body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return model.QueryRequest{}, fmt.Errorf("%w: missing body", ErrInvalidRequest)
	}
	if body[0] == '"' {
		var s string
		if err := json.Unmarshal(body, &s); err != nil {
			return model.QueryRequest{}, fmt.Errorf("%w: body: %w", ErrInvalidRequest, err)
		}
		body = []byte(s)
		if evt.IsBase64Encoded {
			decoded, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return model.QueryRequest{}, fmt.Errorf("%w: base64 body: %w", ErrInvalidRequest, err)
			}
			body = decoded
		}
	}
	return DecodeQueryRequest(body)
}

// DecodeQueryRequest strictly decodes a query body and validates the image URL.
func DecodeQueryRequest(data []byte) (model.QueryRequest, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var req model.QueryRequest
	if err := dec.Decode(&req); err != nil {
		return model.QueryRequest{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if dec.More() {
		return model.QueryRequest{}, fmt.Errorf("%w: trailing data after body", ErrInvalidRequest)
	}

	req.ImageURL = strings.TrimSpace(req.ImageURL)
	if req.ImageURL == "" {
		return model.QueryRequest{}, fmt.Errorf("%w: imageURL is required", ErrInvalidRequest)
	}
	u, err := url.Parse(req.ImageURL)
	if err != nil {
		return model.QueryRequest{}, fmt.Errorf("%w: imageURL: %w", ErrInvalidRequest, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return model.QueryRequest{}, fmt.Errorf("%w: imageURL must be absolute", ErrInvalidRequest)
	}
	return req, nil
}

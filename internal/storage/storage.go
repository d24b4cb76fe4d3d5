// Package storage implements the object storage client for profile photos.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"quill/internal/config"
	"quill/internal/models"

	"github.com/google/uuid"
)

// Uploader stores image bytes on the external host and returns a stable
// public URL for them.
type Uploader interface {
	Upload(ctx context.Context, content []byte, filename, folder string) (string, error)
}

// Client uploads images to an HTTP image host via a multipart POST. The host
// responds with a JSON body carrying the delivery URL.
type Client struct {
	httpClient *http.Client
	uploadURL  string
}

// NewClient builds a Client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		uploadURL:  cfg.ImageUploadURL,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends the bytes as a multipart form and returns the public URL.
// Failures are upstream failures; the caller decides how to degrade.
func (c *Client) Upload(ctx context.Context, content []byte, filename, folder string) (string, error) {
	if c.uploadURL == "" {
		return "", models.NewUpstreamError(fmt.Errorf("image host not configured"))
	}

	// A fresh object name per upload; the original extension is kept so the
	// host can infer the format.
	objectName := uuid.NewString() + strings.ToLower(filepath.Ext(filename))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", objectName)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if _, err := part.Write(content); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := writer.WriteField("folder", folder); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := writer.Close(); err != nil {
		return "", models.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", models.NewUpstreamError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", models.NewUpstreamError(fmt.Errorf("image host returned %d: %s", resp.StatusCode, payload))
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", models.NewUpstreamError(err)
	}
	if parsed.SecureURL == "" {
		return "", models.NewUpstreamError(fmt.Errorf("image host response missing secure_url"))
	}

	return parsed.SecureURL, nil
}

// ThumbnailURL rewrites a delivery URL to request the width-100 variant by
// inserting the sizing segment after the upload path element.
func ThumbnailURL(u string) string {
	return strings.Replace(u, "upload/", "upload/w_100/", 1)
}

// Package media handles event poster storage on ImageKit. Uploads go
// through ImageKit's upload API with basic auth on the private key;
// deletes go through the files API.
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	uploadURL = "https://upload.imagekit.io/api/v1/files/upload"
	filesURL  = "https://api.imagekit.io/v1/files"
)

// Asset identifies a stored image: the public URL embedded in API
// responses and the provider file id needed to delete it later.
type Asset struct {
	URL    string `json:"url"`
	FileID string `json:"fileId"`
}

// Uploader is the slice of media storage the event handlers need. A nil
// Uploader disables image handling.
type Uploader interface {
	Upload(ctx context.Context, data []byte, fileName, folder string) (*Asset, error)
	Delete(ctx context.Context, fileID string) error
}

// ImageKit is an Uploader backed by the ImageKit REST API.
type ImageKit struct {
	privateKey string
	folder     string
	httpClient *http.Client
}

// NewImageKit returns a client authenticated with privateKey. folder is
// the default destination for uploads without an explicit folder.
func NewImageKit(privateKey, folder string) *ImageKit {
	return &ImageKit{
		privateKey: privateKey,
		folder:     folder,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload stores data under fileName and returns the resulting asset.
// The payload is sent base64-encoded in a multipart form, which covers
// arbitrary binary image data.
func (k *ImageKit) Upload(ctx context.Context, data []byte, fileName, folder string) (*Asset, error) {
	if folder == "" {
		folder = k.folder
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("file", base64.StdEncoding.EncodeToString(data)); err != nil {
		return nil, fmt.Errorf("imagekit: build form: %w", err)
	}
	if err := w.WriteField("fileName", fileName); err != nil {
		return nil, fmt.Errorf("imagekit: build form: %w", err)
	}
	if folder != "" {
		if err := w.WriteField("folder", folder); err != nil {
			return nil, fmt.Errorf("imagekit: build form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("imagekit: build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("imagekit: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.SetBasicAuth(k.privateKey, "")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imagekit: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("imagekit: upload returned %d: %s", resp.StatusCode, body)
	}

	var out Asset
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("imagekit: decode response: %w", err)
	}
	if out.FileID == "" || out.URL == "" {
		return nil, fmt.Errorf("imagekit: response missing url or fileId")
	}
	return &out, nil
}

// Delete removes the stored file identified by fileID.
func (k *ImageKit) Delete(ctx context.Context, fileID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, filesURL+"/"+fileID, nil)
	if err != nil {
		return fmt.Errorf("imagekit: build request: %w", err)
	}
	req.SetBasicAuth(k.privateKey, "")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("imagekit: delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("imagekit: delete returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

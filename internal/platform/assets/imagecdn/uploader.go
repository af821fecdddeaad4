package imagecdn

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	apperrors "github.com/louisbranch/rawcn/internal/platform/errors"
)

const (
	// DefaultAPIBase is the Cloudinary upload API root.
	DefaultAPIBase = "https://api.cloudinary.com/v1_1"

	maxResponseBytes = 1 << 20
)

// File is an image selected for upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Asset is the hosted image returned by a successful upload.
type Asset struct {
	PublicID  string `json:"public_id"`
	Format    string `json:"format"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// UploaderConfig configures an Uploader.
type UploaderConfig struct {
	APIBase    string
	CloudName  string
	HTTPClient *http.Client
}

// Uploader performs unsigned uploads against a named upload preset.
type Uploader struct {
	endpoint string
	client   *http.Client
}

type uploadErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewUploader validates cfg and returns an Uploader.
func NewUploader(cfg UploaderConfig) (*Uploader, error) {
	cloudName := strings.TrimSpace(cfg.CloudName)
	if cloudName == "" {
		return nil, errors.New("cloud name is required")
	}
	apiBase := strings.TrimRight(strings.TrimSpace(cfg.APIBase), "/")
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &Uploader{
		endpoint: apiBase + "/" + cloudName + "/image/upload",
		client:   client,
	}, nil
}

// Upload sends file under preset and returns the hosted asset. Every failure
// is an IMAGE_UPLOAD_FAILED domain error whose cause carries the host's reason.
func (u *Uploader) Upload(ctx context.Context, preset string, file File) (Asset, error) {
	if u == nil {
		return Asset{}, uploadFailed(errors.New("uploader is not configured"))
	}
	preset = strings.TrimSpace(preset)
	if preset == "" {
		return Asset{}, uploadFailed(errors.New("upload preset is required"))
	}
	if len(file.Data) == 0 {
		return Asset{}, uploadFailed(errors.New("image is empty"))
	}

	body, contentType, err := encodeUpload(preset, file)
	if err != nil {
		return Asset{}, uploadFailed(err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return Asset{}, uploadFailed(fmt.Errorf("build upload request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return Asset{}, uploadFailed(fmt.Errorf("send upload: %w", err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Asset{}, uploadFailed(fmt.Errorf("read upload response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		var failure uploadErrorBody
		if json.Unmarshal(payload, &failure) == nil && failure.Error.Message != "" {
			return Asset{}, uploadFailed(fmt.Errorf("upload rejected (%d): %s", resp.StatusCode, failure.Error.Message))
		}
		return Asset{}, uploadFailed(fmt.Errorf("upload rejected with status %d", resp.StatusCode))
	}

	var asset Asset
	if err := json.Unmarshal(payload, &asset); err != nil {
		return Asset{}, uploadFailed(fmt.Errorf("decode upload response: %w", err))
	}
	if strings.TrimSpace(asset.SecureURL) == "" {
		return Asset{}, uploadFailed(errors.New("upload response has no secure_url"))
	}
	return asset, nil
}

func encodeUpload(preset string, file File) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("upload_preset", preset); err != nil {
		return nil, "", fmt.Errorf("write preset field: %w", err)
	}

	name := filepath.Base(strings.TrimSpace(file.Name))
	if name == "." || name == "/" || name == "" {
		name = "image"
	}
	contentType := strings.TrimSpace(file.ContentType)
	if contentType == "" {
		contentType = http.DetectContentType(file.Data)
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func uploadFailed(cause error) error {
	return apperrors.Wrap(apperrors.CodeImageUploadFailed, "image upload failed: "+cause.Error(), cause)
}

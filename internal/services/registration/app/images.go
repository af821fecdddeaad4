package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/louisbranch/rawcn/internal/platform/assets/imagecdn"
	"github.com/louisbranch/rawcn/internal/platform/timeouts"
	"github.com/louisbranch/rawcn/internal/services/registration/form"
)

// profileImageWidthPX bounds delivered profile pictures.
const profileImageWidthPX = 512

// ImageHostConfig configures the Cloudinary image host.
type ImageHostConfig struct {
	CloudName    string `env:"RAWCN_CLOUDINARY_CLOUD_NAME"`
	APIBase      string `env:"RAWCN_CLOUDINARY_API_BASE"      envDefault:"https://api.cloudinary.com/v1_1"`
	UploadPreset string `env:"RAWCN_CLOUDINARY_UPLOAD_PRESET" envDefault:"rawcn_users"`
	DeliveryBase string `env:"RAWCN_CLOUDINARY_DELIVERY_BASE"`
}

// imageHost adapts the Cloudinary uploader to the form's upload step. When a
// delivery base is configured the stored URL is a width-bounded delivery URL;
// otherwise it is the host's secure_url.
type imageHost struct {
	uploader *imagecdn.Uploader
	cdn      imagecdn.CDN
}

// newImageHost returns nil when no cloud name is configured.
func newImageHost(cfg ImageHostConfig, client *http.Client) (*imageHost, error) {
	if strings.TrimSpace(cfg.CloudName) == "" {
		return nil, nil
	}
	if client == nil {
		client = &http.Client{Timeout: timeouts.Upload}
	}
	uploader, err := imagecdn.NewUploader(imagecdn.UploaderConfig{
		APIBase:    cfg.APIBase,
		CloudName:  cfg.CloudName,
		HTTPClient: client,
	})
	if err != nil {
		return nil, err
	}
	return &imageHost{uploader: uploader, cdn: imagecdn.New(cfg.DeliveryBase)}, nil
}

func (h *imageHost) Upload(ctx context.Context, preset string, image form.LocalImage) (string, error) {
	asset, err := h.uploader.Upload(ctx, preset, imagecdn.File{
		Name:        image.Filename,
		ContentType: image.ContentType,
		Data:        image.Data,
	})
	if err != nil {
		return "", err
	}
	if !h.cdn.Configured() || asset.PublicID == "" {
		return asset.SecureURL, nil
	}
	delivered, err := h.cdn.URL(imagecdn.Request{
		AssetID:   asset.PublicID,
		Extension: asset.Format,
		Delivery:  &imagecdn.Delivery{WidthPX: profileImageWidthPX},
	})
	if err != nil {
		return asset.SecureURL, nil
	}
	return delivered, nil
}

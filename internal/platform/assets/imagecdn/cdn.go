// Package imagecdn resolves delivery URLs for hosted images and uploads new
// images to the image host.
package imagecdn

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrAssetIDRequired indicates a delivery request without an asset.
var ErrAssetIDRequired = errors.New("asset id is required")

// Crop selects a source rectangle before delivery.
type Crop struct {
	X        int
	Y        int
	WidthPX  int
	HeightPX int
}

// Delivery bounds the delivered rendition.
type Delivery struct {
	WidthPX int
}

// Request describes one image to deliver.
type Request struct {
	AssetID   string
	Extension string
	Crop      *Crop
	Delivery  *Delivery
}

// CDN builds delivery URLs under a base URL. Cloudinary bases receive
// transformation segments; any other base serves the asset as-is.
type CDN struct {
	base       string
	cloudinary bool
}

// New returns a CDN rooted at base.
func New(base string) CDN {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	cloudinary := false
	if parsed, err := url.Parse(base); err == nil {
		cloudinary = strings.EqualFold(parsed.Hostname(), "res.cloudinary.com")
	}
	return CDN{base: base, cloudinary: cloudinary}
}

// Configured reports whether the CDN has a base URL.
func (c CDN) Configured() bool {
	return c.base != ""
}

// URL returns the delivery URL for req.
func (c CDN) URL(req Request) (string, error) {
	assetID := strings.Trim(strings.TrimSpace(req.AssetID), "/")
	if assetID == "" {
		return "", ErrAssetIDRequired
	}
	ext := strings.TrimSpace(req.Extension)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	segments := []string{c.base}
	if c.cloudinary {
		if req.Crop != nil {
			segments = append(segments, fmt.Sprintf("c_crop,w_%d,h_%d,x_%d,y_%d",
				req.Crop.WidthPX, req.Crop.HeightPX, req.Crop.X, req.Crop.Y))
		}
		if req.Delivery != nil && req.Delivery.WidthPX > 0 {
			segments = append(segments, fmt.Sprintf("f_auto,q_auto,dpr_auto,c_limit,w_%d", req.Delivery.WidthPX))
		}
	}
	segments = append(segments, assetID+ext)
	return strings.Join(segments, "/"), nil
}

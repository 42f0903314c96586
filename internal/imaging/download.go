package imaging

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-repo2pdf/internal/fileutil"
	"github.com/alnah/go-repo2pdf/internal/logfields"
)

// MaxDownloadSize caps the body read for one remote image.
const MaxDownloadSize = 20 << 20

var contentTypeExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

var rasterExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".bmp": true,
}

// Download fetches a remote image into the images directory and returns
// its path relative to the work directory. Files are named after the URL
// hash so a URL is fetched at most once per run. SVG responses are
// rasterized to PNG.
func (c *Converter) Download(ctx context.Context, rawURL string) (string, error) {
	if rel, ok := c.cache[rawURL]; ok {
		return rel, nil
	}

	hash := hashBytes([]byte(rawURL))
	body, contentType, err := c.fetch(ctx, rawURL)
	if err != nil {
		c.logger.Warn("image download failed", logfields.URL(rawURL), logfields.Error(err))
		return "", err
	}

	urlPath := ""
	if u, err := url.Parse(rawURL); err == nil {
		urlPath = u.Path
	}

	var name string
	if strings.Contains(contentType, "svg") || strings.EqualFold(path.Ext(urlPath), ".svg") {
		name = hash + ".png"
		out := filepath.Join(c.dir, name)
		if !fileutil.FileExists(out) {
			if err := c.ConvertSVG(ctx, body, out); err != nil {
				c.logger.Warn("remote svg conversion failed", logfields.URL(rawURL), logfields.Error(err))
				return "", fmt.Errorf("%s: %w", rawURL, err)
			}
		}
	} else {
		name = hash + imageExt(contentType, urlPath)
		if err := os.WriteFile(filepath.Join(c.dir, name), body, 0o600); err != nil {
			return "", fmt.Errorf("%w: writing %s: %v", ErrDownload, name, err)
		}
	}

	rel := ImagesDir + "/" + name
	c.cache[rawURL] = rel
	c.logger.Debug("downloaded image", logfields.URL(rawURL), logfields.Image(rel), logfields.Size(int64(len(body))))
	return rel, nil
}

func (c *Converter) fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, "", fmt.Errorf("%w: %s returned %s", ErrDownload, rawURL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if len(body) > MaxDownloadSize {
		return nil, "", fmt.Errorf("%w: %s exceeds %d bytes", ErrDownload, rawURL, MaxDownloadSize)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mt
	}
	return body, contentType, nil
}

// imageExt picks a file extension from the content type, then the URL
// path, defaulting to .png.
func imageExt(contentType, urlPath string) string {
	if ext, ok := contentTypeExt[contentType]; ok {
		return ext
	}
	ext := strings.ToLower(path.Ext(urlPath))
	if rasterExts[ext] {
		return ext
	}
	return ".png"
}

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/cavaliergopher/grab/v3"
	"go.uber.org/zap"
)

// Archiver keeps downloaded PDFs in a local directory so repeated runs read
// them from disk instead of downloading them again.
type Archiver struct {
	grabClient *grab.Client
	dir        string
	logger     *zap.Logger
}

func NewArchiver(dir string, httpClient *http.Client, logger *zap.Logger) (*Archiver, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	grabClient := grab.NewClient()
	grabClient.HTTPClient = httpClient
	grabClient.UserAgent = DefaultUserAgent

	return &Archiver{
		grabClient: grabClient,
		dir:        dir,
		logger:     logger,
	}, nil
}

// Fetch stores url under the archive directory, named after the last URL
// path segment, and returns the local path. Existing files are reused.
func (a *Archiver) Fetch(ctx context.Context, url string) (string, error) {
	req, err := grab.NewRequest(a.dir, url)
	if err != nil {
		return "", fmt.Errorf("failed to create grab request: %w", err)
	}
	req = req.WithContext(ctx)
	req.NoCreateDirectories = true
	req.SkipExisting = true

	resp := a.grabClient.Do(req)
	if err := resp.Err(); err != nil {
		if errors.Is(err, grab.ErrFileExists) {
			a.logger.Debug("pdf already archived", zap.String("path", resp.Filename))
			return resp.Filename, nil
		}
		return "", fmt.Errorf("download failed: %w", err)
	}

	a.logger.Info("pdf archived",
		zap.String("url", url),
		zap.String("path", resp.Filename),
		zap.Int64("size", resp.Size()),
		zap.Duration("duration", resp.Duration()))

	return resp.Filename, nil
}

// Discard removes an archived file that turned out to be unusable.
func (a *Archiver) Discard(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		a.logger.Warn("failed to remove archived pdf", zap.String("path", path), zap.Error(err))
	}
}

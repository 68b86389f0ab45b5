package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pbusenius/nllb-api/pkg/apierr"
	internalhttp "github.com/pbusenius/nllb-api/pkg/internal/http"
	"github.com/pbusenius/nllb-api/pkg/internal/retry"
)

const (
	// DefaultMaxFileSize bounds any single downloaded blob, preventing memory
	// or disk exhaustion from an unexpectedly large tokenizer/weights file.
	DefaultMaxFileSize = 8 * 1024 * 1024 * 1024 // 8 GiB

	hubBaseURL = "https://huggingface.co"
)

// DownloadOptions configures a Downloader.
type DownloadOptions struct {
	Timeout time.Duration
	MaxSize int64
	Retry   retry.Config
}

// DefaultDownloadOptions returns sensible defaults for model-asset downloads.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{
		Timeout: 5 * time.Minute,
		MaxSize: DefaultMaxFileSize,
		Retry:   retry.DefaultConfig(),
	}
}

// Downloader fetches a repository's file listing and blobs from the Hugging
// Face Hub HTTP API. The tree listing goes through pkg/internal/http's shared
// Client (bounded JSON responses fit its DoJSON helper); blob downloads stay
// on DoStream so the body is copied straight to disk under MaxSize without
// ever buffering a multi-gigabyte weights file in memory.
type Downloader struct {
	http *internalhttp.Client
	opts DownloadOptions
}

// NewDownloader returns a Downloader using opts.
func NewDownloader(opts DownloadOptions) *Downloader {
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.MaxSize == 0 {
		opts.MaxSize = DefaultMaxFileSize
	}
	return &Downloader{
		http: internalhttp.NewClient(internalhttp.Config{
			BaseURL: hubBaseURL,
			Timeout: opts.Timeout,
		}),
		opts: opts,
	}
}

type hubFileEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// ListRepoFiles returns the flat list of file paths in repository's default
// revision, via the Hub's tree API.
func (d *Downloader) ListRepoFiles(ctx context.Context, repository string) ([]string, error) {
	path := fmt.Sprintf("/api/models/%s/tree/main", repository)

	var entries []hubFileEntry
	err := retry.Do(ctx, d.opts.Retry, func(ctx context.Context) error {
		return d.http.GetJSON(ctx, path, &entries)
	})
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.Type == "file" {
			files = append(files, e.Path)
		}
	}
	return files, nil
}

// DownloadFile downloads a single file from repository into destPath,
// aborting if the body exceeds MaxSize.
func (d *Downloader) DownloadFile(ctx context.Context, repository, file, destPath string) error {
	path := fmt.Sprintf("/%s/resolve/main/%s", repository, file)

	return retry.Do(ctx, d.opts.Retry, func(ctx context.Context) error {
		resp, err := d.http.DoStream(ctx, internalhttp.Request{
			Method: http.MethodGet,
			Path:   path,
		})
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.ContentLength > 0 && resp.ContentLength > d.opts.MaxSize {
			return apierr.Newf(apierr.Internal, "file %s exceeds maximum size of %d bytes", file, d.opts.MaxSize)
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return err
		}
		out, err := os.Create(destPath)
		if err != nil {
			return err
		}
		defer out.Close()

		limited := io.LimitReader(resp.Body, d.opts.MaxSize+1)
		written, err := io.Copy(out, limited)
		if err != nil {
			return err
		}
		if written > d.opts.MaxSize {
			return apierr.Newf(apierr.Internal, "file %s exceeded maximum size of %d bytes", file, d.opts.MaxSize)
		}
		return nil
	})
}

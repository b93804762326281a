package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MaxAssetBytes caps how much a single fetch may read.
const MaxAssetBytes = 64 << 20

// ErrEmptyReference is returned when a scene has no media reference.
var ErrEmptyReference = errors.New("empty media reference")

// Fetcher reads media from remote URLs or the local filesystem.
type Fetcher struct {
	client  *http.Client
	baseDir string
}

// NewFetcher returns a fetcher with the given per-request timeout. Relative
// paths resolve against baseDir.
func NewFetcher(timeout time.Duration, baseDir string) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		baseDir: baseDir,
	}
}

// WithClient swaps the HTTP client, mainly for tests.
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	if client != nil {
		f.client = client
	}
	return f
}

// Locate returns the local path for ref, or the URL unchanged when ref is
// remote. ffmpeg accepts either form.
func (f *Fetcher) Locate(ref string) (string, bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false, ErrEmptyReference
	}
	u, err := url.Parse(ref)
	if err == nil {
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return ref, true, nil
		case "file":
			return u.Path, false, nil
		case "":
		default:
			return "", false, fmt.Errorf("unsupported media scheme %q", u.Scheme)
		}
	}
	if !filepath.IsAbs(ref) && f.baseDir != "" {
		ref = filepath.Join(f.baseDir, ref)
	}
	return ref, false, nil
}

// Fetch returns the bytes behind ref.
func (f *Fetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	location, remote, err := f.Locate(ref)
	if err != nil {
		return nil, err
	}
	if !remote {
		file, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", location, err)
		}
		defer file.Close()
		return readLimited(file, location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "automan/1.0")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", location, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("get %s: unexpected status %s", location, resp.Status)
	}
	return readLimited(resp.Body, location)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > MaxAssetBytes {
		return nil, fmt.Errorf("read %s: larger than %d bytes", name, MaxAssetBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("read %s: empty body", name)
	}
	return data, nil
}

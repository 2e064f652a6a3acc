package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// ErrUnsupportedScheme is returned for handles no fetcher understands.
var ErrUnsupportedScheme = errors.New("unsupported handle scheme")

// Fetcher resolves a handle to its bytes. Fetches are not retried.
type Fetcher interface {
	Fetch(ctx context.Context, h Handle) ([]byte, error)
}

// FSFetcher reads handles as slash-separated paths within an fs.FS.
type FSFetcher struct {
	FS fs.FS
}

// Fetch reads the file named by h. A leading "embed:" prefix is ignored.
func (f FSFetcher) Fetch(ctx context.Context, h Handle) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := path.Clean(strings.TrimPrefix(strings.TrimPrefix(string(h), "embed:"), "/"))
	data, err := fs.ReadFile(f.FS, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// HTTPFetcher downloads http(s) handles.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch issues a GET bound to ctx. Non-2xx responses are errors.
func (f HTTPFetcher) Fetch(ctx context.Context, h Handle) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(h), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", h, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: status %s", h, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", h, err)
	}
	return data, nil
}

// Resolver routes handles to a fetcher by scheme.
type Resolver struct {
	Embedded Fetcher // "embed:" handles
	Files    Fetcher // Relative paths
	HTTP     Fetcher // http:// and https:// handles
}

// NewResolver returns a resolver reading compiled-in assets, files relative to
// baseDir, and URLs with the given client timeout (0 means none).
func NewResolver(baseDir string, httpTimeout time.Duration) *Resolver {
	if baseDir == "" {
		baseDir = "."
	}
	return &Resolver{
		Embedded: FSFetcher{FS: embedded},
		Files:    FSFetcher{FS: os.DirFS(baseDir)},
		HTTP:     HTTPFetcher{Client: &http.Client{Timeout: httpTimeout}},
	}
}

// Fetch resolves h through the fetcher for its scheme.
func (r *Resolver) Fetch(ctx context.Context, h Handle) ([]byte, error) {
	s := string(h)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty handle: %w", ErrUnsupportedScheme)
	case strings.HasPrefix(s, "embed:"):
		return fetchWith(ctx, r.Embedded, h)
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		return fetchWith(ctx, r.HTTP, h)
	case strings.Contains(s, "://"):
		return nil, fmt.Errorf("%s: %w", s, ErrUnsupportedScheme)
	case filepath.IsAbs(s):
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return os.ReadFile(s)
	default:
		return fetchWith(ctx, r.Files, h)
	}
}

func fetchWith(ctx context.Context, f Fetcher, h Handle) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("%s: %w", h, ErrUnsupportedScheme)
	}
	return f.Fetch(ctx, h)
}

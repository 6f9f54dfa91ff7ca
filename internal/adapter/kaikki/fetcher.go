// Package kaikki downloads per-language Wiktionary exports published on
// kaikki.org and keeps them in a local cache directory.
package kaikki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/heartmarshall/inflective/internal/config"
	"github.com/heartmarshall/inflective/internal/domain"
)

// Fetcher resolves the on-disk export of a language, downloading it when the
// cache has no copy. Downloads are never retried.
type Fetcher struct {
	baseURL    string
	cacheDir   string
	userAgent  string
	httpClient *http.Client
	log        *slog.Logger
}

// NewFetcher creates a Fetcher from the import configuration.
func NewFetcher(cfg config.ImportConfig, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		baseURL:    cfg.SourceURL,
		cacheDir:   cfg.CacheDir,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		log:        logger.With("adapter", "kaikki"),
	}
}

// CachePath returns where the export of lang is cached.
func (f *Fetcher) CachePath(lang domain.Language) string {
	return filepath.Join(f.cacheDir, lang.ExportName+".json")
}

// ExportURL returns the download address of the export of lang.
func (f *Fetcher) ExportURL(lang domain.Language) string {
	name := url.PathEscape(lang.ExportName)
	return f.baseURL + "/" + name + "/kaikki.org-dictionary-" + name + ".json"
}

// EnsureExport returns the path of the cached export of lang. When the cache
// holds no copy, the export is downloaded into a temporary file in the cache
// directory and renamed into place only once complete, so an interrupted
// download never leaves a cache entry behind. Transport failures and
// non-200 responses wrap domain.ErrNetworkFailure.
func (f *Fetcher) EnsureExport(ctx context.Context, lang domain.Language) (path string, fetched bool, err error) {
	path = f.CachePath(lang)

	if _, err := os.Stat(path); err == nil {
		f.log.InfoContext(ctx, "using cached export", slog.String("path", path))
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", false, fmt.Errorf("kaikki: stat cache: %w", err)
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		return "", false, fmt.Errorf("kaikki: create cache dir: %w", err)
	}

	n, err := f.download(ctx, f.ExportURL(lang), path)
	if err != nil {
		return "", false, err
	}

	f.log.InfoContext(ctx, "export downloaded",
		slog.String("language", lang.Code),
		slog.String("path", path),
		slog.Int64("bytes", n),
	)
	return path, true, nil
}

func (f *Fetcher) download(ctx context.Context, src, dst string) (int64, error) {
	f.log.InfoContext(ctx, "downloading export", slog.String("url", src))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return 0, fmt.Errorf("kaikki: create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("kaikki: request %s: %w: %v", src, domain.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("kaikki: %s returned %s: %w", src, resp.Status, domain.ErrNetworkFailure)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("kaikki: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	n, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return n, fmt.Errorf("kaikki: read body of %s: %w: %v", src, domain.ErrNetworkFailure, err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("kaikki: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return n, fmt.Errorf("kaikki: move export into cache: %w", err)
	}

	return n, nil
}

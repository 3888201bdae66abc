package installer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// downloadTimeout bounds the whole archive fetch; the SteamCMD archive is a
// few megabytes, so this is generous.
const downloadTimeout = 5 * time.Minute

// Downloader fetches release archives over HTTP.
type Downloader struct {
	// HTTPClient is replaceable in tests (point it at an httptest server).
	HTTPClient *http.Client
}

// NewDownloader returns a Downloader with a timeout-bounded client.
func NewDownloader() *Downloader {
	return &Downloader{
		HTTPClient: &http.Client{Timeout: downloadTimeout},
	}
}

// Fetch downloads url into destPath, reporting byte progress when the server
// advertises a Content-Length. progress may be nil.
func (d *Downloader) Fetch(ctx context.Context, url, destPath string, progress func(downloaded, total int64)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}

	var src io.Reader = resp.Body
	if progress != nil {
		src = &progressReader{r: resp.Body, total: resp.ContentLength, report: progress}
	}

	if _, copyErr := io.Copy(out, src); copyErr != nil {
		_ = out.Close()
		_ = os.Remove(destPath)
		return fmt.Errorf("writing %s: %w", destPath, copyErr)
	}

	if closeErr := out.Close(); closeErr != nil {
		return fmt.Errorf("closing %s: %w", destPath, closeErr)
	}
	return nil
}

// progressReader reports cumulative bytes read. total is -1 when unknown.
type progressReader struct {
	r          io.Reader
	downloaded int64
	total      int64
	report     func(downloaded, total int64)
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.downloaded += int64(n)
		p.report(p.downloaded, p.total)
	}
	return n, err
}

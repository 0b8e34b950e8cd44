package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/hatchery/progress"
	mediaProgress "github.com/projecteru2/hatchery/progress/media"
	"github.com/projecteru2/hatchery/types"
	"github.com/projecteru2/hatchery/utils"
)

// report download progress every 1 MiB
const progressInterval = 1 << 20

// download streams profile.MediaURL into target via a temp file in the same
// directory, computing SHA-256 along the way. Only a fully transferred file
// is renamed into place; any failure leaves the previous state untouched
// except that a pre-existing partial target is replaced, not resumed.
func (d *Downloader) download(ctx context.Context, profile *types.DistroProfile, target string, tracker progress.Tracker) error {
	logger := log.WithFunc("media.download")

	tmp, err := os.CreateTemp(d.conf.MediaDir(), ".pull-*.iso")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	digestHex, err := d.fetch(ctx, profile, tmp, tracker)
	if err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		return fmt.Errorf("rename media into cache: %w", err)
	}
	if err := utils.SyncParentDir(d.conf.MediaDir()); err != nil {
		return fmt.Errorf("sync media dir: %w", err)
	}

	logger.Infof(ctx, "downloaded %s -> %s (sha256:%s)", profile.MediaURL, target, digestHex)
	return nil
}

// fetch performs the HTTP transfer into dst and returns the content digest.
// All network-level failures wrap types.ErrTransport.
func (d *Downloader) fetch(ctx context.Context, profile *types.DistroProfile, dst *os.File, tracker progress.Tracker) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profile.MediaURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request %s: %w", profile.MediaURL, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %v: %w", profile.MediaURL, err, types.ErrTransport)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("GET %s: status %s: %w", profile.MediaURL, resp.Status, types.ErrTransport)
	}

	tracker.OnEvent(mediaProgress.Event{
		Phase:      mediaProgress.PhaseDownload,
		Distro:     profile.Name,
		BytesTotal: resp.ContentLength,
	})

	h := sha256.New()
	pw := &progressWriter{
		w:       io.MultiWriter(dst, h),
		distro:  profile.Name,
		total:   resp.ContentLength,
		tracker: tracker,
	}
	if _, err := io.Copy(pw, resp.Body); err != nil {
		return "", fmt.Errorf("transfer %s: %v: %w", profile.MediaURL, err, types.ErrTransport)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// progressWriter wraps an io.Writer and periodically emits download progress events.
type progressWriter struct {
	w          io.Writer
	distro     string
	written    int64
	total      int64
	tracker    progress.Tracker
	lastReport int64
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	if pw.written-pw.lastReport >= progressInterval {
		pw.lastReport = pw.written
		pw.tracker.OnEvent(mediaProgress.Event{
			Phase:      mediaProgress.PhaseDownload,
			Distro:     pw.distro,
			BytesTotal: pw.total,
			BytesDone:  pw.written,
		})
	}
	return n, err
}

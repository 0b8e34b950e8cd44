package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/hatchery/progress"
	mediaProgress "github.com/projecteru2/hatchery/progress/media"
	"github.com/projecteru2/hatchery/types"
	"github.com/projecteru2/hatchery/utils"
)

// extract mounts the cached ISO read-only, copies the first matching
// kernel/initrd candidates into the per-distribution boot directory, and
// unmounts on every exit path.
func (d *Downloader) extract(ctx context.Context, profile *types.DistroProfile, tracker progress.Tracker) error {
	logger := log.WithFunc("media.extract")

	iso := d.conf.MediaPath(profile)
	if !utils.ValidFile(iso) {
		return fmt.Errorf("media %s not in cache (run Ensure first): %w", profile.MediaFile, types.ErrContentShape)
	}
	if err := utils.EnsureDirs(d.conf.BootDir(profile.Name), d.conf.MountDir()); err != nil {
		return err
	}

	tracker.OnEvent(mediaProgress.Event{Phase: mediaProgress.PhaseExtract, Distro: profile.Name})

	mnt := d.conf.MountDir()
	if out, err := exec.CommandContext(ctx, "mount", "-o", "loop,ro", iso, mnt).CombinedOutput(); err != nil { //nolint:gosec // controlled paths
		return fmt.Errorf("mount %s: %s: %w", iso, strings.TrimSpace(string(out)), err)
	}
	// The mount is released no matter how the search below exits.
	defer func() {
		if out, err := exec.Command("umount", mnt).CombinedOutput(); err != nil { //nolint:gosec // controlled path
			logger.Warnf(ctx, "umount %s: %s: %v", mnt, strings.TrimSpace(string(out)), err)
		}
	}()

	if err := copyFirst(mnt, profile.KernelPaths, d.conf.KernelPath(profile.Name)); err != nil {
		return fmt.Errorf("kernel for %s: %w", profile.Name, err)
	}
	if err := copyFirst(mnt, profile.InitrdPaths, d.conf.InitrdPath(profile.Name)); err != nil {
		return fmt.Errorf("initrd for %s: %w", profile.Name, err)
	}

	tracker.OnEvent(mediaProgress.Event{Phase: mediaProgress.PhaseDone, Distro: profile.Name})
	logger.Infof(ctx, "extracted boot artifacts for %s -> %s", profile.Name, d.conf.BootDir(profile.Name))
	return nil
}

// copyFirst copies the first existing candidate (relative to root) to target.
// No candidate present means the media's internal layout does not match the
// profile — a content-shape error, distinct from any transport failure.
func copyFirst(root string, candidates []string, target string) error {
	for _, rel := range candidates {
		src := filepath.Join(root, rel)
		if !utils.ValidFile(src) {
			continue
		}
		return copyFile(src, target)
	}
	return fmt.Errorf("none of %v found in media: %w", candidates, types.ErrContentShape)
}

// copyFile streams src to a temp file next to dst, then renames, so a
// half-copied artifact is never left at the target path.
func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // path inside the mounted ISO
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close() //nolint:errcheck

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if _, err := io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename to %s: %w", dst, err)
	}
	return utils.SyncParentDir(filepath.Dir(dst))
}

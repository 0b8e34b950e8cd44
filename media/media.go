// Package media maintains the shared installation-media cache: one ISO per
// distribution plus the extracted kernel/initrd pair network installs boot
// from. Writes are idempotent — an existing valid file always wins.
package media

import (
	"context"
	"net/http"
	"time"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/hatchery/config"
	"github.com/projecteru2/hatchery/lock"
	"github.com/projecteru2/hatchery/lock/flock"
	"github.com/projecteru2/hatchery/progress"
	"github.com/projecteru2/hatchery/types"
	"github.com/projecteru2/hatchery/utils"
)

// downloadTimeout is the overall timeout for one ISO transfer.
const downloadTimeout = 60 * time.Minute

// Downloader ensures installation media and boot artifacts are present on
// local storage. Safe against concurrent hatchery runs: the cache is
// flock-guarded.
type Downloader struct {
	conf   *config.Config
	locker lock.Locker
	client *http.Client
}

// New creates a Downloader over the configured media cache.
func New(conf *config.Config) (*Downloader, error) {
	if err := utils.EnsureDirs(conf.MediaDir()); err != nil {
		return nil, err
	}
	return &Downloader{
		conf:   conf,
		locker: flock.New(conf.MediaLockFile()),
		client: &http.Client{Timeout: downloadTimeout},
	}, nil
}

// Ensure makes the distribution's ISO present at its cache path.
// If a valid file is already there, no network transfer happens. A partial
// file from an aborted earlier run is not valid and is overwritten, never
// resume-merged.
func (d *Downloader) Ensure(ctx context.Context, profile *types.DistroProfile, tracker progress.Tracker) error {
	logger := log.WithFunc("media.Ensure")
	return lock.WithLock(ctx, d.locker, func() error {
		target := d.conf.MediaPath(profile)
		if utils.ValidFile(target) {
			logger.Infof(ctx, "media %s already cached, skipping download", profile.MediaFile)
			return nil
		}
		return d.download(ctx, profile, target, tracker)
	})
}

// EnsureBoot makes the distribution's kernel/initrd pair present in its boot
// directory, extracting from the cached ISO if needed. Requires Ensure to
// have succeeded for the profile.
func (d *Downloader) EnsureBoot(ctx context.Context, profile *types.DistroProfile, tracker progress.Tracker) error {
	logger := log.WithFunc("media.EnsureBoot")
	return lock.WithLock(ctx, d.locker, func() error {
		kernel := d.conf.KernelPath(profile.Name)
		initrd := d.conf.InitrdPath(profile.Name)
		if utils.ValidFile(kernel) && utils.ValidFile(initrd) {
			logger.Infof(ctx, "boot artifacts for %s already extracted, skipping", profile.Name)
			return nil
		}
		return d.extract(ctx, profile, tracker)
	})
}

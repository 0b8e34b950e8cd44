// Package deliver exposes the rendered-config directory over a short-lived
// HTTP endpoint so an installing VM can fetch its unattended-install file
// during boot.
package deliver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/projecteru2/core/log"
	"golang.org/x/sync/errgroup"

	"github.com/projecteru2/hatchery/types"
	"github.com/projecteru2/hatchery/utils"
)

const (
	// probeTimeout bounds the reachability confirmation after start.
	probeTimeout = 5 * time.Second
	// probeInterval is the retry interval while confirming.
	probeInterval = 200 * time.Millisecond
	// staleGracePeriod is the SIGTERM→SIGKILL window for a stale listener.
	staleGracePeriod = 3 * time.Second
	// shutdownTimeout bounds Stop.
	shutdownTimeout = 5 * time.Second
)

// Endpoint is a running delivery endpoint. Obtain with Start; always Stop.
type Endpoint struct {
	dir     string
	port    int
	pidFile string

	srv *http.Server
	g   *errgroup.Group
}

// Start serves dir on port, bound to all interfaces so a VM on an isolated
// virtual network can reach the host. A stale listener recorded in pidFile
// from an earlier run is terminated first; the new endpoint is confirmed
// reachable (probe file written and fetched back) before Start returns.
func Start(ctx context.Context, dir string, port int, pidFile string) (*Endpoint, error) {
	logger := log.WithFunc("deliver.Start")

	if err := reapStale(ctx, pidFile); err != nil {
		return nil, err
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind :%d: %v: %w", port, err, types.ErrTransport)
	}
	// Port 0 means "any free port" (tests); record what was actually bound.
	port = ln.Addr().(*net.TCPAddr).Port

	srv := &http.Server{
		Handler:           http.FileServer(http.Dir(dir)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g := &errgroup.Group{}
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	ep := &Endpoint{dir: dir, port: port, pidFile: pidFile, srv: srv, g: g}

	if err := utils.WritePIDFile(pidFile, os.Getpid()); err != nil {
		_ = ep.Stop(ctx)
		return nil, fmt.Errorf("write serve PID file: %w", err)
	}
	if err := ep.probe(ctx); err != nil {
		_ = ep.Stop(ctx)
		return nil, err
	}

	logger.Infof(ctx, "delivery endpoint confirmed on :%d serving %s", port, dir)
	return ep, nil
}

// URL returns the endpoint URL for a served file as reachable from hostAddr.
func (e *Endpoint) URL(hostAddr, file string) string {
	return fmt.Sprintf("http://%s/%s", net.JoinHostPort(hostAddr, strconv.Itoa(e.port)), file)
}

// Stop shuts the endpoint down and removes the PID file. Idempotent enough
// to sit on the cleanup stack: a second call returns the shutdown error of
// an already-closed server, which callers log and ignore.
func (e *Endpoint) Stop(ctx context.Context) error {
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := e.srv.Shutdown(sctx)
	if werr := e.g.Wait(); werr != nil && err == nil {
		err = werr
	}
	if rmErr := os.Remove(e.pidFile); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

// probe writes a token file into the served directory and fetches it back
// over loopback. Start is verified, not assumed: if the served bytes never
// match within the window, startup fails instead of reporting "might be up".
func (e *Endpoint) probe(ctx context.Context) error {
	token := uuid.NewString()
	name := ".probe-" + token
	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, []byte(token), 0o644); err != nil { //nolint:gosec // served dir
		return fmt.Errorf("write probe file: %w", err)
	}
	defer os.Remove(path) //nolint:errcheck

	url := fmt.Sprintf("http://127.0.0.1:%d/%s", e.port, name)
	client := &http.Client{Timeout: probeInterval * 4}

	err := utils.WaitFor(ctx, probeTimeout, probeInterval, func() (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return false, nil // not reachable yet, retry
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			return false, nil
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, nil
		}
		return string(body) == token, nil
	})
	if err != nil {
		return fmt.Errorf("endpoint on :%d not reachable: %v: %w", e.port, err, types.ErrTransport)
	}
	return nil
}

// reapStale terminates a listener left by an earlier run. The port is
// exclusive; only a process that still looks like ours is signalled.
func reapStale(ctx context.Context, pidFile string) error {
	pid, err := utils.ReadPIDFile(pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		// Unparseable PID file: remove and continue.
		_ = os.Remove(pidFile)
		return nil
	}
	if pid == os.Getpid() || !utils.VerifyProcess(pid, "hatchery") {
		_ = os.Remove(pidFile)
		return nil
	}
	log.WithFunc("deliver.reapStale").Warnf(ctx, "terminating stale delivery endpoint (pid %d)", pid)
	if err := utils.TerminateProcess(pid, staleGracePeriod); err != nil {
		return fmt.Errorf("terminate stale listener pid %d: %w", pid, err)
	}
	_ = os.Remove(pidFile)
	return nil
}

// Package secret hashes VM credentials through the host's openssl binary.
package secret

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Hasher produces SHA-512 crypt credentials from cleartext passwords.
// An interface so the provisioning pipeline is testable without openssl.
type Hasher interface {
	Hash(ctx context.Context, password string) (string, error)
}

// OpenSSL hashes via `openssl passwd -6`.
type OpenSSL struct {
	// Binary overrides the openssl path; empty means "openssl" from PATH.
	Binary string
}

var _ Hasher = OpenSSL{}

// Hash returns the SHA-512 crypt hash of password.
// The output is validated against the $6$ crypt shape: a hash in any other
// format would be written into the install config and silently produce an
// unloggable account.
func (o OpenSSL) Hash(ctx context.Context, password string) (string, error) {
	bin := o.Binary
	if bin == "" {
		bin = "openssl"
	}
	cmd := exec.CommandContext(ctx, bin, "passwd", "-6", "-stdin") //nolint:gosec // fixed args
	cmd.Stdin = strings.NewReader(password + "\n")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("openssl passwd: %w", err)
	}
	hash := strings.TrimSpace(string(out))
	if !strings.HasPrefix(hash, "$6$") || strings.ContainsAny(hash, " \t\n") {
		return "", fmt.Errorf("openssl passwd: unexpected credential format %q", truncate(hash, 8))
	}
	return hash, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

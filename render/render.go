// Package render produces per-VM unattended-install configuration files from
// distribution templates.
//
// The substitution language is deliberately tiny: five fixed @TOKEN@
// placeholders replaced in one simultaneous pass. Replaced text is never
// rescanned, so a value containing a literal placeholder token ends up in
// the output verbatim and cannot shift which placeholder is matched.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/projecteru2/hatchery/types"
	"github.com/projecteru2/hatchery/utils"
)

// Placeholder tokens. Every template must contain all five.
const (
	TokenHostname     = "@HOSTNAME@"
	TokenUsername     = "@USERNAME@"
	TokenUserPassHash = "@USER_PASSWORD_HASH@"
	TokenRootPassHash = "@ROOT_PASSWORD_HASH@"
	TokenTimezone     = "@TIMEZONE@"
)

var tokens = []string{
	TokenHostname,
	TokenUsername,
	TokenUserPassHash,
	TokenRootPassHash,
	TokenTimezone,
}

// Vars are the values substituted into a template. Password fields carry
// crypt hashes, never cleartext.
type Vars struct {
	Hostname     string
	Username     string
	UserPassHash string
	RootPassHash string
	Timezone     string
}

// Render loads the distribution's template from templateDir and substitutes
// vars. Deterministic: same template + same vars gives byte-identical output.
// A template missing any placeholder fails fast — it would otherwise degrade
// silently into an installer prompt that never gets answered.
func Render(templateDir string, profile *types.DistroProfile, vars Vars) ([]byte, error) {
	path := filepath.Join(templateDir, profile.Template)
	raw, err := os.ReadFile(path) //nolint:gosec // template path from the closed profile set
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", path, err)
	}
	tpl := string(raw)

	for _, tok := range tokens {
		if !strings.Contains(tpl, tok) {
			return nil, fmt.Errorf("template %s missing placeholder %s: %w", profile.Template, tok, types.ErrContentShape)
		}
	}

	// Single pass over the template; pairs are literal token -> value.
	out := strings.NewReplacer(
		TokenHostname, vars.Hostname,
		TokenUsername, vars.Username,
		TokenUserPassHash, vars.UserPassHash,
		TokenRootPassHash, vars.RootPassHash,
		TokenTimezone, vars.Timezone,
	).Replace(tpl)

	return []byte(out), nil
}

// RenderToFile renders and writes the result to dir/<hostname>.cfg with
// permissions private to the install attempt. The caller owns the file:
// deleted after a successful install, retained for debugging on failure.
func RenderToFile(templateDir, dir string, profile *types.DistroProfile, vars Vars) (string, error) {
	data, err := Render(templateDir, profile, vars)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, vars.Hostname+".cfg")
	if err := utils.AtomicWriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write config %s: %w", path, err)
	}
	return path, nil
}

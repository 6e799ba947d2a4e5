package installer

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"zcf/internal/logger"
)

// UpdateStatus is the check-updates row for one package.
type UpdateStatus struct {
	Package     Package
	Installed   string
	Latest      string
	NeedsUpdate bool
	Err         error
}

// CheckUpdates compares installed and published versions. Packages that are
// not installed are skipped. A failure for one package is recorded in its
// row and the rest are still checked.
func (i Installer) CheckUpdates(ctx context.Context, pkgs []Package) []UpdateStatus {
	var out []UpdateStatus
	for _, p := range pkgs {
		if !i.IsInstalled(p) {
			logger.Debug("[DEBUG] Skipping update check for %s: not installed\n", p.Name)
			continue
		}
		out = append(out, i.checkOne(ctx, p))
	}
	return out
}

func (i Installer) checkOne(ctx context.Context, p Package) UpdateStatus {
	st := UpdateStatus{Package: p}
	var err error
	if st.Installed, err = i.InstalledVersion(ctx, p); err != nil {
		st.Err = err
		return st
	}
	if st.Latest, err = i.LatestVersion(ctx, p); err != nil {
		st.Err = err
		return st
	}
	st.NeedsUpdate, st.Err = NewerThan(st.Latest, st.Installed)
	return st
}

// NewerThan reports whether latest is a higher semantic version than current.
func NewerThan(latest, current string) (bool, error) {
	lv, err := semver.NewVersion(latest)
	if err != nil {
		return false, fmt.Errorf("parse version %q: %w", latest, err)
	}
	cv, err := semver.NewVersion(current)
	if err != nil {
		return false, fmt.Errorf("parse version %q: %w", current, err)
	}
	return lv.GreaterThan(cv), nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// SupportedVersions is the range of config format versions this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// ErrIncompatibleVersion is returned when a config declares a format version
// outside SupportedVersions.
var ErrIncompatibleVersion = errors.New("incompatible config version")

// CheckVersion accepts an empty version (treated as current) or any version
// satisfying SupportedVersions. A leading "v" is tolerated.
func CheckVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := parseSemver(version)
	if err != nil {
		return fmt.Errorf("parsing config version %q: %w", version, err)
	}
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("parsing supported range: %w", err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s (supported: %s)", ErrIncompatibleVersion, version, SupportedVersions)
	}
	return nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}

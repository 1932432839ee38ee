// Package version derives the next semantic version for a release and the
// tag names that identify it.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ReleaseType selects how the version is bumped.
type ReleaseType string

const (
	ReleaseMajor      ReleaseType = "major"
	ReleaseMinor      ReleaseType = "minor"
	ReleasePatch      ReleaseType = "patch"
	ReleasePrerelease ReleaseType = "prerelease"
)

var ErrInvalidVersion = errors.New("invalid semantic version")

// ParseReleaseType validates a bump type given on the command line.
func ParseReleaseType(s string) (ReleaseType, error) {
	switch ReleaseType(s) {
	case ReleaseMajor, ReleaseMinor, ReleasePatch, ReleasePrerelease:
		return ReleaseType(s), nil
	}

	return "", fmt.Errorf("unknown release type %q (expected major, minor, patch or prerelease)", s)
}

// Next computes the version after applying bump to current. preID is the
// prerelease identifier ("beta" yields 1.0.1-beta.0); an empty preID yields a
// bare numeric prerelease (1.0.1-0), and repeated prerelease bumps increment
// the trailing counter.
func Next(current string, bump ReleaseType, preID string) (string, error) {
	v, err := semver.StrictNewVersion(current)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidVersion, current, err)
	}

	switch bump {
	case ReleaseMajor:
		next := v.IncMajor()
		return next.String(), nil
	case ReleaseMinor:
		next := v.IncMinor()
		return next.String(), nil
	case ReleasePatch:
		next := v.IncPatch()
		return next.String(), nil
	case ReleasePrerelease:
		return nextPrerelease(v, preID)
	}

	return "", fmt.Errorf("%w: unknown release type %q", ErrInvalidVersion, string(bump))
}

func nextPrerelease(v *semver.Version, preID string) (string, error) {
	if v.Prerelease() == "" {
		// Start a new prerelease series on the next patch version.
		base := v.IncPatch()
		next, err := base.SetPrerelease(firstIdentifier(preID))
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidVersion, err)
		}
		return next.String(), nil
	}

	next, err := v.SetPrerelease(bumpIdentifier(v.Prerelease(), preID))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidVersion, err)
	}

	return next.String(), nil
}

func firstIdentifier(preID string) string {
	if preID == "" {
		return "0"
	}

	return preID + ".0"
}

// bumpIdentifier increments the numeric counter of an existing prerelease
// identifier, or restarts the series when the identifier changed
// (1.0.1-alpha.2 bumped with "beta" becomes 1.0.1-beta.0).
func bumpIdentifier(existing, preID string) string {
	parts := strings.Split(existing, ".")
	last := parts[len(parts)-1]

	n, err := strconv.Atoi(last)
	if err != nil {
		return firstIdentifier(preID)
	}

	prefix := strings.Join(parts[:len(parts)-1], ".")
	if prefix != preID {
		return firstIdentifier(preID)
	}

	if prefix == "" {
		return strconv.Itoa(n + 1)
	}

	return prefix + "." + strconv.Itoa(n+1)
}

// IsPrerelease reports whether a version carries a prerelease segment. The
// flag drives the prerelease attribute of the published release; draft is a
// separate user choice.
func IsPrerelease(v string) bool {
	parsed, err := semver.StrictNewVersion(v)
	if err != nil {
		return false
	}

	return parsed.Prerelease() != ""
}

// TagName is the fixed-strategy tag for a version.
func TagName(v string) string {
	return "v" + v
}

// PackageTagName is the independent-strategy tag for one package.
func PackageTagName(name, v string) string {
	return name + "@" + v
}

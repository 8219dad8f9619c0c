package oastypes

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// version represents a semantic version with major, minor, and patch components.
// It supports comparison and parsing of standard semver strings (e.g., "3.0.1", "3.1.0-rc1").
// Ordering comparisons delegate to golang.org/x/mod/semver; the numeric fields
// are kept alongside for callers that bucket versions by major.minor series.
type version struct {
	major      int
	minor      int
	patch      int
	prerelease string
	canonical  string // "vMAJOR.MINOR.PATCH[-prerelease]", valid per semver.IsValid
}

// parseVersion parses a semantic version string into a version struct.
// Supports "major.minor" and "major.minor.patch", with an optional
// "-prerelease" suffix. Examples: "2.0", "3.0.1", "3.1.0-rc1".
func parseVersion(s string) (*version, error) {
	var prerelease string
	base := s
	if idx := strings.IndexByte(s, '-'); idx >= 0 {
		prerelease = s[idx+1:]
		base = s[:idx]
	}

	parts := strings.Split(base, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("invalid version format: %q", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil || major < 0 || major > math.MaxInt32 {
		return nil, fmt.Errorf("invalid major version: %q", parts[0])
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil || minor < 0 || minor > math.MaxInt32 {
		return nil, fmt.Errorf("invalid minor version: %q", parts[1])
	}
	patch := 0
	if len(parts) == 3 {
		patch, err = strconv.Atoi(parts[2])
		if err != nil || patch < 0 || patch > math.MaxInt32 {
			return nil, fmt.Errorf("invalid patch version: %q", parts[2])
		}
	}

	canon := fmt.Sprintf("v%d.%d.%d", major, minor, patch)
	if prerelease != "" {
		canon += "-" + prerelease
	}
	if !semver.IsValid(canon) {
		return nil, fmt.Errorf("invalid semantic version: %q", s)
	}

	return &version{
		major:      major,
		minor:      minor,
		patch:      patch,
		prerelease: prerelease,
		canonical:  canon,
	}, nil
}

// segments returns the version components as a slice [major, minor, patch].
func (v *version) segments() []int {
	return []int{v.major, v.minor, v.patch}
}

// lessThan returns true if v < other, per golang.org/x/mod/semver ordering
// (a pre-release version sorts before its base release).
func (v *version) lessThan(other *version) bool {
	return semver.Compare(v.canonical, other.canonical) < 0
}

// greaterThanOrEqual returns true if v >= other.
func (v *version) greaterThanOrEqual(other *version) bool {
	return semver.Compare(v.canonical, other.canonical) >= 0
}

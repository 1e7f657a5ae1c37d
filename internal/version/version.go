// Package version parses the identifier and semantic version an error
// reporting SDK announces about itself.
package version

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var identifierVersionRE = regexp.MustCompile(`^(.+?)[-/ ]v?(\d+\.\d+\.\d+(?:-\S+)?)$`)
var bareVersionRE = regexp.MustCompile(`^v?(\d+\.\d+\.\d+(?:-\S+)?)$`)

// SplitWithError splits "sentry.go/0.18.0", "sentry.go 0.18.0" or a bare
// "0.18.0" into identifier and version. An input without any version
// is reported with version 0.0.0.
func SplitWithError(announced string) (string, *semver.Version, error) {
	var identifier, version string
	switch {
	case bareVersionRE.MatchString(announced):
		version = bareVersionRE.FindStringSubmatch(announced)[1]
	default:
		if m := identifierVersionRE.FindStringSubmatch(announced); m != nil {
			identifier = m[1]
			version = m[2]
		} else {
			identifier = announced
			version = "0.0.0"
		}
	}
	sver, err := semver.StrictNewVersion(version)
	if err != nil {
		return "", nil, fmt.Errorf("semver '%s' is not valid: %w", version, err)
	}
	return identifier, sver, nil
}

var Zero = func() *semver.Version {
	sver, err := semver.StrictNewVersion("0.0.0")
	if err != nil {
		panic(err)
	}
	return sver
}()

// Split is SplitWithError that falls back to the Zero version.
func Split(announced string) (string, *semver.Version) {
	i, v, err := SplitWithError(announced)
	if err != nil {
		return announced, Zero
	}
	return i, v
}

// Package update compares the running version against the newest known
// release.
package update

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"
)

// latestKnown is the newest release this build is aware of. Release tooling
// bumps it alongside version.Version.
const latestKnown = "0.1.0"

// Check reports whether a release newer than current exists, returning the
// latest known version either way.
func Check(current string) (string, bool, error) {
	cur, err := goversion.NewVersion(current)
	if err != nil {
		return "", false, fmt.Errorf("parse version %q: %w", current, err)
	}
	latest, err := goversion.NewVersion(latestKnown)
	if err != nil {
		return "", false, fmt.Errorf("parse version %q: %w", latestKnown, err)
	}
	return latestKnown, cur.LessThan(latest), nil
}

// DownloadURL returns the release asset URL for this platform.
func DownloadURL(version string) string {
	return fmt.Sprintf("https://github.com/satishbabariya/querykit/releases/download/v%s/querykit-%s-%s",
		version, runtime.GOOS, runtime.GOARCH)
}

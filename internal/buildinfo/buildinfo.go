// Package buildinfo reports the module's own version string. It lives
// under internal so the root package can depend on the rest of the
// module without introducing an import cycle back into itself.
package buildinfo

import "fmt"

// version is set via ldflags during build by GoReleaser. For
// development builds this shows "dev".
var version = "dev"

// Version returns the compiled version or "dev" if run from source.
func Version() string {
	return version
}

// UserAgent returns the User-Agent string HTTP clients in this module
// should send.
func UserAgent() string {
	return fmt.Sprintf("apigate/%s", version)
}

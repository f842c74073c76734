package build

import "fmt"

// Version is set at link time with
// -ldflags "-X github.com/storacha/sandbox/pkg/build.Version=v1.2.3"
var Version = "v0.0.0-dev"

// UserAgent is sent with every outbound relayer request.
func UserAgent() string {
	return fmt.Sprintf("sandbox/%s", Version)
}

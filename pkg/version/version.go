package version

// Version is the application version, set at build time via ldflags.
// Example: go build -ldflags "-X github.com/listenlog/listenlog/pkg/version.Version=1.0.0".
var Version = "dev"

// UserAgent is sent on outbound requests so third-party services can identify us.
func UserAgent() string {
	return "listenlog/" + Version
}

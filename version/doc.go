// Package version exposes build information for shellkit binaries.
//
// Values are injected at link time and fall back to the VCS stamp that the
// Go toolchain embeds in the binary:
//
//	go build -ldflags "-X github.com/kbukum/shellkit/version.Version=1.0.0"
//
// The telemetry resource uses Short() as service.version.
package version

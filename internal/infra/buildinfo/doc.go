// Package buildinfo exposes build metadata injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/lingvo-go/internal/infra/buildinfo.Version=v1.0.0" ./cmd/lingvo-cli
//
// GoVersion falls back to the toolchain recorded in the binary.
package buildinfo

// Package build holds build-time information about the mason binary.
package build

// Version is the application version.
// It defaults to "dev" and is overwritten by linker flags on release builds.
var Version = "dev"

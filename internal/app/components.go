package app

import "go.trai.ch/mason/internal/core/ports"

// Components bundles the wired application with the pieces the entry point
// needs directly.
type Components struct {
	App    *App
	Logger ports.Logger
}

// Copyright 2026 The Evochora Authors
// This file is part of the evochora-sub007 runtime.
//
// The evochora-sub007 runtime is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evochora-sub007 runtime is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evochora-sub007 runtime. If not, see <http://www.gnu.org/licenses/>.

// Package evolog is the runtime's structured logger, a thin wrapper around
// log15 so call sites use plain key-value pairs without depending on the
// third-party package directly.
package evolog

import "github.com/inconshreveable/log15"

// Logger is the interface every runtime component logs through.
type Logger = log15.Logger

var root = log15.New()

// New returns a logger with ctx appended to every record, e.g.
// evolog.New("component", "scheduler").
func New(ctx ...interface{}) Logger {
	return root.New(ctx...)
}

// Root returns the package-wide root logger.
func Root() Logger {
	return root
}

// SetHandler installs h as the root handler, e.g. to redirect to a file or
// raise the verbosity in tests.
func SetHandler(h log15.Handler) {
	root.SetHandler(h)
}

// Discard silences the root logger by installing a handler that drops
// every record.
func Discard() {
	root.SetHandler(log15.DiscardHandler())
}

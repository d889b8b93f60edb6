// material/errors.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package material

import "errors"

var (
	ErrNoImplementation = errors.New("material has no implementation")
	ErrNoEnqueuer       = errors.New("technique has no enqueuer")
)

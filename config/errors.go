// config/errors.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package config

import "errors"

var (
	ErrNotFound       = errors.New("config not found")
	ErrReferenceCycle = errors.New("config reference cycle")
	ErrUnknownVariant = errors.New("unknown variant type")
	ErrMissingType    = errors.New("missing \"type\" field")
)

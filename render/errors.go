// render/errors.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package render

import "errors"

var ErrShaderLink = errors.New("shader link failed")

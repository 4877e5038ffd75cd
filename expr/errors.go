// seehuhn.de/go/raster - band algebra and colour correction for raster images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package expr

import (
	"errors"
	"fmt"
)

// ErrUnbound is returned by [Expression.Bind] when no samples are supplied
// for a band used by the expression.
var ErrUnbound = errors.New("band not bound")

// CompileError is returned when an expression cannot be compiled.
type CompileError struct {
	Expr string // the source text
	Pos  int    // byte offset of the offending token
	Msg  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid expression %q at offset %d: %s", e.Expr, e.Pos, e.Msg)
}

// Is reports whether target is a *CompileError.
func (e *CompileError) Is(target error) bool {
	_, ok := target.(*CompileError)
	return ok
}

func errorf(src string, pos int, format string, args ...any) *CompileError {
	return &CompileError{
		Expr: src,
		Pos:  pos,
		Msg:  fmt.Sprintf(format, args...),
	}
}

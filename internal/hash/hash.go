/*
Copyright © 2026 the CH4MOD authors.
This file is part of CH4MOD.

CH4MOD is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

CH4MOD is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with CH4MOD.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package hash creates cache keys for simulation requests.
package hash

import (
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// printer writes values deterministically: map keys are sorted and
// pointers are followed rather than printed as addresses.
var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Key returns a hash key for the given values. Values that print the
// same, including NaN fields, produce the same key.
func Key(values ...interface{}) string {
	h := fnv.New128a()
	for _, v := range values {
		printer.Fprintf(h, "%#v\n", v)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

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

// Command ch4mod is a command-line interface for the CH4MOD rice paddy
// methane emission model.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/ch4mod/ch4modutil"
)

func main() {
	if err := ch4modutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

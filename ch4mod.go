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

// Package ch4mod simulates daily methane emission from flooded rice
// paddies.
//
// A simulation combines a logistic rice growth curve, the decomposition
// of added organic matter, and soil redox potential dynamics driven by
// a water management schedule to estimate gross methane production,
// which is then split into emission by ebullition and transport through
// the rice plants.
package ch4mod

// Version gives the version number.
const Version = "2.0.0"

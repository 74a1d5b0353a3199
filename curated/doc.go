// This file is part of AmuletsArmor.
//
// AmuletsArmor is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// AmuletsArmor is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with AmuletsArmor.  If not, see <https://www.gnu.org/licenses/>.

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created with a
// specific pattern. The pattern is what differentiates one curated error from
// another. For example:
//
//	const PortAlreadyOpen = "comm: %v port already open"
//
//	e := curated.Errorf(PortAlreadyOpen, "self")
//
//	if curated.Is(e, PortAlreadyOpen) {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain.
//
//	f := curated.Errorf("link: %v", e)
//
//	if curated.Has(f, PortAlreadyOpen) {
//		fmt.Println("true")
//	}
//
// In this example, curated.Is(f, PortAlreadyOpen) is false because error f
// was created with the pattern "link: %v".
//
// The IsAny() function answers whether the error was created by
// curated.Errorf() at all. We can think of the difference as being 'expected'
// and 'unexpected' errors, depending on how the caller chooses to handle them.
//
// The Error() function normalises the message chain so that it does not
// contain duplicate adjacent parts. Chains are composed of parts separated by
// the sub-string ': ' as suggested on p239 of "The Go Programming Language"
// (Donovan, Kernighan). For example:
//
//	part 1: part 2: part 3
//
// Sentinel patterns are stored as const strings in the package that produces
// them, suitably named and commented. Curated errors also take part in the
// standard library's error wrapping: errors.Unwrap() returns the first error
// value given to Errorf().
package curated

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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect*() functions report a failed test with t.Errorf() and allow the
// test to continue. The Demand*() functions report with t.Fatalf() and should
// be used when the value being tested is needed by later parts of the test.
// For example, testing that the number of bytes read from a port is correct
// before comparing the bytes themselves.
//
// ExpectSuccess() and ExpectFailure() test for success and failure under
// generic conditions. It is worth describing how they handle nil because it
// is not obvious. The nil type is considered a success and consequently will
// cause ExpectFailure() to fail and ExpectSuccess() to succeed. This is
// because of how errors usually work (nil to indicate no error).
//
// The CompareWriter type implements the io.Writer interface and should be
// used to capture output. CompareWriter.Compare() can then be used to test
// for equality and CompareWriter.Contains() for a partial match.
//
// All functions accept optional tags which are prepended to the failure
// message. Useful when testing inside a loop.
package test

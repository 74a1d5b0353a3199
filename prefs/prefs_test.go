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

package prefs_test

import (
	"errors"
	"testing"

	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/prefs"
	"github.com/ExiguusEntertainment/AmuletsArmor-sub008/test"
)

func TestBool(t *testing.T) {
	var v prefs.Bool
	test.ExpectEquality(t, v.String(), "false")

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectEquality(t, v.Get(), prefs.Value(true))
	test.ExpectSuccess(t, v.Set("false"))
	test.ExpectEquality(t, v.String(), "false")
	test.ExpectSuccess(t, v.Set("1"))
	test.ExpectEquality(t, v.String(), "true")

	test.ExpectFailure(t, v.Set("foo"))
	test.ExpectFailure(t, v.Set(10))
	test.ExpectEquality(t, v.String(), "true")

	test.ExpectSuccess(t, v.Reset())
	test.ExpectEquality(t, v.String(), "false")
}

func TestString(t *testing.T) {
	var v prefs.String
	test.ExpectEquality(t, v.String(), "")

	test.ExpectSuccess(t, v.Set("COM1"))
	test.ExpectEquality(t, v.String(), "COM1")
	test.ExpectSuccess(t, v.Set(10))
	test.ExpectEquality(t, v.String(), "10")

	test.ExpectSuccess(t, v.Set("directmaster"))
	v.SetMaxLen(6)
	test.ExpectEquality(t, v.String(), "direct")
	test.ExpectSuccess(t, v.Set("answering"))
	test.ExpectEquality(t, v.String(), "answer")

	v.SetMaxLen(0)
	test.ExpectSuccess(t, v.Set("answering"))
	test.ExpectEquality(t, v.String(), "answering")
}

func TestInt(t *testing.T) {
	var v prefs.Int
	test.ExpectEquality(t, v.String(), "0")

	test.ExpectSuccess(t, v.Set(9600))
	test.ExpectEquality(t, v.Get(), prefs.Value(9600))
	test.ExpectSuccess(t, v.Set("0x3f8"))
	test.ExpectEquality(t, v.Get(), prefs.Value(0x3f8))
	test.ExpectSuccess(t, v.Set(uint16(0x2f8)))
	test.ExpectEquality(t, v.String(), "760")

	test.ExpectFailure(t, v.Set("foo"))
	test.ExpectFailure(t, v.Set(1.5))
	test.ExpectEquality(t, v.String(), "760")
}

func TestHooks(t *testing.T) {
	var v prefs.Int

	var post int
	v.SetHookPre(func(nv prefs.Value) error {
		if nv.(int) < 0 {
			return errors.New("negative")
		}
		return nil
	})
	v.SetHookPost(func(nv prefs.Value) error {
		post = nv.(int)
		return nil
	})

	test.ExpectSuccess(t, v.Set(4))
	test.ExpectEquality(t, post, 4)

	// pre-hook prevents the change
	test.ExpectFailure(t, v.Set(-1))
	test.ExpectEquality(t, v.Get(), prefs.Value(4))
	test.ExpectEquality(t, post, 4)
}

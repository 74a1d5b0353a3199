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

// Package prefs holds typed preference values. Values are stored atomically
// and so can be read from any goroutine. Each type can have a hook that is
// called before the new value is stored (which can veto the change) and a hook
// called after the value has been stored.
//
// Preferences can be overridden from the command line with the command line
// stack. See PushCommandLineStack() for the format.
package prefs

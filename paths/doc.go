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

// Package paths prepares paths to resources used by the communication tools,
// most importantly the default configuration file.
//
// If a directory named ".amulets" exists in the current directory then that is
// used as the base path. Otherwise the "amulets" directory in the user's
// configuration directory is used, as returned by os.UserConfigDir(). On Linux
// the following:
//
//	paths.ResourcePath("aacomm.ini")
//
// will usually return "/home/user/.config/amulets/aacomm.ini".
//
// The existence of the resource is not checked.
package paths

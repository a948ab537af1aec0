// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package config loads the view configuration document and process settings.

	            +-------------+
	            |   Config    |
	            | app_path    |
	            | targets     |
	            | singles     |
	            +------+------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  JSON   |   |  YAML   |   |   HCL   |
	| Parser  |   | Parser  |   | Parser  |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Parse view-config.json (and .yaml/.hcl twins) into an ordered Config
- Keep group order exactly as written in the document
- Read the process Settings from the environment (.env aware)

📝 Groups whose name starts with "!" are kept in the document but reported
as Disabled; callers decide whether to skip them.

The package never caches. Every Load re-reads the file so edits made while
the server runs show up on the next request.
*/
package config

/*
Package resolve turns path patterns into classified filesystem entries.

	pattern ──► Resolver ──► FileSystem.Glob ──► Classifier ──► []Entry
	               │                                  ▲
	               └──────── literal path ────────────┘

🎯 Purpose:
- Expand literal paths and doublestar globs relative to a base directory
- Classify every match as a file or directory, following symlinks
- Keep one bad pattern or entry from failing anything else

📝 Conventions:
- Entry paths are slash separated and relative to the base directory
- A trailing single star matches recursively ("Models/*" == "Models/**\/*")
- Dot segments are skipped unless the pattern names them
- A symlinked directory lists the children of its real directory, joined onto the link's own path

🔍 Example:

	r := resolve.NewResolver(resolve.OSFileSystem{}, "example-app")
	for _, e := range r.Resolve(ctx, "app/Models/*.php") {
		fmt.Println(e.Path, e.Type)
	}
*/
package resolve

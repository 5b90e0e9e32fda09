package hfs

import "strings"

// splitPath breaks a POSIX-style absolute path into its non-empty
// segments. A bare "/" or repeated separators contribute no segments,
// matching pathlib.PurePosixPath's treatment of "." and "/" parts.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		segments = append(segments, p)
	}
	return segments
}

package dwarfinfo

import "strings"

// joinPath joins a line-table directory and file name. Unlike path.Join it
// does not clean the result, and a file name that is already absolute,
// Unix or Windows style, is returned as is.
func joinPath(dir, file string) string {
	if dir == "" || isAbs(file) {
		return file
	}
	if strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, `\`) {
		return dir + file
	}
	return dir + "/" + file
}

func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		return true
	}
	// C:\ or C:/
	return len(p) >= 3 && p[1] == ':' && (p[2] == '\\' || p[2] == '/') &&
		(p[0] >= 'a' && p[0] <= 'z' || p[0] >= 'A' && p[0] <= 'Z')
}

package utils

import (
	"os"
	"path/filepath"
	"strings"
)

var QuitChan = make(chan os.Signal, 1)

// BaseName strips directories and the extension: "a/b/cover.png" -> "cover".
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

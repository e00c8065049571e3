package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// maxProbes bounds how many " (n)" suffixes are tried before falling back
// to a timestamp suffix.
const maxProbes = 20

// FileName builds the window-stamped base name for an export artifact,
// e.g. "leads_2025-04-01_2025-04-30.csv".
func FileName(start, end time.Time, ext string) string {
	return fmt.Sprintf("leads_%s_%s.%s",
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
		ext,
	)
}

// ResolvePath returns a path under dir that is not already taken. When the
// desired name exists (or is locked by another writer), "name (1).ext",
// "name (2).ext" and so on are probed; after maxProbes attempts a
// timestamp-suffixed name is returned unconditionally.
func ResolvePath(dir, name string) string {
	desired := filepath.Join(dir, name)
	if available(desired) {
		return desired
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; i <= maxProbes; i++ {
		probe := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if available(probe) {
			return probe
		}
	}

	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, time.Now().Unix(), ext))
}

// available reports whether the path is free. An existing file counts as
// taken whether or not another process holds it locked; renaming instead of
// overwriting keeps concurrent runs from clobbering each other's output.
func available(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

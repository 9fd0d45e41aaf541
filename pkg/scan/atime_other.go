//go:build !linux && !darwin

package scan

import (
	"io/fs"
	"time"
)

// accessTime falls back to the modification time on platforms where the
// stat access time is not exposed.
func accessTime(info fs.FileInfo) time.Time {
	return info.ModTime()
}

package storage

import (
	"fmt"
	"os"
)

// DatabaseDiskUsage returns the on-disk size of the SQLite database at
// dbPath including its WAL sidecar files. Missing files contribute 0.
func DatabaseDiskUsage(dbPath string) (int64, error) {
	if dbPath == "" {
		return 0, nil
	}
	var total int64
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return 0, fmt.Errorf("stat %s: %w", p, err)
		}
		total += info.Size()
	}
	return total, nil
}

package utils

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

const (
	// SnapshotRoot top level directory of meter table snapshots
	SnapshotRoot = "metertable/snapshot"
	// SnapshotExt extension of a snapshot object
	SnapshotExt = ".json.gz"
)

// ValidateTimestamp validates a snapshot timestamp in unix seconds
func ValidateTimestamp(timestamp int64) error {
	if timestamp <= 0 {
		return fmt.Errorf("timestamp must be positive")
	}
	return nil
}

// ValidateDatapathID validates a datapath id used as a path segment
func ValidateDatapathID(datapathID string) error {
	if datapathID == "" {
		return fmt.Errorf("datapath ID cannot be empty")
	}
	if strings.ContainsAny(datapathID, "/\\:*?\"<>| ") {
		return fmt.Errorf("datapath ID contains invalid characters: %q", datapathID)
	}
	if datapathID == "." || datapathID == ".." {
		return fmt.Errorf("datapath ID cannot be %q", datapathID)
	}
	return nil
}

// FormatPath joins path parts with single slashes, dropping empty parts
func FormatPath(parts ...string) string {
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.Trim(part, "/"); part != "" {
			cleanParts = append(cleanParts, part)
		}
	}
	return strings.Join(cleanParts, "/")
}

// SnapshotPrefix returns the directory holding the snapshots of a datapath, with trailing slash
func SnapshotPrefix(datapathID string) string {
	return FormatPath(SnapshotRoot, datapathID) + "/"
}

// SnapshotPath returns metertable/snapshot/{datapath_id}/{timestamp}.json.gz
func SnapshotPath(datapathID string, timestamp int64) string {
	return SnapshotPrefix(datapathID) + strconv.FormatInt(timestamp, 10) + SnapshotExt
}

// ParseTimestampFromPath parses the timestamp from the file name of a snapshot path
func ParseTimestampFromPath(p string) (int64, error) {
	base := path.Base(p)
	if !strings.HasSuffix(base, SnapshotExt) {
		return 0, fmt.Errorf("not a snapshot file: %s", p)
	}
	timestamp, err := strconv.ParseInt(strings.TrimSuffix(base, SnapshotExt), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse timestamp from path: %w", err)
	}
	return timestamp, nil
}

// Package runlog manages the folder-per-execution log layout:
//
//	<root>/YYYY-MM-DD/HHMMSS_<runID>/
//	    SUMMARY.md
//	    articles.json
//	    digest.json
//	    research.md
//	    workflow.md
//	    raw/timeline.json
//
// A best-effort "latest" symlink at the root points to the most recently
// allocated directory.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned by Locate when no directory matches the run id.
var ErrNotFound = errors.New("execution directory not found")

// reservedNames are root-level entries that are not date partitions.
var reservedNames = map[string]bool{
	"latest":    true,
	"workflows": true,
	"digests":   true,
	"research":  true,
}

// ExecutionDir is a handle to one run's log directory.
type ExecutionDir struct {
	// RunID is the run identifier embedded in the directory name.
	RunID string
	// Timestamp is the allocation time encoded in the path.
	Timestamp time.Time

	root string
	path string
}

// Allocate creates a new date-partitioned run directory under root along
// with its raw/ subdirectory, and points the "latest" symlink at it.
// Symlink failures are swallowed: the pointer is advisory only.
func Allocate(root, runID string, ts time.Time) (*ExecutionDir, error) {
	folder := fmt.Sprintf("%s_%s", ts.Format("150405"), runID)
	path := filepath.Join(root, ts.Format("2006-01-02"), folder)

	if err := os.MkdirAll(filepath.Join(path, "raw"), 0755); err != nil {
		return nil, fmt.Errorf("create execution directory: %w", err)
	}

	d := &ExecutionDir{
		RunID:     runID,
		Timestamp: ts,
		root:      root,
		path:      path,
	}
	d.updateLatestSymlink()

	return d, nil
}

// Locate scans the date partitions under root in reverse chronological
// order and returns the first run directory whose name contains runID as a
// substring. The directory name is time-prefixed, so matching is by
// containment rather than equality.
func Locate(root, runID string) (*ExecutionDir, error) {
	if runID == "" {
		return nil, ErrNotFound
	}

	dateDirs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read logs root: %w", err)
	}

	names := make([]string, 0, len(dateDirs))
	for _, e := range dateDirs {
		if !e.IsDir() || reservedNames[e.Name()] {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, dateName := range names {
		execDirs, err := os.ReadDir(filepath.Join(root, dateName))
		if err != nil {
			continue
		}
		for _, e := range execDirs {
			if !e.IsDir() || !strings.Contains(e.Name(), runID) {
				continue
			}

			d := &ExecutionDir{
				RunID: runID,
				root:  root,
				path:  filepath.Join(root, dateName, e.Name()),
			}
			if ts, err := parseFolderTime(dateName, e.Name()); err == nil {
				d.Timestamp = ts
			}
			return d, nil
		}
	}

	return nil, ErrNotFound
}

// parseFolderTime recovers the allocation time from the date partition and
// the HHMMSS folder prefix.
func parseFolderTime(dateName, folder string) (time.Time, error) {
	if len(folder) < 6 {
		return time.Time{}, fmt.Errorf("folder name too short: %s", folder)
	}
	return time.ParseInLocation("2006-01-02_150405", dateName+"_"+folder[:6], time.Local)
}

// updateLatestSymlink repoints root/latest at this directory. Races between
// concurrent runs are acceptable: last writer wins.
func (d *ExecutionDir) updateLatestSymlink() {
	link := filepath.Join(d.root, "latest")
	rel, err := filepath.Rel(d.root, d.path)
	if err != nil {
		return
	}
	os.Remove(link)
	os.Symlink(rel, link) //nolint:errcheck // advisory pointer only
}

// Path returns the execution directory path.
func (d *ExecutionDir) Path() string {
	return d.path
}

// SummaryPath returns the path for SUMMARY.md.
func (d *ExecutionDir) SummaryPath() string {
	return filepath.Join(d.path, "SUMMARY.md")
}

// DigestPath returns the path for digest.json.
func (d *ExecutionDir) DigestPath() string {
	return filepath.Join(d.path, "digest.json")
}

// ArticlesPath returns the path for articles.json.
func (d *ExecutionDir) ArticlesPath() string {
	return filepath.Join(d.path, "articles.json")
}

// ResearchPath returns the path for research.md.
func (d *ExecutionDir) ResearchPath() string {
	return filepath.Join(d.path, "research.md")
}

// WorkflowPath returns the path for workflow.md.
func (d *ExecutionDir) WorkflowPath() string {
	return filepath.Join(d.path, "workflow.md")
}

// TimelinePath returns the path for raw/timeline.json.
func (d *ExecutionDir) TimelinePath() string {
	return filepath.Join(d.path, "raw", "timeline.json")
}

// SaveJSON writes v as indented JSON to path.
func (d *ExecutionDir) SaveJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// SaveText writes text content to path.
func (d *ExecutionDir) SaveText(content, path string) error {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadJSON reads JSON from path into target. Returns os.ErrNotExist when
// the file is absent.
func (d *ExecutionDir) ReadJSON(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("unmarshal %s: %w", filepath.Base(path), err)
	}
	return nil
}

package bridge

import (
	"os"
	"path/filepath"
	"sort"
)

// excludedDir names directories left out of side-effect scans: version
// control metadata and dependency caches.
func excludedDir(name string) bool {
	switch name {
	case ".git", ".hg", ".svn", "node_modules", "vendor", "__pycache__", ".venv", ".tox":
		return true
	}
	return false
}

// scanRoot is the directory whose contents are diffed around an
// instruction: the sandbox root when confinement is active, otherwise the
// initialized repository root.
func (s *Session) scanRoot() string {
	if s.guard.Confined() {
		return s.guard.Root()
	}
	return s.repoPath
}

// scanSnapshot collects the set of regular files under the scan root.
func (s *Session) scanSnapshot() map[string]struct{} {
	root := s.scanRoot()
	if root == "" {
		return nil
	}

	files := make(map[string]struct{})
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if excludedDir(d.Name()) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files[path] = struct{}{}
		}
		return nil
	})
	return files
}

// diffSnapshot rescans and splits the result against a prior snapshot:
// files that appeared are new; active files that are not new are reported
// as modified candidates.
func (s *Session) diffSnapshot(before map[string]struct{}) (newFiles, modified []string) {
	after := s.scanSnapshot()

	newFiles = make([]string, 0)
	newSet := make(map[string]struct{})
	for path := range after {
		if _, ok := before[path]; !ok {
			newFiles = append(newFiles, path)
			newSet[path] = struct{}{}
		}
	}
	sort.Strings(newFiles)

	modified = make([]string, 0)
	for _, path := range s.eng.Files() {
		if _, isNew := newSet[path]; !isNew {
			modified = append(modified, path)
		}
	}
	return newFiles, modified
}

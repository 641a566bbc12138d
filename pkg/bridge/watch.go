package bridge

// FileWatcher is the session's view of the external-change watcher. Watches
// track the active file set; the session suppresses callbacks while an
// instruction runs so the engine's own edits do not surface as external
// changes.
type FileWatcher interface {
	Watch(path string) error
	Unwatch(path string)
	Suppress()
	Resume()
}

type nopWatcher struct{}

func (nopWatcher) Watch(string) error { return nil }
func (nopWatcher) Unwatch(string)     {}
func (nopWatcher) Suppress()          {}
func (nopWatcher) Resume()            {}

// Package fallback provides degraded, file-backed implementations of
// the message and notification store contracts. It is used per call
// when the primary store fails, so the system stays available at the
// cost of weaker consistency: every mutation is read-entire-set,
// mutate in memory, write-entire-set back. Operations on one store are
// serialized through a single writer goroutine, which removes races
// between callers in this process but not across processes.
package fallback

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type job struct {
	fn   func() error
	done chan error
}

// writer serializes all operations on one store file
type writer struct {
	jobs chan job
}

func newWriter() *writer {
	w := &writer{jobs: make(chan job, 64)}
	go w.run()
	return w
}

func (w *writer) run() {
	for j := range w.jobs {
		j.done <- j.fn()
	}
}

// do runs fn on the writer goroutine and waits for its result
func (w *writer) do(fn func() error) error {
	j := job{fn: fn, done: make(chan error, 1)}
	w.jobs <- j
	return <-j.done
}

// Close stops the writer goroutine. Pending jobs finish first.
func (w *writer) Close() {
	close(w.jobs)
}

// readJSON loads the whole store file into v. A missing file is an
// empty store, not an error.
func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON rewrites the whole store file via a temp file and rename,
// so a crash mid-write cannot truncate existing data.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func ensureDir(dir string) error {
	return os.MkdirAll(filepath.Clean(dir), 0o755)
}

// Package journal appends completed user activity (swaps, stakes, unstakes,
// signups) to day-partitioned JSON-lines files. It is write-only; nothing
// reads the journal back into the running service.
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Entry is one journal line.
type Entry struct {
	At      time.Time `json:"at"`
	Kind    string    `json:"kind"`
	Session string    `json:"session,omitempty"`
	Details any       `json:"details,omitempty"`
}

// Recorder accepts activity entries.
type Recorder interface {
	Record(kind, session string, details any)
}

// Writer handles async writing of entries to <baseDir>/<date>/activity.jsonl.
type Writer struct {
	baseDir   string
	maxSizeMB int
	writeCh   chan Entry
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	now       func() time.Time

	mu          sync.Mutex
	currentDate string
	logger      *lumberjack.Logger
}

// NewWriter starts an async writer.
func NewWriter(baseDir string, bufferSize, maxSizeMB int) *Writer {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	w := &Writer{
		baseDir:   baseDir,
		maxSizeMB: maxSizeMB,
		writeCh:   make(chan Entry, bufferSize),
		done:      make(chan struct{}),
		now:       time.Now,
	}

	w.wg.Add(1)
	go w.writeLoop()
	return w
}

// Record queues an entry. It never blocks; a full buffer drops the entry.
func (w *Writer) Record(kind, session string, details any) {
	if err := w.Write(Entry{At: w.now().UTC(), Kind: kind, Session: session, Details: details}); err != nil {
		slog.Warn("journal entry dropped", "kind", kind, "error", err)
	}
}

// Write queues a prepared entry.
func (w *Writer) Write(e Entry) error {
	select {
	case <-w.done:
		return fmt.Errorf("writer is closed")
	default:
	}
	select {
	case w.writeCh <- e:
		return nil
	case <-w.done:
		return fmt.Errorf("writer is closed")
	default:
		return fmt.Errorf("buffer full")
	}
}

// Close flushes pending entries and closes the current file.
func (w *Writer) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()

	timeout := time.After(5 * time.Second)
drain:
	for {
		select {
		case e := <-w.writeCh:
			w.writeEntry(e)
		case <-timeout:
			slog.Warn("journal close timeout, some entries may be lost")
			break drain
		default:
			break drain
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.logger != nil {
		return w.logger.Close()
	}
	return nil
}

func (w *Writer) writeLoop() {
	defer w.wg.Done()
	for {
		select {
		case e := <-w.writeCh:
			w.writeEntry(e)
		case <-w.done:
			return
		}
	}
}

func (w *Writer) writeEntry(e Entry) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to marshal journal entry", "kind", e.Kind, "error", err)
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	date := e.At.UTC().Format("2006-01-02")
	if w.logger == nil || date != w.currentDate {
		if err := w.rotateForDate(date); err != nil {
			slog.Error("failed to open journal file", "date", date, "error", err)
			return
		}
	}

	if _, err := w.logger.Write(append(data, '\n')); err != nil {
		slog.Error("failed to write journal entry", "kind", e.Kind, "error", err)
	}
}

func (w *Writer) rotateForDate(date string) error {
	if w.logger != nil {
		_ = w.logger.Close()
		w.logger = nil
	}

	dir := filepath.Join(w.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	filename := filepath.Join(dir, "activity.jsonl")
	w.logger = &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    w.maxSizeMB,
		MaxBackups: 30,
		MaxAge:     30,
		LocalTime:  false,
	}
	w.currentDate = date
	slog.Info("opened journal file", "file", filename)
	return nil
}

package joblog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const separator = "================================================================================"

// Writer appends one "====" delimited block per job run to a plain text file.
type Writer struct {
	path string
	mu   sync.Mutex
}

// Open makes sure the directory exists and the file is writable.
func Open(dir, name string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("job log dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("job log file: %w", err)
	}
	_ = f.Close()
	return &Writer{path: path}, nil
}

func (w *Writer) Path() string { return w.path }

// Block collects the lines of a single run.
type Block struct {
	lines []string
}

func NewBlock(title string, at time.Time) *Block {
	b := &Block{}
	b.Linef("[%s] %s", at.Format("2006-01-02 15:04:05"), title)
	return b
}

func (b *Block) Linef(format string, args ...any) {
	b.lines = append(b.lines, fmt.Sprintf(format, args...))
}

func (b *Block) String() string {
	return "\n" + separator + "\n" + strings.Join(b.lines, "\n") + "\n"
}

// Append writes the block in one call so concurrent runs do not interleave lines.
func (w *Writer) Append(b *Block) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(b.String())
	return err
}

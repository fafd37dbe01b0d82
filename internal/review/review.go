// Package review loads saved evaluation-card files and provides a terminal
// pager for stepping through them.
package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrDirNotFound reports a review directory that does not exist.
var ErrDirNotFound = errors.New("review: directory not found")

// Card is one saved evaluation record.
type Card struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
	AIAnswer      string `json:"aiAnswer"`
}

// File is a loaded card file. A file that could not be read or parsed keeps
// its place in the sequence with empty fields and Err set, so one bad file
// never blocks review of the rest.
type File struct {
	Name string
	Card Card
	Err  error
}

// LoadDir reads every .json file in dir, sorted by name.
func LoadDir(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirNotFound, dir)
		}
		return nil, fmt.Errorf("review: read directory %s: %w", dir, err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		files = append(files, loadFile(dir, entry.Name()))
	}
	return files, nil
}

func loadFile(dir, name string) File {
	f := File{Name: name}
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		f.Err = err
		return f
	}
	if err := json.Unmarshal(raw, &f.Card); err != nil {
		f.Err = err
		f.Card = Card{}
	}
	return f
}

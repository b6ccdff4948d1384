// Package storage persists the record store as a tab-delimited text file
// with a fixed header, plus a single-generation backup of the previous
// on-disk content.
package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/kaiwen/cms/internal/model"
)

// columnHeader is the fixed column line that precedes the data rows.
const columnHeader = "ID\tName\tProgramme\tMark"

// SaveOutcome reports what a save actually did.
type SaveOutcome int

const (
	// SaveWritten means the primary file was overwritten (and the previous
	// content rotated into the backup, if the primary existed).
	SaveWritten SaveOutcome = iota
	// SaveNoChange means the serialized store was byte-identical to the
	// primary file; nothing was touched.
	SaveNoChange
)

// Engine serializes and parses database files. All file access goes through
// the afero filesystem, so tests run against an in-memory fs.
type Engine struct {
	fs  afero.Fs
	cfg *Config
}

// NewEngine returns an engine operating on the given filesystem with the
// given header configuration.
func NewEngine(fs afero.Fs, cfg *Config) *Engine {
	return &Engine{fs: fs, cfg: cfg}
}

// Serialize renders records into the canonical on-disk form: the four-line
// header followed by one tab-delimited line per record in the order given,
// marks formatted to one decimal place.
func (e *Engine) Serialize(records []model.Record) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Database Name: %s\n", e.cfg.DatabaseName)
	fmt.Fprintf(&buf, "Authors: %s\n\n", e.cfg.Authors)
	fmt.Fprintf(&buf, "Table Name: %s\n", e.cfg.TableName)
	buf.WriteString(columnHeader + "\n")
	for _, r := range records {
		fmt.Fprintf(&buf, "%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Programme, r.FormatMark())
	}
	return buf.Bytes()
}

// Load parses the database file at path and returns its records in file
// order. Header lines and blank lines are skipped. Each data line is split
// on tabs into at most four fields; a missing or empty ID parses as 0 and a
// missing mark as 0.0. Returns an error if the file cannot be opened.
func (e *Engine) Load(path string) ([]model.Record, error) {
	f, err := e.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file %s: %w", path, err)
	}
	defer f.Close()

	var records []model.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if isHeaderLine(line) {
			continue
		}

		fields := strings.SplitN(line, "\t", 4)
		var rec model.Record
		if fields[0] != "" {
			rec.ID, _ = strconv.Atoi(fields[0])
		}
		if len(fields) > 1 {
			rec.Name = fields[1]
		}
		if len(fields) > 2 {
			rec.Programme = fields[2]
		}
		if len(fields) > 3 && fields[3] != "" {
			rec.Mark, _ = strconv.ParseFloat(fields[3], 64)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read database file %s: %w", path, err)
	}

	return records, nil
}

// isHeaderLine reports whether line belongs to the fixed header block.
func isHeaderLine(line string) bool {
	return line == "" ||
		line == columnHeader ||
		strings.HasPrefix(line, "Database Name:") ||
		strings.HasPrefix(line, "Authors:") ||
		strings.HasPrefix(line, "Table Name:")
}

// Save serializes records and writes them to primary, rotating the previous
// on-disk content into backup first.
//
// The snapshot is built entirely in memory before any file is touched, then
// byte-compared against the current primary content. If they are identical
// the save returns SaveNoChange and the backup file is left alone. The
// backup is only written when a primary file existed; it always holds
// exactly the content the primary had before this save.
func (e *Engine) Save(records []model.Record, primary, backup string) (SaveOutcome, error) {
	data := e.Serialize(records)

	current, err := afero.ReadFile(e.fs, primary)
	exists := err == nil
	if err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("failed to read database file %s: %w", primary, err)
	}

	if exists && bytes.Equal(current, data) {
		return SaveNoChange, nil
	}

	if exists {
		if err := e.writeFile(backup, current); err != nil {
			return 0, fmt.Errorf("failed to write backup file %s: %w", backup, err)
		}
	}

	if err := e.writeFile(primary, data); err != nil {
		return 0, fmt.Errorf("failed to write database file %s: %w", primary, err)
	}

	return SaveWritten, nil
}

// BackupExists reports whether a backup file is present at path.
func (e *Engine) BackupExists(path string) bool {
	exists, err := afero.Exists(e.fs, path)
	return err == nil && exists
}

// writeFile writes data to path, creating parent directories as needed.
func (e *Engine) writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := e.fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return afero.WriteFile(e.fs, path, data, 0644)
}

package main

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiwen/cms/internal/cli"
	"github.com/kaiwen/cms/internal/db"
	"github.com/kaiwen/cms/internal/model"
	"github.com/kaiwen/cms/internal/storage"
)

var shellRecords = []model.Record{
	{ID: 2200001, Name: "Alice Tan", Programme: "Computer Science", Mark: 75.5},
	{ID: 2200002, Name: "Bob Lee", Programme: "Business", Mark: 60},
}

// runScript feeds lines to a fresh shell over an in-memory database and
// returns everything the shell printed.
func runScript(t *testing.T, records []model.Record, lines ...string) string {
	t.Helper()
	cli.SetColorEnabled(false)

	fs := afero.NewMemMapFs()
	cfg := storage.DefaultConfig()
	engine := storage.NewEngine(fs, cfg)
	require.NoError(t, afero.WriteFile(fs, cfg.DataFile, engine.Serialize(records), 0644))

	session := db.NewSession(fs, cfg)
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out strings.Builder
	newShell(session, cfg, in, &out).run()
	return out.String()
}

func TestShellOpenAndShow(t *testing.T) {
	t.Run("open then show all", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SHOW ALL")
		assert.Contains(t, out, `the database file "data/students.txt" is successfully opened`)
		assert.Contains(t, out, "Alice Tan")
		assert.Contains(t, out, "Bob Lee")
		assert.Contains(t, out, "75.5")
	})

	t.Run("open twice", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "OPEN")
		assert.Contains(t, out, "has already been opened")
	})

	t.Run("commands before open complain", func(t *testing.T) {
		out := runScript(t, shellRecords, "SHOW ALL", "INSERT ID=2200009", "SAVE")
		assert.Equal(t, 3, strings.Count(out, "no records loaded"))
	})

	t.Run("commands are case-insensitive", func(t *testing.T) {
		out := runScript(t, shellRecords, "open", "show all")
		assert.Contains(t, out, "successfully opened")
		assert.Contains(t, out, "Alice Tan")
	})

	t.Run("unknown command", func(t *testing.T) {
		out := runScript(t, shellRecords, "FROBNICATE")
		assert.Contains(t, out, "enter a valid command")
	})
}

func TestShellSortedViews(t *testing.T) {
	t.Run("by mark descending", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SHOW ALL SORT BY MARK DESC")
		assert.Contains(t, out, "sorted by mark DESC")
		assert.Less(t, strings.Index(out, "Alice Tan"), strings.Index(out, "Bob Lee"))
	})

	t.Run("by id ascending is the default order", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SHOW ALL SORT BY ID")
		assert.Contains(t, out, "sorted by ID ASC")
	})

	t.Run("bad sort field", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SHOW ALL SORT BY NAME")
		assert.Contains(t, out, "invalid sort field")
	})

	t.Run("trailing input", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SHOW ALL SORT BY ID ASC EXTRA")
		assert.Contains(t, out, "invalid trailing input")
	})
}

func TestShellMutations(t *testing.T) {
	t.Run("insert then query", func(t *testing.T) {
		out := runScript(t, shellRecords,
			"OPEN",
			"INSERT ID=2200003 NAME=cara lim PROGRAMME=business MARK=88.5",
			"QUERY ID=2200003",
		)
		assert.Contains(t, out, "record with ID=2200003 inserted")
		assert.Contains(t, out, "the record with ID=2200003 is found in the data table")
		assert.Contains(t, out, "Cara Lim")
	})

	t.Run("duplicate insert", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "INSERT ID=2200001")
		assert.Contains(t, out, "record with ID=2200001 already exists")
	})

	t.Run("update rewrites only the given fields", func(t *testing.T) {
		out := runScript(t, shellRecords,
			"OPEN",
			"UPDATE ID=2200002 MARK=90",
			"QUERY ID=2200002",
		)
		assert.Contains(t, out, "the record with ID=2200002 is successfully updated")
		assert.Contains(t, out, "Bob Lee")
		assert.Contains(t, out, "90.0")
	})

	t.Run("delete asks for confirmation", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "DELETE ID=2200001", "Y", "QUERY ID=2200001")
		assert.Contains(t, out, "are you sure you want to delete record with ID=2200001?")
		assert.Contains(t, out, "the record with ID=2200001 is successfully deleted")
		assert.Contains(t, out, "the record with ID=2200001 does not exist")
	})

	t.Run("delete declined", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "DELETE ID=2200001", "N")
		assert.Contains(t, out, "the deletion is cancelled")
	})

	t.Run("delete of absent record", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "DELETE ID=2299999")
		assert.Contains(t, out, "the record with ID=2299999 does not exist")
	})
}

func TestShellUndoRedo(t *testing.T) {
	t.Run("undo and redo report the action", func(t *testing.T) {
		out := runScript(t, shellRecords,
			"OPEN",
			"INSERT ID=2200003",
			"UNDO",
			"REDO",
		)
		assert.Contains(t, out, "undid INSERT (ID 2200003)")
		assert.Contains(t, out, "redid INSERT (ID 2200003)")
	})

	t.Run("empty stacks", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "UNDO", "REDO")
		assert.Contains(t, out, "nothing to undo")
		assert.Contains(t, out, "nothing to redo")
	})
}

func TestShellSave(t *testing.T) {
	t.Run("no changes", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SAVE")
		assert.Contains(t, out, "no changes detected; nothing to save")
	})

	t.Run("after a mutation", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "INSERT ID=2200003", "SAVE")
		assert.Contains(t, out, `the database file "data/students.txt" has been successfully saved`)
	})
}

func TestShellRestore(t *testing.T) {
	t.Run("without a backup", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "RESTORE", "Y")
		assert.Contains(t, out, "backup file does not exist; cannot restore")
	})

	t.Run("round trip through save", func(t *testing.T) {
		out := runScript(t, shellRecords,
			"OPEN",
			"INSERT ID=2200003",
			"SAVE",
			"RESTORE", "Y",
			"QUERY ID=2200003",
		)
		assert.Contains(t, out, "database successfully restored from backup")
		assert.Contains(t, out, "the record with ID=2200003 does not exist")
	})

	t.Run("declined", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "RESTORE", "N")
		assert.Contains(t, out, "restore operation cancelled")
	})
}

func TestShellQuit(t *testing.T) {
	t.Run("clean quit", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "QUIT", "Y")
		assert.Contains(t, out, "There are no unsaved changes")
		assert.Contains(t, out, "cms: exiting.")
	})

	t.Run("unsaved changes warn", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "INSERT ID=2200003", "QUIT", "N", "QUIT", "Y")
		assert.Contains(t, out, "you have unsaved changes")
		assert.Contains(t, out, "quit operation cancelled")
	})

	t.Run("quit takes no arguments", func(t *testing.T) {
		out := runScript(t, shellRecords, "QUIT NOW")
		assert.Contains(t, out, "QUIT takes no arguments")
	})
}

func TestShellSummary(t *testing.T) {
	t.Run("over all records", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SHOW SUMMARY")
		assert.Contains(t, out, "Total students: 2")
		assert.Contains(t, out, "Average mark: 67.75")
		assert.Contains(t, out, "Highest mark: 75.5")
		assert.Contains(t, out, "1. Alice Tan (ID: 2200001)")
		assert.Contains(t, out, "Lowest mark: 60.0")
		assert.Contains(t, out, "1. Bob Lee (ID: 2200002)")
	})

	t.Run("programme filter", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SHOW SUMMARY PROGRAMME=business")
		assert.Contains(t, out, "(programme: Business)")
		assert.Contains(t, out, "Total students: 1")
	})

	t.Run("no match", func(t *testing.T) {
		out := runScript(t, shellRecords, "OPEN", "SHOW SUMMARY PROGRAMME=history")
		assert.Contains(t, out, `no matching records found for programme "History"`)
	})
}

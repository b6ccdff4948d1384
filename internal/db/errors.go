package db

import "errors"

var (
	// ErrNothingToUndo is returned by Undo when the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by Redo when the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrNotLoaded is returned by operations that require a loaded database.
	ErrNotLoaded = errors.New("no database loaded")

	// ErrAlreadyLoaded is returned by Open when the database was already
	// opened in this session.
	ErrAlreadyLoaded = errors.New("database already loaded")

	// ErrNoBackup is returned by Restore when no backup file exists.
	ErrNoBackup = errors.New("backup file does not exist")
)

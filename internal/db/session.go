// Package db ties the indexed store, the action log, and the persistence
// engine together behind a single session object.
package db

import (
	"github.com/spf13/afero"

	"github.com/kaiwen/cms/internal/history"
	"github.com/kaiwen/cms/internal/model"
	"github.com/kaiwen/cms/internal/storage"
	"github.com/kaiwen/cms/internal/store"
)

// Session owns all mutable state of one database session: the live store,
// the undo/redo log, the persistence engine, and the modified/loaded flags.
// Every mutation goes through the session so it can be recorded for undo.
//
// A session serves exactly one logical actor. A concurrent port would have
// to guard the store, both stacks, and the flags as one unit behind a single
// mutex; interleaving a load with an undo replay breaks the store invariant
// that the sequence and the hash index describe the same record set.
type Session struct {
	store  *store.Store
	log    *history.Log
	engine *storage.Engine

	primary string
	backup  string

	modified bool
	loaded   bool
}

// NewSession builds a session over the given filesystem using the file paths
// and header identity from cfg.
func NewSession(fs afero.Fs, cfg *storage.Config) *Session {
	return &Session{
		store:   store.New(),
		log:     &history.Log{},
		engine:  storage.NewEngine(fs, cfg),
		primary: cfg.DataFile,
		backup:  cfg.BackupFile,
	}
}

// Loaded reports whether a database has been materialized in this session.
func (s *Session) Loaded() bool { return s.loaded }

// Modified reports whether the store differs from the last successful save.
func (s *Session) Modified() bool { return s.modified }

// PrimaryPath returns the primary database file path.
func (s *Session) PrimaryPath() string { return s.primary }

// Open loads the primary database file. It may only be called once per
// session; a second call returns ErrAlreadyLoaded.
func (s *Session) Open() error {
	if s.loaded {
		return ErrAlreadyLoaded
	}
	return s.Load(s.primary)
}

// Load replaces the store with the contents of the file at path. The store
// is cleared before the file is opened, so a failed load leaves it empty
// with loaded=false. On success loaded becomes true; the modified flag is
// left unchanged.
func (s *Session) Load(path string) error {
	s.store.Clear()
	s.loaded = false

	records, err := s.engine.Load(path)
	if err != nil {
		return err
	}
	for _, rec := range records {
		// A well-formed file has unique IDs; a duplicate line loses.
		_ = s.store.Insert(rec)
	}
	s.loaded = true
	return nil
}

// Insert adds a record as a top-level mutation: on success an insert action
// is recorded and the redo history is invalidated. A duplicate ID leaves the
// store and the log untouched.
func (s *Session) Insert(rec model.Record) error {
	return s.insert(rec, true)
}

func (s *Session) insert(rec model.Record, topLevel bool) error {
	if err := s.store.Insert(rec); err != nil {
		return err
	}
	if topLevel {
		s.log.Record(history.Action{Kind: history.KindInsert, After: rec})
	}
	s.modified = true
	return nil
}

// Update applies the provided fields of patch to the record with the given
// ID as a top-level mutation, recording both snapshots for undo.
func (s *Session) Update(id int, patch model.Patch) error {
	return s.update(id, patch, true)
}

func (s *Session) update(id int, patch model.Patch, topLevel bool) error {
	before, err := s.store.Update(id, patch)
	if err != nil {
		return err
	}
	if topLevel {
		after, _ := s.store.Find(id)
		s.log.Record(history.Action{Kind: history.KindUpdate, Before: before, After: after})
	}
	s.modified = true
	return nil
}

// CanDelete reports whether a record with the given ID exists, without
// committing anything. Callers confirm with the user between CanDelete and
// Delete.
func (s *Session) CanDelete(id int) bool {
	_, ok := s.store.Find(id)
	return ok
}

// Delete removes the record with the given ID as a top-level mutation,
// recording the removed value for undo.
func (s *Session) Delete(id int) error {
	return s.delete(id, true)
}

func (s *Session) delete(id int, topLevel bool) error {
	before, err := s.store.Remove(id)
	if err != nil {
		return err
	}
	if topLevel {
		s.log.Record(history.Action{Kind: history.KindDelete, Before: before})
	}
	s.modified = true
	return nil
}

// Find returns the record with the given ID, if present.
func (s *Session) Find(id int) (model.Record, bool) {
	return s.store.Find(id)
}

// Each calls fn for every record in insertion order until fn returns false.
func (s *Session) Each(fn func(model.Record) bool) {
	s.store.Each(fn)
}

// Records returns all records in insertion order.
func (s *Session) Records() []model.Record {
	return s.store.Records()
}

// Len returns the number of live records.
func (s *Session) Len() int {
	return s.store.Len()
}

// Sorted returns a sorted snapshot of the records; the store's own order is
// untouched.
func (s *Session) Sorted(key store.SortKey, dir store.Direction) []model.Record {
	return s.store.Sorted(key, dir)
}

// Undo reverses the most recent top-level mutation and moves its action onto
// the redo stack. Undoing a restore reloads the primary file from disk, not
// a snapshot of the pre-restore store: an edit that was never saved is not
// recovered. Returns the undone action for rendering, or ErrNothingToUndo.
func (s *Session) Undo() (history.Action, error) {
	a, ok := s.log.PopUndo()
	if !ok {
		return history.Action{}, ErrNothingToUndo
	}

	var err error
	switch a.Kind {
	case history.KindInsert:
		err = s.delete(a.After.ID, false)
	case history.KindUpdate:
		err = s.update(a.Before.ID, model.PatchOf(a.Before), false)
	case history.KindDelete:
		err = s.insert(a.Before, false)
	case history.KindRestore:
		err = s.Load(s.primary)
	}
	if err != nil {
		s.log.PushUndo(a)
		return history.Action{}, err
	}

	s.log.PushRedo(a)
	return a, nil
}

// Redo reapplies the most recently undone action and moves it back onto the
// undo stack. Returns the redone action, or ErrNothingToRedo.
func (s *Session) Redo() (history.Action, error) {
	a, ok := s.log.PopRedo()
	if !ok {
		return history.Action{}, ErrNothingToRedo
	}

	var err error
	switch a.Kind {
	case history.KindInsert:
		err = s.insert(a.After, false)
	case history.KindUpdate:
		err = s.update(a.After.ID, model.PatchOf(a.After), false)
	case history.KindDelete:
		err = s.delete(a.Before.ID, false)
	case history.KindRestore:
		err = s.restore(false)
	}
	if err != nil {
		s.log.PushRedo(a)
		return history.Action{}, err
	}

	s.log.PushUndo(a)
	return a, nil
}

// Save persists the store to the primary file, rotating the previous
// on-disk content into the backup. If the serialized store is identical to
// the file, nothing is written and the outcome is SaveNoChange. The
// modified flag is only cleared by a real write.
func (s *Session) Save() (storage.SaveOutcome, error) {
	if !s.loaded {
		return 0, ErrNotLoaded
	}
	outcome, err := s.engine.Save(s.store.Records(), s.primary, s.backup)
	if err != nil {
		return 0, err
	}
	if outcome == storage.SaveWritten {
		s.modified = false
	}
	return outcome, nil
}

// Restore replaces the store wholesale with the backup file's content as a
// top-level mutation. The restored state is unsaved until the caller saves
// it, so the modified flag is set. Returns ErrNoBackup if no backup exists.
func (s *Session) Restore() error {
	return s.restore(true)
}

func (s *Session) restore(topLevel bool) error {
	if !s.engine.BackupExists(s.backup) {
		return ErrNoBackup
	}
	if topLevel {
		s.log.Record(history.Action{Kind: history.KindRestore})
	}
	if err := s.Load(s.backup); err != nil {
		if topLevel {
			s.log.PopUndo()
		}
		return err
	}
	s.modified = true
	return nil
}

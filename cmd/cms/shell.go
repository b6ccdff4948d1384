package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kaiwen/cms/internal/cli"
	"github.com/kaiwen/cms/internal/db"
	"github.com/kaiwen/cms/internal/history"
	"github.com/kaiwen/cms/internal/model"
	"github.com/kaiwen/cms/internal/storage"
	"github.com/kaiwen/cms/internal/store"
)

// promptText is printed before every command and confirmation read.
const promptText = "cms> "

// shell runs the interactive command loop over one database session.
// Undo/redo history lives in the session, so one shell invocation is one
// editing session.
type shell struct {
	session *db.Session
	cfg     *storage.Config
	in      *bufio.Scanner
	out     io.Writer
}

func newShell(session *db.Session, cfg *storage.Config, in io.Reader, out io.Writer) *shell {
	return &shell{
		session: session,
		cfg:     cfg,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// run reads and dispatches commands until QUIT is confirmed or input ends.
func (sh *shell) run() {
	for {
		fmt.Fprintf(sh.out, "\n%s", promptText)
		if !sh.in.Scan() {
			break
		}
		if sh.dispatch(sh.in.Text()) {
			break
		}
	}
	fmt.Fprintln(sh.out, "cms: exiting.")
}

// dispatch handles one command line. It returns true when the shell should
// exit.
func (sh *shell) dispatch(line string) bool {
	switch {
	case sh.tryBare(line, "OPEN", sh.cmdOpen):
	case sh.tryArgs(line, "SHOW", sh.cmdShow):
	case sh.tryArgs(line, "INSERT", sh.cmdInsert):
	case sh.tryArgs(line, "UPDATE", sh.cmdUpdate):
	case sh.tryArgs(line, "DELETE", sh.cmdDelete):
	case sh.tryArgs(line, "QUERY", sh.cmdQuery):
	case sh.tryBare(line, "UNDO", sh.cmdUndo):
	case sh.tryBare(line, "REDO", sh.cmdRedo):
	case sh.tryBare(line, "SAVE", sh.cmdSave):
	case sh.tryBare(line, "RESTORE", sh.cmdRestore):
	default:
		if rest, ok := matchCommand(line, "QUIT"); ok {
			if rest != "" {
				sh.say("enter a valid command (QUIT takes no arguments)")
				return false
			}
			return sh.cmdQuit()
		}
		sh.say("enter a valid command")
	}
	return false
}

// tryBare matches a command that takes no arguments.
func (sh *shell) tryBare(line, cmd string, fn func()) bool {
	rest, ok := matchCommand(line, cmd)
	if !ok {
		return false
	}
	if rest != "" {
		sh.say("enter a valid command")
		return true
	}
	fn()
	return true
}

// tryArgs matches a command whose remainder is handled by fn.
func (sh *shell) tryArgs(line, cmd string, fn func(rest string)) bool {
	rest, ok := matchCommand(line, cmd)
	if !ok {
		return false
	}
	fn(rest)
	return true
}

// say prints one "cms:" message line.
func (sh *shell) say(format string, args ...any) {
	fmt.Fprintf(sh.out, "cms: "+format+".\n", args...)
}

// requireLoaded reports whether a database is loaded, complaining if not.
func (sh *shell) requireLoaded() bool {
	if !sh.session.Loaded() {
		sh.say("no records loaded; open and load the database first")
		return false
	}
	return true
}

func (sh *shell) cmdOpen() {
	switch err := sh.session.Open(); {
	case errors.Is(err, db.ErrAlreadyLoaded):
		sh.say("the database file %q has already been opened", sh.session.PrimaryPath())
	case err != nil:
		sh.say(cli.Red(fmt.Sprintf("could not open file %q", sh.session.PrimaryPath())))
	default:
		sh.say("the database file %q is successfully opened", sh.session.PrimaryPath())
	}
}

func (sh *shell) cmdShow(rest string) {
	if !sh.requireLoaded() {
		return
	}

	if after, ok := matchCommand(rest, "ALL"); ok {
		sh.showAll(after)
		return
	}
	if after, ok := matchCommand(rest, "SUMMARY"); ok {
		sh.showSummary(after)
		return
	}
	sh.say("unknown SHOW command")
}

func (sh *shell) showAll(rest string) {
	if rest == "" {
		if sh.session.Len() == 0 {
			sh.say("no records to display")
			return
		}
		sh.say("here are all the records found in the table %q", sh.cfg.TableName)
		cli.RenderRecords(sh.out, sh.session.Records())
		return
	}

	after, ok := matchCommand(rest, "SORT")
	if !ok {
		sh.say("invalid SHOW ALL format")
		return
	}
	after, ok = matchCommand(after, "BY")
	if !ok {
		sh.say("expected 'SORT BY'")
		return
	}

	tokens := strings.Fields(after)
	if len(tokens) == 0 {
		sh.say("missing sort field (ID or MARK)")
		return
	}

	var key store.SortKey
	switch {
	case strings.EqualFold(tokens[0], "ID"):
		key = store.ByID
	case strings.EqualFold(tokens[0], "MARK"):
		key = store.ByMark
	default:
		sh.say("invalid sort field; use ID or MARK")
		return
	}

	dir := store.Ascending
	if len(tokens) > 1 {
		switch {
		case strings.EqualFold(tokens[1], "ASC"):
			dir = store.Ascending
		case strings.EqualFold(tokens[1], "DESC"):
			dir = store.Descending
		default:
			sh.say("invalid sort order; use ASC or DESC")
			return
		}
		if len(tokens) > 2 {
			sh.say("invalid trailing input")
			return
		}
	}

	if sh.session.Len() == 0 {
		sh.say("no records to display")
		return
	}

	field, order := "ID", "ASC"
	if key == store.ByMark {
		field = "mark"
	}
	if dir == store.Descending {
		order = "DESC"
	}
	sh.say("here are all the records sorted by %s %s from the table %q", field, order, sh.cfg.TableName)
	cli.RenderRecords(sh.out, sh.session.Sorted(key, dir))
}

func (sh *shell) showSummary(rest string) {
	filter := ""
	if rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			sh.say("invalid filter format; use key=value")
			return
		}
		key := rest[:eq]
		if strings.TrimSpace(key) != key {
			sh.say("invalid command: no space allowed before '='")
			return
		}
		if !strings.EqualFold(key, "PROGRAMME") {
			sh.say("unknown filter key %q", key)
			return
		}
		value := strings.TrimSpace(rest[eq+1:])
		if len([]rune(value)) > model.MaxProgrammeLen {
			sh.say("programme too long")
			return
		}
		filter = titleCase(value)
	}

	stats, ok := sh.session.Summary(filter)
	if !ok {
		if filter != "" {
			sh.say("no matching records found for programme %q", filter)
		} else {
			sh.say("no records found")
		}
		return
	}

	if filter != "" {
		sh.say("here are summary statistics from the table %q (programme: %s)", sh.cfg.TableName, filter)
	} else {
		sh.say("here are summary statistics from the table %q", sh.cfg.TableName)
	}
	fmt.Fprintf(sh.out, "Total students: %d\n", stats.Total)
	fmt.Fprintf(sh.out, "Average mark: %.2f\n", stats.Average)

	fmt.Fprintf(sh.out, "\nHighest mark: %.1f\n", stats.Highest)
	for i, rec := range stats.Top {
		fmt.Fprintf(sh.out, "%d. %s (ID: %d)\n", i+1, rec.Name, rec.ID)
	}
	fmt.Fprintf(sh.out, "\nLowest mark: %.1f\n", stats.Lowest)
	for i, rec := range stats.Bottom {
		fmt.Fprintf(sh.out, "%d. %s (ID: %d)\n", i+1, rec.Name, rec.ID)
	}
}

func (sh *shell) cmdInsert(rest string) {
	if !sh.requireLoaded() {
		return
	}
	args, err := parseRecordArgs(rest, fieldsOptional)
	if err != nil {
		sh.say("%s", err)
		return
	}
	if err := sh.session.Insert(args.record()); err != nil {
		sh.say("%s", err)
		return
	}
	sh.say("record with ID=%d inserted", args.ID)
}

func (sh *shell) cmdUpdate(rest string) {
	if !sh.requireLoaded() {
		return
	}
	args, err := parseRecordArgs(rest, fieldsAtLeastOne)
	if err != nil {
		sh.say("%s", err)
		return
	}
	if err := sh.session.Update(args.ID, args.patch()); err != nil {
		sh.say("%s", err)
		return
	}
	sh.say("the record with ID=%d is successfully updated", args.ID)
}

func (sh *shell) cmdDelete(rest string) {
	if !sh.requireLoaded() {
		return
	}
	args, err := parseRecordArgs(rest, fieldsIDOnly)
	if err != nil {
		sh.say("%s", err)
		return
	}
	if !sh.session.CanDelete(args.ID) {
		sh.say("the record with ID=%d does not exist", args.ID)
		return
	}

	msg := fmt.Sprintf("cms: are you sure you want to delete record with ID=%d? Type \"Y\" to confirm or \"N\" to cancel.", args.ID)
	switch cli.Confirm(sh.in, sh.out, msg, promptText) {
	case cli.AnswerYes:
		if err := sh.session.Delete(args.ID); err != nil {
			sh.say("%s", err)
			return
		}
		sh.say("the record with ID=%d is successfully deleted", args.ID)
	case cli.AnswerNo:
		sh.say("the deletion is cancelled")
	default:
		sh.say("invalid input; the deletion is cancelled")
	}
}

func (sh *shell) cmdQuery(rest string) {
	if !sh.requireLoaded() {
		return
	}
	args, err := parseRecordArgs(rest, fieldsIDOnly)
	if err != nil {
		sh.say("%s", err)
		return
	}
	rec, ok := sh.session.Find(args.ID)
	if !ok {
		sh.say("the record with ID=%d does not exist", args.ID)
		return
	}
	sh.say("the record with ID=%d is found in the data table", args.ID)
	cli.RenderRecords(sh.out, []model.Record{rec})
}

func (sh *shell) cmdUndo() {
	if !sh.requireLoaded() {
		return
	}
	a, err := sh.session.Undo()
	if err != nil {
		sh.say("%s", err)
		return
	}
	sh.sayAction("undid", a)
}

func (sh *shell) cmdRedo() {
	if !sh.requireLoaded() {
		return
	}
	a, err := sh.session.Redo()
	if err != nil {
		sh.say("%s", err)
		return
	}
	sh.sayAction("redid", a)
}

func (sh *shell) sayAction(verb string, a history.Action) {
	if a.Kind == history.KindRestore {
		sh.say("%s RESTORE operation", verb)
		return
	}
	sh.say("%s %s (ID %d)", verb, strings.ToUpper(string(a.Kind)), a.ID())
}

func (sh *shell) cmdSave() {
	if !sh.requireLoaded() {
		return
	}
	outcome, err := sh.session.Save()
	if err != nil {
		sh.say(cli.Red(fmt.Sprintf("error saving the database file: %v", err)))
		return
	}
	if outcome == storage.SaveNoChange {
		sh.say("no changes detected; nothing to save")
		return
	}
	sh.say("the database file %q has been successfully saved", sh.session.PrimaryPath())
}

func (sh *shell) cmdRestore() {
	if !sh.requireLoaded() {
		return
	}

	msg := "cms: " + cli.Yellow("WARNING") + ": this will overwrite the current in-memory state with the backup file. Are you sure? Type \"Y\" to confirm or \"N\" to cancel."
	switch cli.Confirm(sh.in, sh.out, msg, promptText) {
	case cli.AnswerYes:
		switch err := sh.session.Restore(); {
		case errors.Is(err, db.ErrNoBackup):
			sh.say("backup file does not exist; cannot restore")
		case err != nil:
			sh.say(cli.Red(fmt.Sprintf("restore failed: %v", err)))
		default:
			sh.say("database successfully restored from backup; changes are not saved yet")
		}
	case cli.AnswerNo:
		sh.say("restore operation cancelled")
	default:
		sh.say("invalid input; restore operation cancelled")
	}
}

func (sh *shell) cmdQuit() bool {
	msg := "cms: are you sure you want to quit? There are no unsaved changes. Type \"Y\" to confirm or \"N\" to cancel."
	if sh.session.Loaded() && sh.session.Modified() {
		msg = "cms: " + cli.Yellow("WARNING") + ": you have unsaved changes. Are you sure you want to quit? Type \"Y\" to confirm or \"N\" to cancel."
	}
	switch cli.Confirm(sh.in, sh.out, msg, promptText) {
	case cli.AnswerYes:
		return true
	case cli.AnswerNo:
		sh.say("quit operation cancelled")
	default:
		sh.say("invalid input; quit operation cancelled")
	}
	return false
}

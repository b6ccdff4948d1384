package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Answer is the result of a Y/N confirmation prompt.
type Answer int

const (
	// AnswerYes confirms the operation.
	AnswerYes Answer = iota
	// AnswerNo declines the operation.
	AnswerNo
	// AnswerInvalid is anything other than Y or N, including EOF. Callers
	// treat it as a cancellation.
	AnswerInvalid
)

// Confirm writes message and a prompt to w, then reads one line from r and
// classifies it. Matching is case-insensitive and surrounding whitespace is
// ignored.
func Confirm(r *bufio.Scanner, w io.Writer, message, prompt string) Answer {
	fmt.Fprintln(w, message)
	fmt.Fprintf(w, "\n%s", prompt)

	if !r.Scan() {
		return AnswerInvalid
	}
	switch strings.ToUpper(strings.TrimSpace(r.Text())) {
	case "Y":
		return AnswerYes
	case "N":
		return AnswerNo
	}
	return AnswerInvalid
}

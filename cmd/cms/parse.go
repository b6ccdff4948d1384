package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kaiwen/cms/internal/model"
)

// fieldMode controls which fields a record command accepts.
type fieldMode int

const (
	// fieldsOptional allows NAME/PROGRAMME/MARK to be absent or empty (INSERT).
	fieldsOptional fieldMode = iota
	// fieldsAtLeastOne requires at least one of NAME/PROGRAMME/MARK (UPDATE).
	fieldsAtLeastOne
	// fieldsIDOnly rejects anything but ID (DELETE, QUERY).
	fieldsIDOnly
)

// recordArgs holds the parsed fields of a record command. Has* flags
// distinguish a provided field from its zero value.
type recordArgs struct {
	ID        int
	Name      string
	Programme string
	Mark      float64

	HasName      bool
	HasProgramme bool
	HasMark      bool
}

// patch converts the optional fields into a store patch. An absent mark
// becomes the negative sentinel so an update leaves it unchanged.
func (a recordArgs) patch() model.Patch {
	p := model.Patch{Name: a.Name, Programme: a.Programme, Mark: model.NoMark}
	if a.HasMark {
		p.Mark = a.Mark
	}
	return p
}

// record converts the fields into a full record; an absent mark is 0.0.
func (a recordArgs) record() model.Record {
	return model.Record{ID: a.ID, Name: a.Name, Programme: a.Programme, Mark: a.Mark}
}

// fieldKeys are the recognized keys of a record command, in the order they
// are reported.
var fieldKeys = []string{"ID", "NAME", "PROGRAMME", "MARK"}

// matchCommand reports whether input starts with the given command word,
// case-insensitively and followed by a space or end of input. It returns the
// remainder with surrounding whitespace trimmed.
func matchCommand(input, cmd string) (string, bool) {
	rest := strings.TrimLeftFunc(input, unicode.IsSpace)
	if len(rest) < len(cmd) || !strings.EqualFold(rest[:len(cmd)], cmd) {
		return "", false
	}
	rest = rest[len(cmd):]
	if rest != "" && !unicode.IsSpace(rune(rest[0])) {
		return "", false
	}
	return strings.TrimSpace(rest), true
}

// keyAt reports which field key starts at the beginning of s. A key only
// counts when followed by '=' or whitespace, so a value that merely contains
// a key-like word is not cut short.
func keyAt(s string) (int, bool) {
	for i, key := range fieldKeys {
		if len(s) <= len(key) || !strings.EqualFold(s[:len(key)], key) {
			continue
		}
		next := s[len(key)]
		if next == '=' || unicode.IsSpace(rune(next)) {
			return i, true
		}
	}
	return 0, false
}

// parseRecordArgs parses "ID=... NAME=... PROGRAMME=... MARK=..." pairs.
// Keys are case-insensitive, may appear in any order, and may not repeat.
// ID is always required: exactly 7 digits, starting with '2'. Names and
// programmes are limited in length and normalized to title case. Marks must
// be numeric with at most one decimal point, within [0, 100].
func parseRecordArgs(input string, mode fieldMode) (recordArgs, error) {
	args := recordArgs{ID: -1}
	var found [4]bool
	optionalProvided := false

	rest := input
	for {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if rest == "" {
			break
		}

		idx, ok := keyAt(rest)
		if !ok {
			return args, fmt.Errorf("invalid command: unknown field or missing '='")
		}
		if found[idx] {
			return args, fmt.Errorf("invalid command: duplicate field %s", fieldKeys[idx])
		}
		found[idx] = true

		after := rest[len(fieldKeys[idx]):]
		trimmed := strings.TrimLeftFunc(after, unicode.IsSpace)
		if trimmed == "" || trimmed[0] != '=' {
			return args, fmt.Errorf("invalid command: missing '=' after %s", fieldKeys[idx])
		}
		if len(trimmed) != len(after) {
			return args, fmt.Errorf("invalid command: no space allowed before '='")
		}
		rest = trimmed[1:]

		// The value runs until the next field key or the end of input.
		end := len(rest)
		for i := range rest {
			if _, ok := keyAt(rest[i:]); ok {
				end = i
				break
			}
		}
		value := strings.TrimSpace(rest[:end])
		rest = rest[end:]

		if mode == fieldsIDOnly && idx != 0 {
			return args, fmt.Errorf("invalid command: only ID allowed")
		}

		switch idx {
		case 0: // ID
			if value == "" {
				return args, fmt.Errorf("missing required ID")
			}
			id, err := parseStudentID(value)
			if err != nil {
				return args, err
			}
			args.ID = id

		case 1: // NAME
			if value != "" {
				if len([]rune(value)) > model.MaxNameLen {
					return args, fmt.Errorf("name is too long (max %d characters)", model.MaxNameLen)
				}
				args.Name = titleCase(value)
				args.HasName = true
				optionalProvided = true
			}

		case 2: // PROGRAMME
			if value != "" {
				if len([]rune(value)) > model.MaxProgrammeLen {
					return args, fmt.Errorf("programme is too long (max %d characters)", model.MaxProgrammeLen)
				}
				args.Programme = titleCase(value)
				args.HasProgramme = true
				optionalProvided = true
			}

		case 3: // MARK
			if value != "" {
				mark, err := parseMark(value)
				if err != nil {
					return args, err
				}
				args.Mark = mark
				args.HasMark = true
				optionalProvided = true
			}
		}
	}

	if args.ID == -1 {
		return args, fmt.Errorf("missing required ID")
	}
	if mode == fieldsAtLeastOne && !optionalProvided {
		return args, fmt.Errorf("at least one of NAME, PROGRAMME, or MARK must be provided for UPDATE")
	}

	return args, nil
}

// parseStudentID validates and parses a student ID: exactly 7 digits,
// starting with '2'.
func parseStudentID(s string) (int, error) {
	if len(s) != 7 || s[0] != '2' {
		return 0, fmt.Errorf("ID must be 7 digits starting with '2'")
	}
	id := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("ID must be 7 digits starting with '2'")
		}
		id = id*10 + int(c-'0')
	}
	return id, nil
}

// parseMark validates and parses a mark: an optional sign, digits, at most
// one decimal point, and a value within [0, 100].
func parseMark(s string) (float64, error) {
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	dots, digits := 0, 0
	for ; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			digits++
		case s[i] == '.':
			dots++
			if dots > 1 {
				return 0, fmt.Errorf("mark must be numeric")
			}
		default:
			return 0, fmt.Errorf("mark must be numeric")
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("mark must be numeric")
	}

	mark, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("mark must be numeric")
	}
	if mark < 0 || mark > 100 {
		return 0, fmt.Errorf("mark must be between 0 and 100")
	}
	return mark, nil
}

// titleCase capitalizes the first letter of each word and lowercases the
// rest.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	capitalizeNext := true
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			capitalizeNext = true
			b.WriteRune(r)
		case capitalizeNext:
			b.WriteRune(unicode.ToUpper(r))
			capitalizeNext = false
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

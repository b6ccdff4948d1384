package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiwen/cms/internal/model"
)

func TestMatchCommand(t *testing.T) {
	tests := []struct {
		name  string
		input string
		cmd   string
		rest  string
		ok    bool
	}{
		{"exact", "SHOW", "SHOW", "", true},
		{"case-insensitive", "show all", "SHOW", "all", true},
		{"leading whitespace", "  SHOW ALL", "SHOW", "ALL", true},
		{"rest is trimmed", "SHOW   ALL  ", "SHOW", "ALL", true},
		{"prefix without boundary", "SHOWALL", "SHOW", "", false},
		{"different word", "SAVE", "SHOW", "", false},
		{"shorter than command", "SH", "SHOW", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rest, ok := matchCommand(tt.input, tt.cmd)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestParseRecordArgs(t *testing.T) {
	t.Run("full insert", func(t *testing.T) {
		args, err := parseRecordArgs("ID=2200001 NAME=alice tan PROGRAMME=computer science MARK=75.5", fieldsOptional)
		require.NoError(t, err)
		assert.Equal(t, model.Record{
			ID:        2200001,
			Name:      "Alice Tan",
			Programme: "Computer Science",
			Mark:      75.5,
		}, args.record())
	})

	t.Run("keys are case-insensitive and order-free", func(t *testing.T) {
		args, err := parseRecordArgs("mark=60 id=2200002 name=bob lee", fieldsOptional)
		require.NoError(t, err)
		assert.Equal(t, 2200002, args.ID)
		assert.Equal(t, "Bob Lee", args.Name)
		assert.Equal(t, 60.0, args.Mark)
		assert.True(t, args.HasMark)
		assert.False(t, args.HasProgramme)
	})

	t.Run("id alone is a valid insert", func(t *testing.T) {
		args, err := parseRecordArgs("ID=2200003", fieldsOptional)
		require.NoError(t, err)
		assert.Equal(t, model.Record{ID: 2200003}, args.record())
	})

	t.Run("absent mark patches to the sentinel", func(t *testing.T) {
		args, err := parseRecordArgs("ID=2200001 NAME=alice", fieldsAtLeastOne)
		require.NoError(t, err)
		p := args.patch()
		assert.Equal(t, "Alice", p.Name)
		assert.Equal(t, model.NoMark, p.Mark)
	})

	t.Run("update needs at least one field", func(t *testing.T) {
		_, err := parseRecordArgs("ID=2200001", fieldsAtLeastOne)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least one")
	})

	t.Run("id-only mode rejects other fields", func(t *testing.T) {
		_, err := parseRecordArgs("ID=2200001 NAME=alice", fieldsIDOnly)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "only ID allowed")
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := parseRecordArgs("NAME=alice", fieldsOptional)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required ID")
	})

	t.Run("duplicate key", func(t *testing.T) {
		_, err := parseRecordArgs("ID=2200001 ID=2200002", fieldsOptional)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate field ID")
	})

	t.Run("space before equals", func(t *testing.T) {
		_, err := parseRecordArgs("ID =2200001", fieldsOptional)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no space allowed before '='")
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := parseRecordArgs("GRADE=A", fieldsOptional)
		require.Error(t, err)
	})
}

func TestParseStudentID(t *testing.T) {
	id, err := parseStudentID("2200001")
	require.NoError(t, err)
	assert.Equal(t, 2200001, id)

	for _, bad := range []string{"1200001", "220001", "22000011", "22x0001", ""} {
		_, err := parseStudentID(bad)
		assert.Error(t, err, "id %q", bad)
	}
}

func TestParseMark(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{"0", 0, true},
		{"75.5", 75.5, true},
		{"100", 100, true},
		{"100.0", 100, true},
		{"100.1", 0, false},
		{"-1", 0, false},
		{"7.5.5", 0, false},
		{"abc", 0, false},
		{"7a", 0, false},
		{".", 0, false},
	}
	for _, tt := range tests {
		got, err := parseMark(tt.input)
		if tt.ok {
			require.NoError(t, err, "mark %q", tt.input)
			assert.Equal(t, tt.want, got)
		} else {
			assert.Error(t, err, "mark %q", tt.input)
		}
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Alice Tan", titleCase("aLiCe tAN"))
	assert.Equal(t, "Computer Science", titleCase("COMPUTER SCIENCE"))
	assert.Equal(t, "A  B", titleCase("a  b"))
	assert.Equal(t, "", titleCase(""))
}

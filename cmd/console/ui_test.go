package main

import (
	"testing"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr bool
	}{
		{name: "go alias", input: "go 2", want: Command{Verb: "enter", ID: 2, Arg: "2"}},
		{name: "enter with hash", input: "Enter #3", want: Command{Verb: "enter", ID: 3, Arg: "#3"}},
		{name: "take", input: "  take 1 ", want: Command{Verb: "take", ID: 1, Arg: "1"}},
		{name: "fight", input: "fight 2", want: Command{Verb: "fight", ID: 2, Arg: "2"}},
		{name: "attack short", input: "a", want: Command{Verb: "attack"}},
		{name: "skill", input: "skill", want: Command{Verb: "skill"}},
		{name: "inventory", input: "inv", want: Command{Verb: "inventory"}},
		{name: "roll with dice", input: "/roll 2d6", want: Command{Verb: "roll", Arg: "2d6"}},
		{name: "help", input: "/help", want: Command{Verb: "help"}},
		{name: "empty", input: "   ", wantErr: true},
		{name: "unknown verb", input: "dance", wantErr: true},
		{name: "missing id", input: "take", wantErr: true},
		{name: "non numeric id", input: "go north", wantErr: true},
		{name: "zero id", input: "fight 0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDice(t *testing.T) {
	tests := []struct {
		arg       string
		wantCount int
		wantSides int
		wantErr   bool
	}{
		{arg: "", wantCount: 1, wantSides: 6},
		{arg: "2d6", wantCount: 2, wantSides: 6},
		{arg: "d20", wantCount: 1, wantSides: 20},
		{arg: "20", wantErr: true},
		{arg: "xd6", wantErr: true},
		{arg: "2dx", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			count, sides, err := ParseDice(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
			assert.Equal(t, tt.wantSides, sides)
		})
	}
}

func TestConsoleUI_PlainLogAndEntryCap(t *testing.T) {
	ui := NewConsoleUI(&ConsoleConfig{}, nil, &actor.PlayerSpec{ID: 1, Name: "Ada"})
	require.Len(t, ui.entries, 1)
	assert.Contains(t, ui.plainLog(), "Welcome, Ada.")

	for i := 0; i < maxLogEntries+10; i++ {
		ui.addEntry(entrySystem, "line")
	}
	assert.Len(t, ui.entries, maxLogEntries)
	assert.NotContains(t, ui.plainLog(), "Welcome")
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/dungeon-engine/pkg/world"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <world.yaml> [more.yaml ...]\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		validator := &WorldValidator{}
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

// WorldValidator checks a world file beyond what the server needs to load
// it: the dungeon must also be winnable.
type WorldValidator struct {
	errors   []string
	warnings []string
}

func (v *WorldValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("world file must have .yaml extension: %s", baseName)
	}
	if !isValidWorldFilename(strings.TrimSuffix(baseName, ext)) {
		return fmt.Errorf("world filename '%s' must be lowercase snake_case (e.g., sunken_keep.yaml)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	// Unknown keys are almost always typos, so decode strictly first.
	var strict world.World
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&strict); err != nil {
		return fmt.Errorf("file %s failed strict YAML unmarshaling: %w", filename, err)
	}

	w, err := world.Parse(data)
	if err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				v.addError(e.Error())
			}
			return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
		}
		return fmt.Errorf("file %s: %w", filename, err)
	}

	v.validatePlayable(w)

	for _, warning := range v.warnings {
		fmt.Printf("warning: %s\n", warning)
	}
	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	printSummary(w)
	return nil
}

// validatePlayable walks the exits from the start room. The final room must
// be reachable, and every locked door needs a key the player can obtain
// from a room or as loot.
func (v *WorldValidator) validatePlayable(w *world.World) {
	reachable := map[int]bool{w.StartRoomID: true}
	queue := []int{w.StartRoomID}
	for len(queue) > 0 {
		room := w.Room(queue[0])
		queue = queue[1:]
		for _, exit := range room.Exits {
			if !reachable[exit] {
				reachable[exit] = true
				queue = append(queue, exit)
			}
		}
	}

	if !reachable[w.FinalRoomID] {
		v.addError(fmt.Sprintf("final room %d is not reachable from start room %d", w.FinalRoomID, w.StartRoomID))
	}
	for _, r := range w.Rooms {
		if !reachable[r.ID] {
			v.addWarning(fmt.Sprintf("room %d (%s) is not reachable", r.ID, r.Name))
		}
	}

	obtainable := make(map[int]bool)
	for _, r := range w.Rooms {
		if !reachable[r.ID] {
			continue
		}
		for _, id := range r.ItemIDs {
			obtainable[id] = true
		}
		for _, enemyID := range r.EnemyIDs {
			if e := w.Enemy(enemyID); e != nil {
				for _, loot := range e.LootItemIDs {
					obtainable[loot] = true
				}
			}
		}
	}
	for _, r := range w.Rooms {
		if !r.DoorLocked {
			continue
		}
		switch {
		case r.KeyItemID == 0:
			v.addError(fmt.Sprintf("room %d (%s) is locked with no key", r.ID, r.Name))
		case !obtainable[r.KeyItemID]:
			v.addError(fmt.Sprintf("room %d (%s) key item %d cannot be obtained", r.ID, r.Name, r.KeyItemID))
		case r.HasItem(r.KeyItemID):
			v.addError(fmt.Sprintf("room %d (%s) holds its own key", r.ID, r.Name))
		}
	}
	if w.Room(w.StartRoomID).DoorLocked {
		v.addError(fmt.Sprintf("start room %d cannot be locked", w.StartRoomID))
	}
	if len(w.Characters) == 0 {
		v.addWarning("no characters defined; players keep default stats")
	}
}

func printSummary(w *world.World) {
	fmt.Printf("  %s\n", w.Name)
	fmt.Printf("  characters: %d  items: %d  enemies: %d  rooms: %d\n",
		len(w.Characters), len(w.Items), len(w.Enemies), len(w.Rooms))
	maxScore := world.CompletionBonus
	for _, it := range w.Items {
		maxScore += it.Points
	}
	maxScore += world.EnemyDefeatPoints * len(w.Enemies)
	fmt.Printf("  start room: %d  final room: %d  max score: %d\n", w.StartRoomID, w.FinalRoomID, maxScore)
}

func (v *WorldValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

func (v *WorldValidator) addWarning(msg string) {
	v.warnings = append(v.warnings, msg)
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidWorldFilename(name string) bool {
	// Allow 'x.' prefix for experimental worlds
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}

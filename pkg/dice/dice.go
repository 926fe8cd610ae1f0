// Package dice rolls dice through the rpg-toolkit roller.
package dice

import (
	"errors"
	"fmt"
	"sync"

	toolkit "github.com/KirkDiggler/rpg-toolkit/dice"
)

// D6 is the die every combat roll uses.
const D6 = 6

// Limits for a single RollMany call.
const (
	MaxSides = 1000
	MaxCount = 100
)

var (
	ErrInvalidSides = fmt.Errorf("sides must be between 2 and %d", MaxSides)
	ErrInvalidCount = fmt.Errorf("count must be between 1 and %d", MaxCount)
)

// Roller is the rpg-toolkit roller interface: Roll(size) and RollN(count, size).
type Roller = toolkit.Roller

// NewRandomRoller returns the crypto-backed toolkit roller used in production.
func NewRandomRoller() Roller {
	return &toolkit.CryptoRoller{}
}

// Roll rolls one die and rejects results outside [1, sides].
func Roll(r Roller, sides int) (int, error) {
	v, err := r.Roll(sides)
	if err != nil {
		return 0, fmt.Errorf("failed to roll d%d: %w", sides, err)
	}
	if v < 1 || v > sides {
		return 0, fmt.Errorf("roller returned %d for a d%d", v, sides)
	}
	return v, nil
}

// RollMany rolls count dice with the given number of sides.
func RollMany(r Roller, sides, count int) ([]int, error) {
	if sides < 2 || sides > MaxSides {
		return nil, ErrInvalidSides
	}
	if count < 1 || count > MaxCount {
		return nil, ErrInvalidCount
	}
	results, err := r.RollN(count, sides)
	if err != nil {
		return nil, fmt.Errorf("failed to roll %dd%d: %w", count, sides, err)
	}
	if len(results) != count {
		return nil, fmt.Errorf("roller returned %d results for %dd%d", len(results), count, sides)
	}
	return results, nil
}

// IsInvalid reports whether err is a bad sides or count argument.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidSides) || errors.Is(err, ErrInvalidCount)
}

// SequenceRoller replays a fixed list of rolls, wrapping around when the
// list is exhausted. Rolls larger than the die are clamped to it. Tests use
// it in place of the random roller.
type SequenceRoller struct {
	mu    sync.Mutex
	rolls []int
	next  int
}

var _ Roller = (*SequenceRoller)(nil)

func NewSequenceRoller(rolls ...int) *SequenceRoller {
	if len(rolls) == 0 {
		rolls = []int{1}
	}
	return &SequenceRoller{rolls: rolls}
}

func (s *SequenceRoller) Roll(size int) (int, error) {
	if size < 1 {
		return 0, fmt.Errorf("invalid die size %d", size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.rolls[s.next%len(s.rolls)]
	s.next++
	return min(max(v, 1), size), nil
}

func (s *SequenceRoller) RollN(count, size int) ([]int, error) {
	if count < 0 {
		return nil, fmt.Errorf("invalid dice count %d", count)
	}
	results := make([]int, count)
	for i := range results {
		v, err := s.Roll(size)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}

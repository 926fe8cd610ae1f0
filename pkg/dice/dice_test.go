package dice

import (
	"errors"
	"math"
	"testing"
)

// brokenRoller fails every roll.
type brokenRoller struct{}

func (brokenRoller) Roll(int) (int, error) { return 0, errors.New("no entropy") }
func (brokenRoller) RollN(int, int) ([]int, error) { return nil, errors.New("no entropy") }

// wildRoller returns a value no die can show.
type wildRoller struct{}

func (wildRoller) Roll(int) (int, error) { return 99, nil }
func (wildRoller) RollN(count, _ int) ([]int, error) { return make([]int, count+1), nil }

func TestRandomRoller_InRange(t *testing.T) {
	r := NewRandomRoller()
	for i := 0; i < 500; i++ {
		v, err := Roll(r, D6)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v < 1 || v > D6 {
			t.Fatalf("roll %d out of range", v)
		}
	}

	results, err := RollMany(r, 20, MaxCount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != MaxCount {
		t.Fatalf("expected %d results, got %d", MaxCount, len(results))
	}
	for _, v := range results {
		if v < 1 || v > 20 {
			t.Fatalf("roll %d out of range", v)
		}
	}
}

func TestSequenceRoller(t *testing.T) {
	r := NewSequenceRoller(2, 9, 0)

	for i, want := range []int{2, 6, 1, 2} {
		got, err := r.Roll(6)
		if err != nil {
			t.Fatalf("roll %d: unexpected error: %v", i, err)
		}
		if got != want {
			t.Errorf("roll %d: expected %d, got %d", i, want, got)
		}
	}

	if _, err := r.Roll(0); err == nil {
		t.Error("expected error for a zero sided die")
	}
}

func TestRoll_Errors(t *testing.T) {
	if _, err := Roll(brokenRoller{}, D6); err == nil {
		t.Error("expected roller failure to surface")
	}
	if _, err := Roll(wildRoller{}, D6); err == nil {
		t.Error("expected out of range roll to be rejected")
	}
}

func TestRollMany(t *testing.T) {
	tests := []struct {
		name    string
		roller  Roller
		sides   int
		count   int
		wantErr error
		wantLen int
		invalid bool
	}{
		{name: "three d6", sides: 6, count: 3, wantLen: 3},
		{name: "coin", sides: 2, count: 1, wantLen: 1},
		{name: "max count", sides: 6, count: MaxCount, wantLen: MaxCount},
		{name: "one sided die", sides: 1, count: 1, wantErr: ErrInvalidSides, invalid: true},
		{name: "huge die", sides: MaxSides + 1, count: 1, wantErr: ErrInvalidSides, invalid: true},
		{name: "zero dice", sides: 6, count: 0, wantErr: ErrInvalidCount, invalid: true},
		{name: "too many dice", sides: 6, count: MaxCount + 1, wantErr: ErrInvalidCount, invalid: true},
		{name: "absurd count", sides: 6, count: math.MaxInt, wantErr: ErrInvalidCount, invalid: true},
		{name: "roller failure", roller: brokenRoller{}, sides: 6, count: 2},
		{name: "short result", roller: wildRoller{}, sides: 6, count: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			roller := tt.roller
			if roller == nil {
				roller = NewSequenceRoller(4)
			}
			results, err := RollMany(roller, tt.sides, tt.count)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if IsInvalid(err) != tt.invalid {
					t.Errorf("IsInvalid = %v, want %v", IsInvalid(err), tt.invalid)
				}
				return
			}
			if tt.wantLen == 0 {
				if err == nil {
					t.Fatal("expected error")
				}
				if IsInvalid(err) {
					t.Errorf("roller failure reported as invalid input: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.wantLen {
				t.Errorf("expected %d results, got %d", tt.wantLen, len(results))
			}
		})
	}
}

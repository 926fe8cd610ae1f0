package runner

import (
	"time"
)

// Step actions understood by the runner
const (
	ActionEnter           = "enter"
	ActionPickup          = "pickup"
	ActionFight           = "fight"
	ActionAttack          = "attack"
	ActionSkill           = "skill"
	ActionFightToEnd      = "fight_to_end"
	ActionEnd             = "end"
	ActionFullReset       = "full_reset"
	ActionWaitActivity    = "wait_activity"
	ActionSelectCharacter = "select_character"
)

// TestSuite defines a complete integration test run through the dungeon.
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name      string     `json:"name"`
	Character string     `json:"character,omitempty"` // Selected before the first step
	Steps     []TestStep `json:"steps,omitempty"`     // Used for regular tests
	Cases     []string   `json:"cases,omitempty"`     // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep is one player action and its expected outcomes.
// Target is the room, item or enemy ID the action needs; for wait_activity
// it is the minimum number of activity rows to wait for.
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       string       `json:"action"`
	Target       int          `json:"target,omitempty"`
	Value        string       `json:"value,omitempty"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	Status     *int     `json:"status,omitempty"`      // HTTP status of the action
	RoomID     *int     `json:"room_id,omitempty"`     // Player room after the step
	Health     *int     `json:"health,omitempty"`      // Player current health
	Score      *int     `json:"score,omitempty"`       // Score ledger total
	Inventory  []string `json:"inventory,omitempty"`   // Full inventory contents (order independent)
	CombatOver *bool    `json:"combat_over,omitempty"` // For attack steps
	Winner     *string  `json:"winner,omitempty"`

	// Response Analysis
	ResponseContains    []string `json:"response_contains,omitempty"`
	ResponseNotContains []string `json:"response_not_contains,omitempty"`
	ResponseRegex       string   `json:"response_regex,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	Status       int
	ResponseText string
	IsReset      bool // full_reset steps don't count toward pass/fail metrics
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
	PlayerID int // Player created for this run
}

package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/dungeon-engine/internal/game"
	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/combat"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// maxCombatRounds bounds fight_to_end steps.
const maxCombatRounds = 100

// Runner executes integration tests against a running dungeon-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
	CharacterOverride string // If set, overrides the character for all test cases
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		ErrorHandlingMode: ErrorHandlingContinue,
		Logger:            func(string, ...interface{}) {},
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite creates a fresh player, selects the suite's character and runs
// every step. The player is hard reset afterwards.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	playerID, err := r.createPlayer(ctx, "it-"+uuid.NewString()[:8])
	if err != nil {
		result.Error = fmt.Errorf("failed to create player: %w", err)
		result.Duration = time.Since(start)
		return result, result.Error
	}
	result.PlayerID = playerID
	defer r.cleanup(playerID)

	character := suite.Character
	if r.CharacterOverride != "" {
		character = r.CharacterOverride
	}
	if character != "" {
		status, body, err := r.post(ctx, "/v1/game/select-character",
			map[string]any{"player_id": playerID, "character_name": character})
		if err != nil || status != http.StatusOK {
			result.Error = fmt.Errorf("failed to select character %s: status %d %s %v", character, status, body, err)
			result.Duration = time.Since(start)
			return result, result.Error
		}
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.executeStep(ctx, playerID, step)
		stepResult.TestName = suite.Name
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) createPlayer(ctx context.Context, name string) (int, error) {
	status, body, err := r.post(ctx, "/v1/players", map[string]string{"name": name})
	if err != nil {
		return 0, err
	}
	if status != http.StatusCreated {
		return 0, fmt.Errorf("create player returned %d: %s", status, body)
	}
	var p actor.PlayerSpec
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return 0, fmt.Errorf("failed to decode created player: %w", err)
	}
	return p.ID, nil
}

// cleanup hard resets the test player so the shared world goes back to
// its seeded state.
func (r *Runner) cleanup(playerID int) {
	ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
	defer cancel()
	if _, _, err := r.post(ctx, fmt.Sprintf("/v1/game/hard-reset/%d", playerID), nil); err != nil {
		r.Logger("    Warning: failed to reset player %d: %v", playerID, err)
	}
}

func (r *Runner) post(ctx context.Context, path string, body any) (int, string, error) {
	status, data, err := doJSON(ctx, r.Client, http.MethodPost, r.BaseURL+path, body)
	return status, string(data), err
}

// executeStep performs one action and checks its expectations
func (r *Runner) executeStep(ctx context.Context, playerID int, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	fail := func(err error) TestResult {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var attack *game.AttackResult
	switch step.Action {
	case ActionEnter:
		result.Status, result.ResponseText, result.Error = r.post(ctx,
			fmt.Sprintf("/v1/game/rooms/%d/enter", step.Target), map[string]int{"player_id": playerID})

	case ActionPickup:
		p, err := r.getPlayer(ctx, playerID)
		if err != nil {
			return fail(err)
		}
		result.Status, result.ResponseText, result.Error = r.post(ctx,
			fmt.Sprintf("/v1/game/rooms/%d/items/%d/pickup", p.RoomID, step.Target), map[string]int{"player_id": playerID})

	case ActionFight:
		result.Status, result.ResponseText, result.Error = r.post(ctx, "/v1/game/combat/start",
			map[string]int{"player_id": playerID, "enemy_id": step.Target})

	case ActionAttack, ActionSkill:
		result.Status, result.ResponseText, result.Error = r.post(ctx, "/v1/game/combat/attack",
			map[string]any{"player_id": playerID, "action": step.Action})
		if result.Error == nil && result.Status == http.StatusOK {
			attack = &game.AttackResult{}
			if err := json.Unmarshal([]byte(result.ResponseText), attack); err != nil {
				return fail(fmt.Errorf("failed to decode attack result: %w", err))
			}
		}

	case ActionFightToEnd:
		var log []string
		for round := 0; round < maxCombatRounds; round++ {
			status, body, err := r.post(ctx, "/v1/game/combat/attack",
				map[string]any{"player_id": playerID, "action": combat.ActionAttack})
			result.Status = status
			if err != nil {
				return fail(err)
			}
			if status != http.StatusOK {
				result.ResponseText = body
				break
			}
			attack = &game.AttackResult{}
			if err := json.Unmarshal([]byte(body), attack); err != nil {
				return fail(fmt.Errorf("failed to decode attack result: %w", err))
			}
			log = append(log, attack.CombatLog...)
			if attack.IsCombatOver {
				break
			}
		}
		if result.ResponseText == "" {
			result.ResponseText = strings.Join(log, "\n")
		}

	case ActionEnd:
		result.Status, result.ResponseText, result.Error = r.post(ctx,
			fmt.Sprintf("/v1/game/end/%d", playerID), nil)

	case ActionFullReset:
		result.IsReset = true
		result.Status, result.ResponseText, result.Error = r.post(ctx,
			fmt.Sprintf("/v1/game/full-reset/%d", playerID), nil)

	case ActionSelectCharacter:
		result.Status, result.ResponseText, result.Error = r.post(ctx, "/v1/game/select-character",
			map[string]any{"player_id": playerID, "character_name": step.Value})

	case ActionWaitActivity:
		activity, err := PollForActivity(ctx, r.Client, r.BaseURL, playerID, step.Target)
		if err != nil {
			return fail(err)
		}
		result.Status = http.StatusOK
		actions := make([]string, 0, len(activity.Logs))
		for _, entry := range activity.Logs {
			actions = append(actions, entry.Action)
		}
		result.ResponseText = strings.Join(actions, "\n")

	default:
		return fail(fmt.Errorf("unknown action %q", step.Action))
	}

	if result.Error != nil {
		return fail(result.Error)
	}

	if err := r.checkExpectations(ctx, playerID, step.Expectations, result, attack); err != nil {
		return fail(fmt.Errorf("expectation failed: %w", err))
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

func (r *Runner) getPlayer(ctx context.Context, playerID int) (*actor.PlayerSpec, error) {
	var p actor.PlayerSpec
	if err := getJSON(ctx, r.Client, fmt.Sprintf("%s/v1/players/%d", r.BaseURL, playerID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// checkExpectations validates the step outcome and the player state after it
func (r *Runner) checkExpectations(ctx context.Context, playerID int, exp Expectations, result TestResult, attack *game.AttackResult) error {
	if exp.Status != nil && result.Status != *exp.Status {
		return fmt.Errorf("expected status %d, got %d: %s", *exp.Status, result.Status, result.ResponseText)
	}

	if exp.RoomID != nil || exp.Health != nil {
		p, err := r.getPlayer(ctx, playerID)
		if err != nil {
			return err
		}
		if exp.RoomID != nil && p.RoomID != *exp.RoomID {
			return fmt.Errorf("expected room %d, got %d", *exp.RoomID, p.RoomID)
		}
		if exp.Health != nil && p.Health != *exp.Health {
			return fmt.Errorf("expected health %d, got %d", *exp.Health, p.Health)
		}
	}

	if exp.Score != nil {
		var score game.ScoreView
		if err := getJSON(ctx, r.Client, fmt.Sprintf("%s/v1/game/score/%d", r.BaseURL, playerID), &score); err != nil {
			return err
		}
		if score.FinalScore != *exp.Score {
			return fmt.Errorf("expected score %d, got %d", *exp.Score, score.FinalScore)
		}
	}

	// Full inventory check (order independent)
	if exp.Inventory != nil {
		var inv game.InventoryView
		if err := getJSON(ctx, r.Client, fmt.Sprintf("%s/v1/game/inventory/%d", r.BaseURL, playerID), &inv); err != nil {
			return err
		}
		actual := make(map[string]bool, len(inv.Items))
		names := make([]string, 0, len(inv.Items))
		for _, item := range inv.Items {
			actual[item.Name] = true
			names = append(names, item.Name)
		}
		expected := make(map[string]bool, len(exp.Inventory))
		for _, item := range exp.Inventory {
			expected[item] = true
			if !actual[item] {
				return fmt.Errorf("expected inventory to contain '%s', but it's missing. Actual inventory: %v", item, names)
			}
		}
		for _, item := range names {
			if !expected[item] {
				return fmt.Errorf("inventory contains unexpected item '%s'. Expected inventory: %v, Actual: %v", item, exp.Inventory, names)
			}
		}
	}

	if exp.CombatOver != nil || exp.Winner != nil {
		if attack == nil {
			return fmt.Errorf("combat expectations need an attack result")
		}
		if exp.CombatOver != nil && attack.IsCombatOver != *exp.CombatOver {
			return fmt.Errorf("expected is_combat_over %t, got %t", *exp.CombatOver, attack.IsCombatOver)
		}
		if exp.Winner != nil && string(attack.Winner) != *exp.Winner {
			return fmt.Errorf("expected winner %q, got %q", *exp.Winner, attack.Winner)
		}
	}

	lowerResponse := strings.ToLower(result.ResponseText)
	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', but it didn't", expectedText)
		}
	}
	for _, unexpectedText := range exp.ResponseNotContains {
		if strings.Contains(lowerResponse, strings.ToLower(unexpectedText)) {
			return fmt.Errorf("expected response to NOT contain '%s', but it did", unexpectedText)
		}
	}

	if exp.ResponseRegex != "" {
		matched, err := regexp.MatchString(exp.ResponseRegex, result.ResponseText)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		if !matched {
			return fmt.Errorf("response didn't match regex pattern: %s", exp.ResponseRegex)
		}
	}

	return nil
}

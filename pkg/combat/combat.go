// Package combat implements the turn-based fight between one player and one
// enemy. An Encounter is a plain value: callers load it, resolve a round
// and persist it again.
package combat

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/dungeon-engine/pkg/actor"
	"github.com/jwebster45206/dungeon-engine/pkg/dice"
)

type Turn string

const (
	TurnPlayer Turn = "player"
	TurnEnemy  Turn = "enemy"
)

type Winner string

const (
	WinnerNone   Winner = ""
	WinnerPlayer Winner = "player"
	WinnerEnemy  Winner = "enemy"
)

type Action string

const (
	ActionAttack Action = "attack"
	ActionSkill  Action = "skill"
)

// Tuning for skills and defeat.
const (
	SkillThreshold      = 4
	HealAmount          = 15
	PoisonDamage        = 5
	PoisonTurns         = 3
	BerserkerDivisor    = 4
	DefeatHealthPercent = 25
)

var (
	ErrCombatOver    = errors.New("combat is already over")
	ErrNotPlayerTurn = errors.New("it is not the player's turn")
	ErrUnknownAction = errors.New("unknown combat action")
)

// Encounter is the server-held state of a fight.
type Encounter struct {
	PlayerID        int         `json:"player_id"`
	EnemyID         int         `json:"enemy_id"`
	RoomID          int         `json:"room_id"`
	EnemyName       string      `json:"enemy_name"`
	PlayerHealth    int         `json:"player_health"`
	PlayerMaxHealth int         `json:"player_max_health"`
	PlayerDamage    int         `json:"player_damage"`
	Skill           actor.Skill `json:"skill,omitempty"`
	EnemyHealth     int         `json:"enemy_health"`
	EnemyMaxHealth  int         `json:"enemy_max_health"`
	EnemyDamage     int         `json:"enemy_damage"`
	EnemyAttack     int         `json:"enemy_attack"`
	Turn            Turn        `json:"turn"`
	Round           int         `json:"round"`
	PoisonTurns     int         `json:"poison_turns,omitempty"`
	Over            bool        `json:"is_combat_over"`
	Winner          Winner      `json:"winner,omitempty"`
	Log             []string    `json:"log"`
	StartedAt       time.Time   `json:"started_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Start opens an encounter with the player to act first.
func Start(p *actor.Player, skill actor.Skill, e *actor.Enemy, roomID int) *Encounter {
	now := time.Now().UTC()
	return &Encounter{
		PlayerID:        p.Spec.ID,
		EnemyID:         e.ID,
		RoomID:          roomID,
		EnemyName:       e.Name,
		PlayerHealth:    p.Health(),
		PlayerMaxHealth: p.MaxHealth(),
		PlayerDamage:    p.Damage(),
		Skill:           skill,
		EnemyHealth:     e.Health,
		EnemyMaxHealth:  e.MaxHealth,
		EnemyDamage:     e.Damage,
		EnemyAttack:     e.Attack,
		Turn:            TurnPlayer,
		Log:             []string{fmt.Sprintf("You encountered a %s!", e.Name)},
		StartedAt:       now,
		UpdatedAt:       now,
	}
}

// Round is the record of one resolved player action and the enemy reply.
type Round struct {
	Number         int      `json:"round"`
	Action         Action   `json:"action"`
	PlayerRoll     int      `json:"player_roll"`
	EnemyRoll      int      `json:"enemy_roll,omitempty"`
	DamageDealt    int      `json:"damage_dealt"`
	DamageTaken    int      `json:"damage_taken"`
	PoisonDamage   int      `json:"poison_damage,omitempty"`
	Healed         int      `json:"healed,omitempty"`
	SkillSucceeded bool     `json:"skill_succeeded,omitempty"`
	Log            []string `json:"combat_log"`
}

// Resolve plays one round: poison ticks, the player acts, and if the enemy
// survives it strikes back. The encounter ends as soon as either side
// reaches zero health. A defeated player is left at a fraction of max
// health rather than dying.
func (enc *Encounter) Resolve(action Action, roller dice.Roller) (_ *Round, err error) {
	if enc.Over {
		return nil, ErrCombatOver
	}
	if enc.Turn != TurnPlayer {
		return nil, ErrNotPlayerTurn
	}
	if action == "" {
		action = ActionAttack
	}
	if action != ActionAttack && action != ActionSkill {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	// A failed roll leaves the encounter as it was.
	saved := *enc
	enc.Round++
	r := &Round{Number: enc.Round, Action: action}
	defer func() {
		if err != nil {
			*enc = saved
			return
		}
		enc.Log = append(enc.Log, r.Log...)
		enc.UpdatedAt = time.Now().UTC()
	}()

	if enc.PoisonTurns > 0 {
		enc.PoisonTurns--
		r.PoisonDamage = enc.hitEnemy(PoisonDamage)
		r.logf("The %s takes %d poison damage.", enc.EnemyName, r.PoisonDamage)
		if enc.EnemyHealth == 0 {
			enc.finish(WinnerPlayer, r)
			return r, nil
		}
	}

	if r.PlayerRoll, err = dice.Roll(roller, dice.D6); err != nil {
		return nil, err
	}
	dmg := enc.PlayerDamage * r.PlayerRoll / dice.D6

	if action == ActionSkill {
		r.SkillSucceeded = r.PlayerRoll >= SkillThreshold
		dmg = enc.applySkill(dmg, r)
	}

	if dmg > 0 || action == ActionAttack {
		r.DamageDealt = enc.hitEnemy(dmg)
		r.logf("You rolled a %d and dealt %d damage to the %s!", r.PlayerRoll, r.DamageDealt, enc.EnemyName)
	}

	if enc.EnemyHealth == 0 {
		enc.finish(WinnerPlayer, r)
		return r, nil
	}

	enc.Turn = TurnEnemy
	if r.EnemyRoll, err = dice.Roll(roller, dice.D6); err != nil {
		return nil, err
	}
	taken := enc.EnemyDamage * enc.EnemyAttack * r.EnemyRoll / dice.D6
	if taken < 0 {
		taken = 0
	}
	enc.PlayerHealth -= taken
	r.DamageTaken = taken
	r.logf("The %s rolled a %d and dealt %d damage to you!", enc.EnemyName, r.EnemyRoll, taken)

	if enc.PlayerHealth <= 0 {
		enc.PlayerHealth = DefeatHealth(enc.PlayerMaxHealth)
		enc.finish(WinnerEnemy, r)
		return r, nil
	}

	enc.Turn = TurnPlayer
	return r, nil
}

func (enc *Encounter) applySkill(dmg int, r *Round) int {
	if !r.SkillSucceeded {
		r.logf("Your %s attempt failed.", enc.skillName())
		return dmg
	}

	switch enc.Skill {
	case actor.SkillBerserker:
		bonus := (enc.PlayerMaxHealth - enc.PlayerHealth) / BerserkerDivisor
		r.logf("Berserker rage adds %d damage!", bonus)
		return dmg + bonus
	case actor.SkillBackstab:
		r.logf("Backstab doubles your damage!")
		return dmg * 2
	case actor.SkillHeal:
		before := enc.PlayerHealth
		enc.PlayerHealth = min(enc.PlayerMaxHealth, enc.PlayerHealth+HealAmount)
		r.Healed = enc.PlayerHealth - before
		r.logf("You heal for %d HP.", r.Healed)
		return 0
	case actor.SkillPoison:
		enc.PoisonTurns = PoisonTurns
		r.logf("The %s is poisoned!", enc.EnemyName)
		return dmg
	}
	return dmg
}

func (enc *Encounter) skillName() string {
	if enc.Skill == "" {
		return "skill"
	}
	return string(enc.Skill)
}

func (enc *Encounter) hitEnemy(n int) int {
	if n < 0 {
		n = 0
	}
	if n > enc.EnemyHealth {
		n = enc.EnemyHealth
	}
	enc.EnemyHealth -= n
	return n
}

func (enc *Encounter) finish(w Winner, r *Round) {
	enc.Over = true
	enc.Winner = w
	switch w {
	case WinnerPlayer:
		enc.EnemyHealth = 0
		r.logf("You defeated the %s!", enc.EnemyName)
	case WinnerEnemy:
		r.logf("You were defeated by the %s and crawl away with %d HP.", enc.EnemyName, enc.PlayerHealth)
	}
}

func (r *Round) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

// DefeatHealth is what a player is left with after losing a fight.
func DefeatHealth(maxHealth int) int {
	return max(1, maxHealth*DefeatHealthPercent/100)
}

package actor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jwebster45206/d20"
)

const attrDamage = "damage"

// Defaults for a player created before a character is selected.
const (
	DefaultMaxHealth = 100
)

// PlayerSpec is the persisted form of a player.
type PlayerSpec struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	CharacterName string    `json:"character_name,omitempty"`
	RoomID        int       `json:"room_id"`
	Health        int       `json:"current_health"`
	MaxHealth     int       `json:"max_health"`
	Damage        int       `json:"damage"`
	AC            int       `json:"ac"`
	Score         int       `json:"sum_score"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewPlayerSpec returns a spec for a freshly registered player, outside the
// dungeon and without a character.
func NewPlayerSpec(name string) *PlayerSpec {
	now := time.Now().UTC()
	return &PlayerSpec{
		Name:      name,
		Health:    DefaultMaxHealth,
		MaxHealth: DefaultMaxHealth,
		Damage:    DefaultDamage,
		AC:        DefaultAC,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Player is the runtime representation of a player. HP and damage live on
// the d20 actor; Spec is kept in sync on every mutation.
type Player struct {
	Spec  *PlayerSpec
	Actor *d20.Actor
}

// NewPlayerFromSpec builds the d20 actor for a stored player.
func NewPlayerFromSpec(spec *PlayerSpec) (*Player, error) {
	if spec == nil {
		return nil, errors.New("spec cannot be nil")
	}
	p := &Player{Spec: spec}
	if err := p.rebuild(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Player) rebuild() error {
	spec := p.Spec
	if spec.MaxHealth <= 0 {
		spec.MaxHealth = DefaultMaxHealth
	}
	if spec.AC <= 0 {
		spec.AC = DefaultAC
	}
	if spec.Health > spec.MaxHealth {
		spec.Health = spec.MaxHealth
	}

	a, err := d20.NewActor(strconv.Itoa(spec.ID)).
		WithHP(spec.MaxHealth).
		WithAC(spec.AC).
		WithAttributes(map[string]int{attrDamage: spec.Damage}).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.Health != spec.MaxHealth && spec.Health > 0 {
		if err := a.SetHP(spec.Health); err != nil {
			return fmt.Errorf("failed to set HP: %w", err)
		}
	}

	p.Actor = a
	return nil
}

func (p *Player) Health() int {
	if p.Spec.Health <= 0 {
		return 0
	}
	return p.Actor.HP()
}

func (p *Player) MaxHealth() int {
	return p.Actor.MaxHP()
}

func (p *Player) Damage() int {
	if v, ok := p.Actor.Attribute(attrDamage); ok {
		return v
	}
	return p.Spec.Damage
}

// SetHealth clamps n to [0, max] and records it.
func (p *Player) SetHealth(n int) error {
	if n > p.MaxHealth() {
		n = p.MaxHealth()
	}
	if n < 0 {
		n = 0
	}
	if n > 0 {
		if err := p.Actor.SetHP(n); err != nil {
			return fmt.Errorf("failed to set HP: %w", err)
		}
	}
	p.Spec.Health = n
	p.touch()
	return nil
}

// Heal restores up to n health and returns the new value.
func (p *Player) Heal(n int) (int, error) {
	if err := p.SetHealth(p.Health() + n); err != nil {
		return 0, err
	}
	return p.Spec.Health, nil
}

// AddDamage raises the player's attack by n.
func (p *Player) AddDamage(n int) error {
	p.Spec.Damage = p.Damage() + n
	p.touch()
	return p.rebuild()
}

// RaiseMaxHealth increases both maximum and current health by n.
func (p *Player) RaiseMaxHealth(n int) error {
	p.Spec.MaxHealth += n
	p.Spec.Health += n
	p.touch()
	return p.rebuild()
}

// ApplyCharacter resets the player's stats to a character template.
func (p *Player) ApplyCharacter(c *Character) error {
	p.Spec.CharacterName = c.Name
	p.Spec.MaxHealth = c.HP
	p.Spec.Health = c.HP
	p.Spec.Damage = c.BaseDamage()
	p.Spec.AC = c.BaseAC()
	p.touch()
	return p.rebuild()
}

func (p *Player) touch() {
	p.Spec.UpdatedAt = time.Now().UTC()
}

// MarshalJSON serializes the PlayerSpec with health read back from the actor.
func (p *Player) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	if p.Actor == nil {
		return json.Marshal(p.Spec)
	}
	out := *p.Spec
	out.Health = p.Health()
	out.MaxHealth = p.MaxHealth()
	out.Damage = p.Damage()
	out.AC = p.Actor.AC()
	return json.Marshal(out)
}

package actor

// Enemy is a hostile creature placed in a room. Defeated enemies are taken
// out of their room; Restore puts their health back for a new game.
type Enemy struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Health      int    `json:"health" yaml:"health"`
	MaxHealth   int    `json:"max_health" yaml:"max_health"`
	Damage      int    `json:"damage" yaml:"damage"`
	Attack      int    `json:"attack" yaml:"attack"`

	LootItemIDs []int `json:"loot_item_ids,omitempty" yaml:"loot_item_ids,omitempty"` // Dropped into the room on defeat
}

// Normalize fills health from max health (and vice versa) and clamps
// negative values.
func (e *Enemy) Normalize() {
	if e.MaxHealth <= 0 {
		e.MaxHealth = e.Health
	}
	if e.Health <= 0 && e.MaxHealth > 0 {
		e.Health = e.MaxHealth
	}
	if e.Attack <= 0 {
		e.Attack = 1
	}
	if e.Damage < 0 {
		e.Damage = 0
	}
}

// TakeDamage reduces health by n, never below 0.
func (e *Enemy) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	e.Health -= n
	if e.Health < 0 {
		e.Health = 0
	}
}

func (e *Enemy) IsDefeated() bool {
	return e.Health <= 0
}

func (e *Enemy) Restore() {
	e.Health = e.MaxHealth
}

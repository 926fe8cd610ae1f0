package actor

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Skill is the special action a character class can attempt in combat
// instead of a plain attack.
type Skill string

const (
	SkillBerserker Skill = "berserker"
	SkillHeal      Skill = "heal"
	SkillBackstab  Skill = "backstab"
	SkillPoison    Skill = "poison"
)

func (s Skill) Valid() bool {
	switch s {
	case SkillBerserker, SkillHeal, SkillBackstab, SkillPoison:
		return true
	}
	return false
}

// DefaultDamage is the attack value a fresh player starts with.
const DefaultDamage = 10

// DefaultAC is used when a character template omits armor class.
const DefaultAC = 10

// Character is a read-only class template a player picks at the start.
type Character struct {
	Name             string `json:"name" yaml:"name"`
	HP               int    `json:"hp" yaml:"hp"`
	Damage           int    `json:"damage,omitempty" yaml:"damage,omitempty"`
	AC               int    `json:"ac,omitempty" yaml:"ac,omitempty"`
	Skill            Skill  `json:"skill" yaml:"skill"`
	SkillDescription string `json:"skill_description,omitempty" yaml:"skill_description,omitempty"`
}

// BaseDamage returns the template damage, falling back to DefaultDamage.
func (c *Character) BaseDamage() int {
	if c.Damage > 0 {
		return c.Damage
	}
	return DefaultDamage
}

func (c *Character) BaseAC() int {
	if c.AC > 0 {
		return c.AC
	}
	return DefaultAC
}

// NormalizeName turns any casing of a character name into its canonical
// display form ("wArRiOr" -> "Warrior").
func NormalizeName(name string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(name)))
}

// CharacterKey is the lookup key used by storage.
func CharacterKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

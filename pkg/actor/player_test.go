package actor

import (
	"encoding/json"
	"testing"
)

func TestNewPlayerFromSpec(t *testing.T) {
	t.Run("nil spec", func(t *testing.T) {
		if _, err := NewPlayerFromSpec(nil); err == nil {
			t.Fatal("expected error for nil spec")
		}
	})

	t.Run("partial health is kept", func(t *testing.T) {
		spec := &PlayerSpec{ID: 7, Name: "Ash", Health: 40, MaxHealth: 80, Damage: 12, AC: 11}
		p, err := NewPlayerFromSpec(spec)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Health() != 40 {
			t.Errorf("expected health 40, got %d", p.Health())
		}
		if p.MaxHealth() != 80 {
			t.Errorf("expected max health 80, got %d", p.MaxHealth())
		}
		if p.Damage() != 12 {
			t.Errorf("expected damage 12, got %d", p.Damage())
		}
	})

	t.Run("missing max health defaults", func(t *testing.T) {
		p, err := NewPlayerFromSpec(&PlayerSpec{ID: 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.MaxHealth() != DefaultMaxHealth {
			t.Errorf("expected default max health, got %d", p.MaxHealth())
		}
	})
}

func TestPlayer_ApplyCharacter(t *testing.T) {
	p, err := NewPlayerFromSpec(NewPlayerSpec("Robin"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rogue := &Character{Name: "Rogue", HP: 75, Skill: SkillBackstab}
	if err := p.ApplyCharacter(rogue); err != nil {
		t.Fatalf("ApplyCharacter: %v", err)
	}

	if p.Spec.CharacterName != "Rogue" {
		t.Errorf("expected character Rogue, got %q", p.Spec.CharacterName)
	}
	if p.Health() != 75 || p.MaxHealth() != 75 {
		t.Errorf("expected 75/75, got %d/%d", p.Health(), p.MaxHealth())
	}
	if p.Damage() != DefaultDamage {
		t.Errorf("expected default damage, got %d", p.Damage())
	}
}

func TestPlayer_HealthMutations(t *testing.T) {
	p, err := NewPlayerFromSpec(&PlayerSpec{ID: 3, Health: 50, MaxHealth: 100, Damage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := p.Heal(25)
	if err != nil {
		t.Fatalf("Heal: %v", err)
	}
	if got != 75 {
		t.Errorf("expected 75 after heal, got %d", got)
	}

	got, _ = p.Heal(500)
	if got != 100 {
		t.Errorf("expected heal capped at 100, got %d", got)
	}

	if err := p.SetHealth(-5); err != nil {
		t.Fatalf("SetHealth: %v", err)
	}
	if p.Health() != 0 {
		t.Errorf("expected 0, got %d", p.Health())
	}

	if err := p.RaiseMaxHealth(20); err != nil {
		t.Fatalf("RaiseMaxHealth: %v", err)
	}
	if p.MaxHealth() != 120 {
		t.Errorf("expected max 120, got %d", p.MaxHealth())
	}
	if p.Health() != 20 {
		t.Errorf("expected health 20, got %d", p.Health())
	}

	if err := p.AddDamage(20); err != nil {
		t.Fatalf("AddDamage: %v", err)
	}
	if p.Damage() != 30 || p.Spec.Damage != 30 {
		t.Errorf("expected damage 30, got actor=%d spec=%d", p.Damage(), p.Spec.Damage)
	}
}

func TestPlayer_MarshalJSON(t *testing.T) {
	p, err := NewPlayerFromSpec(&PlayerSpec{ID: 9, Name: "Kit", Health: 30, MaxHealth: 70, Damage: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["current_health"].(float64) != 30 {
		t.Errorf("expected current_health 30, got %v", out["current_health"])
	}
	if out["name"] != "Kit" {
		t.Errorf("expected name Kit, got %v", out["name"])
	}
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"warrior":  "Warrior",
		"  WITCH ": "Witch",
		"cLeRiC":   "Cleric",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}

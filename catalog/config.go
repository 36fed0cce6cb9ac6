package catalog

import "fmt"

// Default stat values substituted for unset fields, mirroring the authored
// baseline for a basic melee unit.
const (
	DefaultMaxHealth       = 100.0
	DefaultDamage          = 10.0
	DefaultAttackSpeed     = 1.0
	DefaultAttackRange     = 40.0
	DefaultMoveSpeed       = 160.0
	DefaultFollowDistance  = 60.0
	DefaultReturnDistance  = 320.0
	DefaultDetectionRange  = 240.0
	DefaultProjectileSpeed = 420.0
	DefaultArcHeight       = 48.0
)

// AbilityConfig carries the optional special-ability tuning for a unit type.
type AbilityConfig struct {
	TriggerCount int     `json:"triggerCount" yaml:"trigger_count"`
	Cooldown     float64 `json:"cooldown" yaml:"cooldown"`
	Magnitude    float64 `json:"magnitude" yaml:"magnitude"`
}

// Config is the immutable stat record shared by every agent of a unit type.
// It is never mutated after construction; upgrades derive a new Config.
type Config struct {
	ID             string  `json:"id" yaml:"id"`
	DisplayName    string  `json:"displayName" yaml:"display_name"`
	MaxHealth      float64 `json:"maxHealth" yaml:"max_health"`
	Damage         float64 `json:"damage" yaml:"damage"`
	AttackSpeed    float64 `json:"attackSpeedHz" yaml:"attack_speed"`
	AttackRange    float64 `json:"attackRange" yaml:"attack_range"`
	MoveSpeed      float64 `json:"moveSpeed" yaml:"move_speed"`
	Ranged         bool    `json:"isRanged" yaml:"ranged"`
	FollowDistance float64 `json:"followDistance" yaml:"follow_distance"`
	ReturnDistance float64 `json:"returnDistance" yaml:"return_distance"`
	DetectionRange float64 `json:"detectionRange" yaml:"detection_range"`
	Cost           int     `json:"cost" yaml:"cost"`

	// Projectile tuning, consulted only when Ranged is set. A zero ArcHeight
	// produces a direct shot that can hit mid-flight.
	ProjectileSpeed float64 `json:"projectileSpeed" yaml:"projectile_speed"`
	ArcHeight       float64 `json:"arcHeight" yaml:"arc_height"`

	Ability *AbilityConfig `json:"ability,omitempty" yaml:"ability,omitempty"`
}

// Normalize returns a copy with zero-valued stats replaced by defaults.
func Normalize(cfg Config) Config {
	if cfg.MaxHealth <= 0 {
		cfg.MaxHealth = DefaultMaxHealth
	}
	if cfg.Damage <= 0 {
		cfg.Damage = DefaultDamage
	}
	if cfg.AttackSpeed <= 0 {
		cfg.AttackSpeed = DefaultAttackSpeed
	}
	if cfg.AttackRange <= 0 {
		cfg.AttackRange = DefaultAttackRange
	}
	if cfg.MoveSpeed <= 0 {
		cfg.MoveSpeed = DefaultMoveSpeed
	}
	if cfg.FollowDistance <= 0 {
		cfg.FollowDistance = DefaultFollowDistance
	}
	if cfg.ReturnDistance <= 0 {
		cfg.ReturnDistance = DefaultReturnDistance
	}
	if cfg.DetectionRange <= 0 {
		cfg.DetectionRange = DefaultDetectionRange
	}
	if cfg.Ranged {
		if cfg.ProjectileSpeed <= 0 {
			cfg.ProjectileSpeed = DefaultProjectileSpeed
		}
		if cfg.ArcHeight < 0 {
			cfg.ArcHeight = DefaultArcHeight
		}
	}
	return cfg
}

// Validate reports structural problems an authored entry may carry.
func Validate(cfg Config) error {
	if cfg.ID == "" {
		return fmt.Errorf("catalog: entry missing id")
	}
	if cfg.ReturnDistance < cfg.FollowDistance {
		return fmt.Errorf("catalog: %s return_distance %.1f below follow_distance %.1f", cfg.ID, cfg.ReturnDistance, cfg.FollowDistance)
	}
	if cfg.Ability != nil && cfg.Ability.TriggerCount < 0 {
		return fmt.Errorf("catalog: %s negative ability trigger count", cfg.ID)
	}
	return nil
}

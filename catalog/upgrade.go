package catalog

// Upgrade describes a meta-progression bonus applied to a unit type. Scales
// of zero mean "unchanged"; flat bonuses add after scaling.
type Upgrade struct {
	HealthScale     float64 `json:"healthScale,omitempty" yaml:"health_scale,omitempty"`
	DamageScale     float64 `json:"damageScale,omitempty" yaml:"damage_scale,omitempty"`
	AttackSpeedFlat float64 `json:"attackSpeedFlat,omitempty" yaml:"attack_speed_flat,omitempty"`
	AttackRangeFlat float64 `json:"attackRangeFlat,omitempty" yaml:"attack_range_flat,omitempty"`
	MoveSpeedScale  float64 `json:"moveSpeedScale,omitempty" yaml:"move_speed_scale,omitempty"`
	DetectionFlat   float64 `json:"detectionFlat,omitempty" yaml:"detection_flat,omitempty"`
}

// ApplyUpgrade derives a new Config with the upgrade folded in. The input
// record is never mutated; callers reassign the result to live agents.
func ApplyUpgrade(cfg *Config, up Upgrade) *Config {
	if cfg == nil {
		return nil
	}
	derived := *cfg
	if cfg.Ability != nil {
		ability := *cfg.Ability
		derived.Ability = &ability
	}
	if up.HealthScale > 0 {
		derived.MaxHealth = cfg.MaxHealth * up.HealthScale
	}
	if up.DamageScale > 0 {
		derived.Damage = cfg.Damage * up.DamageScale
	}
	if up.AttackSpeedFlat != 0 {
		derived.AttackSpeed = cfg.AttackSpeed + up.AttackSpeedFlat
		if derived.AttackSpeed <= 0 {
			derived.AttackSpeed = cfg.AttackSpeed
		}
	}
	if up.AttackRangeFlat != 0 {
		derived.AttackRange = cfg.AttackRange + up.AttackRangeFlat
		if derived.AttackRange <= 0 {
			derived.AttackRange = cfg.AttackRange
		}
	}
	if up.MoveSpeedScale > 0 {
		derived.MoveSpeed = cfg.MoveSpeed * up.MoveSpeedScale
	}
	if up.DetectionFlat != 0 {
		derived.DetectionRange = cfg.DetectionRange + up.DetectionFlat
		if derived.DetectionRange <= 0 {
			derived.DetectionRange = cfg.DetectionRange
		}
	}
	return &derived
}

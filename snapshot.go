package sim

import "sort"

// AgentSnapshot is the broadcast-friendly copy of one live agent.
type AgentSnapshot struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Faction   string  `json:"faction"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Facing    float64 `json:"facing"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	State     string  `json:"state"`
	TargetID  string  `json:"targetId,omitempty"`
	Slot      int     `json:"slot"`
}

// ProjectileSnapshot carries enough for an observer to draw one projectile,
// including the arc-lifted render position and fade alpha.
type ProjectileSnapshot struct {
	ID       string  `json:"id"`
	OwnerID  string  `json:"ownerId"`
	Faction  string  `json:"faction"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	RenderX  float64 `json:"renderX"`
	RenderY  float64 `json:"renderY"`
	Heading  float64 `json:"heading"`
	Progress float64 `json:"progress"`
	Alpha    float64 `json:"alpha"`
	Status   string  `json:"status"`
}

// Snapshot is one immutable view of the world at the end of a tick.
type Snapshot struct {
	Tick        uint64               `json:"tick"`
	LeaderX     float64              `json:"leaderX"`
	LeaderY     float64              `json:"leaderY"`
	HasLeader   bool                 `json:"hasLeader"`
	Agents      []AgentSnapshot      `json:"agents"`
	Projectiles []ProjectileSnapshot `json:"projectiles"`
}

// Snapshot copies agents and projectiles into broadcast-friendly structs,
// sorted by ID so output is stable across runs.
func (w *World) Snapshot() Snapshot {
	if w == nil {
		return Snapshot{}
	}
	snap := Snapshot{
		Tick:        w.tick,
		LeaderX:     w.leaderPos.X,
		LeaderY:     w.leaderPos.Y,
		HasLeader:   w.hasLeader,
		Agents:      make([]AgentSnapshot, 0, len(w.order)),
		Projectiles: make([]ProjectileSnapshot, 0, len(w.projectiles)),
	}
	for _, a := range w.order {
		maxHealth := 0.0
		if a.Config != nil {
			maxHealth = a.Config.MaxHealth
		}
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:        a.ID,
			Type:      a.Type,
			Faction:   a.Faction.String(),
			X:         a.Pos.X,
			Y:         a.Pos.Y,
			Facing:    a.Facing,
			Health:    a.Health,
			MaxHealth: maxHealth,
			State:     a.State.String(),
			TargetID:  a.TargetID,
			Slot:      a.Slot,
		})
	}
	for _, p := range w.projectiles {
		t := p.Progress()
		ground := p.GroundPositionAt(t)
		render := p.RenderPositionAt(t)
		snap.Projectiles = append(snap.Projectiles, ProjectileSnapshot{
			ID:       p.ID,
			OwnerID:  p.OwnerID,
			Faction:  p.Faction.String(),
			X:        ground.X,
			Y:        ground.Y,
			RenderX:  render.X,
			RenderY:  render.Y,
			Heading:  p.Heading(),
			Progress: t,
			Alpha:    p.FadeAlpha(),
			Status:   p.Status.String(),
		})
	}
	sort.Slice(snap.Agents, func(i, j int) bool { return snap.Agents[i].ID < snap.Agents[j].ID })
	sort.Slice(snap.Projectiles, func(i, j int) bool { return snap.Projectiles[i].ID < snap.Projectiles[j].ID })
	return snap
}

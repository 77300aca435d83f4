package world

import (
	"fmt"

	"github.com/talgya/starlane/internal/agents"
)

// Populate spawns one agent per placement. Home indexes are resolved to the
// IDs of the agents spawned for them, so homes must be placed before the
// ships that point at them.
func (l *Layout) Populate(sp *agents.Spawner) ([]*agents.Agent, error) {
	out := make([]*agents.Agent, 0, len(l.Placements))
	for i, p := range l.Placements {
		var a *agents.Agent
		switch {
		case p.Type == agents.TypeSpaceStation && p.Product != "":
			a = sp.SpawnStation(p.Name, p.Position, p.Product)
		case p.Name != "":
			a = sp.SpawnNamed(p.Type, p.Name, p.Position)
		default:
			a = sp.Spawn(p.Type, p.Position)
		}

		if p.Home >= 0 {
			if p.Home >= i {
				return nil, fmt.Errorf("placement %d (%s): home %d not yet spawned", i, p.Type, p.Home)
			}
			home := out[p.Home].ID
			a.Home = &home
		}
		out = append(out, a)
	}
	return out, nil
}

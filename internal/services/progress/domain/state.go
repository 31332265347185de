package domain

import "github.com/proact-eco/proact/internal/services/progress/mission"

// PointsPerLevel is the eco-point cost of one level.
const PointsPerLevel = 100

// LevelForPoints derives the level for a clamped eco-point total.
// Division truncates, so the level is always at least 1.
func LevelForPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return points/PointsPerLevel + 1
}

// State is the per-session view of a user's progression. EcoPoints never goes
// negative and Level always equals EcoPoints/PointsPerLevel + 1 once a
// mutation settles.
type State struct {
	EcoPoints      int
	Level          int
	ActiveMissions []mission.Mission
}

// clone returns a deep copy so consumers can never reach engine-owned memory.
func (s State) clone() State {
	copied := s
	if len(s.ActiveMissions) > 0 {
		copied.ActiveMissions = make([]mission.Mission, len(s.ActiveMissions))
		for i, m := range s.ActiveMissions {
			copied.ActiveMissions[i] = m.Clone()
		}
	}
	return copied
}

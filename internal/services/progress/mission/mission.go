// Package mission models the mission entity hierarchy.
//
// Missions form a three-deep tree: weekly or ongoing projects contain
// missions, and missions contain steps. Completing any node grants its eco
// points; a parent's points and CO2 savings aggregate its children's.
package mission

import (
	"strings"
	"time"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/platform/id"
)

// Level identifies a node's position in the mission hierarchy.
type Level string

const (
	// LevelProject is a top-level container of missions.
	LevelProject Level = "project"
	// LevelMission is a concrete mission within a project.
	LevelMission Level = "mission"
	// LevelStep is an actionable step within a mission.
	LevelStep Level = "step"
)

// PeriodType describes a mission's expected duration.
type PeriodType string

const (
	// PeriodWeekly marks work estimated to complete within one week.
	PeriodWeekly PeriodType = "weekly"
	// PeriodOngoing marks work without a fixed deadline.
	PeriodOngoing PeriodType = "ongoing"
)

// Status describes the lifecycle state of a mission.
type Status string

const (
	// StatusNotStarted indicates the mission has not been picked up.
	StatusNotStarted Status = "not_started"
	// StatusInProgress indicates the mission is underway.
	StatusInProgress Status = "in_progress"
	// StatusDone indicates the mission is complete.
	StatusDone Status = "done"
	// StatusExpired indicates the mission lapsed before completion.
	StatusExpired Status = "expired"
)

// RegenerationUnlimited marks a mission that can always be regenerated.
const RegenerationUnlimited = -1

// weeklyMissionRegenerationMax is the regeneration budget for weekly missions.
const weeklyMissionRegenerationMax = 3

var (
	// ErrEmptyID indicates a missing mission ID.
	ErrEmptyID = apperrors.New(apperrors.CodeMissionEmptyID, "mission id is required")
	// ErrEmptyTitle indicates a missing mission title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeMissionEmptyTitle, "mission title is required")
	// ErrInvalidLevel indicates an unsupported hierarchy level.
	ErrInvalidLevel = apperrors.New(apperrors.CodeMissionInvalidLevel, "mission level must be project, mission, or step")
	// ErrInvalidPeriod indicates an unsupported period type.
	ErrInvalidPeriod = apperrors.New(apperrors.CodeMissionInvalidPeriod, "mission period must be weekly or ongoing")
	// ErrNegativeReward indicates a negative eco-point reward.
	ErrNegativeReward = apperrors.New(apperrors.CodeMissionNegativeReward, "mission eco points must not be negative")
	// ErrInvalidTransition indicates a disallowed status change.
	ErrInvalidTransition = apperrors.New(apperrors.CodeMissionInvalidTransition, "mission status transition is not allowed")
	// ErrNotRegenerable indicates the regeneration budget is exhausted.
	ErrNotRegenerable = apperrors.New(apperrors.CodeMissionNotRegenerable, "mission has no regenerations left")
)

// Mission represents a node in the mission tree. The remote store owns the
// record; in-memory copies are read-only snapshots.
type Mission struct {
	ID               string
	ParentID         string
	Title            string
	Description      string
	Level            Level
	Period           PeriodType
	Status           Status
	Deadline         *time.Time // nil when the deadline is flexible
	EcoPoints        int
	CO2SavedKg       int
	RegenerationLeft int
	Steps            []Mission
	CreatedAt        time.Time
}

// CreateMissionInput describes the metadata needed to create a mission node.
type CreateMissionInput struct {
	ParentID    string
	Title       string
	Description string
	Level       Level
	Period      PeriodType
	Deadline    *time.Time
	EcoPoints   int
	CO2SavedKg  int
}

// NormalizeCreateMissionInput trims and validates mission input metadata.
func NormalizeCreateMissionInput(input CreateMissionInput) (CreateMissionInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return CreateMissionInput{}, ErrEmptyTitle
	}
	input.Description = strings.TrimSpace(input.Description)
	input.ParentID = strings.TrimSpace(input.ParentID)

	switch input.Level {
	case LevelProject, LevelMission, LevelStep:
	default:
		return CreateMissionInput{}, ErrInvalidLevel
	}
	switch input.Period {
	case PeriodWeekly, PeriodOngoing:
	case "":
		// Steps inherit their parent's cadence and may omit the period.
		if input.Level != LevelStep {
			return CreateMissionInput{}, ErrInvalidPeriod
		}
	default:
		return CreateMissionInput{}, ErrInvalidPeriod
	}
	if input.EcoPoints < 0 {
		return CreateMissionInput{}, ErrNegativeReward
	}
	return input, nil
}

// CreateMission creates a new mission node with a generated ID and the
// level-appropriate regeneration budget.
func CreateMission(input CreateMissionInput, now func() time.Time, idGenerator func() (string, error)) (Mission, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateMissionInput(input)
	if err != nil {
		return Mission{}, err
	}

	missionID, err := idGenerator()
	if err != nil {
		return Mission{}, apperrors.Wrap(apperrors.CodeMissionEmptyID, "generate mission id", err)
	}

	return Mission{
		ID:               missionID,
		ParentID:         normalized.ParentID,
		Title:            normalized.Title,
		Description:      normalized.Description,
		Level:            normalized.Level,
		Period:           normalized.Period,
		Status:           StatusNotStarted,
		Deadline:         normalized.Deadline,
		EcoPoints:        normalized.EcoPoints,
		CO2SavedKg:       normalized.CO2SavedKg,
		RegenerationLeft: regenerationBudget(normalized.Level, normalized.Period),
		CreatedAt:        now().UTC(),
	}, nil
}

// regenerationBudget returns how many times a node may be regenerated.
// Weekly missions get a small budget, ongoing projects are unlimited, and
// everything else cannot regenerate.
func regenerationBudget(level Level, period PeriodType) int {
	switch {
	case level == LevelMission && period == PeriodWeekly:
		return weeklyMissionRegenerationMax
	case level == LevelProject && period == PeriodOngoing:
		return RegenerationUnlimited
	default:
		return 0
	}
}

// AddStep appends a child node and rolls its eco points and CO2 savings up
// into the parent.
func (m *Mission) AddStep(step Mission) {
	m.Steps = append(m.Steps, step)
	m.EcoPoints += step.EcoPoints
	m.CO2SavedKg += step.CO2SavedKg
}

// AddSteps appends child nodes in order.
func (m *Mission) AddSteps(steps []Mission) {
	for _, step := range steps {
		m.AddStep(step)
	}
}

// Start transitions the mission into progress.
func (m Mission) Start() (Mission, error) {
	if m.Status != StatusNotStarted {
		return Mission{}, ErrInvalidTransition
	}
	m.Status = StatusInProgress
	return m, nil
}

// Complete transitions the mission to done. Completing an unstarted mission
// is allowed; the app treats a one-tap completion as start-and-finish.
func (m Mission) Complete() (Mission, error) {
	if m.Status == StatusDone || m.Status == StatusExpired {
		return Mission{}, ErrInvalidTransition
	}
	m.Status = StatusDone
	return m, nil
}

// Expire transitions an incomplete mission past its deadline.
func (m Mission) Expire() (Mission, error) {
	if m.Status == StatusDone || m.Status == StatusExpired {
		return Mission{}, ErrInvalidTransition
	}
	m.Status = StatusExpired
	return m, nil
}

// Regenerate consumes one regeneration from the budget.
func (m Mission) Regenerate() (Mission, error) {
	if m.RegenerationLeft == 0 {
		return Mission{}, ErrNotRegenerable
	}
	if m.RegenerationLeft > 0 {
		m.RegenerationLeft--
	}
	m.Status = StatusNotStarted
	return m, nil
}

// Clone returns a deep copy of the mission subtree.
func (m Mission) Clone() Mission {
	copied := m
	if m.Deadline != nil {
		deadline := *m.Deadline
		copied.Deadline = &deadline
	}
	if len(m.Steps) > 0 {
		copied.Steps = make([]Mission, len(m.Steps))
		for i, step := range m.Steps {
			copied.Steps[i] = step.Clone()
		}
	}
	return copied
}

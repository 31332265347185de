// Package generator drafts personalized weekly missions with a text model.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/proact-eco/proact/internal/platform/errors"
	"github.com/proact-eco/proact/internal/services/auth/profile"
	"github.com/proact-eco/proact/internal/services/progress/mission"
)

// DefaultMissionCount is the number of missions drafted per generation.
const DefaultMissionCount = 3

// maxAttempts bounds regeneration when the model returns unparseable output.
const maxAttempts = 3

const (
	missionEcoPoints = 25
	stepEcoPoints    = 5
)

// Model produces free-form text for a prompt. Implementations wrap a remote
// model API.
type Model interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Draft is the JSON shape the model is instructed to answer with.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
}

// ParseDrafts decodes a model answer into drafts. Models routinely wrap JSON
// in a ```json fence despite instructions, so fences are stripped first.
func ParseDrafts(raw string) ([]Draft, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var drafts []Draft
	if err := json.Unmarshal([]byte(cleaned), &drafts); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeGeneratorInvalidDraft, "model answer is not a mission list", err)
	}
	for i, draft := range drafts {
		if strings.TrimSpace(draft.Title) == "" {
			return nil, apperrors.WithMetadata(
				apperrors.CodeGeneratorInvalidDraft,
				"draft mission is missing a title",
				map[string]string{"index": fmt.Sprintf("%d", i)},
			)
		}
	}
	return drafts, nil
}

// Generator drafts missions for a profile and converts them into mission
// entities ready for storage.
type Generator struct {
	model       Model
	now         func() time.Time
	idGenerator func() (string, error)
}

// New wires a generator around a model with an injected clock and ID source.
func New(model Model, now func() time.Time, idGenerator func() (string, error)) *Generator {
	return &Generator{model: model, now: now, idGenerator: idGenerator}
}

// Generate asks the model for count weekly missions tailored to the profile
// and converts valid drafts into mission entities. Unparseable answers are
// retried a bounded number of times before giving up.
func (g *Generator) Generate(ctx context.Context, p profile.Profile, count int) ([]mission.Mission, error) {
	if count <= 0 {
		count = DefaultMissionCount
	}
	prompt := buildPrompt(p, count)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		answer, err := g.model.GenerateText(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate missions: %w", err)
		}
		drafts, err := ParseDrafts(answer)
		if err != nil {
			lastErr = err
			continue
		}
		return g.convert(drafts)
	}
	return nil, apperrors.Wrap(apperrors.CodeGeneratorExhausted, "model kept answering with unparseable missions", lastErr)
}

func (g *Generator) convert(drafts []Draft) ([]mission.Mission, error) {
	missions := make([]mission.Mission, 0, len(drafts))
	for _, draft := range drafts {
		m, err := mission.CreateMission(mission.CreateMissionInput{
			Title:       draft.Title,
			Description: draft.Description,
			Level:       mission.LevelMission,
			Period:      mission.PeriodWeekly,
			EcoPoints:   missionEcoPoints,
		}, g.now, g.idGenerator)
		if err != nil {
			return nil, err
		}
		for _, title := range draft.Steps {
			step, err := mission.CreateMission(mission.CreateMissionInput{
				ParentID:  m.ID,
				Title:     title,
				Level:     mission.LevelStep,
				Period:    mission.PeriodWeekly,
				EcoPoints: stepEcoPoints,
			}, g.now, g.idGenerator)
			if err != nil {
				return nil, err
			}
			m.AddStep(step)
		}
		missions = append(missions, m)
	}
	return missions, nil
}

func buildPrompt(p profile.Profile, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your goal is to suggest %d missions for me to do this week to help the environment and reduce global warming.\n", count)
	b.WriteString("Each mission should ideally be personalized to my personal information and interests listed below.\n\n")
	b.WriteString("Personal information:\n")
	fmt.Fprintf(&b, "- location: %s\n", p.Location)
	fmt.Fprintf(&b, "- occupation: %s\n", p.Occupation)
	b.WriteString("\nMy interests:\n")
	for _, interest := range p.Interests {
		fmt.Fprintf(&b, "- %s\n", interest)
	}
	b.WriteString(`
These missions ideally should (in one or a few ways):
- Be clear enough for me to keep track of my progress with.
- Relate to my occupation.
- Relate to environmental problems that my location is known to have.
- Relate to me personally.

MAKE SURE to structure your answer in the following JSON format and do not add "` + "```json" + `" in the beginning:

[
  {
    "title": "the title of the mission",
    "description": "why this mission matters and how it relates to me",
    "steps": ["an array of steps as strings"]
  }
]
`)
	return b.String()
}

// Package seed populates the local SQLite stores with a demo profile and a
// starter mission set, optionally drafting the missions with Gemini.
package seed

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	entrypoint "github.com/proact-eco/proact/internal/platform/cmd"
	"github.com/proact-eco/proact/internal/platform/i18n"
	"github.com/proact-eco/proact/internal/platform/id"
	"github.com/proact-eco/proact/internal/services/auth/profile"
	authsqlite "github.com/proact-eco/proact/internal/services/auth/storage/sqlite"
	"github.com/proact-eco/proact/internal/services/progress/generator"
	"github.com/proact-eco/proact/internal/services/progress/mission"
	progresssqlite "github.com/proact-eco/proact/internal/services/progress/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	AuthDBPath     string `env:"PROACT_AUTH_DB_PATH" envDefault:"proact-auth.db"`
	ProgressDBPath string `env:"PROACT_PROGRESS_DB_PATH" envDefault:"proact-progress.db"`
	GeminiAPIKey   string `env:"PROACT_GEMINI_API_KEY"`
	GeminiModel    string `env:"PROACT_GEMINI_MODEL"`
	UserID         string
	Email          string
	Generate       bool
	Missions       int
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.AuthDBPath, "auth-db", cfg.AuthDBPath, "Path to the auth SQLite database")
	fs.StringVar(&cfg.ProgressDBPath, "progress-db", cfg.ProgressDBPath, "Path to the progress SQLite database")
	fs.StringVar(&cfg.UserID, "user", "demo-user", "Seeded user ID")
	fs.StringVar(&cfg.Email, "email", "demo@proact.eco", "Seeded user email")
	fs.BoolVar(&cfg.Generate, "generate", false, "Draft missions with Gemini instead of fixtures")
	fs.IntVar(&cfg.Missions, "missions", generator.DefaultMissionCount, "Number of missions to seed")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		logger := log.New(os.Stderr, "[SEED] ", log.LstdFlags)

		authStore, err := authsqlite.Open(cfg.AuthDBPath)
		if err != nil {
			return fmt.Errorf("open auth store: %w", err)
		}
		defer func() { _ = authStore.Close() }()

		progressStore, err := progresssqlite.Open(cfg.ProgressDBPath)
		if err != nil {
			return fmt.Errorf("open progress store: %w", err)
		}
		defer func() { _ = progressStore.Close() }()

		demo := demoProfile(cfg.UserID, cfg.Email, time.Now)
		if err := authStore.PutProfile(ctx, demo); err != nil {
			return fmt.Errorf("seed profile: %w", err)
		}
		logger.Printf("seeded profile %s (%s)", demo.ID, demo.Email)

		missions, err := seedMissions(ctx, cfg, demo)
		if err != nil {
			return err
		}
		for _, m := range missions {
			if err := progressStore.PutMission(ctx, demo.ID, m); err != nil {
				return fmt.Errorf("seed mission %s: %w", m.ID, err)
			}
			logger.Printf("seeded mission %q (%d eco points, %d steps)", m.Title, m.EcoPoints, len(m.Steps))
		}
		return nil
	})
}

func seedMissions(ctx context.Context, cfg Config, demo profile.Profile) ([]mission.Mission, error) {
	if !cfg.Generate {
		return fixtureMissions(time.Now, id.NewID)
	}
	model, err := generator.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	missions, err := generator.New(model, time.Now, id.NewID).Generate(ctx, demo, cfg.Missions)
	if err != nil {
		return nil, fmt.Errorf("draft missions: %w", err)
	}
	return missions, nil
}

func demoProfile(userID, email string, now func() time.Time) profile.Profile {
	at := now().UTC()
	return profile.Profile{
		ID:         userID,
		Email:      email,
		Onboarded:  true,
		Locale:     i18n.DefaultTag(),
		Location:   "New York City",
		Occupation: "College Student",
		Interests:  []string{"Biking around the city", "Playing guitar"},
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}

func fixtureMissions(now func() time.Time, idGenerator func() (string, error)) ([]mission.Mission, error) {
	type fixture struct {
		title       string
		description string
		ecoPoints   int
		co2SavedKg  int
		steps       []string
	}
	fixtures := []fixture{
		{
			title:       "Bike commute week",
			description: "Swap short subway and car trips for your bike.",
			ecoPoints:   25,
			co2SavedKg:  6,
			steps:       []string{"Check tire pressure", "Plan a safe route", "Ride three days in a row"},
		},
		{
			title:       "Meatless weekdays",
			description: "Cut meat from weekday meals to shrink your footprint.",
			ecoPoints:   20,
			co2SavedKg:  9,
			steps:       []string{"Pick five vegetarian recipes", "Shop for the week"},
		},
		{
			title:       "Campus cleanup",
			description: "Join or organize a litter pickup around campus.",
			ecoPoints:   30,
			co2SavedKg:  2,
			steps:       []string{"Find a local cleanup event", "Bring two friends"},
		},
	}

	missions := make([]mission.Mission, 0, len(fixtures))
	for _, f := range fixtures {
		m, err := mission.CreateMission(mission.CreateMissionInput{
			Title:       f.title,
			Description: f.description,
			Level:       mission.LevelMission,
			Period:      mission.PeriodWeekly,
			EcoPoints:   f.ecoPoints,
			CO2SavedKg:  f.co2SavedKg,
		}, now, idGenerator)
		if err != nil {
			return nil, err
		}
		for _, title := range f.steps {
			step, err := mission.CreateMission(mission.CreateMissionInput{
				ParentID:  m.ID,
				Title:     title,
				Level:     mission.LevelStep,
				Period:    mission.PeriodWeekly,
				EcoPoints: 5,
			}, now, idGenerator)
			if err != nil {
				return nil, err
			}
			m.AddStep(step)
		}
		missions = append(missions, m)
	}
	return missions, nil
}

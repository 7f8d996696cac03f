// Package seed loads the demo fixture used by the seed command.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/repository"
	"github.com/projectplanning/planning-cloud-api/internal/services"
	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultFixture []byte

// Fixture is the document shape of seed.yaml.
type Fixture struct {
	Tasks []FixtureTask `yaml:"tasks"`
}

type FixtureTask struct {
	Title           string              `yaml:"title"`
	Description     string              `yaml:"description"`
	TaskType        string              `yaml:"taskType"`
	ProjectID       *uint64             `yaml:"projectId"`
	Status          models.TaskStatus   `yaml:"status"`
	EstimatedHours  *float64            `yaml:"estimatedHours"`
	DueInDays       *int                `yaml:"dueInDays"`
	CoverageRequest *bool               `yaml:"coverageRequest"`
	Commitments     []FixtureCommitment `yaml:"commitments"`
}

type FixtureCommitment struct {
	OngID       uint64                  `yaml:"ongId"`
	Status      models.CommitmentStatus `yaml:"status"`
	Description *string                 `yaml:"description"`
}

// Result summarizes a seed run.
type Result struct {
	Skipped     bool
	Tasks       int
	Commitments int
}

// Parse decodes a fixture document. Unknown keys are rejected.
func Parse(data []byte) (*Fixture, error) {
	var fixture Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("parsing seed fixture: %w", err)
	}
	return &fixture, nil
}

// Default returns the embedded fixture.
func Default() (*Fixture, error) {
	return Parse(defaultFixture)
}

// Seeder writes a fixture through the services so every row passes the
// same validation as API writes.
type Seeder struct {
	store       repository.Store
	taskTypes   *services.TaskTypeService
	tasks       *services.TaskService
	commitments *services.CommitmentService
	log         *slog.Logger
	now         func() time.Time
}

func NewSeeder(store repository.Store, log *slog.Logger) *Seeder {
	return &Seeder{
		store:       store,
		taskTypes:   services.NewTaskTypeService(store),
		tasks:       services.NewTaskService(store, nil),
		commitments: services.NewCommitmentService(store),
		log:         log,
		now:         time.Now,
	}
}

// Run loads the fixture unless the database already holds tasks.
func (s *Seeder) Run(ctx context.Context, fixture *Fixture) (*Result, error) {
	existing, err := s.store.Tasks().Count(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	if existing > 0 {
		s.log.Info("seed skipped, tasks already present", "tasks", existing)
		return &Result{Skipped: true}, nil
	}

	if _, err := s.taskTypes.EnsureDefaultTaskTypes(ctx); err != nil {
		return nil, err
	}

	types, err := s.taskTypes.ListTaskTypes(ctx)
	if err != nil {
		return nil, err
	}
	typeIDs := make(map[string]uint64, len(types))
	for _, t := range types {
		typeIDs[t.Title] = t.ID
	}

	inputs := make([]services.CreateTaskInput, len(fixture.Tasks))
	for i, ft := range fixture.Tasks {
		typeID, ok := typeIDs[ft.TaskType]
		if !ok {
			return nil, fmt.Errorf("task %q: unknown task type %q", ft.Title, ft.TaskType)
		}

		input := services.CreateTaskInput{
			Title:             ft.Title,
			Description:       ft.Description,
			Status:            ft.Status,
			EstimatedHours:    ft.EstimatedHours,
			ProjectID:         ft.ProjectID,
			TaskTypeID:        typeID,
			IsCoverageRequest: ft.CoverageRequest,
		}
		if ft.DueInDays != nil {
			due := s.now().AddDate(0, 0, *ft.DueInDays).UTC()
			input.DueDate = &due
		}
		inputs[i] = input
	}

	tasks, err := s.tasks.CreateTasksBulk(ctx, inputs)
	if err != nil {
		return nil, err
	}

	result := &Result{Tasks: len(tasks)}
	for i, ft := range fixture.Tasks {
		for _, fc := range ft.Commitments {
			if _, err := s.commitments.CreateCommitment(ctx, services.CreateCommitmentInput{
				TaskID:      tasks[i].ID,
				OngID:       fc.OngID,
				Status:      fc.Status,
				Description: fc.Description,
			}); err != nil {
				return nil, fmt.Errorf("task %q: %w", ft.Title, err)
			}
			result.Commitments++
		}
	}

	s.log.Info("seed completed", "tasks", result.Tasks, "commitments", result.Commitments)
	return result, nil
}

package automation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/location"
	"github.com/nerrad567/smarthome-core/internal/outcome"
	"github.com/nerrad567/smarthome-core/internal/validation"
)

// Transactor runs fn in one transaction scope. *database.Manager implements it.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventRecorder appends an entry to the event log.
type EventRecorder interface {
	Record(ctx context.Context, deviceID *int64, description string) error
}

// CreateInput holds the fields of a new automation. A nil Active creates
// the automation active.
type CreateInput struct {
	Name        string
	Description string
	HomeID      int64
	Active      *bool
}

// UpdateInput holds optional changes; nil fields are left alone.
type UpdateInput struct {
	Name        *string
	Description *string
}

// Service manages automations on top of the repositories.
type Service struct {
	tx          Transactor
	automations Repository
	homes       location.HomeRepository
	recorder    EventRecorder
	logger      Logger
}

// NewService creates an automation service.
func NewService(tx Transactor, automations Repository, homes location.HomeRepository) *Service {
	return &Service{tx: tx, automations: automations, homes: homes, logger: noopLogger{}}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SetEventRecorder sets where transitions are recorded. Nil disables recording.
func (s *Service) SetEventRecorder(r EventRecorder) {
	s.recorder = r
}

// Create validates input and inserts the automation once its home resolves.
func (s *Service) Create(ctx context.Context, in CreateInput) outcome.Outcome {
	name := strings.TrimSpace(in.Name)
	if r := validation.Name(name, "automation name"); !r.Valid {
		return outcome.Failure(r.Err(), r.Reason)
	}
	desc := strings.TrimSpace(in.Description)
	if r := validation.Description(desc); !r.Valid {
		return outcome.Failure(r.Err(), r.Reason)
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	var a *Automation
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		home, err := s.homes.GetByID(ctx, in.HomeID)
		if err != nil {
			return err
		}
		a = &Automation{Name: name, Description: desc, Active: active, Home: home}
		return s.automations.Insert(ctx, a)
	})
	if err != nil {
		return s.failure(err, "create automation")
	}

	s.logger.Info("automation created", "automation_id", a.ID, "name", a.Name,
		"home_id", a.HomeID(), "active", a.Active)
	return outcome.Successf("Automation '%s' created (%s)", a.Name, a.Status())
}

// List returns all automations.
func (s *Service) List(ctx context.Context) []Automation {
	list, err := s.automations.List(ctx)
	if err != nil {
		s.logger.Error("listing automations", "error", err)
		return []Automation{}
	}
	return list
}

// Get returns an automation, or nil when it does not exist or cannot be loaded.
func (s *Service) Get(ctx context.Context, id int64) *Automation {
	a, err := s.automations.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrAutomationNotFound) {
			s.logger.Error("loading automation", "automation_id", id, "error", err)
		}
		return nil
	}
	return a
}

// ListByHome returns the automations of a home.
func (s *Service) ListByHome(ctx context.Context, homeID int64) []Automation {
	list, err := s.automations.ListByHome(ctx, homeID)
	if err != nil {
		s.logger.Error("listing automations by home", "home_id", homeID, "error", err)
		return []Automation{}
	}
	return list
}

// ListActive returns the active automations of a home.
func (s *Service) ListActive(ctx context.Context, homeID int64) []Automation {
	list, err := s.automations.ListActive(ctx, homeID)
	if err != nil {
		s.logger.Error("listing active automations", "home_id", homeID, "error", err)
		return []Automation{}
	}
	return list
}

// AutomationsByUser returns the automations of every home linked to email,
// keyed by home name.
func (s *Service) AutomationsByUser(ctx context.Context, email string) map[string][]Automation {
	result := make(map[string][]Automation)
	homes, err := s.homes.ListByUser(ctx, email)
	if err != nil {
		s.logger.Error("listing homes for user", "email", email, "error", err)
		return result
	}
	for _, h := range homes {
		result[h.Name] = s.ListByHome(ctx, h.ID)
	}
	return result
}

// Update renames an automation and/or rewrites its description.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) outcome.Outcome {
	if in.Name == nil && in.Description == nil {
		return outcome.Failure(ErrNoChanges, "no changes to apply")
	}
	var name, desc string
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if r := validation.Name(name, "automation name"); !r.Valid {
			return outcome.Failure(r.Err(), r.Reason)
		}
	}
	if in.Description != nil {
		desc = strings.TrimSpace(*in.Description)
		if r := validation.Description(desc); !r.Valid {
			return outcome.Failure(r.Err(), r.Reason)
		}
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		a, err := s.automations.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.Name != nil {
			a.Name = name
		}
		if in.Description != nil {
			a.Description = desc
		}
		return s.automations.Update(ctx, a)
	})
	if err != nil {
		return s.failure(err, "update automation")
	}

	s.logger.Info("automation updated", "automation_id", id)
	return outcome.Success("automation updated successfully")
}

// Delete removes an automation.
func (s *Service) Delete(ctx context.Context, id int64) outcome.Outcome {
	a, err := s.automations.GetByID(ctx, id)
	if err != nil {
		return s.failure(err, "delete automation")
	}
	if err := s.automations.Delete(ctx, id); err != nil {
		return s.failure(err, "delete automation")
	}

	s.logger.Info("automation deleted", "automation_id", id, "name", a.Name)
	return outcome.Successf("Automation '%s' deleted", a.Name)
}

// Activate turns an inactive automation on.
func (s *Service) Activate(ctx context.Context, id int64) outcome.Outcome {
	return s.transition(ctx, id, true)
}

// Deactivate turns an active automation off.
func (s *Service) Deactivate(ctx context.Context, id int64) outcome.Outcome {
	return s.transition(ctx, id, false)
}

// SetActive dispatches to Activate or Deactivate.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) outcome.Outcome {
	if active {
		return s.Activate(ctx, id)
	}
	return s.Deactivate(ctx, id)
}

func (s *Service) transition(ctx context.Context, id int64, active bool) outcome.Outcome {
	op := "deactivate automation"
	if active {
		op = "activate automation"
	}

	var a *Automation
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		var err error
		if a, err = s.automations.GetByID(ctx, id); err != nil {
			return err
		}
		if active {
			err = a.Activate()
		} else {
			err = a.Deactivate()
		}
		if err != nil {
			return err
		}
		return s.automations.SetActive(ctx, id, active)
	})
	switch {
	case errors.Is(err, ErrAlreadyActive):
		return outcome.Failure(err, fmt.Sprintf("automation '%s' is already active", a.Name))
	case errors.Is(err, ErrAlreadyInactive):
		return outcome.Failure(err, fmt.Sprintf("automation '%s' is already inactive", a.Name))
	case err != nil:
		return s.failure(err, op)
	}

	verb := "deactivated"
	if active {
		verb = "activated"
	}
	s.logger.Info("automation "+verb, "automation_id", id, "name", a.Name)
	if s.recorder != nil {
		desc := fmt.Sprintf("Automation '%s' %s", a.Name, verb)
		if err := s.recorder.Record(ctx, nil, desc); err != nil {
			s.logger.Warn("recording automation event", "automation_id", id, "error", err)
		}
	}
	return outcome.Successf("Automation '%s' %s", a.Name, verb)
}

// Summary counts a home's automations by status.
func (s *Service) Summary(ctx context.Context, homeID int64) Summary {
	list := s.ListByHome(ctx, homeID)
	sum := Summary{Total: len(list)}
	for i := range list {
		if list[i].Active {
			sum.Active++
		}
	}
	sum.Inactive = sum.Total - sum.Active
	return sum
}

// failure converts a repository error into an outcome. Unexpected errors
// are logged and reported generically.
func (s *Service) failure(err error, op string) outcome.Outcome {
	switch {
	case errors.Is(err, ErrAutomationNotFound):
		return outcome.Failure(err, "automation not found")
	case errors.Is(err, location.ErrHomeNotFound):
		return outcome.Failure(err, "home not found")
	case errors.Is(err, ErrInvalidReference):
		return outcome.Failure(err, "automation references a missing home")
	default:
		s.logger.Error("automation operation failed", "op", op, "error", err)
		return outcome.Failure(err, "could not "+op)
	}
}

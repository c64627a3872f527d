package service

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	fleeterrors "flightline/internal/fleet/errors"
	"flightline/internal/fleet/repository"
	"flightline/internal/fleet/validator"
	"flightline/pkg/config"
	apperrors "flightline/pkg/errors"
	"flightline/pkg/model"
	"flightline/pkg/sanitizer"
)

type FleetService interface {
	CreateAircraft(ctx context.Context, aircraft *model.Aircraft) error
	GetAircraft(ctx context.Context, id string) (*model.Aircraft, error)
	ListAircraft(ctx context.Context, limit int, offset int64) ([]*model.Aircraft, int64, error)
	UpdateAircraft(ctx context.Context, id string, updates *model.AircraftUpdate) (*model.Aircraft, error)
	DeleteAircraft(ctx context.Context, id string) error

	CreateInstructor(ctx context.Context, instructor *model.Instructor) error
	GetInstructor(ctx context.Context, id string) (*model.Instructor, error)
	ListInstructors(ctx context.Context, limit int, offset int64) ([]*model.Instructor, int64, error)
	UpdateInstructor(ctx context.Context, id string, updates *model.InstructorUpdate) (*model.Instructor, error)
	DeleteInstructor(ctx context.Context, id string) error

	Exists(ctx context.Context, ref model.ResourceRef) (bool, error)
}

type fleetService struct {
	aircraft    repository.AircraftRepository
	instructors repository.InstructorRepository
	validator   *validator.FleetValidator
	cfg         *config.Config
}

func NewFleetService(
	aircraft repository.AircraftRepository,
	instructors repository.InstructorRepository,
	validator *validator.FleetValidator,
	cfg *config.Config,
) FleetService {
	return &fleetService{
		aircraft:    aircraft,
		instructors: instructors,
		validator:   validator,
		cfg:         cfg,
	}
}

func (s *fleetService) CreateAircraft(ctx context.Context, aircraft *model.Aircraft) error {
	s.sanitizeAircraft(aircraft)
	if err := s.validator.ValidateAircraft(aircraft); err != nil {
		s.cfg.Log.Warn("Aircraft validation failed", "error", err)
		return apperrors.Validation("Aircraft validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.aircraft.Create(ctx, aircraft); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("tail number is already registered")
		}
		s.cfg.Log.Error("Failed to create aircraft", "tail_number", aircraft.TailNumber, "error", err)
		return apperrors.StoreUnavailable(err)
	}

	s.cfg.Log.Info("Aircraft created successfully", "id", aircraft.ID, "tail_number", aircraft.TailNumber)
	return nil
}

func (s *fleetService) GetAircraft(ctx context.Context, id string) (*model.Aircraft, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Aircraft ID cannot be empty")
	}

	aircraft, err := s.aircraft.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "Aircraft", id)
	}
	return aircraft, nil
}

func (s *fleetService) ListAircraft(ctx context.Context, limit int, offset int64) ([]*model.Aircraft, int64, error) {
	var count int64
	var fleet []*model.Aircraft
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.aircraft.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count aircraft", "error", errCount)
			errCount = apperrors.StoreUnavailable(errCount)
		}
	}()

	go func() {
		defer wg.Done()
		fleet, errFind = s.aircraft.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list aircraft", "error", errFind)
			errFind = apperrors.StoreUnavailable(errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return fleet, count, nil
}

func (s *fleetService) UpdateAircraft(ctx context.Context, id string, updates *model.AircraftUpdate) (*model.Aircraft, error) {
	existing, err := s.GetAircraft(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateAircraftUpdate(updates); err != nil {
		s.cfg.Log.Warn("Aircraft update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.TailNumber != "" {
		merged.TailNumber = updates.TailNumber
	}
	if updates.MakeModel != "" {
		merged.MakeModel = updates.MakeModel
	}
	if updates.Type != "" {
		merged.Type = updates.Type
	}

	s.sanitizeAircraft(&merged)
	if err := s.validator.ValidateAircraft(&merged); err != nil {
		return nil, apperrors.Validation("Aircraft validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.aircraft.Update(ctx, id, &merged); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("tail number is already registered")
		}
		return nil, s.mapLookupError(err, "Aircraft", id)
	}

	s.cfg.Log.Info("Aircraft updated successfully", "id", id)
	return &merged, nil
}

func (s *fleetService) DeleteAircraft(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Aircraft ID cannot be empty")
	}

	if err := s.aircraft.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, "Aircraft", id)
	}

	s.cfg.Log.Info("Aircraft deleted successfully", "id", id)
	return nil
}

func (s *fleetService) CreateInstructor(ctx context.Context, instructor *model.Instructor) error {
	if err := s.sanitizeInstructor(instructor); err != nil {
		return err
	}
	if err := s.validator.ValidateInstructor(instructor); err != nil {
		s.cfg.Log.Warn("Instructor validation failed", "error", err)
		return apperrors.Validation("Instructor validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.instructors.Create(ctx, instructor); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.Conflict("email is already registered")
		}
		s.cfg.Log.Error("Failed to create instructor", "email", instructor.Email, "error", err)
		return apperrors.StoreUnavailable(err)
	}

	s.cfg.Log.Info("Instructor created successfully", "id", instructor.ID, "email", instructor.Email)
	return nil
}

func (s *fleetService) GetInstructor(ctx context.Context, id string) (*model.Instructor, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Instructor ID cannot be empty")
	}

	instructor, err := s.instructors.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err, "Instructor", id)
	}
	return instructor, nil
}

func (s *fleetService) ListInstructors(ctx context.Context, limit int, offset int64) ([]*model.Instructor, int64, error) {
	var count int64
	var instructors []*model.Instructor
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.instructors.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count instructors", "error", errCount)
			errCount = apperrors.StoreUnavailable(errCount)
		}
	}()

	go func() {
		defer wg.Done()
		instructors, errFind = s.instructors.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list instructors", "error", errFind)
			errFind = apperrors.StoreUnavailable(errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return instructors, count, nil
}

func (s *fleetService) UpdateInstructor(ctx context.Context, id string, updates *model.InstructorUpdate) (*model.Instructor, error) {
	existing, err := s.GetInstructor(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateInstructorUpdate(updates); err != nil {
		s.cfg.Log.Warn("Instructor update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := *existing
	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Email != "" {
		merged.Email = updates.Email
	}
	if updates.Phone != nil {
		merged.Phone = *updates.Phone
	}
	if updates.Ratings != nil {
		merged.Ratings = *updates.Ratings
	}

	if err := s.sanitizeInstructor(&merged); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateInstructor(&merged); err != nil {
		return nil, apperrors.Validation("Instructor validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.instructors.Update(ctx, id, &merged); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("email is already registered")
		}
		return nil, s.mapLookupError(err, "Instructor", id)
	}

	s.cfg.Log.Info("Instructor updated successfully", "id", id)
	return &merged, nil
}

func (s *fleetService) DeleteInstructor(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Instructor ID cannot be empty")
	}

	if err := s.instructors.Delete(ctx, id); err != nil {
		return s.mapLookupError(err, "Instructor", id)
	}

	s.cfg.Log.Info("Instructor deleted successfully", "id", id)
	return nil
}

// Exists answers registry lookups from the booking scheduler. Unknown IDs and
// malformed IDs both report false rather than erroring, so a bad reference in
// a booking request surfaces as ResourceNotFound instead of a server fault.
func (s *fleetService) Exists(ctx context.Context, ref model.ResourceRef) (bool, error) {
	var err error
	switch ref.Kind {
	case model.ResourceAircraft:
		_, err = s.aircraft.FindByID(ctx, ref.ID)
	case model.ResourceInstructor:
		_, err = s.instructors.FindByID(ctx, ref.ID)
	default:
		return false, apperrors.InvalidInput("unknown resource kind: " + string(ref.Kind))
	}

	if err == nil {
		return true, nil
	}
	if errors.Is(err, fleeterrors.ErrNotFound) || errors.Is(err, fleeterrors.ErrInvalidID) {
		return false, nil
	}
	return false, apperrors.StoreUnavailable(err)
}

// --- Helpers ---

func (s *fleetService) sanitizeAircraft(a *model.Aircraft) {
	a.TailNumber = sanitizer.NormalizeTailNumber(a.TailNumber)
	a.MakeModel = sanitizer.TrimAndNormalize(a.MakeModel)
	a.Type = sanitizer.NormalizeLabel(a.Type)
}

func (s *fleetService) sanitizeInstructor(i *model.Instructor) error {
	i.Name = sanitizer.NormalizeName(i.Name)
	i.Email = sanitizer.NormalizeEmail(i.Email)
	i.Ratings = sanitizer.NormalizeRatings(i.Ratings)

	if i.Phone != "" {
		normalized := sanitizer.NormalizePhone(i.Phone)
		if normalized == "" {
			return apperrors.InvalidInput("phone number could not be parsed")
		}
		i.Phone = normalized
	}
	return nil
}

func (s *fleetService) mapLookupError(err error, resource, id string) error {
	if errors.Is(err, fleeterrors.ErrNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	if errors.Is(err, fleeterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid " + resource + " ID format")
	}
	return apperrors.StoreUnavailable(err)
}

package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/boulin/eventverse/internal/api"
	"github.com/boulin/eventverse/internal/common"
	"github.com/boulin/eventverse/internal/dbx"
	"github.com/boulin/eventverse/internal/logging"
	"github.com/boulin/eventverse/internal/server/config"
	"github.com/boulin/eventverse/internal/server/models"
	"github.com/boulin/eventverse/internal/server/repositories/repomanager"
)

// ProfileService manages the profile attached to each account.
type ProfileService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	log           logging.Logger
	organizerCode string
	now           func() time.Time
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *ProfileService {
	return &ProfileService{
		db:            db,
		repomanager:   m,
		log:           log.With("module", "profiles"),
		organizerCode: cfg.OrganizerCode,
		now:           time.Now,
	}
}

// Get returns common.ErrorNotFound until the profile has been created.
func (s *ProfileService) Get(ctx context.Context, uid string) (*models.Profile, error) {
	return s.repomanager.Profiles(s.db).Get(ctx, uid)
}

// Create sets up the profile of uid with default preferences. Organizer
// profiles require the configured organizer code.
func (s *ProfileService) Create(ctx context.Context, uid string, in api.UserInput) (*models.Profile, error) {
	if in.IsOrganizer && !s.validOrganizerCode(in.OrganizerCode) {
		return nil, fmt.Errorf("%w: invalid organizer code", common.ErrorForbidden)
	}

	p := &models.Profile{
		UID:         uid,
		IsOrganizer: in.IsOrganizer,
		SigninDate:  s.now(),
		Preferences: api.DefaultPreferences(),
	}
	if err := s.repomanager.Profiles(s.db).Create(ctx, p); err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: profile already exists", common.ErrorConflict)
		}
		return nil, fmt.Errorf("error creating profile: %w", err)
	}

	s.log.Info(ctx, "profile created", "uid", uid, "organizer", in.IsOrganizer)
	return s.Get(ctx, uid)
}

// Update applies the non-nil fields of upd.
func (s *ProfileService) Update(ctx context.Context, uid string, upd api.UserUpdate) (*models.Profile, error) {
	if upd.Preferences != nil {
		if err := validatePreferences(*upd.Preferences); err != nil {
			return nil, err
		}
	}

	var updated *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)
		p, err := repo.Get(ctx, uid)
		if err != nil {
			return err
		}
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Surname != nil {
			p.Surname = *upd.Surname
		}
		if upd.Preferences != nil {
			p.Preferences = *upd.Preferences
		}
		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the profile of uid and returns it as it was.
func (s *ProfileService) Delete(ctx context.Context, uid string) (*models.Profile, error) {
	var deleted *models.Profile
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Profiles(tx)
		p, err := repo.Get(ctx, uid)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, uid); err != nil {
			return err
		}
		deleted = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "profile deleted", "uid", uid)
	return deleted, nil
}

func (s *ProfileService) validOrganizerCode(code *string) bool {
	if code == nil || s.organizerCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*code), []byte(s.organizerCode)) == 1
}

func validatePreferences(p api.UserPreferences) error {
	switch {
	case p.Radius < 0:
		return fmt.Errorf("%w: radius must not be negative", common.ErrorValidation)
	case p.Weeks < 0:
		return fmt.Errorf("%w: weeks must not be negative", common.ErrorValidation)
	case !p.Target.Valid():
		return fmt.Errorf("%w: unknown target audience", common.ErrorValidation)
	}
	return validateLocation(p.Location)
}

func validateLocation(l api.Location) error {
	if l.Latitude < -90 || l.Latitude > 90 || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: coordinates out of range", common.ErrorValidation)
	}
	return nil
}

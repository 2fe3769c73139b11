package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fstr-project/pereval-api/internal/dto"
	"github.com/fstr-project/pereval-api/internal/model"
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// Typed outcomes of the pereval flows. The transport layer maps these
// onto response envelopes; anything else is a persistence failure.
var (
	// ErrPerevalNotFound reports that the requested pereval id does
	// not exist.
	ErrPerevalNotFound = errors.New("pereval not found")

	// ErrUserNotFound reports that no user is registered under the
	// requested email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEditNotAllowed reports that the pereval exists but its status
	// is no longer "new", so edits are rejected.
	ErrEditNotAllowed = errors.New("pereval is not editable")
)

// userStore is the slice of the user repository the service needs.
type userStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// perevalStore is the slice of the pereval repository the service
// needs. Absent rows are reported as pgx.ErrNoRows.
type perevalStore interface {
	CreateCoords(ctx context.Context, coords *model.Coords) error
	UpdateCoords(ctx context.Context, coords *model.Coords) error
	Create(ctx context.Context, pereval *model.Pereval) error
	Update(ctx context.Context, pereval *model.Pereval) error
	CreateImage(ctx context.Context, image *model.PerevalImage) error
	DeleteImages(ctx context.Context, perevalID int) error
	GetByID(ctx context.Context, id int) (*model.PerevalDetail, error)
	ListByUserID(ctx context.Context, userID int) ([]model.PerevalDetail, error)
}

// PerevalService orchestrates the submission flows. It holds no state
// between requests; every call is an independent sequence of store
// operations, and a failed step stops the sequence.
type PerevalService struct {
	users    userStore
	perevals perevalStore
	log      *zerolog.Logger
}

// NewPerevalService constructs a PerevalService.
func NewPerevalService(s *server.Server, users userStore, perevals perevalStore) *PerevalService {
	return &PerevalService{
		users:    users,
		perevals: perevals,
		log:      s.Logger,
	}
}

// Submit stores one full submission: the user (reused when the email
// is already registered), a fresh coordinates row, the pereval itself
// with status forced to "new", and the images in payload order. It
// returns the new pereval id.
//
// If an image insert fails midway, the pereval and earlier images stay
// committed; there is no compensating rollback across the submission.
func (s *PerevalService) Submit(ctx context.Context, req *dto.SubmitDataRequest) (int, error) {
	user, err := s.users.GetByEmail(ctx, req.User.Email)
	switch {
	case err == nil:
		// Existing submitter: the stored profile wins, the payload's
		// other user fields are ignored.
	case errors.Is(err, pgx.ErrNoRows):
		user = &model.User{
			Email: req.User.Email,
			Phone: req.User.Phone,
			Fam:   req.User.Fam,
			Name:  req.User.Name,
			Otc:   req.User.Otc,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return 0, fmt.Errorf("creating user: %w", err)
		}
	default:
		return 0, fmt.Errorf("resolving user by email: %w", err)
	}

	coords := &model.Coords{
		Latitude:  *req.Coords.Latitude,
		Longitude: *req.Coords.Longitude,
		Height:    *req.Coords.Height,
	}
	if err := s.perevals.CreateCoords(ctx, coords); err != nil {
		return 0, fmt.Errorf("creating coords: %w", err)
	}

	addTime := time.Now().UTC()
	if req.AddTime != nil {
		addTime = req.AddTime.Time
	}

	pereval := &model.Pereval{
		UserID:      user.ID,
		CoordID:     coords.ID,
		BeautyTitle: req.BeautyTitle,
		Title:       req.Title,
		OtherTitles: req.OtherTitles,
		Connect:     req.Connect,
		AddTime:     addTime,
		WinterLevel: req.WinterLevel,
		SummerLevel: req.SummerLevel,
		AutumnLevel: req.AutumnLevel,
		SpringLevel: req.SpringLevel,
	}
	if err := s.perevals.Create(ctx, pereval); err != nil {
		return 0, fmt.Errorf("creating pereval: %w", err)
	}

	for i, img := range req.Images {
		image := &model.PerevalImage{
			PerevalID: pereval.ID,
			ImgTitle:  img.ImgTitle,
			Img:       img.Img,
		}
		if err := s.perevals.CreateImage(ctx, image); err != nil {
			return 0, fmt.Errorf("creating image %d: %w", i, err)
		}
	}

	s.log.Info().Int("pereval_id", pereval.ID).Int("user_id", user.ID).Msg("pereval submitted")

	return pereval.ID, nil
}

// Get returns a pereval with its user, coordinates, and images, or
// ErrPerevalNotFound.
func (s *PerevalService) Get(ctx context.Context, id int) (*model.PerevalDetail, error) {
	detail, err := s.perevals.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPerevalNotFound
		}
		return nil, fmt.Errorf("fetching pereval %d: %w", id, err)
	}
	return detail, nil
}

// Update applies a partial update to a pereval whose status is still
// "new".
//
// Field semantics:
//   - nil scalar fields are left untouched, non-nil ones overwrite
//   - coords, when present, mutate the linked coordinates row in
//     place (all three values together, committed on its own)
//   - images, when present, replace the whole image set: delete all,
//     then insert each entry; an empty list clears all images
func (s *PerevalService) Update(ctx context.Context, req *dto.UpdatePerevalRequest) error {
	detail, err := s.perevals.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrPerevalNotFound
		}
		return fmt.Errorf("fetching pereval %d: %w", req.ID, err)
	}

	if detail.Status != model.StatusNew {
		return ErrEditNotAllowed
	}

	if req.Coords != nil {
		coords := detail.Coords
		coords.Latitude = *req.Coords.Latitude
		coords.Longitude = *req.Coords.Longitude
		coords.Height = *req.Coords.Height
		if err := s.perevals.UpdateCoords(ctx, &coords); err != nil {
			return fmt.Errorf("updating coords: %w", err)
		}
	}

	if req.Images != nil {
		if err := s.perevals.DeleteImages(ctx, detail.ID); err != nil {
			return fmt.Errorf("deleting images: %w", err)
		}
		for i, img := range *req.Images {
			image := &model.PerevalImage{
				PerevalID: detail.ID,
				ImgTitle:  img.ImgTitle,
				Img:       img.Img,
			}
			if err := s.perevals.CreateImage(ctx, image); err != nil {
				return fmt.Errorf("creating image %d: %w", i, err)
			}
		}
	}

	pereval := detail.Pereval
	if req.Title != nil {
		pereval.Title = *req.Title
	}
	if req.BeautyTitle != nil {
		pereval.BeautyTitle = req.BeautyTitle
	}
	if req.OtherTitles != nil {
		pereval.OtherTitles = req.OtherTitles
	}
	if req.Connect != nil {
		pereval.Connect = req.Connect
	}
	if req.AddTime != nil {
		pereval.AddTime = req.AddTime.Time
	}
	if req.WinterLevel != nil {
		pereval.WinterLevel = req.WinterLevel
	}
	if req.SummerLevel != nil {
		pereval.SummerLevel = req.SummerLevel
	}
	if req.AutumnLevel != nil {
		pereval.AutumnLevel = req.AutumnLevel
	}
	if req.SpringLevel != nil {
		pereval.SpringLevel = req.SpringLevel
	}

	if err := s.perevals.Update(ctx, &pereval); err != nil {
		return fmt.Errorf("updating pereval: %w", err)
	}

	s.log.Info().Int("pereval_id", detail.ID).Msg("pereval updated")

	return nil
}

// ListByEmail returns all perevals owned by the user registered under
// the email. An unknown email yields ErrUserNotFound, which is
// distinct from a known user owning zero passes (empty slice).
func (s *PerevalService) ListByEmail(ctx context.Context, email string) ([]model.PerevalDetail, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolving user by email: %w", err)
	}

	details, err := s.perevals.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing perevals for user %d: %w", user.ID, err)
	}
	return details, nil
}

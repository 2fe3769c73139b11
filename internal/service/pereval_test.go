package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fstr-project/pereval-api/internal/dto"
	"github.com/fstr-project/pereval-api/internal/model"
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type fakeUserStore struct {
	byEmail map[string]model.User
	created []model.User
	nextID  int
	getErr  error
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (f *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	f.nextID++
	user.ID = f.nextID
	if f.byEmail == nil {
		f.byEmail = map[string]model.User{}
	}
	f.byEmail[user.Email] = *user
	f.created = append(f.created, *user)
	return nil
}

type fakePerevalStore struct {
	nextCoordID   int
	nextPerevalID int
	nextImageID   int

	coords        []model.Coords
	updatedCoords []model.Coords
	perevals      []model.Pereval
	updated       []model.Pereval
	images        []model.PerevalImage
	deletedFor    []int

	details map[int]model.PerevalDetail
	byUser  map[int][]model.PerevalDetail

	getErr       error
	listErr      error
	failOnImage  int // 1-based index of the CreateImage call that fails
	imageCalls   int
	createErr    error
	updateErr    error
}

func (f *fakePerevalStore) CreateCoords(ctx context.Context, coords *model.Coords) error {
	f.nextCoordID++
	coords.ID = f.nextCoordID
	f.coords = append(f.coords, *coords)
	return nil
}

func (f *fakePerevalStore) UpdateCoords(ctx context.Context, coords *model.Coords) error {
	f.updatedCoords = append(f.updatedCoords, *coords)
	return nil
}

func (f *fakePerevalStore) Create(ctx context.Context, pereval *model.Pereval) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextPerevalID++
	pereval.ID = f.nextPerevalID
	pereval.Status = model.StatusNew
	f.perevals = append(f.perevals, *pereval)
	return nil
}

func (f *fakePerevalStore) Update(ctx context.Context, pereval *model.Pereval) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, *pereval)
	return nil
}

func (f *fakePerevalStore) CreateImage(ctx context.Context, image *model.PerevalImage) error {
	f.imageCalls++
	if f.failOnImage > 0 && f.imageCalls == f.failOnImage {
		return errors.New("image insert failed")
	}
	f.nextImageID++
	image.ID = f.nextImageID
	f.images = append(f.images, *image)
	return nil
}

func (f *fakePerevalStore) DeleteImages(ctx context.Context, perevalID int) error {
	f.deletedFor = append(f.deletedFor, perevalID)
	return nil
}

func (f *fakePerevalStore) GetByID(ctx context.Context, id int) (*model.PerevalDetail, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d, ok := f.details[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (f *fakePerevalStore) ListByUserID(ctx context.Context, userID int) ([]model.PerevalDetail, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	details := f.byUser[userID]
	if details == nil {
		details = []model.PerevalDetail{}
	}
	return details, nil
}

func newTestService(users *fakeUserStore, perevals *fakePerevalStore) *PerevalService {
	log := zerolog.Nop()
	return NewPerevalService(&server.Server{Logger: &log}, users, perevals)
}

func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int          { return &i }

func submitRequest() *dto.SubmitDataRequest {
	return &dto.SubmitDataRequest{
		Title: "Pkhiya",
		User: dto.UserPayload{
			Email: "climber@example.com",
			Phone: "+7 999 000 11 22",
			Fam:   "Ivanov",
			Name:  "Pyotr",
		},
		Coords: dto.CoordsPayload{
			Latitude:  floatPtr(45.3842),
			Longitude: floatPtr(7.1525),
			Height:    intPtr(1200),
		},
		Images: []dto.ImagePayload{
			{ImgTitle: strPtr("saddle"), Img: "img-1"},
			{ImgTitle: strPtr("gates"), Img: "img-2"},
		},
	}
}

func TestSubmitCreatesUserWhenEmailUnknown(t *testing.T) {
	users := &fakeUserStore{}
	perevals := &fakePerevalStore{}
	svc := newTestService(users, perevals)

	id, err := svc.Submit(context.Background(), submitRequest())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != 1 {
		t.Errorf("id = %d, want 1", id)
	}
	if len(users.created) != 1 {
		t.Fatalf("created %d users, want 1", len(users.created))
	}
	if users.created[0].Email != "climber@example.com" {
		t.Errorf("created user email = %q", users.created[0].Email)
	}
	if got := perevals.perevals[0].UserID; got != users.created[0].ID {
		t.Errorf("pereval.UserID = %d, want %d", got, users.created[0].ID)
	}
}

func TestSubmitReusesExistingUser(t *testing.T) {
	users := &fakeUserStore{
		byEmail: map[string]model.User{
			"climber@example.com": {ID: 42, Email: "climber@example.com", Fam: "Stored", Name: "Profile"},
		},
	}
	perevals := &fakePerevalStore{}
	svc := newTestService(users, perevals)

	if _, err := svc.Submit(context.Background(), submitRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(users.created) != 0 {
		t.Errorf("created %d users, want 0: stored profile must win", len(users.created))
	}
	if got := perevals.perevals[0].UserID; got != 42 {
		t.Errorf("pereval.UserID = %d, want 42", got)
	}
}

func TestSubmitAlwaysInsertsFreshCoords(t *testing.T) {
	users := &fakeUserStore{}
	perevals := &fakePerevalStore{}
	svc := newTestService(users, perevals)

	if _, err := svc.Submit(context.Background(), submitRequest()); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if _, err := svc.Submit(context.Background(), submitRequest()); err != nil {
		t.Fatalf("second Submit: %v", err)
	}

	if len(perevals.coords) != 2 {
		t.Fatalf("inserted %d coords rows, want 2", len(perevals.coords))
	}
	if perevals.coords[0].ID == perevals.coords[1].ID {
		t.Errorf("identical points must still get distinct coords rows")
	}
	if perevals.perevals[0].CoordID == perevals.perevals[1].CoordID {
		t.Errorf("perevals share a coords row")
	}
}

func TestSubmitForcesStatusNew(t *testing.T) {
	users := &fakeUserStore{}
	perevals := &fakePerevalStore{}
	svc := newTestService(users, perevals)

	if _, err := svc.Submit(context.Background(), submitRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := perevals.perevals[0].Status; got != model.StatusNew {
		t.Errorf("status = %q, want %q", got, model.StatusNew)
	}
}

func TestSubmitDefaultsAddTime(t *testing.T) {
	users := &fakeUserStore{}
	perevals := &fakePerevalStore{}
	svc := newTestService(users, perevals)

	before := time.Now().UTC()
	if _, err := svc.Submit(context.Background(), submitRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	after := time.Now().UTC()

	got := perevals.perevals[0].AddTime
	if got.Before(before) || got.After(after) {
		t.Errorf("add_time = %v, want within [%v, %v]", got, before, after)
	}
}

func TestSubmitKeepsImagesInPayloadOrder(t *testing.T) {
	users := &fakeUserStore{}
	perevals := &fakePerevalStore{}
	svc := newTestService(users, perevals)

	if _, err := svc.Submit(context.Background(), submitRequest()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(perevals.images) != 2 {
		t.Fatalf("inserted %d images, want 2", len(perevals.images))
	}
	if perevals.images[0].Img != "img-1" || perevals.images[1].Img != "img-2" {
		t.Errorf("images out of order: %q, %q", perevals.images[0].Img, perevals.images[1].Img)
	}
	for i, img := range perevals.images {
		if img.PerevalID != perevals.perevals[0].ID {
			t.Errorf("image %d linked to pereval %d, want %d", i, img.PerevalID, perevals.perevals[0].ID)
		}
	}
}

func TestSubmitImageFailureLeavesEarlierWrites(t *testing.T) {
	users := &fakeUserStore{}
	perevals := &fakePerevalStore{failOnImage: 2}
	svc := newTestService(users, perevals)

	if _, err := svc.Submit(context.Background(), submitRequest()); err == nil {
		t.Fatal("Submit succeeded, want image insert failure")
	}

	// No compensating rollback: the pereval and the first image stay.
	if len(perevals.perevals) != 1 {
		t.Errorf("pereval count = %d, want 1", len(perevals.perevals))
	}
	if len(perevals.images) != 1 {
		t.Errorf("image count = %d, want 1", len(perevals.images))
	}
	if len(perevals.deletedFor) != 0 {
		t.Errorf("unexpected image deletions: %v", perevals.deletedFor)
	}
}

func TestGetUnknownIDReportsNotFound(t *testing.T) {
	svc := newTestService(&fakeUserStore{}, &fakePerevalStore{})

	_, err := svc.Get(context.Background(), 77)
	if !errors.Is(err, ErrPerevalNotFound) {
		t.Errorf("err = %v, want ErrPerevalNotFound", err)
	}
}

func TestGetStoreFailureIsNotNotFound(t *testing.T) {
	perevals := &fakePerevalStore{getErr: errors.New("connection refused")}
	svc := newTestService(&fakeUserStore{}, perevals)

	_, err := svc.Get(context.Background(), 1)
	if err == nil || errors.Is(err, ErrPerevalNotFound) {
		t.Errorf("err = %v, want wrapped store failure", err)
	}
}

func storedDetail(status string) model.PerevalDetail {
	return model.PerevalDetail{
		Pereval: model.Pereval{
			ID:          5,
			UserID:      42,
			CoordID:     9,
			Title:       "Original",
			BeautyTitle: strPtr("per. "),
			AddTime:     time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
			WinterLevel: strPtr("1A"),
			Status:      status,
		},
		User:   model.User{ID: 42, Email: "climber@example.com"},
		Coords: model.Coords{ID: 9, Latitude: 45.3842, Longitude: 7.1525, Height: 1200},
		Images: []model.PerevalImage{{ID: 1, PerevalID: 5, Img: "img-1"}},
	}
}

func TestUpdateUnknownIDReportsNotFound(t *testing.T) {
	svc := newTestService(&fakeUserStore{}, &fakePerevalStore{})

	err := svc.Update(context.Background(), &dto.UpdatePerevalRequest{ID: 99, Title: strPtr("x")})
	if !errors.Is(err, ErrPerevalNotFound) {
		t.Errorf("err = %v, want ErrPerevalNotFound", err)
	}
}

func TestUpdateRejectedWhenStatusNotNew(t *testing.T) {
	for _, status := range []string{model.StatusPending, model.StatusAccepted, model.StatusRejected} {
		t.Run(status, func(t *testing.T) {
			perevals := &fakePerevalStore{
				details: map[int]model.PerevalDetail{5: storedDetail(status)},
			}
			svc := newTestService(&fakeUserStore{}, perevals)

			err := svc.Update(context.Background(), &dto.UpdatePerevalRequest{
				ID:     5,
				Title:  strPtr("Renamed"),
				Images: &[]dto.ImagePayload{},
			})
			if !errors.Is(err, ErrEditNotAllowed) {
				t.Fatalf("err = %v, want ErrEditNotAllowed", err)
			}

			// The rejection happens before any write.
			if len(perevals.updated) != 0 || len(perevals.updatedCoords) != 0 || len(perevals.deletedFor) != 0 {
				t.Errorf("store mutated despite rejected edit")
			}
		})
	}
}

func TestUpdateTitleOnlyLeavesRestUntouched(t *testing.T) {
	perevals := &fakePerevalStore{
		details: map[int]model.PerevalDetail{5: storedDetail(model.StatusNew)},
	}
	svc := newTestService(&fakeUserStore{}, perevals)

	err := svc.Update(context.Background(), &dto.UpdatePerevalRequest{ID: 5, Title: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(perevals.updated) != 1 {
		t.Fatalf("updated %d perevals, want 1", len(perevals.updated))
	}
	got := perevals.updated[0]
	if got.Title != "Renamed" {
		t.Errorf("title = %q, want Renamed", got.Title)
	}
	if got.WinterLevel == nil || *got.WinterLevel != "1A" {
		t.Errorf("winter_level changed: %v", got.WinterLevel)
	}
	if !got.AddTime.Equal(time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("add_time changed: %v", got.AddTime)
	}
	if len(perevals.updatedCoords) != 0 {
		t.Errorf("coords touched on title-only edit")
	}
	if len(perevals.deletedFor) != 0 {
		t.Errorf("images touched on title-only edit")
	}
}

func TestUpdateCoordsMutatesLinkedRowInPlace(t *testing.T) {
	perevals := &fakePerevalStore{
		details: map[int]model.PerevalDetail{5: storedDetail(model.StatusNew)},
	}
	svc := newTestService(&fakeUserStore{}, perevals)

	err := svc.Update(context.Background(), &dto.UpdatePerevalRequest{
		ID: 5,
		Coords: &dto.CoordsPayload{
			Latitude:  floatPtr(46.0),
			Longitude: floatPtr(8.0),
			Height:    intPtr(1500),
		},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(perevals.updatedCoords) != 1 {
		t.Fatalf("updated %d coords rows, want 1", len(perevals.updatedCoords))
	}
	got := perevals.updatedCoords[0]
	if got.ID != 9 {
		t.Errorf("coords row id = %d, want the linked row 9", got.ID)
	}
	if got.Latitude != 46.0 || got.Longitude != 8.0 || got.Height != 1500 {
		t.Errorf("coords = %+v", got)
	}
	if len(perevals.coords) != 0 {
		t.Errorf("edit inserted a fresh coords row")
	}
}

func TestUpdateImagesReplacesWholeSet(t *testing.T) {
	perevals := &fakePerevalStore{
		details: map[int]model.PerevalDetail{5: storedDetail(model.StatusNew)},
	}
	svc := newTestService(&fakeUserStore{}, perevals)

	err := svc.Update(context.Background(), &dto.UpdatePerevalRequest{
		ID: 5,
		Images: &[]dto.ImagePayload{
			{Img: "new-1"},
			{Img: "new-2"},
		},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(perevals.deletedFor) != 1 || perevals.deletedFor[0] != 5 {
		t.Fatalf("deletions = %v, want [5]", perevals.deletedFor)
	}
	if len(perevals.images) != 2 {
		t.Fatalf("inserted %d images, want 2", len(perevals.images))
	}
	if perevals.images[0].Img != "new-1" || perevals.images[1].Img != "new-2" {
		t.Errorf("images out of order: %+v", perevals.images)
	}
}

func TestUpdateEmptyImagesClearsAll(t *testing.T) {
	perevals := &fakePerevalStore{
		details: map[int]model.PerevalDetail{5: storedDetail(model.StatusNew)},
	}
	svc := newTestService(&fakeUserStore{}, perevals)

	err := svc.Update(context.Background(), &dto.UpdatePerevalRequest{
		ID:     5,
		Images: &[]dto.ImagePayload{},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(perevals.deletedFor) != 1 {
		t.Errorf("deletions = %v, want one delete", perevals.deletedFor)
	}
	if len(perevals.images) != 0 {
		t.Errorf("inserted %d images, want 0", len(perevals.images))
	}
}

func TestUpdateAbsentImagesLeavesSetUntouched(t *testing.T) {
	perevals := &fakePerevalStore{
		details: map[int]model.PerevalDetail{5: storedDetail(model.StatusNew)},
	}
	svc := newTestService(&fakeUserStore{}, perevals)

	err := svc.Update(context.Background(), &dto.UpdatePerevalRequest{ID: 5, Title: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if len(perevals.deletedFor) != 0 || perevals.imageCalls != 0 {
		t.Errorf("image set touched when images field was absent")
	}
}

func TestListByEmailUnknownUser(t *testing.T) {
	svc := newTestService(&fakeUserStore{}, &fakePerevalStore{})

	_, err := svc.ListByEmail(context.Background(), "nobody@example.com")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("err = %v, want ErrUserNotFound", err)
	}
}

func TestListByEmailKnownUserWithoutPasses(t *testing.T) {
	users := &fakeUserStore{
		byEmail: map[string]model.User{"climber@example.com": {ID: 42, Email: "climber@example.com"}},
	}
	svc := newTestService(users, &fakePerevalStore{})

	details, err := svc.ListByEmail(context.Background(), "climber@example.com")
	if err != nil {
		t.Fatalf("ListByEmail: %v", err)
	}
	if details == nil || len(details) != 0 {
		t.Errorf("details = %v, want empty slice", details)
	}
}

func TestListByEmailReturnsOwnedPasses(t *testing.T) {
	users := &fakeUserStore{
		byEmail: map[string]model.User{"climber@example.com": {ID: 42, Email: "climber@example.com"}},
	}
	perevals := &fakePerevalStore{
		byUser: map[int][]model.PerevalDetail{
			42: {storedDetail(model.StatusNew)},
		},
	}
	svc := newTestService(users, perevals)

	details, err := svc.ListByEmail(context.Background(), "climber@example.com")
	if err != nil {
		t.Fatalf("ListByEmail: %v", err)
	}
	if len(details) != 1 || details[0].ID != 5 {
		t.Errorf("details = %+v", details)
	}
}

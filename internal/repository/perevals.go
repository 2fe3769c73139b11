package repository

import (
	"context"
	"fmt"

	"github.com/fstr-project/pereval-api/internal/model"
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PerevalRepository persists pereval records together with their
// owned coordinates and image rows.
type PerevalRepository struct {
	pool *pgxpool.Pool
	log  *zerolog.Logger
}

// NewPerevalRepository constructs a PerevalRepository.
func NewPerevalRepository(s *server.Server) *PerevalRepository {
	return &PerevalRepository{
		pool: s.DB.Pool,
		log:  s.Logger,
	}
}

// CreateCoords inserts a fresh coordinates row and fills in the
// assigned id. Rows are never deduplicated, even for geometrically
// identical points.
func (r *PerevalRepository) CreateCoords(ctx context.Context, coords *model.Coords) error {
	const q = `
		INSERT INTO coords (latitude, longitude, height)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.pool.QueryRow(ctx, q,
		coords.Latitude,
		coords.Longitude,
		coords.Height,
	).Scan(&coords.ID)
}

// UpdateCoords overwrites latitude, longitude, and height of an
// existing coordinates row in place. The three values always travel
// together.
func (r *PerevalRepository) UpdateCoords(ctx context.Context, coords *model.Coords) error {
	const q = `
		UPDATE coords
		SET latitude = $1, longitude = $2, height = $3
		WHERE id = $4`

	tag, err := r.pool.Exec(ctx, q,
		coords.Latitude,
		coords.Longitude,
		coords.Height,
		coords.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Create inserts a pereval row. The status column is forced to 'new'
// in the statement itself; whatever the caller holds in
// pereval.Status is ignored. The assigned id and the stored status
// are written back into the struct.
func (r *PerevalRepository) Create(ctx context.Context, pereval *model.Pereval) error {
	const q = `
		INSERT INTO pereval_added
			(user_id, coord_id, beauty_title, title, other_titles, connect,
			 add_time, winter_level, summer_level, autumn_level, spring_level, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'new')
		RETURNING id, add_time, status`

	return r.pool.QueryRow(ctx, q,
		pereval.UserID,
		pereval.CoordID,
		pereval.BeautyTitle,
		pereval.Title,
		pereval.OtherTitles,
		pereval.Connect,
		pereval.AddTime,
		pereval.WinterLevel,
		pereval.SummerLevel,
		pereval.AutumnLevel,
		pereval.SpringLevel,
	).Scan(&pereval.ID, &pereval.AddTime, &pereval.Status)
}

// Update overwrites the scalar columns of a pereval row. Which fields
// actually changed is the service layer's concern; by the time the
// struct arrives here it holds the merged state.
func (r *PerevalRepository) Update(ctx context.Context, pereval *model.Pereval) error {
	const q = `
		UPDATE pereval_added
		SET beauty_title = $1, title = $2, other_titles = $3, connect = $4,
		    add_time = $5, winter_level = $6, summer_level = $7,
		    autumn_level = $8, spring_level = $9
		WHERE id = $10`

	tag, err := r.pool.Exec(ctx, q,
		pereval.BeautyTitle,
		pereval.Title,
		pereval.OtherTitles,
		pereval.Connect,
		pereval.AddTime,
		pereval.WinterLevel,
		pereval.SummerLevel,
		pereval.AutumnLevel,
		pereval.SpringLevel,
		pereval.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CreateImage inserts one image row and fills in the assigned id. The
// pereval_id foreign key is enforced by the store, not here.
func (r *PerevalRepository) CreateImage(ctx context.Context, image *model.PerevalImage) error {
	const q = `
		INSERT INTO pereval_images (pereval_id, img_title, img)
		VALUES ($1, $2, $3)
		RETURNING id`

	return r.pool.QueryRow(ctx, q,
		image.PerevalID,
		image.ImgTitle,
		image.Img,
	).Scan(&image.ID)
}

// DeleteImages removes every image row belonging to a pereval.
// Deleting zero rows is not an error: a pass may have no images.
func (r *PerevalRepository) DeleteImages(ctx context.Context, perevalID int) error {
	const q = `DELETE FROM pereval_images WHERE pereval_id = $1`

	_, err := r.pool.Exec(ctx, q, perevalID)
	return err
}

const perevalDetailColumns = `
	p.id, p.user_id, p.coord_id, p.beauty_title, p.title, p.other_titles,
	p.connect, p.add_time, p.winter_level, p.summer_level, p.autumn_level,
	p.spring_level, p.status,
	u.id, u.email, u.phone, u.fam, u.name, u.otc,
	c.id, c.latitude, c.longitude, c.height`

func scanPerevalDetail(row pgx.Row) (*model.PerevalDetail, error) {
	var d model.PerevalDetail
	err := row.Scan(
		&d.ID, &d.UserID, &d.CoordID, &d.BeautyTitle, &d.Title, &d.OtherTitles,
		&d.Connect, &d.AddTime, &d.WinterLevel, &d.SummerLevel, &d.AutumnLevel,
		&d.SpringLevel, &d.Status,
		&d.User.ID, &d.User.Email, &d.User.Phone, &d.User.Fam, &d.User.Name, &d.User.Otc,
		&d.Coords.ID, &d.Coords.Latitude, &d.Coords.Longitude, &d.Coords.Height,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID returns a pereval with its user, coordinates, and images
// resolved, or pgx.ErrNoRows when the id does not exist. Images come
// back in insertion order.
func (r *PerevalRepository) GetByID(ctx context.Context, id int) (*model.PerevalDetail, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM pereval_added p
		JOIN users u ON u.id = p.user_id
		JOIN coords c ON c.id = p.coord_id
		WHERE p.id = $1`, perevalDetailColumns)

	detail, err := scanPerevalDetail(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, err
	}

	images, err := r.imagesFor(ctx, []int{detail.ID})
	if err != nil {
		return nil, err
	}
	detail.Images = images[detail.ID]
	if detail.Images == nil {
		detail.Images = []model.PerevalImage{}
	}

	return detail, nil
}

// ListByUserID returns every pereval owned by the user, fully nested,
// in insertion order. A user with no passes yields an empty slice.
func (r *PerevalRepository) ListByUserID(ctx context.Context, userID int) ([]model.PerevalDetail, error) {
	q := fmt.Sprintf(`
		SELECT %s
		FROM pereval_added p
		JOIN users u ON u.id = p.user_id
		JOIN coords c ON c.id = p.coord_id
		WHERE p.user_id = $1
		ORDER BY p.id`, perevalDetailColumns)

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := []model.PerevalDetail{}
	ids := []int{}
	for rows.Next() {
		detail, err := scanPerevalDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
		ids = append(ids, detail.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(details) == 0 {
		return details, nil
	}

	images, err := r.imagesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range details {
		details[i].Images = images[details[i].ID]
		if details[i].Images == nil {
			details[i].Images = []model.PerevalImage{}
		}
	}

	return details, nil
}

// imagesFor loads the image rows for a set of pereval ids, grouped by
// owning pereval, preserving insertion order.
func (r *PerevalRepository) imagesFor(ctx context.Context, perevalIDs []int) (map[int][]model.PerevalImage, error) {
	const q = `
		SELECT id, pereval_id, img_title, img
		FROM pereval_images
		WHERE pereval_id = ANY($1)
		ORDER BY id`

	rows, err := r.pool.Query(ctx, q, perevalIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make(map[int][]model.PerevalImage)
	for rows.Next() {
		var img model.PerevalImage
		if err := rows.Scan(&img.ID, &img.PerevalID, &img.ImgTitle, &img.Img); err != nil {
			return nil, err
		}
		images[img.PerevalID] = append(images[img.PerevalID], img)
	}
	return images, rows.Err()
}

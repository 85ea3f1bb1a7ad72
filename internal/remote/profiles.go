package remote

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/storefront/internal/geocode"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is the denormalized user record backing the identity provider.
type Profile struct {
	ID               string
	Email            string
	Name             string
	Address          string
	Phone            string
	DeliveryLocation *geocode.LatLng
	PasswordHash     string
	Role             string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProfileUpdate carries partial profile fields; nil means leave unchanged.
type ProfileUpdate struct {
	Name             *string
	Address          *string
	Phone            *string
	DeliveryLocation *geocode.LatLng
}

type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) Create(ctx context.Context, p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Role == "" {
		p.Role = "customer"
	}

	var lat, lng sql.NullFloat64
	if p.DeliveryLocation != nil {
		lat = sql.NullFloat64{Float64: p.DeliveryLocation.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: p.DeliveryLocation.Lng, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, email, name, address, phone, delivery_lat, delivery_lng, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Email, p.Name, p.Address, p.Phone, lat, lng, p.PasswordHash, p.Role, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (s *ProfileStore) Get(ctx context.Context, id string) (*Profile, error) {
	return s.get(ctx, `WHERE id = $1`, id)
}

func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*Profile, error) {
	return s.get(ctx, `WHERE email = $1`, email)
}

func (s *ProfileStore) get(ctx context.Context, where string, arg any) (*Profile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, address, phone, delivery_lat, delivery_lng, password_hash, role, created_at, updated_at
		 FROM profiles `+where, arg)

	var p Profile
	var lat, lng sql.NullFloat64
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.Address, &p.Phone, &lat, &lng, &p.PasswordHash, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if lat.Valid && lng.Valid {
		p.DeliveryLocation = &geocode.LatLng{Lat: lat.Float64, Lng: lng.Float64}
	}
	return &p, nil
}

// Update merges the provided fields into the profile row and returns the
// merged record.
func (s *ProfileStore) Update(ctx context.Context, id string, upd ProfileUpdate) (*Profile, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		current.Name = *upd.Name
	}
	if upd.Address != nil {
		current.Address = *upd.Address
	}
	if upd.Phone != nil {
		current.Phone = *upd.Phone
	}
	if upd.DeliveryLocation != nil {
		current.DeliveryLocation = upd.DeliveryLocation
	}
	current.UpdatedAt = time.Now()

	var lat, lng sql.NullFloat64
	if current.DeliveryLocation != nil {
		lat = sql.NullFloat64{Float64: current.DeliveryLocation.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: current.DeliveryLocation.Lng, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE profiles SET name = $2, address = $3, phone = $4, delivery_lat = $5, delivery_lng = $6, updated_at = $7 WHERE id = $1`,
		id, current.Name, current.Address, current.Phone, lat, lng, current.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return current, nil
}

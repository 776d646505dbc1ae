package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/vrcpose/internal/param"
	"github.com/ayusman/vrcpose/internal/region"
)

// Profile is a named pipeline tuning.
type Profile struct {
	ID                   string
	Name                 string
	DetectionThreshold   float64
	MovementScale        float64
	SmoothFactor         float64
	ValueChangeThreshold float64
	LogInterval          time.Duration
	Channels             map[param.Name]region.Override
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Tuning returns the filter settings of the profile.
func (p *Profile) Tuning() region.Tuning {
	return region.Tuning{
		Scale:     p.MovementScale,
		Smooth:    p.SmoothFactor,
		Overrides: p.Channels,
	}
}

// ProfileRepository provides CRUD operations for profiles.
type ProfileRepository struct {
	db *sql.DB
}

// Profiles returns the profile repository for this store.
func (s *Store) Profiles() *ProfileRepository {
	return &ProfileRepository{db: s.db}
}

const profileColumns = `id, name, detection_threshold, movement_scale, smooth_factor,
	value_change_threshold, log_interval_ms, channels, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*Profile, error) {
	p := &Profile{}
	var intervalMs int64
	var channels string

	err := row.Scan(&p.ID, &p.Name, &p.DetectionThreshold, &p.MovementScale, &p.SmoothFactor,
		&p.ValueChangeThreshold, &intervalMs, &channels, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.LogInterval = time.Duration(intervalMs) * time.Millisecond
	if err := json.Unmarshal([]byte(channels), &p.Channels); err != nil {
		return nil, fmt.Errorf("decode channels of profile %s: %w", p.ID, err)
	}
	if len(p.Channels) == 0 {
		p.Channels = nil
	}
	return p, nil
}

func encodeChannels(channels map[param.Name]region.Override) (string, error) {
	if len(channels) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(channels)
	if err != nil {
		return "", fmt.Errorf("encode channels: %w", err)
	}
	return string(data), nil
}

// Create inserts a new profile into the database.
func (r *ProfileRepository) Create(p *Profile) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	channels, err := encodeChannels(p.Channels)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO profiles (`+profileColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.DetectionThreshold, p.MovementScale, p.SmoothFactor,
		p.ValueChangeThreshold, p.LogInterval.Milliseconds(), channels, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// GetByID retrieves a profile by its ID.
func (r *ProfileRepository) GetByID(id string) (*Profile, error) {
	p, err := scanProfile(r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// GetByName retrieves a profile by its name.
func (r *ProfileRepository) GetByName(name string) (*Profile, error) {
	p, err := scanProfile(r.db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// List retrieves all profiles ordered by name.
func (r *ProfileRepository) List() ([]*Profile, error) {
	rows, err := r.db.Query(`SELECT ` + profileColumns + ` FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Update updates an existing profile in the database.
func (r *ProfileRepository) Update(p *Profile) error {
	p.UpdatedAt = time.Now()

	channels, err := encodeChannels(p.Channels)
	if err != nil {
		return err
	}

	result, err := r.db.Exec(
		`UPDATE profiles SET name = ?, detection_threshold = ?, movement_scale = ?, smooth_factor = ?,
		 value_change_threshold = ?, log_interval_ms = ?, channels = ?, updated_at = ?
		 WHERE id = ?`,
		p.Name, p.DetectionThreshold, p.MovementScale, p.SmoothFactor,
		p.ValueChangeThreshold, p.LogInterval.Milliseconds(), channels, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a profile from the database by its ID.
func (r *ProfileRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

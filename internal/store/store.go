// Package store reads and updates patient appointments and contact profiles
// in Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when the requested row does not exist or is not
// visible to the caller.
var ErrNotFound = errors.New("store: not found")

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Appointment is a scheduled visit. Date is "yyyy-MM-dd" and Time is the
// 12-hour "h:mm AM" string patients pick when booking.
type Appointment struct {
	ID              string
	UserID          string
	DoctorName      string
	DoctorSpecialty string
	Date            string
	Time            string
	Type            string
	Status          string
	Telemedicine    bool
}

// Profile holds the contact details used for outbound notifications.
type Profile struct {
	UserID    string
	Email     string
	FirstName string
}

// Store wraps a pgx pool (or anything shaped like one).
type Store struct {
	pool db
}

// New returns a Store over pool.
func New(pool db) *Store {
	if pool == nil {
		panic("store: pool required")
	}
	return &Store{pool: pool}
}

// Connect opens a pgx pool for url. A non-empty key replaces the password
// embedded in the URL.
func Connect(ctx context.Context, url, key string) (*pgxpool.Pool, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("store: database url required")
	}
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("store: parse database url: %w", err)
	}
	if key != "" {
		cfg.ConnConfig.Password = key
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("store: open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return pool, nil
}

const appointmentColumns = `id::text, user_id::text, doctor_name, COALESCE(doctor_specialty, ''),
	appointment_date::text, appointment_time, appointment_type, status, is_telemedicine`

// GetAppointment loads one appointment by id regardless of owner. Ownership
// is the caller's decision.
func (s *Store) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	appt, err := scanAppointment(row)
	if err != nil {
		if isMissing(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get appointment: %w", err)
	}
	return appt, nil
}

// ListAppointments returns the user's appointments in date order.
func (s *Store) ListAppointments(ctx context.Context, userID string) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY appointment_date ASC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("store: list appointments: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan appointment: %w", err)
		}
		out = append(out, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list appointments: %w", err)
	}
	return out, nil
}

// RescheduleAppointment moves an appointment owned by userID. It returns
// ErrNotFound when no owned row matched.
func (s *Store) RescheduleAppointment(ctx context.Context, id, userID, date, clock string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE appointments
		SET appointment_date = $3, appointment_time = $4, updated_at = now()
		WHERE id = $1 AND user_id = $2`, id, userID, date, clock)
	if err != nil {
		if isMissing(err) {
			return ErrNotFound
		}
		return fmt.Errorf("store: reschedule appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetContactProfile returns the email and first name for userID.
func (s *Store) GetContactProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	err := s.pool.QueryRow(ctx, `SELECT user_id::text, COALESCE(email, ''), COALESCE(first_name, '')
		FROM profiles WHERE user_id = $1`, userID).Scan(&p.UserID, &p.Email, &p.FirstName)
	if err != nil {
		if isMissing(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get profile: %w", err)
	}
	return &p, nil
}

// invalidTextRepresentation is raised when an id is not a valid uuid.
const invalidTextRepresentation = "22P02"

func isMissing(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(&a.ID, &a.UserID, &a.DoctorName, &a.DoctorSpecialty,
		&a.Date, &a.Time, &a.Type, &a.Status, &a.Telemedicine); err != nil {
		return nil, err
	}
	return &a, nil
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

var appointmentCols = []string{"id", "user_id", "doctor_name", "doctor_specialty",
	"appointment_date", "appointment_time", "appointment_type", "status", "is_telemedicine"}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestGetAppointment(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("FROM appointments WHERE id").
		WithArgs("appt-1").
		WillReturnRows(pgxmock.NewRows(appointmentCols).
			AddRow("appt-1", "user-1", "Dr. Reyes", "Cardiology", "2024-03-10", "1:05 PM", "Follow-up", "scheduled", true))

	appt, err := s.GetAppointment(context.Background(), "appt-1")
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}
	if appt.UserID != "user-1" || appt.Time != "1:05 PM" || !appt.Telemedicine {
		t.Fatalf("unexpected appointment: %+v", appt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetAppointmentNotFound(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("FROM appointments WHERE id").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	if _, err := s.GetAppointment(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAppointmentMalformedIDIsNotFound(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("FROM appointments WHERE id").
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})

	if _, err := s.GetAppointment(context.Background(), "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAppointmentWrapsDriverErrors(t *testing.T) {
	mock := newMock(t)
	s := New(mock)
	boom := errors.New("connection reset")

	mock.ExpectQuery("FROM appointments WHERE id").
		WithArgs("appt-1").
		WillReturnError(boom)

	_, err := s.GetAppointment(context.Background(), "appt-1")
	if !errors.Is(err, boom) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestListAppointments(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("ORDER BY appointment_date").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows(appointmentCols).
			AddRow("a1", "user-1", "Dr. Reyes", "", "2024-03-10", "9:00 AM", "Checkup", "scheduled", false).
			AddRow("a2", "user-1", "Dr. Okafor", "Dermatology", "2024-03-12", "11:45 PM", "Consult", "scheduled", true))

	appts, err := s.ListAppointments(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(appts) != 2 || appts[0].ID != "a1" || appts[1].DoctorSpecialty != "Dermatology" {
		t.Fatalf("unexpected list: %+v", appts)
	}
}

func TestRescheduleAppointment(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectExec("UPDATE appointments").
		WithArgs("a1", "user-1", "2024-03-11", "2:30 PM").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := s.RescheduleAppointment(context.Background(), "a1", "user-1", "2024-03-11", "2:30 PM"); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRescheduleAppointmentNotOwned(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectExec("UPDATE appointments").
		WithArgs("a1", "intruder", "2024-03-11", "2:30 PM").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.RescheduleAppointment(context.Background(), "a1", "intruder", "2024-03-11", "2:30 PM")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetContactProfile(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("FROM profiles").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "email", "first_name"}).
			AddRow("user-1", "pat@example.com", "Pat"))

	p, err := s.GetContactProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Email != "pat@example.com" || p.FirstName != "Pat" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestGetContactProfileNotFound(t *testing.T) {
	mock := newMock(t)
	s := New(mock)

	mock.ExpectQuery("FROM profiles").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	if _, err := s.GetContactProfile(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConnectRequiresURL(t *testing.T) {
	if _, err := Connect(context.Background(), " ", ""); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

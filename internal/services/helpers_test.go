package services

import (
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/access"
	"github.com/ironforge/gym-admin-backend/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

var (
	adminIdentity = access.Identity{
		SubjectID: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Role:      access.RoleAdministrator,
		Email:     "admin@ironforge.test",
		SessionID: uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"),
	}
	trainerIdentity = access.Identity{
		SubjectID: uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Role:      access.RoleTrainer,
		Email:     "trainer@ironforge.test",
	}
	receptionIdentity = access.Identity{
		SubjectID: uuid.MustParse("33333333-3333-3333-3333-333333333333"),
		Role:      access.RoleReception,
		Email:     "desk@ironforge.test",
	}
	carlosID = uuid.MustParse("44444444-4444-4444-4444-444444444444")
)

func memberIdentity(id uuid.UUID) access.Identity {
	memberID := id
	return access.Identity{
		SubjectID: id,
		Role:      access.RoleMember,
		Email:     "carlos@example.com",
		MemberID:  &memberID,
	}
}

func newMockDB(t *testing.T) (*database.PostgresDB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return &database.PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDeps() Deps {
	return Deps{
		Clock:  FixedClock(testNow),
		Logger: testLogger(),
	}
}

var memberColumnNames = []string{
	"id", "member_number", "name", "email", "phone", "birth_date", "gender", "address", "plan", "status",
	"start_date", "next_payment_date", "weight", "height", "bmi", "emergency_contact", "notes", "medical_notes",
	"photo_url", "password_hash", "created_at", "updated_at",
}

// memberRow returns Carlos as stored, with the given status, next payment date and password hash
func memberRow(id uuid.UUID, status string, nextPayment, passwordHash interface{}) *sqlmock.Rows {
	created := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(memberColumnNames).AddRow(
		id.String(), "GYM-000001", "Carlos Rodríguez", "carlos@example.com", nil, nil, nil, nil, "Monthly", status,
		"2025-01-01", nextPayment, 75.5, 175.0, 24.65, nil, nil, nil,
		nil, passwordHash, created, created,
	)
}

var staffColumnNames = []string{
	"id", "name", "email", "phone", "role", "shift", "status", "hire_date", "password_hash",
	"last_login_at", "created_at", "updated_at",
}

func staffRow(id uuid.UUID, role, status, passwordHash string) *sqlmock.Rows {
	created := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(staffColumnNames).AddRow(
		id.String(), "Ana Torres", "ana@ironforge.test", "+525512345678", role, "Morning", status, nil, passwordHash,
		nil, created, created,
	)
}

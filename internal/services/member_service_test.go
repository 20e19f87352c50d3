package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/ironforge/gym-admin-backend/internal/database"
	"github.com/ironforge/gym-admin-backend/internal/models"
	"github.com/ironforge/gym-admin-backend/internal/storage"
	"github.com/ironforge/gym-admin-backend/pkg/validator"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakePhotos struct {
	url string
	err error
	got uuid.UUID
}

func (f *fakePhotos) UploadMemberPhoto(ctx context.Context, memberID uuid.UUID, r io.Reader) (string, error) {
	f.got = memberID
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func setupMemberTest(t *testing.T, photos PhotoUploader) (*MemberService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	repo := database.NewMemberRepository(db, time.Second)
	return NewMemberService(testDeps(), repo, database.NewSessionRepository(db, time.Second), photos, bcrypt.MinCost), mock
}

func TestMemberService_Create(t *testing.T) {
	t.Run("Enrolls Carlos with derived BMI and status", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM members WHERE member_number = \$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO members").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(testNow, testNow))

		member, err := service.Create(context.Background(), receptionIdentity, map[string]interface{}{
			"name":              "Carlos Rodríguez",
			"email":             "Carlos@Example.com",
			"weight":            75.5,
			"height":            175.0,
			"next_payment_date": "2025-02-28",
		})
		require.NoError(t, err)

		assert.Equal(t, "carlos@example.com", member.Email)
		assert.Equal(t, "Monthly", member.Plan)
		assert.Equal(t, models.MemberStatusActive, member.Status)
		assert.Equal(t, "2025-01-15", member.StartDate.String())
		require.NotNil(t, member.NextPaymentDate)
		assert.Equal(t, "2025-02-28", member.NextPaymentDate.String())
		require.NotNil(t, member.BMI)
		assert.Equal(t, 24.65, *member.BMI)
		require.NotNil(t, member.BMICategory)
		assert.Equal(t, "Normal", *member.BMICategory)
		assert.Regexp(t, `^GYM-\d{6}$`, member.MemberNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid email is rejected before any write", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		_, err := service.Create(context.Background(), receptionIdentity, map[string]interface{}{
			"name":  "Carlos Rodríguez",
			"email": "not-an-email",
		})

		var validationErr *validator.ValidationError
		require.ErrorAs(t, err, &validationErr)
		_, ok := validationErr.Field("email")
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Trainer cannot enroll members", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		_, err := service.Create(context.Background(), trainerIdentity, map[string]interface{}{"name": "x"})

		var authzErr *AuthorizationError
		assert.ErrorAs(t, err, &authzErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Duplicate email is a conflict", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO members").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "members_email_key"})

		_, err := service.Create(context.Background(), adminIdentity, map[string]interface{}{
			"name":  "Carlos Rodríguez",
			"email": "carlos@example.com",
		})

		var conflictErr *ConflictError
		require.ErrorAs(t, err, &conflictErr)
		assert.Equal(t, "email", conflictErr.Field)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Member number is probed until free", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery("SELECT EXISTS").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery("INSERT INTO members").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(testNow, testNow))

		member, err := service.Create(context.Background(), adminIdentity, map[string]interface{}{
			"name":  "Carlos Rodríguez",
			"email": "carlos@example.com",
		})
		require.NoError(t, err)

		base := testNow.UnixMilli()
		assert.Equal(t, (base+1)%1000000, parseMemberNumber(t, member.MemberNumber))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func parseMemberNumber(t *testing.T, number string) int64 {
	t.Helper()
	var n int64
	for _, r := range number[len("GYM-"):] {
		n = n*10 + int64(r-'0')
	}
	return n
}

func TestMemberService_Get(t *testing.T) {
	t.Run("Overdue member reads as Delinquent", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1`).
			WithArgs(carlosID).
			WillReturnRows(memberRow(carlosID, "Active", "2025-01-10", nil))

		member, err := service.Get(context.Background(), adminIdentity, carlosID)
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusDelinquent, member.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing member", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)
		id := uuid.New()

		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(memberColumnNames))

		_, err := service.Get(context.Background(), adminIdentity, id)

		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.Equal(t, "member", notFoundErr.Resource)
		assert.Equal(t, id.String(), notFoundErr.ID)
	})

	t.Run("Members cannot read other members", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		_, err := service.Get(context.Background(), memberIdentity(uuid.New()), carlosID)

		var authzErr *AuthorizationError
		assert.ErrorAs(t, err, &authzErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Storage timeout carries a correlation id", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1`).
			WithArgs(carlosID).
			WillReturnError(errors.New("connection reset by peer"))

		_, err := service.Get(context.Background(), adminIdentity, carlosID)

		var storageErr *StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.NotEmpty(t, storageErr.CorrelationID)
		assert.False(t, storageErr.Timeout)
	})
}

func TestMemberService_List_SelfScope(t *testing.T) {
	service, mock := setupMemberTest(t, nil)

	mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1`).
		WithArgs(carlosID).
		WillReturnRows(memberRow(carlosID, "Active", "2025-02-28", nil))

	members, err := service.List(context.Background(), memberIdentity(carlosID))
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, carlosID, members[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberService_Update(t *testing.T) {
	t.Run("Member cannot change their plan", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		_, err := service.Update(context.Background(), memberIdentity(carlosID), carlosID, map[string]interface{}{
			"plan":  "Annual",
			"phone": "555-0100",
		})

		var authzErr *AuthorizationError
		require.ErrorAs(t, err, &authzErr)
		assert.Contains(t, authzErr.Reason, "plan")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Member updates weight and BMI follows", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1 FOR UPDATE`).
			WithArgs(carlosID).
			WillReturnRows(memberRow(carlosID, "Active", "2025-02-28", nil))
		mock.ExpectQuery("UPDATE members").
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testNow))
		mock.ExpectCommit()

		member, err := service.Update(context.Background(), memberIdentity(carlosID), carlosID, map[string]interface{}{
			"weight": 80.0,
			"plan":   "",
		})
		require.NoError(t, err)
		require.NotNil(t, member.BMI)
		assert.Equal(t, 26.12, *member.BMI)
		assert.Equal(t, "Monthly", member.Plan)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Suspending a member signs them out", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1 FOR UPDATE`).
			WithArgs(carlosID).
			WillReturnRows(memberRow(carlosID, "Active", "2025-02-28", nil))
		mock.ExpectQuery("UPDATE members").
			WithArgs(carlosID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), "Suspended", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testNow))
		mock.ExpectCommit()
		mock.ExpectExec(`UPDATE sessions SET revoked_at = NOW\(\) WHERE subject_id = \$1 AND revoked_at IS NULL`).
			WithArgs(carlosID).
			WillReturnResult(sqlmock.NewResult(0, 2))

		member, err := service.Update(context.Background(), adminIdentity, carlosID, map[string]interface{}{
			"status": "Suspended",
		})
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusSuspended, member.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Reactivating a member leaves sessions alone", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1 FOR UPDATE`).
			WithArgs(carlosID).
			WillReturnRows(memberRow(carlosID, "Suspended", "2025-02-28", nil))
		mock.ExpectQuery("UPDATE members").
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(testNow))
		mock.ExpectCommit()

		member, err := service.Update(context.Background(), adminIdentity, carlosID, map[string]interface{}{
			"status": "Active",
		})
		require.NoError(t, err)
		assert.Equal(t, models.MemberStatusActive, member.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing member rolls the update back", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)
		missing := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1 FOR UPDATE`).
			WithArgs(missing).
			WillReturnRows(sqlmock.NewRows(memberColumnNames))
		mock.ExpectRollback()

		_, err := service.Update(context.Background(), adminIdentity, missing, map[string]interface{}{
			"status": "Suspended",
		})

		var notFoundErr *NotFoundError
		require.ErrorAs(t, err, &notFoundErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Next payment date cannot be edited directly", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		_, err := service.Update(context.Background(), adminIdentity, carlosID, map[string]interface{}{
			"next_payment_date": "2026-01-01",
		})

		var validationErr *validator.ValidationError
		require.ErrorAs(t, err, &validationErr)
		_, ok := validationErr.Field("next_payment_date")
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemberService_Delete(t *testing.T) {
	t.Run("Deleted member is signed out", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		mock.ExpectExec(`DELETE FROM members WHERE id = \$1`).
			WithArgs(carlosID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE sessions SET revoked_at = NOW\(\) WHERE subject_id = \$1 AND revoked_at IS NULL`).
			WithArgs(carlosID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, service.Delete(context.Background(), adminIdentity, carlosID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	service, mock := setupMemberTest(t, nil)

	mock.ExpectExec(`DELETE FROM members WHERE id = \$1`).
		WithArgs(carlosID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.Delete(context.Background(), adminIdentity, carlosID)

	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)

	err = service.Delete(context.Background(), receptionIdentity, carlosID)
	var authzErr *AuthorizationError
	assert.ErrorAs(t, err, &authzErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberService_UploadPhoto(t *testing.T) {
	t.Run("Storage disabled", func(t *testing.T) {
		service, mock := setupMemberTest(t, nil)

		_, err := service.UploadPhoto(context.Background(), adminIdentity, carlosID, bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrStorageDisabled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Stores the uploaded URL", func(t *testing.T) {
		photos := &fakePhotos{url: "https://cdn.example.com/members/photo.jpg"}
		service, mock := setupMemberTest(t, photos)

		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1`).
			WithArgs(carlosID).
			WillReturnRows(memberRow(carlosID, "Active", "2025-02-28", nil))
		mock.ExpectExec(`UPDATE members SET photo_url`).
			WithArgs(carlosID, photos.url).
			WillReturnResult(sqlmock.NewResult(0, 1))

		member, err := service.UploadPhoto(context.Background(), memberIdentity(carlosID), carlosID, bytes.NewReader([]byte("img")))
		require.NoError(t, err)
		require.NotNil(t, member.PhotoURL)
		assert.Equal(t, photos.url, *member.PhotoURL)
		assert.Equal(t, carlosID, photos.got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Undecodable image", func(t *testing.T) {
		photos := &fakePhotos{err: storage.ErrInvalidImage}
		service, mock := setupMemberTest(t, photos)

		mock.ExpectQuery(`SELECT (.+) FROM members WHERE id = \$1`).
			WithArgs(carlosID).
			WillReturnRows(memberRow(carlosID, "Active", "2025-02-28", nil))

		_, err := service.UploadPhoto(context.Background(), adminIdentity, carlosID, bytes.NewReader([]byte("nope")))

		var validationErr *validator.ValidationError
		require.ErrorAs(t, err, &validationErr)
		_, ok := validationErr.Field("photo")
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

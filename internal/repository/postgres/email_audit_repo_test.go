package postgres

import (
	"context"
	"database/sql"
	"testing"

	"forumregistrations/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailAuditRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO email_audit_log \(attendee_id, email_type, recipient_email, recipient_name, status, sent_at\)`).
		WithArgs("att-1", "approved", "ann@acme.com", "Ann Lee", "sent", testTime).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("log-1", testTime))

	repo := NewEmailAuditRepository(db)
	e := &domain.EmailAuditEntry{
		AttendeeID:     "att-1",
		EmailType:      domain.StageApproved,
		RecipientEmail: "ann@acme.com",
		RecipientName:  "Ann Lee",
		Status:         domain.EmailStatusSent,
		SentAt:         testTime,
	}
	require.NoError(t, repo.Create(context.Background(), e))
	assert.Equal(t, "log-1", e.ID)
	assert.Equal(t, testTime, e.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailAuditRepository_ExistsSent(t *testing.T) {
	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    bool
		wantErr bool
	}{
		{
			name: "sent entry exists",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).
					WithArgs("att-1", "denied").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "no entry",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`status = 'sent'`).
					WithArgs("att-1", "denied").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT EXISTS`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEmailAuditRepository(db)
			got, err := repo.ExistsSent(context.Background(), "att-1", domain.StageDenied)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEmailAuditRepository_ListByAttendee(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "attendee_id", "email_type", "recipient_email", "recipient_name", "status", "sent_at", "created_at"}
	mock.ExpectQuery(`FROM email_audit_log\s+WHERE attendee_id = \$1\s+ORDER BY sent_at DESC`).
		WithArgs("att-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("log-2", "att-1", "denied", "a@x.com", "A", "sent", testTime, testTime).
			AddRow("log-1", "att-1", "waitlisted", "a@x.com", "A", "sent", testTime, testTime))

	repo := NewEmailAuditRepository(db)
	entries, err := repo.ListByAttendee(context.Background(), "att-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.StageDenied, entries[0].EmailType)
	assert.Equal(t, domain.EmailStatusSent, entries[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

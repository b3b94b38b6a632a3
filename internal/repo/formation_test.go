package repo

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func formationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "status",
		"scheduled_publish_at", "scheduled_timezone", "published_at",
		"created_at", "updated_at",
	})
}

func TestFormationRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	sched := now.Add(time.Hour)
	mock.ExpectQuery(`SELECT id, title, description, status`).
		WithArgs(50, 0).
		WillReturnRows(formationRows().
			AddRow(2, "Intro HPLC", "chromatography basics", "scheduled", sched, "America/Port-au-Prince", nil, now, now).
			AddRow(1, "Lab safety", "", "draft", nil, "", nil, now.Add(-time.Hour), now.Add(-time.Hour)))

	r := NewFormationRepo(db)
	list, err := r.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list))
	}
	if list[0].ID != 2 || list[0].Status != "scheduled" || list[0].ScheduledPublishAt == nil || list[0].ScheduledTimezone != "America/Port-au-Prince" {
		t.Errorf("unexpected first item: %+v", list[0])
	}
	if list[1].ID != 1 || list[1].Status != "draft" || list[1].ScheduledPublishAt != nil {
		t.Errorf("unexpected second item: %+v", list[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFormationRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, title, description, status`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	r := NewFormationRepo(db)
	f, err := r.GetByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if f != nil {
		t.Errorf("expected nil, got %+v", f)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFormationRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO formations`).
		WithArgs("Intro HPLC", "chromatography basics").
		WillReturnRows(formationRows().
			AddRow(1, "Intro HPLC", "chromatography basics", "draft", nil, "", nil, now, now))

	r := NewFormationRepo(db)
	f, err := r.Create(context.Background(), "Intro HPLC", "chromatography basics")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.ID != 1 || f.Status != "draft" {
		t.Errorf("unexpected formation: %+v", f)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFormationRepo_Schedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	now := time.Now()
	mock.ExpectQuery(`UPDATE formations`).
		WithArgs(at, "America/Port-au-Prince", 1).
		WillReturnRows(formationRows().
			AddRow(1, "Intro HPLC", "", "scheduled", at, "America/Port-au-Prince", nil, now, now))

	r := NewFormationRepo(db)
	f, err := r.Schedule(context.Background(), 1, at, "America/Port-au-Prince")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if f == nil || f.Status != "scheduled" || f.ScheduledPublishAt == nil || !f.ScheduledPublishAt.Equal(at) {
		t.Errorf("unexpected formation: %+v", f)
	}
	if f.PublishedAt != nil {
		t.Errorf("published_at should be cleared on schedule: %+v", f)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFormationRepo_Schedule_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 2, 24, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`UPDATE formations`).
		WithArgs(at, "UTC", 42).
		WillReturnError(sql.ErrNoRows)

	r := NewFormationRepo(db)
	f, err := r.Schedule(context.Background(), 42, at, "UTC")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if f != nil {
		t.Errorf("expected nil, got %+v", f)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFormationRepo_Unschedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE formations`).
		WithArgs("draft", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewFormationRepo(db)
	if err := r.Unschedule(context.Background(), 1, "draft"); err != nil {
		t.Fatalf("Unschedule: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFormationRepo_ListDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 2, 24, 10, 0, 1, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, title, scheduled_publish_at`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "scheduled_publish_at"}).
			AddRow(3, "earliest", now.Add(-2*time.Hour)).
			AddRow(1, "later", now.Add(-time.Minute)))

	r := NewFormationRepo(db)
	due, err := r.ListDue(context.Background(), now)
	if err != nil {
		t.Fatalf("ListDue: %v", err)
	}
	if len(due) != 2 {
		t.Fatalf("expected 2 due, got %d", len(due))
	}
	if due[0].ID != 3 || due[0].Title != "earliest" {
		t.Errorf("unexpected ordering: %+v", due)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFormationRepo_Publish_WinsTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 2, 24, 10, 0, 1, 0, time.UTC)
	mock.ExpectExec(`UPDATE formations`).
		WithArgs(at, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewFormationRepo(db)
	won, err := r.Publish(context.Background(), 1, at)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !won {
		t.Error("expected to win the transition")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestFormationRepo_Publish_RacedIsNoOp(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 2, 24, 10, 0, 1, 0, time.UTC)
	// Another invoker already flipped the row; the status predicate matches nothing.
	mock.ExpectExec(`UPDATE formations`).
		WithArgs(at, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewFormationRepo(db)
	won, err := r.Publish(context.Background(), 1, at)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if won {
		t.Error("raced publish must be a no-op")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

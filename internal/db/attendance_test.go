package db_test

import (
	"context"
	"testing"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/testutil/testdb"
)

func TestAttendanceDuplicateInsertIsNoop(t *testing.T) {
	database := testdb.Start(t)
	ctx := context.Background()

	rec := models.AttendanceRecord{
		ID: "a1", StudentID: "s1", Timestamp: 1000,
		Status: models.StatusPresent, Type: models.TypeHomeroom, AcademicPeriod: "Q1",
	}
	if err := db.InsertAttendance(ctx, database, rec); err != nil {
		t.Fatal(err)
	}

	// Same identity under a different id, as a pull from another device
	// would produce it.
	dup := rec
	dup.ID = "a2"
	dup.Status = models.StatusLate
	if err := db.InsertAttendance(ctx, database, dup); err != nil {
		t.Fatal(err)
	}

	n, err := db.CountAttendance(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("got %d records, want 1", n)
	}
	recs, err := db.ListAttendanceByStudent(ctx, database, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if recs[0].Status != models.StatusPresent {
		t.Fatalf("first write should win, got status %q", recs[0].Status)
	}
}

func TestUnsyncedAndMarkSynced(t *testing.T) {
	database := testdb.Start(t)
	ctx := context.Background()

	for i, synced := range []bool{false, true, false} {
		rec := models.AttendanceRecord{
			ID: string(rune('a' + i)), StudentID: "s1", Timestamp: int64(1000 + i),
			Status: models.StatusPresent, Type: models.TypeHomeroom, AcademicPeriod: "Q1", Synced: synced,
		}
		if err := db.InsertAttendance(ctx, database, rec); err != nil {
			t.Fatal(err)
		}
	}

	unsynced, err := db.UnsyncedAttendance(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(unsynced) != 2 {
		t.Fatalf("got %d unsynced, want 2", len(unsynced))
	}

	if err := db.MarkAttendanceSynced(ctx, database, []string{unsynced[0].ID, unsynced[1].ID}); err != nil {
		t.Fatal(err)
	}
	unsynced, err = db.UnsyncedAttendance(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(unsynced) != 0 {
		t.Fatalf("got %d unsynced after mark, want 0", len(unsynced))
	}
}

func TestListAttendanceBySubjectInRange(t *testing.T) {
	database := testdb.Start(t)
	ctx := context.Background()
	math := "Math"

	recs := []models.AttendanceRecord{
		{ID: "a", StudentID: "s1", Timestamp: 100, Status: models.StatusPresent, Type: models.TypeHomeroom, AcademicPeriod: "Q1"},
		{ID: "b", StudentID: "s2", Timestamp: 200, Status: models.StatusPresent, Type: models.TypeSubject, Subject: &math, AcademicPeriod: "Q1"},
		{ID: "c", StudentID: "s3", Timestamp: 900, Status: models.StatusPresent, Type: models.TypeSubject, Subject: &math, AcademicPeriod: "Q1"},
	}
	for _, rec := range recs {
		if err := db.InsertAttendance(ctx, database, rec); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.ListAttendanceBySubjectInRange(ctx, database, "Math", 0, 500)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("subject filter: got %+v", got)
	}

	// Empty subject selects homeroom records only.
	got, err = db.ListAttendanceBySubjectInRange(ctx, database, "", 0, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("homeroom filter: got %+v", got)
	}

	has, err := db.HasAttendanceInRange(ctx, database, "s3", 0, 500)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Fatal("s3 has no record before 500")
	}
}

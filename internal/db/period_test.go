package db_test

import (
	"context"
	"testing"

	"github.com/ciiiidung/AttendifyPlus-Releases/internal/db"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/models"
	"github.com/ciiiidung/AttendifyPlus-Releases/internal/testutil/testdb"
)

func TestSchoolPeriodSingleton(t *testing.T) {
	database := testdb.Start(t)
	ctx := context.Background()

	got, err := db.GetSchoolPeriod(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("unset calendar should be nil, got %+v", got)
	}

	p := models.SchoolPeriod{SchoolYear: "2025-2026", Q1Start: 100, Q1End: 200}
	if err := db.UpsertSchoolPeriod(ctx, database, p); err != nil {
		t.Fatal(err)
	}
	p.Q1End = 300
	if err := db.UpsertSchoolPeriod(ctx, database, p); err != nil {
		t.Fatal(err)
	}

	got, err = db.GetSchoolPeriod(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Q1End != 300 {
		t.Fatalf("singleton not overwritten: %+v", got)
	}
}

func TestSchoolEventsOnDay(t *testing.T) {
	database := testdb.Start(t)
	ctx := context.Background()

	day := int64(1_700_000_000_000)
	events := []models.SchoolEvent{
		{ID: "e1", Date: day, Title: "Typhoon", Type: models.EventSuspension, IsNoClass: true},
		{ID: "e2", Date: day, Title: "Evening fair", Type: models.EventActivity},
		{ID: "e3", Date: day + 86_400_000, Title: "Next day", Type: models.EventHoliday, IsNoClass: true},
	}
	for _, e := range events {
		if err := db.UpsertSchoolEvent(ctx, database, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.EventsOnDay(ctx, database, day)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events on day, want 2", len(got))
	}

	if err := db.DeleteSchoolEvent(ctx, database, "e1"); err != nil {
		t.Fatal(err)
	}
	remaining, _ := db.ListSchoolEvents(ctx, database)
	if len(remaining) != 2 {
		t.Fatalf("got %d events after delete", len(remaining))
	}
}

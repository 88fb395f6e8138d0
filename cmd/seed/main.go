// seed inserts development sample data for local testing: go run ./cmd/seed.
// Idempotent: entry inserts are keyed by fixed ids and skip rows that already exist.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"legal-case-platform/backend/internal/config"
	"legal-case-platform/backend/internal/db"
	"legal-case-platform/backend/internal/timesheet/domain"
	"legal-case-platform/backend/internal/timesheet/repository"
)

const (
	devLawyerID    = "dev-lawyer-001"
	devParalegalID = "dev-paralegal-001"
	devCaseID      = "dev-case-001"
	devCase2ID     = "dev-case-002"
	devTaskID      = "dev-task-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	repo := repository.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := repo.GetByID(ctx, "00000000-0000-4000-8000-000000000001")
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied. Skipping.")
		os.Exit(0)
	}

	now := time.Now().UTC()
	day := now.Truncate(24 * time.Hour)

	entries := []domain.TimesheetEntry{
		{
			ID:          "00000000-0000-4000-8000-000000000001",
			UserID:      devLawyerID,
			CaseID:      devCaseID,
			TaskID:      devTaskID,
			StartTime:   day.Add(-48 * time.Hour).Add(9 * time.Hour),
			EndTime:     day.Add(-48 * time.Hour).Add(11 * time.Hour),
			Billable:    true,
			HourlyRate:  250,
			Description: "Draft motion to dismiss",
		},
		{
			ID:          "00000000-0000-4000-8000-000000000002",
			UserID:      devLawyerID,
			CaseID:      devCase2ID,
			StartTime:   day.Add(-24 * time.Hour).Add(14 * time.Hour),
			EndTime:     day.Add(-24 * time.Hour).Add(15*time.Hour + 30*time.Minute),
			Billable:    true,
			HourlyRate:  250,
			Description: "Client call and follow-up notes",
		},
		{
			ID:          "00000000-0000-4000-8000-000000000003",
			UserID:      devParalegalID,
			CaseID:      devCaseID,
			TaskID:      devTaskID,
			StartTime:   day.Add(10 * time.Hour),
			EndTime:     day.Add(12 * time.Hour),
			Billable:    false,
			Description: "Document indexing",
		},
	}

	for i := range entries {
		e := &entries[i]
		elapsed := e.EndTime.Sub(e.StartTime)
		e.DurationMinutes = domain.DurationMinutes(elapsed)
		e.TotalAmount = domain.BillableAmount(e.DurationMinutes, e.HourlyRate)
		e.CreatedAt = now
		e.CreatedBy = e.UserID
		if err := repo.Create(ctx, e); err != nil {
			log.Fatalf("create entry %s: %v", e.ID, err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Seeded %d timesheet entries for users %s, %s\n", len(entries), devLawyerID, devParalegalID)
}

// Command seedreviewer creates back-office reviewer accounts from an Excel roster.
// The first sheet holds a header row followed by email, full name, role and
// initial password columns. Rows whose email already exists are skipped.
// Usage: go run ./cmd/seedreviewer reviewers.xlsx
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"formdesk/internal/config"
	"formdesk/internal/domain"
	"formdesk/internal/port"
	"formdesk/internal/repository/firestore"
	"formdesk/internal/repository/postgres"
	"formdesk/internal/service"
)

type rosterRow struct {
	line     int
	email    string
	fullName string
	role     domain.ReviewerRole
	password string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: seedreviewer <roster.xlsx>")
		os.Exit(1)
	}
	if err := run(context.Background(), os.Args[1]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, path string) error {
	rows, err := readRoster(path)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, closeFn, err := openReviewerRepo(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	svc := service.NewReviewerService(repo)
	var created, skipped int
	for _, r := range rows {
		_, err := svc.Create(ctx, service.CreateReviewerInput{
			Email:    r.email,
			Password: r.password,
			FullName: r.fullName,
			Role:     r.role,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			skipped++
			log.Printf("row %d: %s already exists, skipping", r.line, r.email)
		case err != nil:
			return fmt.Errorf("row %d (%s): %w", r.line, r.email, err)
		default:
			created++
		}
	}

	log.Printf("reviewers created: %d, skipped: %d", created, skipped)
	return nil
}

func openReviewerRepo(cfg *config.Config) (port.ReviewerRepository, func() error, error) {
	if cfg.Store.Provider == "firestore" {
		p := firestore.NewProvider(cfg.Store)
		return firestore.NewReviewerRepo(p), p.Close, nil
	}
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return postgres.NewReviewerRepo(db), db.Close, nil
}

// readRoster parses the first sheet. Row 1 is the header.
func readRoster(path string) ([]rosterRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}

	var out []rosterRow
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		email := strings.TrimSpace(cellVal(row, 0))
		if email == "" {
			continue
		}
		r := rosterRow{
			line:     i + 1,
			email:    email,
			fullName: strings.TrimSpace(cellVal(row, 1)),
			role:     domain.ReviewerRole(strings.ToLower(strings.TrimSpace(cellVal(row, 2)))),
			password: cellVal(row, 3),
		}
		if r.role == "" {
			r.role = domain.RoleReviewer
		}
		if !domain.ValidReviewerRoles[r.role] {
			return nil, fmt.Errorf("row %d: unknown role %q", r.line, r.role)
		}
		if len(r.password) < 8 {
			return nil, fmt.Errorf("row %d: password must be at least 8 characters", r.line)
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no reviewer rows in %s", path)
	}
	return out, nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

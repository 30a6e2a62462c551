// Command dbtool applies the SQL migrations and optionally seeds demo
// data. Usage:
//
//	dbtool migrate
//	dbtool seed
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/adesina-femi/staffcore/internal/config"
	"github.com/adesina-femi/staffcore/pkg/uuidv7"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	migrationsDir := flag.String("migrations", "migrations", "path to migrations directory")
	flag.Parse()

	log := logrus.New()

	if flag.NArg() != 1 {
		log.Fatal("usage: dbtool [-config path] [-migrations dir] migrate|seed")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("load config")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect")
	}
	defer func() { _ = conn.Close(ctx) }()

	switch flag.Arg(0) {
	case "migrate":
		if err := migrate(ctx, conn, *migrationsDir, log); err != nil {
			log.WithError(err).Fatal("migrate")
		}
	case "seed":
		if err := seed(ctx, conn, log); err != nil {
			log.WithError(err).Fatal("seed")
		}
	default:
		log.Fatalf("unknown command %q", flag.Arg(0))
	}
}

func migrate(ctx context.Context, conn *pgx.Conn, dir string, log *logrus.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		sql, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		log.WithField("migration", name).Info("applied")
	}
	return nil
}

func seed(ctx context.Context, conn *pgx.Conn, log *logrus.Logger) error {
	staffID, err := uuidv7.NewString()
	if err != nil {
		return err
	}
	coopID, err := uuidv7.NewString()
	if err != nil {
		return err
	}
	ruleID, err := uuidv7.NewString()
	if err != nil {
		return err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, `
INSERT INTO staff (id, staff_number, first_name, last_name, email, grade_level, step, employment_status, hire_date)
VALUES ($1::uuid, 'FCDA/0001', 'Amina', 'Bello', 'amina.bello@example.gov.ng', 8, 4, 'active', '2015-09-14')
ON CONFLICT (staff_number) DO NOTHING
`, staffID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO cooperatives (id, name, contact_person, phone, default_interest_rate, is_active)
VALUES ($1::uuid, 'Unity Multipurpose Cooperative', 'Ngozi Eze', '+2348012345678', 10, true)
ON CONFLICT (name) DO NOTHING
`, coopID); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO allowance_rules (id, name, kind, value, is_active)
VALUES ($1::uuid, 'Housing', 'percentage', 20, true)
ON CONFLICT (name) DO NOTHING
`, ruleID); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Info("seed data inserted")
	return nil
}

package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"rentdesk-backend/internal/config"
	"rentdesk-backend/internal/domain"
	"rentdesk-backend/internal/logger"
	"rentdesk-backend/internal/repository/postgres"
	"rentdesk-backend/internal/security"
)

// Vehicle is one fleet entry. Prices are decimal strings; an empty price means the tier is not offered.
type Vehicle struct {
	BranchID      int32  `yaml:"branch_id"`
	Name          string `yaml:"name"`
	PlateNumber   string `yaml:"plate_number"`
	PricePerHour  string `yaml:"price_per_hour"`
	PricePerDay   string `yaml:"price_per_day"`
	PricePerWeek  string `yaml:"price_per_week"`
	PricePerMonth string `yaml:"price_per_month"`
	PricePerYear  string `yaml:"price_per_year"`
	LateFeePerDay string `yaml:"late_fee_per_day"`
}

// Staff receives a development access token after seeding.
type Staff struct {
	UserID      int32    `yaml:"user_id"`
	Role        string   `yaml:"role"`
	Permissions []string `yaml:"permissions"`
}

type SetupData struct {
	ConfigFile string    `yaml:"config_file"`
	TenantID   int32     `yaml:"tenant_id"`
	Vehicles   []Vehicle `yaml:"vehicles"`
	Staff      []Staff   `yaml:"staff"`
}

func main() {
	setupFile := flag.String("fleet", "config/fleet.dev.yaml", "Path to the fleet setup file")
	flag.Parse()

	setupData, err := readSetupFile(resolvePath(*setupFile))
	if err != nil {
		log.Fatalf("Failed to read setup file: %v", err)
	}

	cfg, err := config.Load(resolvePath(setupData.ConfigFile))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)

	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Connected to database", "host", cfg.Database.Host, "database", cfg.Database.Database)

	ctx := context.Background()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	if err := populateFleet(ctx, db, setupData); err != nil {
		log.Fatalf("Failed to populate fleet: %v", err)
	}

	tokens := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	for _, s := range setupData.Staff {
		tok, err := tokens.GenerateAccessToken(security.Principal{
			UserID:      s.UserID,
			TenantID:    setupData.TenantID,
			Role:        s.Role,
			Permissions: s.Permissions,
		})
		if err != nil {
			log.Fatalf("Failed to issue token for user %d: %v", s.UserID, err)
		}
		fmt.Printf("user %d (%s): %s\n", s.UserID, s.Role, tok)
	}

	logger.Info("Fleet data successfully populated", "tenant_id", setupData.TenantID, "vehicles", len(setupData.Vehicles))
}

func readSetupFile(filename string) (*SetupData, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var setupData SetupData
	if err := yaml.Unmarshal(data, &setupData); err != nil {
		return nil, err
	}
	if setupData.TenantID <= 0 {
		return nil, fmt.Errorf("tenant_id must be positive")
	}
	if setupData.ConfigFile == "" {
		setupData.ConfigFile = "config/config.dev.yaml"
	}

	return &setupData, nil
}

// resolvePath tries the path as given, then relative to the project root.
func resolvePath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	fullPath := filepath.Join(findProjectRoot(), path)
	if _, err := os.Stat(fullPath); err == nil {
		return fullPath
	}
	return path
}

func findProjectRoot() string {
	// Look for go.mod to identify project root
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "."
}

func (v Vehicle) rates() (domain.RateCard, decimal.Decimal, error) {
	parse := func(field, raw string) (decimal.Decimal, error) {
		if raw == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%s %q: %w", field, raw, err)
		}
		return d, nil
	}

	var rc domain.RateCard
	var err error
	if rc.PricePerHour, err = parse("price_per_hour", v.PricePerHour); err != nil {
		return rc, decimal.Zero, err
	}
	if rc.PricePerDay, err = parse("price_per_day", v.PricePerDay); err != nil {
		return rc, decimal.Zero, err
	}
	if rc.PricePerWeek, err = parse("price_per_week", v.PricePerWeek); err != nil {
		return rc, decimal.Zero, err
	}
	if rc.PricePerMonth, err = parse("price_per_month", v.PricePerMonth); err != nil {
		return rc, decimal.Zero, err
	}
	if rc.PricePerYear, err = parse("price_per_year", v.PricePerYear); err != nil {
		return rc, decimal.Zero, err
	}
	lateFee, err := parse("late_fee_per_day", v.LateFeePerDay)
	if err != nil {
		return rc, decimal.Zero, err
	}
	if err := rc.Validate(); err != nil {
		return rc, decimal.Zero, err
	}
	if err := domain.NonNegative("late_fee_per_day", lateFee); err != nil {
		return rc, decimal.Zero, err
	}
	return rc, lateFee, nil
}

func populateFleet(ctx context.Context, db *sql.DB, data *SetupData) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, v := range data.Vehicles {
		logger.Info("Creating vehicle", "n", i+1, "of", len(data.Vehicles), "name", v.Name, "plate", v.PlateNumber)

		rc, lateFee, err := v.rates()
		if err != nil {
			return fmt.Errorf("vehicle %s: %w", v.Name, err)
		}

		var vehicleID int32
		err = tx.QueryRowContext(ctx, `
			INSERT INTO vehicles (tenant_id, branch_id, name, plate_number,
			                      price_per_hour, price_per_day, price_per_week, price_per_month, price_per_year,
			                      late_fee_per_day, created_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (tenant_id, plate_number) DO UPDATE
			SET price_per_hour = EXCLUDED.price_per_hour,
			    price_per_day = EXCLUDED.price_per_day,
			    price_per_week = EXCLUDED.price_per_week,
			    price_per_month = EXCLUDED.price_per_month,
			    price_per_year = EXCLUDED.price_per_year,
			    late_fee_per_day = EXCLUDED.late_fee_per_day
			RETURNING id
		`,
			data.TenantID, v.BranchID, v.Name, v.PlateNumber,
			rc.PricePerHour, rc.PricePerDay, rc.PricePerWeek, rc.PricePerMonth, rc.PricePerYear,
			lateFee, time.Now().UTC(),
		).Scan(&vehicleID)
		if err != nil {
			return fmt.Errorf("failed to create vehicle %s: %w", v.Name, err)
		}
		logger.Info("Vehicle ready", "id", vehicleID, "name", v.Name)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

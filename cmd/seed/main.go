// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/auth"
	"stockroom/internal/domain/catalogs/category"
	"stockroom/internal/domain/catalogs/customer"
	"stockroom/internal/domain/catalogs/paymode"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/domain/catalogs/supplier"
	"stockroom/internal/domain/catalogs/unit"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/auth_repo"
	"stockroom/internal/infrastructure/storage/postgres/catalog_repo"
	"stockroom/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txm, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, txm, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding complete")
}

// seedAdminUser creates the initial admin account if it does not exist.
// Password comes from ADMIN_PASSWORD, defaulting to a development value.
func seedAdminUser(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	repo := auth_repo.NewUserRepo(txm)

	email := getEnv("ADMIN_EMAIL", "admin@stockroom.local")
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		log.Infow("admin user already exists", "email", email)
		return nil
	} else if !apperror.IsNotFound(err) {
		return err
	}

	password := getEnv("ADMIN_PASSWORD", "admin12345")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := auth.NewUser(email, string(hash))
	admin.FirstName = "Admin"
	admin.Role = auth.RoleAdmin

	if err := repo.Create(ctx, admin); err != nil {
		return err
	}

	log.Infow("admin user created", "email", email)
	return nil
}

// seedDemoData creates a minimal catalog for local development.
func seedDemoData(ctx context.Context, txm *postgres.TxManager, log *logger.Logger) error {
	unitRepo := catalog_repo.NewUnitRepo(txm)

	pcs := unit.NewUnit("UNIT-001", "Piece", "pcs")
	box := unit.NewUnit("UNIT-002", "Box", "box")
	kg := unit.NewUnit("UNIT-003", "Kilogram", "kg")

	for _, u := range []*unit.Unit{pcs, box, kg} {
		if err := createIfMissing(ctx, log, "unit", u.Code, func() error {
			return unitRepo.Create(ctx, u)
		}, func() (id.ID, error) {
			existing, err := unitRepo.GetByCode(ctx, u.Code)
			if err != nil {
				return id.Nil(), err
			}
			u.ID = existing.ID
			return existing.ID, nil
		}); err != nil {
			return err
		}
	}

	categoryRepo := catalog_repo.NewCategoryRepo(txm)
	general := category.NewCategory("CAT-001", "General goods")
	if err := createIfMissing(ctx, log, "category", general.Code, func() error {
		return categoryRepo.Create(ctx, general)
	}, func() (id.ID, error) {
		existing, err := categoryRepo.GetByCode(ctx, general.Code)
		if err != nil {
			return id.Nil(), err
		}
		general.ID = existing.ID
		return existing.ID, nil
	}); err != nil {
		return err
	}

	productRepo := catalog_repo.NewProductRepo(txm)
	demoProducts := []*product.Product{
		newDemoProduct("PRD-001", "Bottled Water 0.5L", pcs.ID, box.ID, 24, "1.50"),
		newDemoProduct("PRD-002", "Rice", kg.ID, id.Nil(), 0, "2.20"),
		newDemoProduct("PRD-003", "Notebook A5", pcs.ID, box.ID, 10, "3.00"),
	}
	for _, p := range demoProducts {
		p.CategoryID = &general.ID
		if err := createIfMissing(ctx, log, "product", p.Code, func() error {
			return productRepo.Create(ctx, p)
		}, nil); err != nil {
			return err
		}
	}

	customerRepo := catalog_repo.NewCustomerRepo(txm)
	if err := createIfMissing(ctx, log, "customer", "CUS-001", func() error {
		return customerRepo.Create(ctx, customer.NewCustomer("CUS-001", "Walk-in customer"))
	}, nil); err != nil {
		return err
	}

	supplierRepo := catalog_repo.NewSupplierRepo(txm)
	if err := createIfMissing(ctx, log, "supplier", "SUP-001", func() error {
		return supplierRepo.Create(ctx, supplier.NewSupplier("SUP-001", "Main supplier"))
	}, nil); err != nil {
		return err
	}

	payModeRepo := catalog_repo.NewPayModeRepo(txm)
	for _, pm := range []*paymode.PayMode{
		paymode.NewPayMode("PAY-001", "Cash"),
		paymode.NewPayMode("PAY-002", "Card"),
	} {
		if err := createIfMissing(ctx, log, "pay mode", pm.Code, func() error {
			return payModeRepo.Create(ctx, pm)
		}, nil); err != nil {
			return err
		}
	}

	return nil
}

func newDemoProduct(code, name string, baseUnitID, altUnitID id.ID, factor int64, price string) *product.Product {
	p := product.NewProduct(code, name, baseUnitID)
	if !id.IsNil(altUnitID) {
		p.AltUnitID = &altUnitID
		p.ConversionFactor = factor
	}
	p.UnitPrice = types.MustMoney(price)
	p.ReorderThreshold = types.NewQuantityFromInt(10)
	return p
}

// createIfMissing runs create and tolerates duplicates so the tool stays
// re-runnable. onExists, when set, lets the caller recover the existing ID.
func createIfMissing(ctx context.Context, log *logger.Logger, kind, code string, create func() error, onExists func() (id.ID, error)) error {
	err := create()
	if err == nil {
		log.Infow(kind+" created", "code", code)
		return nil
	}

	if apperror.IsCode(err, apperror.CodeDuplicate) {
		log.Infow(kind+" already exists", "code", code)
		if onExists != nil {
			if _, err := onExists(); err != nil {
				return err
			}
		}
		return nil
	}

	return err
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

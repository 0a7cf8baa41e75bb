//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/daeho/careops/internal/auth"
	"github.com/daeho/careops/internal/database"
	"github.com/daeho/careops/internal/database/models"
	"github.com/daeho/careops/internal/rental"
	"github.com/daeho/careops/pkg/config"
	"github.com/daeho/careops/pkg/crypto"
	"github.com/daeho/careops/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Create owner account
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService)

	email := os.Getenv("OWNER_EMAIL")
	password := os.Getenv("OWNER_PASSWORD")
	name := os.Getenv("OWNER_NAME")

	if email == "" {
		email = "owner@example.com"
	}
	if password == "" {
		password = "owner123!"
	}
	if name == "" {
		name = "Owner"
	}

	resp, err := authService.Register(context.Background(), auth.RegisterInput{
		Email:     email,
		Password:  password,
		Name:      name,
		OrgName:   "Hansarang Welfare Rental",
		BizNumber: "123-45-67890",
	})

	if err != nil {
		if err == auth.ErrUserExists {
			fmt.Printf("Owner already exists: %s\n", email)
			return
		}
		log.Fatalf("failed to create owner: %v", err)
	}

	orgID := resp.User.OrganizationID
	ctx := context.Background()

	encryptor, err := crypto.NewEncryptor(cfg.Encryption.Key)
	if err != nil {
		log.Fatalf("failed to create encryptor: %v", err)
	}
	rentalService := rental.NewService(db, encryptor, logger)

	// Catalog
	products := []models.Product{
		{Code: "WS-BED-001", Name: "Electric Care Bed", Price: 250_000, Category: "bed", DurabilityYears: 10},
		{Code: "WS-WCH-001", Name: "Standard Wheelchair", Price: 120_000, Category: "wheelchair", DurabilityYears: 5},
		{Code: "WS-MAT-001", Name: "Pressure Relief Mattress", Price: 80_000, Category: "mattress", DurabilityYears: 3},
		{Code: "WS-WLK-001", Name: "Walker", Price: 40_000, Category: "walker", DurabilityYears: 5},
	}
	for i := range products {
		if err := db.Where("code = ?", products[i].Code).FirstOrCreate(&products[i]).Error; err != nil {
			log.Fatalf("failed to seed product %s: %v", products[i].Code, err)
		}
	}

	// A couple of recipients
	expiry := time.Now().AddDate(1, 0, 0)
	recipients := []rental.CreateRecipientInput{
		{Name: "Kim Yeonghee", LtcNumber: "L1000000001", CopayRate: 15, ExpiryDate: &expiry},
		{Name: "Park Cheolsu", LtcNumber: "L1000000002", CopayRate: 9, ExpiryDate: &expiry},
		{Name: "Lee Sunja", LtcNumber: "L1000000003", CopayRate: 0, ExpiryDate: &expiry},
	}
	for _, input := range recipients {
		if _, err := rentalService.CreateRecipient(ctx, orgID, input); err != nil {
			log.Fatalf("failed to seed recipient %s: %v", input.Name, err)
		}
	}

	// Physical units for the first two products
	for i, product := range products[:2] {
		for j := 0; j < 3; j++ {
			input := rental.CreateAssetInput{
				ProductID:    &product.ID,
				SerialNumber: fmt.Sprintf("SN-%d%d", i+1, j+1),
				QRCode:       fmt.Sprintf("QR-%s-%02d", product.Code, j+1),
			}
			if _, err := rentalService.CreateAsset(ctx, orgID, input); err != nil {
				log.Fatalf("failed to seed asset for %s: %v", product.Code, err)
			}
		}
	}

	fmt.Printf("Seed complete!\n")
	fmt.Printf("Owner: %s\n", resp.User.Email)
	fmt.Printf("Organization: %s\n", resp.User.Organization.Name)
	fmt.Printf("Token: %s\n", resp.Token)
}

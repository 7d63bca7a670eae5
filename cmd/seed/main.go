// seed inserts development sample data for local testing. Run via ./scripts/seed.sh.
// Idempotent: skips inserts if the dev admin (phone 09120000000) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"roster-portal/internal/config"
	"roster-portal/internal/db"
	playerdomain "roster-portal/internal/player/domain"
	playerrepo "roster-portal/internal/player/repository"
	policydomain "roster-portal/internal/policy/domain"
	policyrepo "roster-portal/internal/policy/repository"
	"roster-portal/internal/security"
	userdomain "roster-portal/internal/user/domain"
	userrepo "roster-portal/internal/user/repository"
)

// defaultRegoPolicy matches the default onboarding policy in internal/policy/engine/opa_evaluator.go.
const defaultRegoPolicy = `package roster.onboarding

default resend_cooldown_seconds = 60
default max_verify_attempts = 5
default allow_self_assignment = true
`

const (
	adminPhone    = "09120000000"
	adminPassword = "password123"
	playerPhone   = "09120000001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	players := playerrepo.NewPostgresRepository(conn)
	policies := policyrepo.NewPostgresRepository(conn)

	existing, err := users.GetByPhone(ctx, adminPhone)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("Seed already applied (%s exists). Skipping.", adminPhone)
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash(adminPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	admin := &userdomain.User{
		ID:            uuid.New().String(),
		Phone:         adminPhone,
		PhoneVerified: true,
		FirstName:     "مدیر",
		LastName:      "سامانه",
		PasswordHash:  passwordHash,
		Role:          userdomain.RoleAdmin,
		Status:        userdomain.UserStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatalf("create admin user: %v", err)
	}

	member := &userdomain.User{
		ID:            uuid.New().String(),
		Phone:         playerPhone,
		PhoneVerified: true,
		FirstName:     "علی",
		LastName:      "رضایی",
		PasswordHash:  passwordHash,
		Role:          userdomain.RolePlayer,
		Status:        userdomain.UserStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := users.Create(ctx, member); err != nil {
		log.Fatalf("create member user: %v", err)
	}

	roster := []*playerdomain.Player{
		{FirstName: "علی", LastName: "رضایی", ClubName: "پرسپولیس", JerseyNumber: 7},
		{FirstName: "حسین", LastName: "کریمی", ClubName: "استقلال", JerseyNumber: 10},
		{FirstName: "مهدی", LastName: "احمدی", ClubName: "سپاهان", JerseyNumber: 4},
		{FirstName: "رضا", LastName: "موسوی", ClubName: "تراکتور", JerseyNumber: 9},
	}
	for _, p := range roster {
		p.ID = uuid.New().String()
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := players.Create(ctx, p); err != nil {
			log.Fatalf("create player %s: %v", p.FullName(), err)
		}
	}

	if err := policies.Create(ctx, &policydomain.Policy{
		ID:        uuid.New().String(),
		Rego:      defaultRegoPolicy,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		log.Fatalf("create policy: %v", err)
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Admin login: %s / %s\n", adminPhone, adminPassword)
	fmt.Printf("Player login: %s / %s\n", playerPhone, adminPassword)
}

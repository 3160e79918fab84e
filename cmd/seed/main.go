// Command seed provisions a development database with the default leave
// types and a small set of users, then initializes the current year's
// balances. It is idempotent and safe to rerun.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hrleave/leave-backend-go/internal/config"
	"github.com/hrleave/leave-backend-go/internal/domain/leave"
	"github.com/hrleave/leave-backend-go/internal/domain/user"
	"github.com/hrleave/leave-backend-go/internal/pkg/database"
	"github.com/hrleave/leave-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type seedType struct {
	name        string
	description string
	maxDays     int
}

type seedUser struct {
	email      string
	firstName  string
	lastName   string
	role       user.Role
	department string
	managerOf  string // email of the manager, resolved after insert
}

var defaultTypes = []seedType{
	{"Annual Leave", "Paid vacation days", 25},
	{"Sick Leave", "Illness or medical appointments", 10},
	{"Personal Leave", "Personal matters", 5},
	{"Maternity/Paternity Leave", "Parental leave", 90},
}

var defaultUsers = []seedUser{
	{"hr@example.com", "Harriet", "Reyes", user.RoleHR, "People", ""},
	{"manager@example.com", "Morgan", "Lee", user.RoleManager, "Engineering", ""},
	{"employee@example.com", "Emery", "Tan", user.RoleEmployee, "Engineering", "manager@example.com"},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	typeRepo := postgresql.NewLeaveTypeRepository(db)
	balanceRepo := postgresql.NewLeaveBalanceRepository(db)
	userRepo := postgresql.NewUserRepository(db)

	types := make([]leave.LeaveType, 0, len(defaultTypes))
	for _, st := range defaultTypes {
		existing, err := typeRepo.GetByName(ctx, st.name)
		if err == nil {
			types = append(types, existing)
			continue
		}
		if !errors.Is(err, leave.ErrLeaveTypeNotFound) {
			fmt.Println("Error looking up leave type:", err)
			os.Exit(1)
		}

		desc := st.description
		created, err := typeRepo.Create(ctx, leave.LeaveType{
			Name:           st.name,
			Description:    &desc,
			MaxDaysPerYear: st.maxDays,
			IsActive:       true,
		})
		if err != nil {
			fmt.Println("Error creating leave type:", err)
			os.Exit(1)
		}
		fmt.Println("Created leave type:", created.Name)
		types = append(types, created)
	}

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "password123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Println("Error hashing password:", err)
		os.Exit(1)
	}

	year := time.Now().Year()
	idsByEmail := map[string]string{}

	for _, su := range defaultUsers {
		existing, err := userRepo.GetByEmail(ctx, su.email)
		if err == nil {
			idsByEmail[su.email] = existing.ID
			continue
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			fmt.Println("Error looking up user:", err)
			os.Exit(1)
		}

		dept := su.department
		u := user.User{
			Email:        su.email,
			PasswordHash: string(hash),
			FirstName:    su.firstName,
			LastName:     su.lastName,
			Role:         su.role,
			Department:   &dept,
			HireDate:     time.Now().UTC(),
			IsActive:     true,
		}
		if su.managerOf != "" {
			managerID, ok := idsByEmail[su.managerOf]
			if !ok {
				fmt.Println("Manager not seeded yet:", su.managerOf)
				os.Exit(1)
			}
			u.ManagerID = &managerID
		}

		created, err := userRepo.Create(ctx, u)
		if err != nil {
			fmt.Println("Error creating user:", err)
			os.Exit(1)
		}
		fmt.Println("Created user:", created.Email)
		idsByEmail[su.email] = created.ID

		for _, t := range types {
			if err := balanceRepo.Initialize(ctx, created.ID, t, year); err != nil {
				fmt.Println("Error initializing balance:", err)
				os.Exit(1)
			}
		}
	}

	fmt.Println("Seed complete")
}

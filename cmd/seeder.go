package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/frahmantamala/hr-management/internal/auth"
	leaveDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/leave"
	userDatamodel "github.com/frahmantamala/hr-management/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
	seedAdminName     string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the admin account and default leave types",
	Long:  `Create the first admin user and the default leave types. Running it twice is safe.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if err := seedAdmin(gdb, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		if err := seedLeaveTypes(gdb); err != nil {
			log.Fatalf("failed to seed leave types: %v", err)
		}
		fmt.Println("Seeding completed")
	},
}

func seedAdmin(db *gorm.DB, bcryptCost int) error {
	email := strings.ToLower(strings.TrimSpace(seedAdminEmail))

	var existing userDatamodel.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		fmt.Println("admin user already exists:", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := auth.HashPassword(seedAdminPassword, bcryptCost)
	if err != nil {
		return err
	}
	admin := userDatamodel.User{
		Email:        email,
		Name:         seedAdminName,
		PasswordHash: hash,
		Role:         auth.RoleAdmin.String(),
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	fmt.Println("Seeded admin user:", email)
	return nil
}

var defaultLeaveTypes = []leaveDatamodel.LeaveType{
	{Name: "Casual Leave", Description: "Monthly casual leave", DefaultDays: 12},
	{Name: "Sick Leave", Description: "Illness or medical appointments", DefaultDays: 6},
	{Name: "Unpaid Leave", Description: "Leave without pay", DefaultDays: 0},
}

func seedLeaveTypes(db *gorm.DB) error {
	for _, lt := range defaultLeaveTypes {
		lt := lt
		res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).Create(&lt)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			fmt.Println("Seeded leave type:", lt.Name)
		}
	}
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@company.local", "admin login email")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "password", "admin login password")
	seedCmd.Flags().StringVar(&seedAdminName, "admin-name", "Administrator", "admin display name")
}

// seed-reference loads starter reference data (clients, team members,
// software items) into an empty database. Safe to rerun: records are looked
// up by name and only created when missing.
//
// Usage (from backend directory):
//   DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-reference
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/models"
	"github.com/techpros/finops_backend/utils"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	clients := []models.NewClient{
		{Name: "Acme Ltd", Email: "accounts@acme.example"},
		{Name: "Globex Corporation", Email: "billing@globex.example"},
	}
	for i := range clients {
		if err := seedClient(ctx, db, &clients[i]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed client %q: %v\n", clients[i].Name, err)
			os.Exit(1)
		}
	}

	members := []models.NewTeamMember{
		{
			Name:               "Jane Developer",
			Role:               "Engineer",
			EmploymentType:     string(models.EmploymentTypeContractor),
			DefaultMonthlyCost: decimal.NewFromInt(6000),
			SupplierAliases:    []string{"Jane Developer Ltd", "JD Consulting"},
			Active:             utils.NewTrue(),
		},
		{
			// a departed contractor: kept for historical cost rows, hidden
			// from the active registry
			Name:               "Sam Contractor",
			Role:               "Designer",
			EmploymentType:     string(models.EmploymentTypeContractor),
			DefaultMonthlyCost: decimal.NewFromInt(4500),
			SupplierAliases:    []string{"SC Design Studio"},
			Active:             utils.NewFalse(),
		},
	}
	for i := range members {
		if err := seedTeamMember(ctx, db, &members[i]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed team member %q: %v\n", members[i].Name, err)
			os.Exit(1)
		}
	}

	items := []models.NewSoftwareItem{
		{
			Name:               "Zoom",
			Vendor:             "Zoom Video Communications",
			VendorAliases:      []string{"ZOOM.US"},
			DefaultMonthlyCost: decimal.NewFromInt(159),
			Category:           "communication",
		},
		{
			Name:               "Google Workspace",
			Vendor:             "Google",
			VendorAliases:      []string{"GOOGLE GSUITE", "GOOGLE WORKSPACE"},
			DefaultMonthlyCost: decimal.NewFromInt(92),
			Category:           "productivity",
		},
	}
	for i := range items {
		if err := seedSoftwareItem(ctx, db, &items[i]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to seed software item %q: %v\n", items[i].Name, err)
			os.Exit(1)
		}
	}

	fmt.Println("Reference data seeded")
}

func seedClient(ctx context.Context, db *gorm.DB, input *models.NewClient) error {
	var existing models.Client
	err := db.WithContext(ctx).Where("name = ?", input.Name).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	_, err = models.CreateClient(ctx, input)
	return err
}

func seedTeamMember(ctx context.Context, db *gorm.DB, input *models.NewTeamMember) error {
	var existing models.TeamMember
	err := db.WithContext(ctx).Where("name = ?", input.Name).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	_, err = models.CreateTeamMember(ctx, input)
	return err
}

func seedSoftwareItem(ctx context.Context, db *gorm.DB, input *models.NewSoftwareItem) error {
	var existing models.SoftwareItem
	err := db.WithContext(ctx).Where("name = ?", input.Name).First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	_, err = models.CreateSoftwareItem(ctx, input)
	return err
}

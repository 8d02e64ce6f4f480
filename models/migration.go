package models

import (
	"log"

	"github.com/techpros/finops_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Client{}, &Contract{},
		&Document{},
		&Invoice{}, &RevenueRecognition{},
		&TeamMember{}, &HRCost{},
		&SoftwareItem{}, &SoftwareCost{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

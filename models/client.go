package models

import (
	"context"
	"errors"
	"time"

	"github.com/techpros/finops_backend/config"
	"github.com/techpros/finops_backend/utils"
)

type Client struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:255" json:"email"`
	Notes     string    `gorm:"type:text" json:"notes"`
	Active    *bool     `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClient struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email"`
	Notes  string `json:"notes"`
	Active *bool  `json:"active"`
}

func (input NewClient) Fillable() map[string]interface{} {
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	return map[string]interface{}{
		"Name":   input.Name,
		"Email":  input.Email,
		"Notes":  input.Notes,
		"Active": active,
	}
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	client := Client{
		Name:   input.Name,
		Email:  input.Email,
		Notes:  input.Notes,
		Active: &active,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	InvalidateRegistryCache(registryKeyClients)
	return &client, nil
}

func UpdateClient(ctx context.Context, id int, input *NewClient) (*Client, error) {
	client, err := utils.FetchSingleModel[Client](ctx, id)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(client).Updates(input.Fillable()).Error; err != nil {
		return nil, err
	}
	InvalidateRegistryCache(registryKeyClients)
	return client, nil
}

func DeleteClient(ctx context.Context, id int) error {
	client, err := utils.FetchSingleModel[Client](ctx, id)
	if err != nil {
		return err
	}

	// a client with invoices is deactivated, never deleted
	count, err := utils.ResourceCountWhere[Invoice](ctx, "client_id = ?", id)
	if err != nil {
		return err
	}
	if count > 0 {
		return errors.New("cannot delete client with invoices; deactivate instead")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(client).Error; err != nil {
		return err
	}
	InvalidateRegistryCache(registryKeyClients)
	return nil
}

func GetClient(ctx context.Context, id int) (*Client, error) {
	return utils.FetchSingleModel[Client](ctx, id)
}

// File: internal/city/city.go

// Package city holds the reference data for the cities a listing can be
// placed in.
package city

import (
	"context"
	"errors"

	"marketplace_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// City represents the city model in the database.
type City struct {
	common.BaseModel
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(100);not null;uniqueIndex"`
}

// TableName specifies the table name for the City model.
func (City) TableName() string {
	return "cities"
}

// Repository defines the interface for city data operations.
type Repository interface {
	FindAll(ctx context.Context) ([]City, error)
	FindByID(ctx context.Context, id uuid.UUID) (*City, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM city repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindAll(ctx context.Context) ([]City, error) {
	var cities []City
	err := r.db.WithContext(ctx).Order("name ASC").Find(&cities).Error
	return cities, err
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*City, error) {
	var c City
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("City not found.")
		}
		return nil, err
	}
	return &c, nil
}

// Handler exposes the public city listing endpoint.
type Handler struct {
	repo Repository
}

// NewHandler creates a new city handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes sets up the routes for city operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/cities", h.listCities)
}

func (h *Handler) listCities(c *gin.Context) {
	cities, err := h.repo.FindAll(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", cities)
}

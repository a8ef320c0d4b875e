package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainProperty "property-marketplace/internal/domain/property"
	"property-marketplace/internal/infrastructure/database/postgres/models"
)

// PropertyRepository implements domainProperty.Repository
type PropertyRepository struct {
	db *DB
}

func NewPropertyRepository(db *DB) domainProperty.Repository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) Create(ctx context.Context, p *domainProperty.Property) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	dbModel := toPropertyModel(p)
	if err := r.db.DB.WithContext(ctx).Omit(clause.Associations).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}

	p.ID = dbModel.ID
	return nil
}

func (r *PropertyRepository) GetByID(ctx context.Context, propertyID int64) (*domainProperty.Property, error) {
	var dbModel models.PropertyModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", propertyID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainProperty.ErrPropertyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return toPropertyEntity(&dbModel), nil
}

func (r *PropertyRepository) List(ctx context.Context, offset, limit int) ([]*domainProperty.Property, error) {
	var dbModels []models.PropertyModel
	err := r.db.DB.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}

	properties := make([]*domainProperty.Property, 0, len(dbModels))
	for i := range dbModels {
		properties = append(properties, toPropertyEntity(&dbModels[i]))
	}
	return properties, nil
}

// Update writes the mutable columns only; owner and creation time never
// change.
func (r *PropertyRepository) Update(ctx context.Context, p *domainProperty.Property) error {
	p.UpdatedAt = time.Now().UTC()

	result := r.db.DB.WithContext(ctx).
		Model(&models.PropertyModel{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"title":           p.Title,
			"description":     p.Description,
			"place":           p.Place,
			"area":            p.Area,
			"bedrooms":        p.Bedrooms,
			"bathrooms":       p.Bathrooms,
			"hospital_nearby": p.HospitalNearby,
			"school_nearby":   p.SchoolNearby,
			"price":           p.Price,
			"updated_at":      p.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update property: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainProperty.ErrPropertyNotFound
	}

	return nil
}

func (r *PropertyRepository) Delete(ctx context.Context, propertyID int64) error {
	return r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", propertyID).Delete(&models.InterestModel{}).Error; err != nil {
			return fmt.Errorf("failed to delete interests: %w", err)
		}

		result := tx.Where("id = ?", propertyID).Delete(&models.PropertyModel{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete property: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domainProperty.ErrPropertyNotFound
		}
		return nil
	})
}

// AddInterest inserts the (property, user) pair once; repeating it loads the
// existing row into interest.
func (r *PropertyRepository) AddInterest(ctx context.Context, interest *domainProperty.Interest) error {
	dbModel := &models.InterestModel{
		PropertyID: interest.PropertyID,
		UserID:     interest.UserID,
		CreatedAt:  time.Now().UTC(),
	}

	result := r.db.DB.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "property_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(dbModel)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return domainProperty.ErrPropertyNotFound
		}
		return fmt.Errorf("failed to add interest: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		var existing models.InterestModel
		err := r.db.DB.WithContext(ctx).
			Where("property_id = ? AND user_id = ?", interest.PropertyID, interest.UserID).
			First(&existing).Error
		if err != nil {
			return fmt.Errorf("failed to load existing interest: %w", err)
		}
		dbModel = &existing
	}

	interest.ID = dbModel.ID
	interest.CreatedAt = dbModel.CreatedAt
	return nil
}

func toPropertyModel(p *domainProperty.Property) *models.PropertyModel {
	return &models.PropertyModel{
		ID:             p.ID,
		OwnerID:        p.OwnerID,
		Title:          p.Title,
		Description:    p.Description,
		Place:          p.Place,
		Area:           p.Area,
		Bedrooms:       p.Bedrooms,
		Bathrooms:      p.Bathrooms,
		HospitalNearby: p.HospitalNearby,
		SchoolNearby:   p.SchoolNearby,
		Price:          p.Price,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toPropertyEntity(m *models.PropertyModel) *domainProperty.Property {
	return &domainProperty.Property{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		Title:          m.Title,
		Description:    m.Description,
		Place:          m.Place,
		Area:           m.Area,
		Bedrooms:       m.Bedrooms,
		Bathrooms:      m.Bathrooms,
		HospitalNearby: m.HospitalNearby,
		SchoolNearby:   m.SchoolNearby,
		Price:          m.Price,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

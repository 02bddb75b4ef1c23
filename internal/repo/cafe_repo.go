// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Cafe model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a cafe is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - CreateCafe returns ErrDuplicateName when the name is taken.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-cafe-api/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicateName is returned when a cafe with the same name already exists.
var ErrDuplicateName = errors.New("cafe name already exists")

// ListCafes returns every cafe ordered by id. The result is never nil.
func ListCafes(ctx context.Context, db *gorm.DB) ([]domain.Cafe, error) {
	out := []domain.Cafe{}
	err := db.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

// FindCafesByLocation returns the cafes whose location equals loc exactly,
// ordered by id. No match yields an empty slice and a nil error.
func FindCafesByLocation(ctx context.Context, db *gorm.DB, loc string) ([]domain.Cafe, error) {
	out := []domain.Cafe{}
	err := db.WithContext(ctx).
		Where("location = ?", loc).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// GetCafe fetches a single cafe by id, or ErrNotFound.
func GetCafe(ctx context.Context, db *gorm.DB, id uint) (*domain.Cafe, error) {
	var c domain.Cafe
	if err := db.WithContext(ctx).Where("id = ?", id).Take(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCafes returns the number of stored cafes.
func CountCafes(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Cafe{}).Count(&n).Error
	return n, err
}

// CafeAt returns the cafe at position offset in id order. It returns
// ErrNotFound when offset is past the end, which can happen if rows were
// deleted after the caller counted them.
func CafeAt(ctx context.Context, db *gorm.DB, offset int) (*domain.Cafe, error) {
	var c domain.Cafe
	err := db.WithContext(ctx).
		Order("id asc").
		Offset(offset).
		Take(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCafe inserts a new cafe built from in and returns it with its
// store-assigned id. The name check and the insert run in one transaction;
// the unique index on name backs it up under concurrent writers.
func CreateCafe(ctx context.Context, db *gorm.DB, in domain.CafeInput) (*domain.Cafe, error) {
	c := in.Cafe()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Cafe{}).Where("name = ?", c.Name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateName
		}
		if err := tx.Create(c).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicateName
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCoffeePrice sets coffee_price of cafe id and touches no other column.
// It returns ErrNotFound when the cafe does not exist.
//
// Existence is checked with a read inside the transaction because MySQL
// reports zero affected rows when the new value equals the old one.
func UpdateCoffeePrice(ctx context.Context, db *gorm.DB, id uint, price string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c domain.Cafe
		if err := tx.Select("id").Where("id = ?", id).Take(&c).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Cafe{}).
			Where("id = ?", id).
			Update("coffee_price", price).Error
	})
}

// DeleteCafe removes cafe id. It returns ErrNotFound when no row matched.
func DeleteCafe(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Cafe{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// isUniqueViolation recognizes unique-constraint failures across drivers.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value") ||
		strings.Contains(low, "duplicate entry")
}

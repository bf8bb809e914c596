package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"siphon/pkg/model"
)

var (
	ErrDrinkNotFound  = errors.New("drink not found")
	ErrDuplicateTitle = errors.New("drink title already exists")
)

func (r *Repository) ListDrinks(ctx context.Context) ([]*model.Drink, error) {
	var drinks []*model.Drink

	if result := r.DB.WithContext(ctx).Find(&drinks); result.Error != nil {
		return nil, result.Error
	}

	return drinks, nil
}

func (r *Repository) GetDrink(ctx context.Context, drinkID uint) (*model.Drink, error) {
	drink := &model.Drink{}

	result := r.DB.WithContext(ctx).First(drink, drinkID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrDrinkNotFound
		}

		return nil, result.Error
	}

	return drink, nil
}

// CreateDrink checks the title before inserting. The check-then-insert
// is not serialized against concurrent creates; the unique index on
// title is the backstop for that race.
func (r *Repository) CreateDrink(ctx context.Context, drink model.Drink) (*model.Drink, error) {
	var existing model.Drink

	result := r.DB.WithContext(ctx).Where("title = ?", drink.Title).First(&existing)
	if result.Error == nil {
		return nil, ErrDuplicateTitle
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	if result := r.DB.WithContext(ctx).Create(&drink); result.Error != nil {
		return nil, result.Error
	}

	return &drink, nil
}

func (r *Repository) UpdateDrink(ctx context.Context, drink *model.Drink) (*model.Drink, error) {
	if result := r.DB.WithContext(ctx).Save(drink); result.Error != nil {
		return nil, result.Error
	}

	return drink, nil
}

func (r *Repository) DeleteDrink(ctx context.Context, drinkID uint) (uint, error) {
	drink, err := r.GetDrink(ctx, drinkID)
	if err != nil {
		return 0, err
	}

	if result := r.DB.WithContext(ctx).Delete(drink); result.Error != nil {
		return 0, result.Error
	}

	return drinkID, nil
}

package gormrepo

import (
	"context"
	"errors"

	"nearbyradar/internal/adapter/repo/gorm/model"
	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MuteRepo struct {
	db *gorm.DB
}

func NewMuteRepo(db *gorm.DB) MuteRepo {
	return MuteRepo{db: db}
}

func (r MuteRepo) IsMuted(ctx context.Context, id radar.EntityID) (bool, error) {
	var count int64
	err := dbFrom(ctx, r.db).
		Model(&model.Mute{}).
		Where("entity_id = ?", id.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r MuteRepo) Add(ctx context.Context, id radar.EntityID, name string) error {
	res := dbFrom(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Mute{EntityID: id.String(), Name: name})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrConflict
	}
	return nil
}

func (r MuteRepo) Remove(ctx context.Context, id radar.EntityID, _ string) error {
	res := dbFrom(ctx, r.db).
		Where("entity_id = ?", id.String()).
		Delete(&model.Mute{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r MuteRepo) Get(ctx context.Context, id radar.EntityID) (model.Mute, error) {
	var m model.Mute
	if err := dbFrom(ctx, r.db).Where("entity_id = ?", id.String()).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Mute{}, ports.ErrNotFound
		}
		return model.Mute{}, err
	}
	return m, nil
}

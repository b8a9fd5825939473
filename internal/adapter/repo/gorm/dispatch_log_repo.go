package gormrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"nearbyradar/internal/adapter/repo/gorm/model"
	"nearbyradar/internal/app/ports"
	"nearbyradar/internal/domain/radar"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DispatchLogRepo struct {
	db *gorm.DB
}

func NewDispatchLogRepo(db *gorm.DB) DispatchLogRepo {
	return DispatchLogRepo{db: db}
}

func (r DispatchLogRepo) Append(ctx context.Context, rec ports.DispatchRecord) error {
	params := rec.Params
	if params == nil {
		params = []string{}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	row := model.DispatchLog{
		Invoice:   rec.Invoice.String(),
		Operation: rec.Operation,
		Method:    rec.Method,
		AgentID:   rec.AgentID.String(),
		TargetID:  rec.TargetID.String(),
		Host:      rec.Host,
		Flags:     int32(rec.Flags),
		Params:    string(b),
		SentAt:    rec.SentAt,
	}
	return dbFrom(ctx, r.db).Create(&row).Error
}

func (r DispatchLogRepo) ListByTarget(ctx context.Context, target radar.EntityID, limit int) ([]ports.DispatchRecord, error) {
	rows := []model.DispatchLog{}
	query := dbFrom(ctx, r.db).
		Where(&model.DispatchLog{TargetID: target.String()}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "sent_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]ports.DispatchRecord, 0, len(rows))
	for _, row := range rows {
		var params []string
		if row.Params != "" {
			_ = json.Unmarshal([]byte(row.Params), &params)
		}
		out = append(out, ports.DispatchRecord{
			Invoice:   uuid.MustParse(row.Invoice),
			Operation: row.Operation,
			Method:    row.Method,
			AgentID:   uuid.MustParse(row.AgentID),
			TargetID:  uuid.MustParse(row.TargetID),
			Host:      row.Host,
			Flags:     uint32(row.Flags),
			Params:    params,
			SentAt:    row.SentAt,
		})
	}
	return out, nil
}

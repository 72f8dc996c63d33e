package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qorvia/roombook_backend/internal/config"
)

// document is the storage row backing every collection.
type document struct {
	Collection string `gorm:"primaryKey;size:64"`
	DocID      string `gorm:"primaryKey;size:255"`
	Data       []byte `gorm:"type:jsonb;not null"`
}

func (document) TableName() string { return "documents" }

// GormStore keeps all collections in a single Postgres table with a jsonb
// payload. Equality queries use the @> containment operator.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func Connect(cfg *config.Config) (*GormStore, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&document{})
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var row document
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(row.Data)
}

func (s *GormStore) Set(ctx context.Context, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	row := document{Collection: collection, DocID: id, Data: data}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data"}),
	}).Create(&row).Error
}

func (s *GormStore) Insert(ctx context.Context, collection, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	row := document{Collection: collection, DocID: id, Data: data}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDocExists
		}
		return err
	}
	return nil
}

func (s *GormStore) Merge(ctx context.Context, collection, id string, fields Document) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row document
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("collection = ? AND doc_id = ?", collection, id).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			data, mErr := json.Marshal(fields)
			if mErr != nil {
				return mErr
			}
			return tx.Create(&document{Collection: collection, DocID: id, Data: data}).Error
		}
		if err != nil {
			return err
		}
		doc, err := decode(row.Data)
		if err != nil {
			return err
		}
		for k, v := range fields {
			doc[k] = v
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		return tx.Model(&document{}).
			Where("collection = ? AND doc_id = ?", collection, id).
			Update("data", data).Error
	})
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	return s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&document{}).Error
}

func (s *GormStore) QueryByEquals(ctx context.Context, collection string, filters map[string]any) ([]Document, error) {
	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	if len(filters) > 0 {
		probe, err := json.Marshal(filters)
		if err != nil {
			return nil, err
		}
		q = q.Where("data @> ?", string(probe))
	}
	var rows []document
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(rows))
	for _, row := range rows {
		doc, err := decode(row.Data)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

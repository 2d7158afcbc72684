package repository

import (
	"context"
	"time"

	"github.com/segyhp/pledge-callcenter/internal/cache"
	"github.com/segyhp/pledge-callcenter/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type templateRow struct {
	Key         string    `db:"template_key"`
	Name        string    `db:"name"`
	ChannelMode string    `db:"channel_mode"`
	BodyEN      string    `db:"body_en"`
	BodyAM      string    `db:"body_am"`
	BodyTI      string    `db:"body_ti"`
	Active      bool      `db:"active"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (row templateRow) toDomain() *domain.MessageTemplate {
	bodies := make(map[domain.Language]string, 3)
	if row.BodyEN != "" {
		bodies[domain.LanguageEnglish] = row.BodyEN
	}
	if row.BodyAM != "" {
		bodies[domain.LanguageAmharic] = row.BodyAM
	}
	if row.BodyTI != "" {
		bodies[domain.LanguageTigrinya] = row.BodyTI
	}

	return &domain.MessageTemplate{
		Key:         row.Key,
		Name:        row.Name,
		ChannelMode: domain.ChannelMode(row.ChannelMode),
		Bodies:      bodies,
		Active:      row.Active,
		UpdatedAt:   row.UpdatedAt,
	}
}

type templateRepository struct {
	db *sqlx.DB
}

func NewTemplateRepository(db *sqlx.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) GetByKey(ctx context.Context, key string) (*domain.MessageTemplate, error) {
	query := `
		SELECT template_key, name, channel_mode,
			COALESCE(body_en, '') AS body_en,
			COALESCE(body_am, '') AS body_am,
			COALESCE(body_ti, '') AS body_ti,
			active, updated_at
		FROM message_templates
		WHERE template_key = $1 AND active = TRUE
	`

	var row templateRow
	if err := r.db.GetContext(ctx, &row, query, key); err != nil {
		return nil, err
	}

	return row.toDomain(), nil
}

// cachedTemplateRepository serves templates from a cache in front of another repository
type cachedTemplateRepository struct {
	next  TemplateRepository
	cache cache.Cache
	ttl   time.Duration
	log   logrus.FieldLogger
}

func NewCachedTemplateRepository(next TemplateRepository, c cache.Cache, ttl time.Duration, log logrus.FieldLogger) TemplateRepository {
	return &cachedTemplateRepository{next: next, cache: c, ttl: ttl, log: log}
}

func (r *cachedTemplateRepository) GetByKey(ctx context.Context, key string) (*domain.MessageTemplate, error) {
	var tmpl domain.MessageTemplate
	err := cache.GetJSON(ctx, r.cache, key, &tmpl)
	if err == nil {
		return &tmpl, nil
	}
	if err != cache.ErrNotFound {
		r.log.WithError(err).WithField("template_key", key).Warn("template cache read failed")
	}

	found, err := r.next.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, r.cache, key, found, r.ttl); err != nil {
		r.log.WithError(err).WithField("template_key", key).Warn("template cache write failed")
	}

	return found, nil
}

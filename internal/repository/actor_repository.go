package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/model"
)

// ActorRepository handles database operations for actors
type ActorRepository struct {
	db         *sqlx.DB
	maxRetries int
	logger     *zap.Logger
}

// NewActorRepository creates a new actor repository
func NewActorRepository(db *sqlx.DB, maxRetries int, logger *zap.Logger) *ActorRepository {
	return &ActorRepository{
		db:         db,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

// GetByID retrieves an actor with its categories and jurisdictions
func (r *ActorRepository) GetByID(ctx context.Context, id string) (*model.Actor, error) {
	query := `
		SELECT a.id, a.label, COALESCE(a.uri, ''), COALESCE(a.context, ''), a.actorpack,
		       COALESCE((SELECT array_agg(category_id ORDER BY category_id)
		                 FROM actor_category WHERE actor_id = a.id), '{}'),
		       COALESCE((SELECT array_agg(country_id ORDER BY country_id)
		                 FROM actor_jurisdiction WHERE actor_id = a.id), '{}')
		FROM actor a
		WHERE a.id = $1
	`

	var a model.Actor
	err := retryRead(ctx, r.maxRetries, func() error {
		return r.db.QueryRowxContext(ctx, query, id).Scan(
			&a.ID,
			&a.Label,
			&a.URI,
			&a.Context,
			&a.ActorpackURI,
			pq.Array(&a.Categories),
			pq.Array(&a.Jurisdictions),
		)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get actor", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	return &a, nil
}

// InsertActorPack upserts the actors of a pack and replaces their categories
// and jurisdictions
func (r *ActorRepository) InsertActorPack(ctx context.Context, uri, title, creator string, actors []model.Actor) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO actorpack (id, title, creator, uploaded_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id)
		DO UPDATE SET title = EXCLUDED.title, creator = EXCLUDED.creator, uploaded_at = NOW()
	`, uri, title, creator)
	if err != nil {
		r.logger.Error("Failed to upsert actorpack", zap.Error(err), zap.String("uri", uri))
		return 0, err
	}

	for _, a := range actors {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO actor (id, label, uri, context, actorpack)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
			ON CONFLICT (id)
			DO UPDATE SET
				label = EXCLUDED.label,
				uri = EXCLUDED.uri,
				context = EXCLUDED.context,
				actorpack = EXCLUDED.actorpack
		`, a.ID, a.Label, a.URI, a.Context, uri)
		if err != nil {
			r.logger.Error("Failed to upsert actor", zap.Error(err), zap.String("id", a.ID))
			return 0, err
		}

		if err = replaceValues(ctx, tx, "actor_category", "category_id", a.ID, a.Categories); err != nil {
			r.logger.Error("Failed to store actor categories", zap.Error(err), zap.String("id", a.ID))
			return 0, err
		}
		if err = replaceValues(ctx, tx, "actor_jurisdiction", "country_id", a.ID, a.Jurisdictions); err != nil {
			r.logger.Error("Failed to store actor jurisdictions", zap.Error(err), zap.String("id", a.ID))
			return 0, err
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return 0, err
	}

	return len(actors), nil
}

// replaceValues rewrites the rows of a (actor_id, column) link table.
// table and column are literals from this file, never request input.
func replaceValues(ctx context.Context, tx *sqlx.Tx, table, column, actorID string, values []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE actor_id = $1`, actorID); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO `+table+` (actor_id, `+column+`) SELECT $1, unnest($2::text[]) ON CONFLICT DO NOTHING`,
		actorID, pq.Array(values))
	return err
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/model"
)

// TagQuery selects the tags of one subject visible to a set of groups
type TagQuery struct {
	Identifier string
	Network    string
	Groups     []string
	Limit      int
	Offset     int
}

// TagRepository handles database operations for tags
type TagRepository struct {
	db         *sqlx.DB
	maxRetries int
	logger     *zap.Logger
}

// NewTagRepository creates a new tag repository
func NewTagRepository(db *sqlx.DB, maxRetries int, logger *zap.Logger) *TagRepository {
	return &TagRepository{
		db:         db,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

const visibleTagsWhere = `
		WHERE t.identifier = $1
		  AND ($2 = '' OR t.network = $2)
		  AND (t.is_public OR t.acl_group = ANY($3))
`

// ListBySubject retrieves the tags of a subject together with their concepts
// and the categories of their actors. A zero limit returns every tag.
func (r *TagRepository) ListBySubject(ctx context.Context, q TagQuery) ([]model.TagRecord, error) {
	query := `
		SELECT t.id, t.tag_subject, t.identifier, t.network, t.label, t.source, t.creator,
		       t.confidence_level, t.actor, t.is_public, COALESCE(t.acl_group, '') AS acl_group,
		       t.lastmod, t.tagpack,
		       COALESCE(array_agg(DISTINCT tc.concept_id ORDER BY tc.concept_id)
		                FILTER (WHERE tc.concept_id IS NOT NULL), '{}') AS concepts,
		       COALESCE(array_agg(DISTINCT ac.category_id ORDER BY ac.category_id)
		                FILTER (WHERE ac.category_id IS NOT NULL), '{}') AS actor_categories
		FROM tag t
		LEFT JOIN tag_concept tc ON tc.tag_id = t.id
		LEFT JOIN actor_category ac ON ac.actor_id = t.actor
	` + visibleTagsWhere + `
		GROUP BY t.id
		ORDER BY t.id
		LIMIT NULLIF($4, 0) OFFSET $5
	`

	var tags []model.TagRecord
	err := retryRead(ctx, r.maxRetries, func() error {
		rows, err := r.db.QueryxContext(ctx, query, q.Identifier, q.Network, pq.Array(q.Groups), q.Limit, q.Offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		tags = tags[:0]
		for rows.Next() {
			var t model.TagRecord
			var concepts, categories []string

			err := rows.Scan(
				&t.ID,
				&t.Subject,
				&t.Identifier,
				&t.Network,
				&t.Label,
				&t.Source,
				&t.Creator,
				&t.ConfidenceLevel,
				&t.Actor,
				&t.IsPublic,
				&t.Group,
				&t.LastMod,
				&t.TagpackURI,
				pq.Array(&concepts),
				pq.Array(&categories),
			)
			if err != nil {
				return err
			}

			t.Concepts = concepts
			t.ActorCategories = categories
			tags = append(tags, t)
		}
		return rows.Err()
	})
	if err != nil {
		r.logger.Error("Failed to list tags", zap.Error(err), zap.String("identifier", q.Identifier))
		return nil, err
	}

	return tags, nil
}

// CountBySubject counts the tags of a subject visible to the query groups
func (r *TagRepository) CountBySubject(ctx context.Context, q TagQuery) (int, error) {
	query := `SELECT COUNT(*) FROM tag t` + visibleTagsWhere

	var total int
	err := retryRead(ctx, r.maxRetries, func() error {
		return r.db.GetContext(ctx, &total, query, q.Identifier, q.Network, pq.Array(q.Groups))
	})
	if err != nil {
		r.logger.Error("Failed to count tags", zap.Error(err), zap.String("identifier", q.Identifier))
		return 0, err
	}

	return total, nil
}

// InsertTagPack stores a tagpack and replaces every tag previously loaded from it
func (r *TagRepository) InsertTagPack(ctx context.Context, uri, title, creator string, isPublic bool, tags []model.TagRecord) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin transaction", zap.Error(err))
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tagpack (id, title, creator, is_public, uploaded_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id)
		DO UPDATE SET
			title = EXCLUDED.title,
			creator = EXCLUDED.creator,
			is_public = EXCLUDED.is_public,
			uploaded_at = NOW()
	`, uri, title, creator, isPublic)
	if err != nil {
		r.logger.Error("Failed to upsert tagpack", zap.Error(err), zap.String("uri", uri))
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM tag WHERE tagpack = $1`, uri); err != nil {
		r.logger.Error("Failed to clear previous tags", zap.Error(err), zap.String("uri", uri))
		return 0, err
	}

	tagStmt, err := tx.PreparexContext(ctx, `
		INSERT INTO tag (tag_subject, identifier, network, label, source, creator,
		                 confidence_level, actor, is_public, acl_group, lastmod, tagpack)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)
		RETURNING id
	`)
	if err != nil {
		r.logger.Error("Failed to prepare statement", zap.Error(err))
		return 0, err
	}
	defer tagStmt.Close()

	for _, t := range tags {
		var id int64
		err = tagStmt.QueryRowxContext(
			ctx,
			string(t.Subject),
			t.Identifier,
			t.Network,
			t.Label,
			t.Source,
			t.Creator,
			t.ConfidenceLevel,
			t.Actor,
			t.IsPublic,
			t.Group,
			t.LastMod,
			uri,
		).Scan(&id)
		if err != nil {
			r.logger.Error("Failed to insert tag", zap.Error(err), zap.String("identifier", t.Identifier))
			return 0, fmt.Errorf("insert tag %q: %w", t.Identifier, err)
		}

		if len(t.Concepts) == 0 {
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tag_concept (tag_id, concept_id) SELECT $1, unnest($2::text[]) ON CONFLICT DO NOTHING`,
			id, pq.Array(t.Concepts))
		if err != nil {
			r.logger.Error("Failed to insert tag concepts", zap.Error(err), zap.Int64("tag_id", id))
			return 0, err
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit transaction", zap.Error(err))
		return 0, err
	}

	return len(tags), nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jobradar/job-radar/internal/posting"

	_ "modernc.org/sqlite"
)

// SQLite persists postings in a single-file SQLite database. Enrichment
// columns are nullable together: a row either carries a vector, cluster and
// generation, or none of them.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS postings (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            company TEXT NOT NULL,
            location TEXT,
            skills TEXT,
            scraped_at TEXT,
            vector TEXT,
            cluster INTEGER,
            generation TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS idx_postings_cluster ON postings(generation, cluster);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) UpsertPostings(ctx context.Context, items []*posting.Posting) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		var vector, generation sql.NullString
		var clusterID sql.NullInt64
		if item.Enrichment != nil {
			vecJSON, err := json.Marshal(item.Enrichment.Vector)
			if err != nil {
				return fmt.Errorf("marshal vector for posting %s: %w", item.ID, err)
			}
			vector = sql.NullString{String: string(vecJSON), Valid: true}
			clusterID = sql.NullInt64{Int64: int64(item.Enrichment.Cluster), Valid: true}
			generation = sql.NullString{String: item.Enrichment.Generation, Valid: true}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO postings(id, title, company, location, skills, scraped_at, vector, cluster, generation)
             VALUES(?,?,?,?,?,?,?,?,?)
             ON CONFLICT(id) DO UPDATE SET
                 title=excluded.title,
                 company=excluded.company,
                 location=excluded.location,
                 skills=excluded.skills,
                 scraped_at=excluded.scraped_at,
                 vector=excluded.vector,
                 cluster=excluded.cluster,
                 generation=excluded.generation`,
			item.ID, item.Title, item.Company, item.Location, item.RawSkillText, item.ScrapedAt,
			vector, clusterID, generation,
		)
		if err != nil {
			return fmt.Errorf("upsert posting %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

func (s *SQLite) ListPostings(ctx context.Context) (*posting.Postings, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, company, location, skills, scraped_at, vector, cluster, generation
         FROM postings ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &posting.Postings{}
	for rows.Next() {
		var item posting.Posting
		var location, skills, scrapedAt, vector, generation sql.NullString
		var clusterID sql.NullInt64

		if err := rows.Scan(&item.ID, &item.Title, &item.Company, &location, &skills, &scrapedAt,
			&vector, &clusterID, &generation); err != nil {
			return nil, err
		}

		item.Location = location.String
		item.RawSkillText = skills.String
		item.ScrapedAt = scrapedAt.String

		if vector.Valid && clusterID.Valid && generation.Valid {
			var vec []float64
			if err := json.Unmarshal([]byte(vector.String), &vec); err != nil {
				return nil, fmt.Errorf("unmarshal vector for posting %s: %w", item.ID, err)
			}
			item.Enrichment = &posting.Enrichment{
				Vector:     vec,
				Cluster:    int(clusterID.Int64),
				Generation: generation.String,
			}
		}

		out.Items = append(out.Items, &item)
	}

	return out, rows.Err()
}

func (s *SQLite) Stats(ctx context.Context) (*Stats, error) {
	postings, err := s.ListPostings(ctx)
	if err != nil {
		return nil, err
	}
	return buildStats(postings), nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

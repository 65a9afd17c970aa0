package store

import (
	"context"
	"fmt"
	"sort"
)

// DefaultPopularTagsLimit applies when callers pass a non-positive limit.
const DefaultPopularTagsLimit = 20

// Tags returns the distinct slugs used for taxonomytype in ascending order.
func (s *Store) Tags(ctx context.Context, taxonomyType string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT slug FROM `+s.table("taxonomy")+` WHERE taxonomytype = ? ORDER BY slug ASC`,
		taxonomyType,
	)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// PopularTags returns the limit most used slugs for taxonomytype. Selection
// is by count (ties broken by slug); the result is ordered by slug for display.
func (s *Store) PopularTags(ctx context.Context, taxonomyType string, limit int) ([]TagCount, error) {
	limit = normalizeLimit(limit, DefaultPopularTagsLimit)
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug, COUNT(slug) AS count FROM `+s.table("taxonomy")+`
         WHERE taxonomytype = ?
         GROUP BY slug
         ORDER BY count DESC, slug ASC
         LIMIT ?`,
		taxonomyType, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query popular tags: %w", err)
	}
	defer rows.Close()

	var tags []TagCount
	for rows.Next() {
		var tag TagCount
		if err := rows.Scan(&tag.Slug, &tag.Count); err != nil {
			return nil, fmt.Errorf("scan popular tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(tags, func(i, j int) bool { return tags[i].Slug < tags[j].Slug })
	return tags, nil
}

// AddTaxonomy links a content record to a taxonomy slug.
func (s *Store) AddTaxonomy(ctx context.Context, tax Taxonomy) (int64, error) {
	if tax.Name == "" {
		tax.Name = tax.Slug
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO `+s.table("taxonomy")+` (content_id, contenttype, taxonomytype, slug, name, sortorder)
         VALUES (?, ?, ?, ?, ?, ?)`,
		tax.ContentID, tax.ContentType, tax.TaxonomyType, tax.Slug, tax.Name, tax.SortOrder,
	)
	if err != nil {
		return 0, fmt.Errorf("insert taxonomy: %w", err)
	}
	return res.LastInsertId()
}

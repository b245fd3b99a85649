package main

import (
	"context"
	"strings"

	"github.com/ChangeLaterX/Cookify-sub001/models"
	"github.com/ChangeLaterX/Cookify-sub001/pkg/receipt"

	"gorm.io/gorm"
)

const catalogQueryLimit = 25

// dbCatalog serves ingredient candidates from the ingredients table. Matching
// is a coarse substring/prefix net; the matcher does the real ranking, so the
// query only needs to avoid missing plausible candidates.
type dbCatalog struct {
	db *gorm.DB
}

func (c *dbCatalog) SearchIngredients(ctx context.Context, query string) ([]receipt.Candidate, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	tx := c.db.WithContext(ctx).Model(&models.Ingredient{})

	// Match the whole phrase or any individual word of it. Word prefixes
	// catch plural/singular drift ("Tomato" finds "Tomatoes").
	conds := tx.Where("name ILIKE ?", "%"+q+"%")
	for _, word := range strings.Fields(q) {
		if len(word) < 3 {
			continue
		}
		conds = conds.Or("name ILIKE ?", word+"%").Or("name ILIKE ?", "% "+word+"%")
	}

	var rows []models.Ingredient
	if err := tx.Where(conds).Order("id").Limit(catalogQueryLimit).Find(&rows).Error; err != nil {
		return nil, err
	}

	cands := make([]receipt.Candidate, 0, len(rows))
	for _, row := range rows {
		cands = append(cands, receipt.Candidate{ID: row.ID, Name: row.Name})
	}
	return cands, nil
}

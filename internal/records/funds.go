package records

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/yoockh/dojoportal/internal/models"
)

const TopicFunds = "funds"

var FundKind = Kind[models.FundRecord, models.FundDraft]{
	Topic: TopicFunds,
	Label: "fund",
	Normalize: func(d models.FundDraft) (models.FundDraft, error) {
		d.Title = strings.TrimSpace(d.Title)
		d.Amount = models.FormValue(strings.TrimSpace(string(d.Amount)))
		d.Description = strings.TrimSpace(d.Description)
		if d.Title == "" {
			return d, errors.New("title is required")
		}
		return d, nil
	},
	Build: func(id string, d models.FundDraft, createdAt, updatedAt time.Time) models.FundRecord {
		return models.FundRecord{
			ID:          id,
			Title:       d.Title,
			Amount:      ParseAmount(string(d.Amount)),
			Description: d.Description,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		}
	},
	DraftOf: func(f models.FundRecord) models.FundDraft {
		return models.FundDraft{
			Title:       f.Title,
			Amount:      models.FormValue(strconv.FormatFloat(f.Amount, 'f', -1, 64)),
			Description: f.Description,
		}
	},
}

// ParseAmount reads a form amount. Empty, unparsable and non-finite input
// is 0.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Total sums the amounts of items.
func Total(items []models.FundRecord) float64 {
	var sum float64
	for _, f := range items {
		if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) {
			continue
		}
		sum += f.Amount
	}
	return sum
}

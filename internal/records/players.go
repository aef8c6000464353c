package records

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/yoockh/dojoportal/internal/models"
)

const TopicPlayers = "players"

var PlayerKind = Kind[models.PlayerRecord, models.PlayerDraft]{
	Topic: TopicPlayers,
	Label: "player",
	Normalize: func(d models.PlayerDraft) (models.PlayerDraft, error) {
		d.Name = strings.TrimSpace(d.Name)
		d.Belt = strings.TrimSpace(d.Belt)
		d.Dojo = strings.TrimSpace(d.Dojo)
		d.Age = models.FormValue(strings.TrimSpace(string(d.Age)))
		d.WeightClass = strings.TrimSpace(d.WeightClass)
		d.Bio = strings.TrimSpace(d.Bio)
		if d.Name == "" {
			return d, errors.New("name is required")
		}
		return d, nil
	},
	Build: func(id string, d models.PlayerDraft, createdAt, updatedAt time.Time) models.PlayerRecord {
		return models.PlayerRecord{
			ID:          id,
			Name:        d.Name,
			Belt:        d.Belt,
			Dojo:        d.Dojo,
			Age:         ParseAge(string(d.Age)),
			WeightClass: d.WeightClass,
			Bio:         d.Bio,
			CreatedAt:   createdAt,
			UpdatedAt:   updatedAt,
		}
	},
	DraftOf: func(p models.PlayerRecord) models.PlayerDraft {
		d := models.PlayerDraft{
			Name:        p.Name,
			Belt:        p.Belt,
			Dojo:        p.Dojo,
			WeightClass: p.WeightClass,
			Bio:         p.Bio,
		}
		if p.Age != nil {
			d.Age = models.FormValue(strconv.Itoa(*p.Age))
		}
		return d
	},
}

// ParseAge returns nil unless s is an integer.
func ParseAge(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

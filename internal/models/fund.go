package models

import "time"

type FundRecord struct {
	ID          string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;type:text;not null" json:"title"`
	Amount      float64   `gorm:"column:amount;type:numeric" json:"amount"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (FundRecord) TableName() string { return "funds" }

// FundDraft holds raw form input. Amount stays unparsed until submit.
type FundDraft struct {
	Title       string    `json:"title"`
	Amount      FormValue `json:"amount"`
	Description string    `json:"description"`
}

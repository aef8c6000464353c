package models

import "time"

type PlayerRecord struct {
	ID          string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;type:text;not null" json:"name"`
	Belt        string    `gorm:"column:belt;type:text" json:"belt"`
	Dojo        string    `gorm:"column:dojo;type:text" json:"dojo"`
	Age         *int      `gorm:"column:age;type:integer" json:"age"`
	WeightClass string    `gorm:"column:weight_class;type:text" json:"weight_class"`
	Bio         string    `gorm:"column:bio;type:text" json:"bio"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (PlayerRecord) TableName() string { return "players" }

type PlayerDraft struct {
	Name        string    `json:"name"`
	Belt        string    `json:"belt"`
	Dojo        string    `json:"dojo"`
	Age         FormValue `json:"age"`
	WeightClass string    `json:"weight_class"`
	Bio         string    `json:"bio"`
}

package model

import "time"

// DefaultCategories are registered for every new condominium.
var DefaultCategories = []string{"Manutenção", "Limpeza", "Piscina", "Jardinagem", "Segurança", "Outros"}

// Category groups tasks by area (maintenance, cleaning, pool, etc.).
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	CondoID   uint   `gorm:"index:idx_condo_category_name,unique"`
	Name      string `gorm:"index:idx_condo_category_name,unique"`
	CreatedAt time.Time
}

// JobFunction is a user-defined operational job title.
type JobFunction struct {
	ID        uint   `gorm:"primaryKey"`
	CondoID   uint   `gorm:"index:idx_condo_job_name,unique"`
	Name      string `gorm:"index:idx_condo_job_name,unique"`
	CreatedAt time.Time
}

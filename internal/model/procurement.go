package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Vendor is a service provider registered for a condominium.
type Vendor struct {
	ID        uint `gorm:"primaryKey"`
	CondoID   uint `gorm:"index"`
	Name      string
	TaxID     string
	Phone     string
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BudgetStatus is the approval state of a quotation.
type BudgetStatus string

const (
	BudgetPending  BudgetStatus = "PENDING"
	BudgetApproved BudgetStatus = "APPROVED"
	BudgetRejected BudgetStatus = "REJECTED"
)

func (s BudgetStatus) Label() string {
	switch s {
	case BudgetPending:
		return "aguardando"
	case BudgetApproved:
		return "aprovado"
	case BudgetRejected:
		return "reprovado"
	default:
		return string(s)
	}
}

// Budget is a vendor quotation awaiting approval.
type Budget struct {
	ID          uint `gorm:"primaryKey"`
	CondoID     uint `gorm:"index"`
	Title       string
	Description string
	Status      BudgetStatus `gorm:"default:PENDING"`
	VendorID    *uint
	Value       float64
	Items       []BudgetItem `gorm:"foreignKey:BudgetID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BudgetItem is one line of a quotation.
type BudgetItem struct {
	ID          uint `gorm:"primaryKey"`
	BudgetID    uint `gorm:"index"`
	Description string
	Quantity    float64
	UnitPrice   float64
}

// ItemsTotal sums quantity times unit price over all items.
func (b Budget) ItemsTotal() float64 {
	var total float64
	for _, item := range b.Items {
		total += item.Quantity * item.UnitPrice
	}
	return total
}

// FormatMoney renders v in reais, e.g. R$ 1.234,50.
func FormatMoney(v float64) string {
	cents := int64(math.Round(v * 100))
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents%100)
}

// Package models содержит доменные структуры финансовой отчётности:
// запись за месяц, её производные показатели и структуру частичного обновления.
package models

import "time"

// Record представляет финансовую запись пользователя за один календарный месяц.
// Пара (год, месяц) уникальна в пределах пользователя. Все денежные поля
// неотрицательные, по умолчанию ноль. Производные показатели не хранятся,
// а пересчитываются при чтении.
type Record struct {
	ID      int    `json:"id"`
	UserUID string `json:"-"`
	Year    int    `json:"year"`
	Month   int    `json:"month"`

	ServicesRevenue float64 `json:"services_revenue"` // Выручка от услуг
	ProductsRevenue float64 `json:"products_revenue"` // Выручка от товаров
	OtherRevenue    float64 `json:"other_revenue"`    // Прочая выручка

	GoodsCost         float64 `json:"goods_cost"`         // Себестоимость товаров
	Commissions       float64 `json:"commissions"`        // Комиссионные
	VariableMarketing float64 `json:"variable_marketing"` // Переменный маркетинг
	Rent              float64 `json:"rent"`               // Аренда
	Salaries          float64 `json:"salaries"`           // Зарплаты
	Utilities         float64 `json:"utilities"`          // Коммунальные услуги
	FixedMarketing    float64 `json:"fixed_marketing"`    // Постоянный маркетинг
	OtherFixedCosts   float64 `json:"other_fixed_costs"`  // Прочие постоянные расходы

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalRevenue возвращает суммарную выручку за месяц.
func (r Record) TotalRevenue() float64 {
	return r.ServicesRevenue + r.ProductsRevenue + r.OtherRevenue
}

// VariableCosts возвращает сумму переменных расходов.
func (r Record) VariableCosts() float64 {
	return r.GoodsCost + r.Commissions + r.VariableMarketing
}

// FixedCosts возвращает сумму постоянных расходов.
func (r Record) FixedCosts() float64 {
	return r.Rent + r.Salaries + r.Utilities + r.FixedMarketing + r.OtherFixedCosts
}

// TotalCosts возвращает суммарные расходы за месяц.
func (r Record) TotalCosts() float64 {
	return r.VariableCosts() + r.FixedCosts()
}

// NetProfit возвращает чистую прибыль за месяц.
func (r Record) NetProfit() float64 {
	return r.TotalRevenue() - r.TotalCosts()
}

// MarginPercent возвращает маржу в процентах от выручки.
// При нулевой выручке маржа равна нулю.
func (r Record) MarginPercent() float64 {
	revenue := r.TotalRevenue()
	if revenue == 0 {
		return 0
	}
	return r.NetProfit() / revenue * 100
}

// UpdateRecordFields описывает частичное обновление записи:
// применяются только присутствующие (не nil) поля, остальные не меняются.
type UpdateRecordFields struct {
	ServicesRevenue   *float64 `json:"services_revenue,omitempty" validate:"omitempty,gte=0"`
	ProductsRevenue   *float64 `json:"products_revenue,omitempty" validate:"omitempty,gte=0"`
	OtherRevenue      *float64 `json:"other_revenue,omitempty" validate:"omitempty,gte=0"`
	GoodsCost         *float64 `json:"goods_cost,omitempty" validate:"omitempty,gte=0"`
	Commissions       *float64 `json:"commissions,omitempty" validate:"omitempty,gte=0"`
	VariableMarketing *float64 `json:"variable_marketing,omitempty" validate:"omitempty,gte=0"`
	Rent              *float64 `json:"rent,omitempty" validate:"omitempty,gte=0"`
	Salaries          *float64 `json:"salaries,omitempty" validate:"omitempty,gte=0"`
	Utilities         *float64 `json:"utilities,omitempty" validate:"omitempty,gte=0"`
	FixedMarketing    *float64 `json:"fixed_marketing,omitempty" validate:"omitempty,gte=0"`
	OtherFixedCosts   *float64 `json:"other_fixed_costs,omitempty" validate:"omitempty,gte=0"`
}

// Apply переносит присутствующие поля обновления в запись.
func (u UpdateRecordFields) Apply(r *Record) {
	if u.ServicesRevenue != nil {
		r.ServicesRevenue = *u.ServicesRevenue
	}
	if u.ProductsRevenue != nil {
		r.ProductsRevenue = *u.ProductsRevenue
	}
	if u.OtherRevenue != nil {
		r.OtherRevenue = *u.OtherRevenue
	}
	if u.GoodsCost != nil {
		r.GoodsCost = *u.GoodsCost
	}
	if u.Commissions != nil {
		r.Commissions = *u.Commissions
	}
	if u.VariableMarketing != nil {
		r.VariableMarketing = *u.VariableMarketing
	}
	if u.Rent != nil {
		r.Rent = *u.Rent
	}
	if u.Salaries != nil {
		r.Salaries = *u.Salaries
	}
	if u.Utilities != nil {
		r.Utilities = *u.Utilities
	}
	if u.FixedMarketing != nil {
		r.FixedMarketing = *u.FixedMarketing
	}
	if u.OtherFixedCosts != nil {
		r.OtherFixedCosts = *u.OtherFixedCosts
	}
}

// DummyRecord используется для приёма данных новой записи из JSON-запроса,
// прежде чем конвертировать их в Record. Денежные поля опциональны
// и по умолчанию равны нулю.
type DummyRecord struct {
	Year  int `json:"year" validate:"required,gte=2000"`
	Month int `json:"month" validate:"required,gte=1,lte=12"`

	ServicesRevenue   float64 `json:"services_revenue" validate:"gte=0"`
	ProductsRevenue   float64 `json:"products_revenue" validate:"gte=0"`
	OtherRevenue      float64 `json:"other_revenue" validate:"gte=0"`
	GoodsCost         float64 `json:"goods_cost" validate:"gte=0"`
	Commissions       float64 `json:"commissions" validate:"gte=0"`
	VariableMarketing float64 `json:"variable_marketing" validate:"gte=0"`
	Rent              float64 `json:"rent" validate:"gte=0"`
	Salaries          float64 `json:"salaries" validate:"gte=0"`
	Utilities         float64 `json:"utilities" validate:"gte=0"`
	FixedMarketing    float64 `json:"fixed_marketing" validate:"gte=0"`
	OtherFixedCosts   float64 `json:"other_fixed_costs" validate:"gte=0"`
}

// Package plan содержит статическую конфигурацию тарифов и чистые функции
// проверки лимитов. Таблица тарифов неизменяема во время работы процесса:
// изменение цен и лимитов требует новой выкладки.
package plan

import "errors"

// ErrLimitExceeded возвращается, когда тариф запрещает операцию
// или период вне разрешённого окна истории.
var ErrLimitExceeded = errors.New("plan limit exceeded")

// Названия тарифов.
const (
	TierFree    = "free"
	TierPro     = "pro"
	TierPremium = "premium"
)

// Названия функций, ограничиваемых тарифом.
const (
	FeaturePDFExport         = "pdf_export"
	FeatureEmailReports      = "email_reports"
	FeatureAdvancedSimulator = "advanced_simulator"
)

// freeHistoryMonths — глубина истории для бесплатного тарифа.
const freeHistoryMonths = 3

// Limits описывает лимиты одного тарифа. MaxHistoryMonths равный нулю
// означает отсутствие ограничения по глубине истории.
type Limits struct {
	MaxHistoryMonths  int  `json:"max_history_months"`
	PDFExport         bool `json:"pdf_export"`
	EmailReports      bool `json:"email_reports"`
	AdvancedSimulator bool `json:"advanced_simulator"`
}

// Plan описывает один тариф: человекочитаемое название, цену в месяц,
// список возможностей и лимиты.
type Plan struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Features []string `json:"features"`
	Limits   Limits   `json:"limits"`
}

var plans = map[string]Plan{
	TierFree: {
		Name:  "Free",
		Price: 0,
		Features: []string{
			"1 business profile",
			"3 months of history",
			"Basic dashboard",
			"Monthly data entry",
		},
		Limits: Limits{
			MaxHistoryMonths: freeHistoryMonths,
		},
	},
	TierPro: {
		Name:  "Pro",
		Price: 19.99,
		Features: []string{
			"Unlimited history",
			"PDF export",
			"Email reports",
			"Advanced dashboard",
		},
		Limits: Limits{
			PDFExport:    true,
			EmailReports: true,
		},
	},
	TierPremium: {
		Name:  "Premium",
		Price: 39.99,
		Features: []string{
			"Everything in Pro",
			"Advanced simulator",
			"Priority support",
		},
		Limits: Limits{
			PDFExport:         true,
			EmailReports:      true,
			AdvancedSimulator: true,
		},
	},
}

// Get возвращает тариф по названию. Неизвестный тариф трактуется как free.
func Get(tier string) Plan {
	if p, ok := plans[tier]; ok {
		return p
	}
	return plans[TierFree]
}

// All возвращает копию таблицы тарифов для публичного списка.
func All() map[string]Plan {
	out := make(map[string]Plan, len(plans))
	for k, v := range plans {
		out[k] = v
	}
	return out
}

// Exists сообщает, описан ли такой тариф в таблице.
func Exists(tier string) bool {
	_, ok := plans[tier]
	return ok
}

// HasFeature сообщает, доступна ли функция на данном тарифе.
func HasFeature(tier, feature string) bool {
	limits := Get(tier).Limits
	switch feature {
	case FeaturePDFExport:
		return limits.PDFExport
	case FeatureEmailReports:
		return limits.EmailReports
	case FeatureAdvancedSimulator:
		return limits.AdvancedSimulator
	default:
		return false
	}
}

// IsWithinHistoryWindow проверяет, попадает ли период записи в разрешённое
// тарифом окно истории относительно текущего месяца. Дистанция считается
// в календарных месяцах: (nowYear-recordYear)*12 + (nowMonth-recordMonth).
func IsWithinHistoryWindow(tier string, recordYear, recordMonth, nowYear, nowMonth int) bool {
	limits := Get(tier).Limits
	if limits.MaxHistoryMonths == 0 {
		return true
	}
	distance := (nowYear-recordYear)*12 + (nowMonth - recordMonth)
	return distance <= limits.MaxHistoryMonths
}

// EffectiveWindowMonths возвращает фактическое окно трендов:
// запрошенное число месяцев, урезанное лимитом тарифа.
func EffectiveWindowMonths(tier string, requested int) int {
	limits := Get(tier).Limits
	if limits.MaxHistoryMonths > 0 && requested > limits.MaxHistoryMonths {
		return limits.MaxHistoryMonths
	}
	return requested
}

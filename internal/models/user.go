// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, профиль бизнеса и состояние подписки.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                 string     `json:"uid"`                   // Уникальный идентификатор пользователя
	Email               string     `json:"email"`                 // Электронная почта (уникальная)
	PasswordHash        string     `json:"-"`                     // Хэш пароля пользователя
	FirstName           string     `json:"first_name"`            // Имя
	LastName            string     `json:"last_name"`             // Фамилия
	BusinessName        string     `json:"business_name"`         // Название бизнеса
	BusinessType        string     `json:"business_type"`         // Тип деятельности
	SubscriptionPlan    string     `json:"subscription_plan"`     // Тариф: free, pro или premium
	SubscriptionStatus  string     `json:"subscription_status"`   // Статус подписки: active, past_due, canceled
	SubscriptionEndDate *time.Time `json:"subscription_end_date"` // Дата окончания оплаченного периода
	ProviderCustomerID  *string    `json:"-"`                     // Идентификатор клиента у платёжного провайдера
	CreatedAt           time.Time  `json:"created_at"`
}

// UpdateProfileFields описывает частичное обновление профиля:
// применяются только непустые (не nil) поля.
type UpdateProfileFields struct {
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	BusinessName *string `json:"business_name,omitempty"`
	BusinessType *string `json:"business_type,omitempty"`
}

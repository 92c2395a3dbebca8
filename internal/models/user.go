// Package models содержит доменные структуры кампаний WhatsApp:
// пользователей, их подписки, группы рассылки, шаблоны и расписания,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// Коды типов услуг, приходящие из сервиса подписок.
const (
	ServiceTypeCommodity = "1"
	ServiceTypeEquity    = "2"
	ServiceTypeFnO       = "3"
)

// User представляет запись из роcтера сервиса пользователей.
type User struct {
	ID             string    `json:"id"`             // Уникальный идентификатор пользователя
	Name           string    `json:"name"`           // Имя
	MobileNumber   string    `json:"mobileNumber"`   // Номер телефона
	Email          string    `json:"email"`          // Электронная почта
	CreatedOn      time.Time `json:"createdOn"`      // Дата регистрации
	IsKYC          bool      `json:"isKYC"`          // Пройдена ли KYC-верификация
	ReferralMode   string    `json:"referralMode"`   // Канал привлечения: CP, AP или RA
	LandingPageURL string    `json:"landingPageUrl"` // Лендинг, с которого пришёл пользователь
}

// Subscription представляет одну подписку пользователя,
// уже приведённую к плоскому виду из ответа сервиса подписок.
type Subscription struct {
	Amount      float64 `json:"amount"`      // Сумма платежа, 0 если отсутствует
	RAName      string  `json:"RAname"`      // Имя аналитика (эксперта), "N/A" если отсутствует
	PlanType    string  `json:"planType"`    // Название тарифного плана
	ServiceType string  `json:"serviceType"` // Код типа услуги: "1", "2", "3"
}

// ServiceTypeName возвращает человеко-читаемое название типа услуги.
// Нераспознанные коды отображаются как "Unknown".
func (s Subscription) ServiceTypeName() string {
	switch s.ServiceType {
	case ServiceTypeCommodity:
		return "Commodity"
	case ServiceTypeEquity:
		return "Equity"
	case ServiceTypeFnO:
		return "F&O"
	default:
		return "Unknown"
	}
}

// CombinedUser — денормализованная запись: пользователь с прикреплённым
// списком его подписок. Список может быть пустым, но никогда не частичным:
// агрегатор публикует подписки только после завершения всей пачки запросов.
type CombinedUser struct {
	User
	Subscriptions []Subscription `json:"subscriptions"`
}

// TotalAmount возвращает сумму платежей по всем подпискам пользователя.
func (u CombinedUser) TotalAmount() float64 {
	var sum float64
	for _, sub := range u.Subscriptions {
		sum += sub.Amount
	}
	return sum
}

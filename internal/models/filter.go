package models

import "time"

// Значения критерия по количеству платежей.
const (
	PaymentCountOne  = "one"  // ровно одна подписка
	PaymentCountMore = "more" // больше одной подписки
)

// AmountRange задаёт границы суммарной стоимости подписок пользователя.
// Обе границы включительные; фильтр применяется только когда заданы обе.
type AmountRange struct {
	Start *float64 `json:"start,omitempty"`
	End   *float64 `json:"end,omitempty"`
}

// DateRange задаёт период по дате регистрации пользователя.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// FilterCriteria — набор критериев фильтра списка пользователей.
// Пустой или отсутствующий критерий означает отсутствие фильтрации
// по этому измерению. Пользователь проходит фильтр, только если
// удовлетворяет каждому непустому критерию (логическое И).
type FilterCriteria struct {
	KYC               []string     `json:"kyc,omitempty" validate:"omitempty,dive,oneof=Yes No"`
	ReferralModes     []string     `json:"referralModes,omitempty" validate:"omitempty,dive,oneof=CP AP RA"`
	LandingURLs       []string     `json:"landingUrls,omitempty"`
	SubscriptionPlans []string     `json:"subscriptionPlans,omitempty"`
	SubscriptionTypes []string     `json:"subscriptionTypes,omitempty"`
	RANames           []string     `json:"raNames,omitempty"`
	AmountRange       *AmountRange `json:"amountRange,omitempty"`
	PaymentCounts     []string     `json:"paymentCounts,omitempty" validate:"omitempty,dive,oneof=one more"`
	Groups            []string     `json:"groups,omitempty"`
	DateRange         *DateRange   `json:"dateRange,omitempty"`
}

// IsEmpty сообщает, что ни один критерий не задан.
func (f FilterCriteria) IsEmpty() bool {
	return len(f.KYC) == 0 &&
		len(f.ReferralModes) == 0 &&
		len(f.LandingURLs) == 0 &&
		len(f.SubscriptionPlans) == 0 &&
		len(f.SubscriptionTypes) == 0 &&
		len(f.RANames) == 0 &&
		(f.AmountRange == nil || f.AmountRange.Start == nil || f.AmountRange.End == nil) &&
		len(f.PaymentCounts) == 0 &&
		len(f.Groups) == 0 &&
		(f.DateRange == nil || (f.DateRange.Start == nil && f.DateRange.End == nil))
}

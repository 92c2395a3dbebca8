// Package filterengine реализует чистый предикат фильтра списка пользователей.
// Пользователь проходит фильтр, только если удовлетворяет каждому непустому
// критерию; внутри критерия достаточно совпадения с любым из выбранных
// значений. Результат детерминирован: ни ввода-вывода, ни скрытого состояния.
package filterengine

import (
	"strings"

	"github.com/copartnerin/campaign-aggregator/internal/models"
)

// Engine хранит неизменяемый индекс принадлежности пользователей к группам
// рассылки для критерия по группам. Остальные измерения вычисляются
// напрямую по записи пользователя.
type Engine struct {
	groupsByUserID map[string]map[string]struct{}
}

// New строит движок по актуальному составу групп. groups может быть nil,
// тогда критерий по группам не пройдёт ни один пользователь.
func New(groups []models.Group) Engine {
	index := make(map[string]map[string]struct{})
	for _, g := range groups {
		for _, u := range g.Users {
			if index[u.UserID] == nil {
				index[u.UserID] = make(map[string]struct{})
			}
			index[u.UserID][g.GroupName] = struct{}{}
		}
	}
	return Engine{groupsByUserID: index}
}

// Matches сообщает, проходит ли пользователь фильтр.
func (e Engine) Matches(u models.CombinedUser, f models.FilterCriteria) bool {
	if !matchKYC(u, f.KYC) {
		return false
	}
	if !matchReferralMode(u, f.ReferralModes) {
		return false
	}
	if !matchLandingURL(u, f.LandingURLs) {
		return false
	}
	if !matchSubscriptionField(u, f.SubscriptionPlans, func(s models.Subscription) string { return s.PlanType }) {
		return false
	}
	if !matchSubscriptionType(u, f.SubscriptionTypes) {
		return false
	}
	if !matchSubscriptionField(u, f.RANames, func(s models.Subscription) string { return s.RAName }) {
		return false
	}
	if !matchAmountRange(u, f.AmountRange) {
		return false
	}
	if !matchPaymentCount(u, f.PaymentCounts) {
		return false
	}
	if !e.matchGroups(u, f.Groups) {
		return false
	}
	if !matchDateRange(u, f.DateRange) {
		return false
	}
	return true
}

func matchKYC(u models.CombinedUser, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	value := "No"
	if u.IsKYC {
		value = "Yes"
	}
	return containsValue(selected, value)
}

func matchReferralMode(u models.CombinedUser, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	mode := u.ReferralMode
	if mode == "" {
		mode = "N/A"
	}
	return containsValue(selected, mode)
}

// matchLandingURL — вхождение подстроки: лендинги содержат реферальные
// хвосты, а выбранное значение может быть их общим префиксом.
func matchLandingURL(u models.CombinedUser, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, value := range selected {
		if strings.Contains(u.LandingPageURL, value) {
			return true
		}
	}
	return false
}

// matchSubscriptionField — без учёта регистра, по любой из подписок
// пользователя и любому из выбранных значений.
func matchSubscriptionField(u models.CombinedUser, selected []string, field func(models.Subscription) string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, sub := range u.Subscriptions {
		haystack := strings.ToLower(field(sub))
		for _, value := range selected {
			if strings.Contains(haystack, strings.ToLower(value)) {
				return true
			}
		}
	}
	return false
}

// matchSubscriptionType сопоставляет и сырой код типа услуги,
// и его отображаемое название, чтобы фильтр принимал оба варианта.
func matchSubscriptionType(u models.CombinedUser, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, sub := range u.Subscriptions {
		raw := strings.ToLower(sub.ServiceType)
		mapped := strings.ToLower(sub.ServiceTypeName())
		for _, value := range selected {
			needle := strings.ToLower(value)
			if strings.Contains(raw, needle) || strings.Contains(mapped, needle) {
				return true
			}
		}
	}
	return false
}

// matchAmountRange проверяет сумму платежей по всем подпискам.
// Обе границы включительные; без обеих границ фильтра нет.
func matchAmountRange(u models.CombinedUser, r *models.AmountRange) bool {
	if r == nil || r.Start == nil || r.End == nil {
		return true
	}
	total := u.TotalAmount()
	return total >= *r.Start && total <= *r.End
}

func matchPaymentCount(u models.CombinedUser, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	count := len(u.Subscriptions)
	for _, value := range selected {
		switch value {
		case models.PaymentCountOne:
			if count == 1 {
				return true
			}
		case models.PaymentCountMore:
			if count > 1 {
				return true
			}
		}
	}
	return false
}

func (e Engine) matchGroups(u models.CombinedUser, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	memberships, ok := e.groupsByUserID[u.ID]
	if !ok {
		return false
	}
	for _, groupName := range selected {
		if _, ok := memberships[groupName]; ok {
			return true
		}
	}
	return false
}

func matchDateRange(u models.CombinedUser, r *models.DateRange) bool {
	if r == nil {
		return true
	}
	if r.Start != nil && u.CreatedOn.Before(*r.Start) {
		return false
	}
	if r.End != nil && u.CreatedOn.After(*r.End) {
		return false
	}
	return true
}

func containsValue(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

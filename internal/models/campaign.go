package models

import "time"

// Статусы запланированной рассылки. Перевод в "sent" выполняет
// воркер whatsapp-бэкенда, этот сервис статус не меняет.
const (
	ScheduleStatusPending = "pending"
	ScheduleStatusSent    = "sent"
)

// GroupUser — участник группы рассылки.
type GroupUser struct {
	UserID       string `json:"userId"`
	Name         string `json:"name"`
	MobileNumber string `json:"mobileNumber"`
	RAName       string `json:"raName,omitempty"`
}

// Group — именованная группа пользователей для рассылки кампании.
type Group struct {
	ID            string      `json:"_id"`
	GroupName     string      `json:"groupName"`
	Users         []GroupUser `json:"users"`
	DateCreatedOn time.Time   `json:"dateCreatedOn"`
}

// Template — переиспользуемый шаблон сообщения кампании.
type Template struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	CampaignName   string    `json:"campaignName"`
	APIKey         string    `json:"apiKey"`
	TemplateParams []string  `json:"templateParams"`
	MediaURL       string    `json:"mediaUrl,omitempty"`
	DateCreated    time.Time `json:"dateCreated"`
}

// ScheduleGroupRef — денормализованная ссылка расписания на группу.
// Бэкенд возвращает её вложенным объектом; у осиротевших расписаний
// ссылка может отсутствовать.
type ScheduleGroupRef struct {
	ID            string    `json:"_id"`
	GroupName     string    `json:"groupName"`
	DateCreatedOn time.Time `json:"dateCreatedOn"`
}

// Schedule — запланированная отправка: связка группы и шаблона на время.
type Schedule struct {
	ID            string            `json:"_id"`
	GroupID       *ScheduleGroupRef `json:"groupId"`
	TemplateID    string            `json:"templateId"`
	ScheduledTime time.Time         `json:"scheduledTime"`
	Status        string            `json:"status"`
}

// DummyGroup используется для приёма данных создания группы из JSON-запроса
// до их валидации и отправки в whatsapp-бэкенд.
type DummyGroup struct {
	GroupName string      `json:"groupName" validate:"required"`
	Users     []GroupUser `json:"users" validate:"required,min=1"`
}

// DummyTemplate используется для приёма данных создания шаблона из JSON-запроса.
type DummyTemplate struct {
	Name           string   `json:"name" validate:"required"`
	CampaignName   string   `json:"campaignName" validate:"required"`
	APIKey         string   `json:"apiKey" validate:"required"`
	TemplateParams []string `json:"templateParams"`
	MediaURL       string   `json:"mediaUrl,omitempty"`
}

// DummySchedule используется для приёма данных создания расписания.
// Время приходит строкой RFC3339, статус проставляется сервисом.
type DummySchedule struct {
	GroupID       string `json:"groupId" validate:"required"`
	TemplateID    string `json:"templateId" validate:"required"`
	ScheduledTime string `json:"scheduledTime" validate:"required"`
}

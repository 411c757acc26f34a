// Package database предоставляет модели данных и репозиторий для работы с PostgreSQL.
// Использует GORM ORM с prepared statements для защиты от SQL injection.
package database

import "time"

// Статусы заявки.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusReady     = "ready" // анкета заполнена до последней страницы, финальная отправка не выполнялась
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Application представляет один проход по анкете AVATS.
type Application struct {
	ID                uint      `gorm:"primaryKey"`
	ApplicationNumber string    `gorm:"type:varchar(32);index"`                     // Номер заявки, выданный сайтом
	Status            string    `gorm:"type:varchar(32);not null;default:'pending'"` // Статус прохода
	LastPage          string    `gorm:"type:varchar(32)"`                            // Последнее распознанное состояние (form:3, error, ...)
	ProfilePath       string    `gorm:"type:text"`                                   // Файл анкеты заявителя
	ResultSummary     string    `gorm:"type:text"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

// PageStep представляет одно действие автомата состояний.
type PageStep struct {
	ID            uint      `gorm:"primaryKey"`
	ApplicationID uint      `gorm:"index;not null"`
	StepNo        int       `gorm:"not null"`
	Page          string    `gorm:"type:varchar(32);not null"` // Распознанное состояние страницы
	Action        string    `gorm:"type:varchar(64);not null"` // fill, refresh, retrieve, apply, ...
	URL           string    `gorm:"type:text"`
	Result        string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

// LlmLog представляет лог запроса к LLM.
// Сохраняет промпт, ответ, модель и количество использованных токенов.
type LlmLog struct {
	ID            uint      `gorm:"primaryKey"`
	ApplicationID *uint     `gorm:"index"`                     // ID заявки (опционально)
	Role          string    `gorm:"type:varchar(16);not null"` // Роль (user, assistant, error)
	PromptText    string    `gorm:"type:text;not null"`
	ResponseText  string    `gorm:"type:text"`
	Model         string    `gorm:"type:varchar(64)"`
	TokensUsed    int
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

package database

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) CreateApplication(a *Application) error {
	return r.db.Create(a).Error
}

func (r *ApplicationRepository) GetApplicationByID(id uint) (*Application, error) {
	var app Application
	if err := r.db.First(&app, id).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) GetApplicationByNumber(number string) (*Application, error) {
	var app Application
	if err := r.db.Where("application_number = ?", number).Order("id DESC").First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) ListApplications(limit, offset int) ([]Application, error) {
	var apps []Application
	if err := r.db.Order("id DESC").Limit(limit).Offset(offset).Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// LatestResumable возвращает последнюю незавершенную заявку, у которой уже есть номер.
// Если такой нет, возвращает (nil, nil).
func (r *ApplicationRepository) LatestResumable() (*Application, error) {
	var app Application
	err := r.db.
		Where("application_number <> '' AND status IN ?", []string{StatusPending, StatusRunning, StatusFailed, StatusReady}).
		Order("updated_at DESC").
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) UpdateStatus(id uint, status, summary string) error {
	return r.db.Model(&Application{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"result_summary": summary,
		}).Error
}

func (r *ApplicationRepository) SetApplicationNumber(id uint, number string) error {
	return r.db.Model(&Application{}).Where("id = ?", id).Update("application_number", number).Error
}

func (r *ApplicationRepository) SetLastPage(id uint, page string) error {
	return r.db.Model(&Application{}).Where("id = ?", id).Update("last_page", page).Error
}

func (r *ApplicationRepository) CreateStep(s *PageStep) error {
	return r.db.Create(s).Error
}

func (r *ApplicationRepository) GetStepsByApplicationID(id uint) ([]PageStep, error) {
	var steps []PageStep
	if err := r.db.Where("application_id = ?", id).Order("step_no ASC, id ASC").Find(&steps).Error; err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *ApplicationRepository) GetLlmLogsByApplicationID(id uint) ([]LlmLog, error) {
	var logs []LlmLog
	if err := r.db.Where("application_id = ?", id).Order("id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// LogLLMRequest реализует llm.Logger.
func (r *ApplicationRepository) LogLLMRequest(ctx context.Context, applicationID *uint, role, promptText, responseText, model string, tokensUsed int) error {
	return r.db.WithContext(ctx).Create(&LlmLog{
		ApplicationID: applicationID,
		Role:          role,
		PromptText:    promptText,
		ResponseText:  responseText,
		Model:         model,
		TokensUsed:    tokensUsed,
	}).Error
}

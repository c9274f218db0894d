// Package services implements the server-side use cases: parse orchestration
// with quota gating, expense CRUD, metadata sync and audio presigning.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/logging"
	"github.com/aguerraochoa/Speakance-sub000/internal/parsing"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/classify"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/repomanager"
	"github.com/aguerraochoa/Speakance-sub000/internal/textnorm"
)

// Parse statuses on the wire.
const (
	StatusSaved         = "saved"
	StatusNeedsReview   = "needs_review"
	StatusRejectedLimit = "rejected_limit"
	StatusError         = "error"
)

// ParseRequest is the wire shape of a parse call.
type ParseRequest struct {
	ClientExpenseID      string  `json:"client_expense_id"`
	Source               string  `json:"source"`
	CapturedAtDevice     string  `json:"captured_at_device"`
	Timezone             string  `json:"timezone"`
	AudioDurationSeconds float64 `json:"audio_duration_seconds,omitempty"`
	AudioObjectKey       string  `json:"audio_object_key,omitempty"`
	RawText              string  `json:"raw_text,omitempty"`
	CurrencyHint         string  `json:"currency_hint,omitempty"`
	LanguageHint         string  `json:"language_hint,omitempty"`
	AllowAutoSave        bool    `json:"allow_auto_save"`
	TripID               string  `json:"trip_id,omitempty"`
	TripName             string  `json:"trip_name,omitempty"`
	PaymentMethodID      string  `json:"payment_method_id,omitempty"`
	PaymentMethodName    string  `json:"payment_method_name,omitempty"`
}

// ExpenseDTO is the row echo returned to clients.
type ExpenseDTO struct {
	ID               string          `json:"id"`
	ClientExpenseID  string          `json:"client_expense_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Category         string          `json:"category"`
	CategoryID       string          `json:"category_id,omitempty"`
	Description      string          `json:"description,omitempty"`
	Merchant         string          `json:"merchant,omitempty"`
	TripID           string          `json:"trip_id,omitempty"`
	PaymentMethodID  string          `json:"payment_method_id,omitempty"`
	ExpenseDate      string          `json:"expense_date"`
	CapturedAtDevice time.Time       `json:"captured_at_device"`
	SyncedAt         *time.Time      `json:"synced_at,omitempty"`
	Source           string          `json:"source"`
	ParseStatus      string          `json:"parse_status"`
	ParseConfidence  float64         `json:"parse_confidence,omitempty"`
	RawText          string          `json:"raw_text,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ParseResponse is the wire shape of a parse result.
type ParseResponse struct {
	Status  string      `json:"status"`
	Expense *ExpenseDTO `json:"expense,omitempty"`
	Parse   *ParseInfo  `json:"parse,omitempty"`
	Usage   *UsageInfo  `json:"usage,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type ParseInfo struct {
	Confidence  float64 `json:"confidence"`
	RawText     string  `json:"raw_text,omitempty"`
	NeedsReview bool    `json:"needs_review"`
}

type UsageInfo struct {
	DailyVoiceUsed  int `json:"daily_voice_used"`
	DailyVoiceLimit int `json:"daily_voice_limit"`
}

// Transcriber turns an uploaded audio object into raw text. Speech-to-text
// is an external collaborator; the service only consumes the interface.
type Transcriber interface {
	Transcribe(ctx context.Context, objectKey string, durationSeconds float64) (string, error)
}

// ParseService gates quota, runs extraction and persists the resulting row.
type ParseService struct {
	repos       repomanager.RepositoryManager
	engine      *parsing.Engine
	transcriber Transcriber // nil when no speech-to-text is wired
	threshold   float64
	log         logging.Logger
}

func NewParseService(repos repomanager.RepositoryManager, engine *parsing.Engine, transcriber Transcriber, autoSaveThreshold float64, log logging.Logger) *ParseService {
	return &ParseService{
		repos:       repos,
		engine:      engine,
		transcriber: transcriber,
		threshold:   autoSaveThreshold,
		log:         log,
	}
}

func (s *ParseService) Parse(ctx context.Context, userID string, req *ParseRequest) (*ParseResponse, error) {
	capturedAt, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	day := localDay(capturedAt, req.Timezone)

	if req.Source == string(models.SourceVoice) {
		used, err := s.repos.Usage().VoiceCount(ctx, userID, day)
		if err != nil {
			return nil, err
		}
		if used >= user.DailyVoiceLimit {
			return &ParseResponse{
				Status: StatusRejectedLimit,
				Usage:  &UsageInfo{DailyVoiceUsed: used, DailyVoiceLimit: user.DailyVoiceLimit},
			}, nil
		}
	}

	rawText, err := s.resolveRawText(ctx, req)
	if err != nil {
		return &ParseResponse{Status: StatusError, Error: err.Error()}, nil
	}

	snap, categories := s.loadCategories(ctx, userID)

	defaultCurrency := user.DefaultCurrency
	if snap != nil && snap.Profile.DefaultCurrency != "" {
		defaultCurrency = snap.Profile.DefaultCurrency
	}

	result := s.engine.Parse(ctx, parsing.Request{
		RawText:         rawText,
		CurrencyHint:    req.CurrencyHint,
		LanguageHint:    req.LanguageHint,
		DefaultCurrency: defaultCurrency,
		Categories:      categories,
		CapturedAt:      capturedAt,
	})

	if strings.EqualFold(result.Draft.Category, common.DefaultCategoryName) {
		s.suggestCategory(ctx, userID, &result)
	}

	var usageInfo *UsageInfo
	if req.Source == string(models.SourceVoice) {
		used, err := s.repos.Usage().IncrementVoice(ctx, userID, day)
		if err != nil {
			return nil, err
		}
		usageInfo = &UsageInfo{DailyVoiceUsed: used, DailyVoiceLimit: user.DailyVoiceLimit}
	}

	autoSaved := req.AllowAutoSave && result.Confidence >= s.threshold

	now := time.Now().UTC()
	expense := &models.Expense{
		ID:               uuid.NewString(),
		UserID:           userID,
		ClientExpenseID:  req.ClientExpenseID,
		Amount:           result.Draft.Amount,
		Currency:         result.Draft.Currency,
		Category:         result.Draft.Category,
		CategoryID:       categoryIDByName(snap, result.Draft.Category),
		Description:      result.Draft.Description,
		Merchant:         result.Draft.Merchant,
		TripID:           req.TripID,
		PaymentMethodID:  req.PaymentMethodID,
		ExpenseDate:      result.Draft.ExpenseDate,
		CapturedAtDevice: capturedAt,
		SyncedAt:         now,
		Source:           models.Source(req.Source),
		ParseStatus:      models.ParseAuto,
		ParseConfidence:  result.Confidence,
		RawText:          rawText,
	}

	stored, err := s.repos.Expenses().UpsertByClientID(ctx, expense)
	if err != nil {
		return nil, fmt.Errorf("persisting expense: %w", err)
	}

	status := StatusNeedsReview
	if autoSaved {
		status = StatusSaved
	}

	s.log.Info(ctx, "parsed capture",
		"client_expense_id", req.ClientExpenseID,
		"status", status,
		"confidence", result.Confidence,
		"rules", result.FromRules)

	return &ParseResponse{
		Status:  status,
		Expense: ToExpenseDTO(stored),
		Parse: &ParseInfo{
			Confidence:  result.Confidence,
			RawText:     rawText,
			NeedsReview: !autoSaved,
		},
		Usage: usageInfo,
	}, nil
}

// validate enforces the request contract. Violations carry common.ErrValidation.
func (s *ParseService) validate(req *ParseRequest) (time.Time, error) {
	if req.ClientExpenseID == "" {
		return time.Time{}, fmt.Errorf("%w: client_expense_id is required", common.ErrValidation)
	}
	if req.Source != string(models.SourceVoice) && req.Source != string(models.SourceText) {
		return time.Time{}, fmt.Errorf("%w: source must be voice or text", common.ErrValidation)
	}
	capturedAt, err := time.Parse(time.RFC3339, req.CapturedAtDevice)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: captured_at_device must be RFC 3339", common.ErrValidation)
	}
	if req.Source == string(models.SourceVoice) {
		if req.AudioDurationSeconds > common.MaxVoiceDurationSeconds {
			return time.Time{}, fmt.Errorf("%w: audio duration exceeds %d seconds", common.ErrValidation, common.MaxVoiceDurationSeconds)
		}
		if req.RawText == "" && req.AudioObjectKey == "" {
			return time.Time{}, fmt.Errorf("%w: voice capture needs raw_text or an audio reference", common.ErrValidation)
		}
	}
	if req.Source == string(models.SourceText) && strings.TrimSpace(req.RawText) == "" {
		return time.Time{}, fmt.Errorf("%w: raw_text is required for text captures", common.ErrValidation)
	}
	return capturedAt, nil
}

// resolveRawText prefers the provided transcript and only transcribes when
// an audio object is the sole input.
func (s *ParseService) resolveRawText(ctx context.Context, req *ParseRequest) (string, error) {
	if strings.TrimSpace(req.RawText) != "" {
		return req.RawText, nil
	}
	if s.transcriber == nil {
		return "", fmt.Errorf("transcription unavailable")
	}
	text, err := s.transcriber.Transcribe(ctx, req.AudioObjectKey, req.AudioDurationSeconds)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("transcription produced no text")
	}
	return text, nil
}

func (s *ParseService) loadCategories(ctx context.Context, userID string) (*models.MetadataSnapshot, []textnorm.AliasSet) {
	snap, err := s.repos.Metadata().Get(ctx, userID)
	if err != nil {
		return nil, nil
	}
	sets := make([]textnorm.AliasSet, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		sets = append(sets, textnorm.AliasSet{Name: c.Name, Aliases: c.Hints})
	}
	return snap, sets
}

// suggestCategory consults the bayesian suggester when alias matching left
// the draft on the default category.
func (s *ParseService) suggestCategory(ctx context.Context, userID string, result *parsing.Result) {
	history, err := s.repos.Expenses().TrainingRows(ctx, userID)
	if err != nil {
		s.log.Warn(ctx, "loading training rows failed", "error", err)
		return
	}
	text := result.Draft.Description
	if text == "" {
		text = result.Draft.Merchant
	}
	if suggestion := classify.NewSuggester(history).Suggest(text); suggestion != "" {
		result.Draft.Category = suggestion
	}
}

func categoryIDByName(snap *models.MetadataSnapshot, name string) string {
	if snap == nil {
		return ""
	}
	for _, c := range snap.Categories {
		if strings.EqualFold(c.Name, name) {
			return c.ID
		}
	}
	return ""
}

func localDay(t time.Time, tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	return t.In(loc).Format("2006-01-02")
}

// ToExpenseDTO converts a stored row to its wire echo.
func ToExpenseDTO(e *models.Expense) *ExpenseDTO {
	dto := &ExpenseDTO{
		ID:               e.ID,
		ClientExpenseID:  e.ClientExpenseID,
		Amount:           e.Amount,
		Currency:         e.Currency,
		Category:         e.Category,
		CategoryID:       e.CategoryID,
		Description:      e.Description,
		Merchant:         e.Merchant,
		TripID:           e.TripID,
		PaymentMethodID:  e.PaymentMethodID,
		ExpenseDate:      e.ExpenseDate.Format("2006-01-02"),
		CapturedAtDevice: e.CapturedAtDevice,
		Source:           string(e.Source),
		ParseStatus:      string(e.ParseStatus),
		ParseConfidence:  e.ParseConfidence,
		RawText:          e.RawText,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
	if !e.SyncedAt.IsZero() {
		t := e.SyncedAt
		dto.SyncedAt = &t
	}
	return dto
}

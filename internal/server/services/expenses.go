package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aguerraochoa/Speakance-sub000/internal/common"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/models"
	"github.com/aguerraochoa/Speakance-sub000/internal/server/repositories/repomanager"
)

// UpdateExpenseRequest carries the full draft; updates are whole-row.
type UpdateExpenseRequest struct {
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	Category        string `json:"category"`
	CategoryID      string `json:"category_id,omitempty"`
	Description     string `json:"description,omitempty"`
	Merchant        string `json:"merchant,omitempty"`
	TripID          string `json:"trip_id,omitempty"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
	ExpenseDate     string `json:"expense_date"`
	RawText         string `json:"raw_text,omitempty"`
}

// ExpenseService is the CRUD contract over the canonical store.
type ExpenseService struct {
	repos repomanager.RepositoryManager
}

func NewExpenseService(repos repomanager.RepositoryManager) *ExpenseService {
	return &ExpenseService{repos: repos}
}

func (s *ExpenseService) Update(ctx context.Context, userID, id string, req *UpdateExpenseRequest) (*ExpenseDTO, error) {
	existing, err := s.repos.Expenses().GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: amount must be a positive decimal", common.ErrValidation)
	}
	expenseDate, err := time.Parse("2006-01-02", req.ExpenseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: expense_date must be YYYY-MM-DD", common.ErrValidation)
	}

	existing.Amount = amount
	existing.Currency = req.Currency
	existing.Category = req.Category
	existing.CategoryID = req.CategoryID
	existing.Description = req.Description
	existing.Merchant = req.Merchant
	existing.TripID = req.TripID
	existing.PaymentMethodID = req.PaymentMethodID
	existing.ExpenseDate = expenseDate
	existing.ParseStatus = models.ParseEdited
	if req.RawText != "" {
		existing.RawText = req.RawText
	}

	if err := s.repos.Expenses().Update(ctx, existing); err != nil {
		return nil, err
	}
	return ToExpenseDTO(existing), nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	return s.repos.Expenses().DeleteByID(ctx, userID, id)
}

func (s *ExpenseService) List(ctx context.Context, userID string) ([]*ExpenseDTO, error) {
	rows, err := s.repos.Expenses().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*ExpenseDTO, 0, len(rows))
	for _, e := range rows {
		out = append(out, ToExpenseDTO(e))
	}
	return out, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("amount must be greater than zero")
	}
	return d, nil
}

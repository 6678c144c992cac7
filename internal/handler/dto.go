// internal/handler/dto.go
package handler

import (
	"bytes"
	"card-advisor/internal/domain"
	"card-advisor/internal/notify"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	val "card-advisor/internal/validator"

	"github.com/go-playground/validator/v10"
)

type RecommendationRequest struct {
	MonthlyIncome     float64  `json:"monthlyIncome" validate:"required,gt=0"`
	CreditScore       int      `json:"creditScore" validate:"required,gt=0,lte=900"`
	SpendingHabits    []string `json:"spendingHabits"`
	PreferredBenefits string   `json:"preferredBenefits" validate:"benefit"`
}

func (r RecommendationRequest) Profile() domain.UserProfile {
	return domain.UserProfile{
		MonthlyIncome:     r.MonthlyIncome,
		CreditScore:       r.CreditScore,
		SpendingHabits:    domain.NormalizeTags(r.SpendingHabits),
		PreferredBenefits: domain.ParseBenefit(r.PreferredBenefits),
	}
}

// CardID accepts 7 as well as "7".
type CardID int

func (id *CardID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("card id %s is not an integer", b)
	}
	*id = CardID(n)
	return nil
}

func toInts(ids []CardID) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

type CompareRequest struct {
	CardIDs []CardID `json:"cardIds" validate:"required,min=1"`
}

type WhatsAppSendRequest struct {
	PhoneNumber string            `json:"phoneNumber" validate:"required,phone"`
	TemplateSID string            `json:"templateSid"`
	Variables   map[string]string `json:"variables"`
}

type SendRecommendationsRequest struct {
	PhoneNumber string           `json:"phoneNumber" validate:"required,phone"`
	CardIDs     []CardID         `json:"cardIds" validate:"required,min=1"`
	Cards       []notify.Summary `json:"cards"`
}

type SendResponse struct {
	Success    bool   `json:"success"`
	MessageSID string `json:"messageSid"`
	Status     string `json:"status"`
}

func validateStruct(v any) error {
	if err := val.Validate.Struct(v); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		var errs []string
		for _, e := range verrs {
			errs = append(errs, fieldErrorToString(e))
		}
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	return nil
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "benefit":
		return fmt.Sprintf("%s must be one of cashback, travel_points, rewards, lounge_access, insurance, zero_fees", e.Field())
	case "phone":
		return fmt.Sprintf("%s must be in E.164 format, e.g. +919999000000", e.Field())
	case "min":
		if e.Param() == "1" {
			return fmt.Sprintf("%s must not be empty", e.Field())
		}
		return fmt.Sprintf("%s is too short", e.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}

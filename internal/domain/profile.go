package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPriceUnit     = "per hour"
	ProfileStatusPending = "pending"
)

// Profile is an account's service-provider listing. It references its owning
// account through AccountID; an account has at most one profile.
type Profile struct {
	ProfileID         string    `json:"id" dynamodbav:"profile_id"`
	AccountID         string    `json:"user" dynamodbav:"account_id"`
	Name              string    `json:"name" dynamodbav:"name"`
	Email             string    `json:"email" dynamodbav:"email"`
	MobileNo          string    `json:"mobile_no" dynamodbav:"mobile_no"`
	SecondaryMobileNo string    `json:"secondary_mobile_no,omitempty" dynamodbav:"secondary_mobile_no,omitempty"`
	State             string    `json:"state" dynamodbav:"state"`
	District          string    `json:"district" dynamodbav:"district"`
	City              string    `json:"city" dynamodbav:"city"`
	ServiceCategory   string    `json:"service_category" dynamodbav:"service_category"`
	ServiceName       string    `json:"service_name" dynamodbav:"service_name"`
	Designation       string    `json:"designation,omitempty" dynamodbav:"designation,omitempty"`
	Experience        string    `json:"experience" dynamodbav:"experience"`
	ServicePrice      *float64  `json:"service_price,omitempty" dynamodbav:"service_price,omitempty"`
	PriceUnit         string    `json:"price_unit" dynamodbav:"price_unit"`
	NeedSupport       bool      `json:"need_support" dynamodbav:"need_support"`
	Description       string    `json:"description,omitempty" dynamodbav:"description,omitempty"`
	Status            string    `json:"status" dynamodbav:"status"`
	CreatedAt         time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time `json:"updated" dynamodbav:"updated_at"`

	// Lower-cased copies backing the case-insensitive service lookup.
	ServiceNameKey     string `json:"-" dynamodbav:"service_name_lc"`
	ServiceCategoryKey string `json:"-" dynamodbav:"service_category_lc"`
}

// NormalizeKey is the canonical form used for case-insensitive lookups.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type CreateProfileRequest struct {
	Name              string        `json:"name" validate:"required"`
	Email             string        `json:"email" validate:"required,email"`
	MobileNo          string        `json:"mobile_no" validate:"required,mobile"`
	SecondaryMobileNo string        `json:"secondary_mobile_no" validate:"omitempty,mobile"`
	State             string        `json:"state" validate:"required"`
	District          string        `json:"district" validate:"required"`
	City              string        `json:"city" validate:"required"`
	ServiceCategory   string        `json:"service_category" validate:"required"`
	ServiceName       string        `json:"service_name" validate:"required"`
	Designation       string        `json:"designation"`
	Experience        string        `json:"experience" validate:"required"`
	ServicePrice      OptionalPrice `json:"service_price"`
	PriceUnit         string        `json:"price_unit"`
	NeedSupport       bool          `json:"need_support"`
	Description       string        `json:"description"`
}

// TrimSpace strips surrounding whitespace from every text field, so a
// blank value fails the required rules.
func (r *CreateProfileRequest) TrimSpace() {
	for _, f := range []*string{
		&r.Name, &r.Email, &r.MobileNo, &r.SecondaryMobileNo, &r.State, &r.District, &r.City,
		&r.ServiceCategory, &r.ServiceName, &r.Designation, &r.Experience, &r.PriceUnit, &r.Description,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// UpdateProfileRequest is a partial update: nil fields are left untouched.
type UpdateProfileRequest struct {
	Name              *string       `json:"name" validate:"omitempty,min=1"`
	Email             *string       `json:"email" validate:"omitempty,email"`
	MobileNo          *string       `json:"mobile_no" validate:"omitempty,mobile"`
	SecondaryMobileNo *string       `json:"secondary_mobile_no" validate:"omitempty,mobile"`
	State             *string       `json:"state" validate:"omitempty,min=1"`
	District          *string       `json:"district" validate:"omitempty,min=1"`
	City              *string       `json:"city" validate:"omitempty,min=1"`
	ServiceCategory   *string       `json:"service_category" validate:"omitempty,min=1"`
	ServiceName       *string       `json:"service_name" validate:"omitempty,min=1"`
	Designation       *string       `json:"designation"`
	Experience        *string       `json:"experience" validate:"omitempty,min=1"`
	ServicePrice      OptionalPrice `json:"service_price"`
	PriceUnit         *string       `json:"price_unit"`
	NeedSupport       *bool         `json:"need_support"`
	Description       *string       `json:"description"`
}

// TrimSpace strips surrounding whitespace from every present text field.
func (r *UpdateProfileRequest) TrimSpace() {
	for _, f := range []**string{
		&r.Name, &r.Email, &r.MobileNo, &r.SecondaryMobileNo, &r.State, &r.District, &r.City,
		&r.ServiceCategory, &r.ServiceName, &r.Designation, &r.Experience, &r.PriceUnit, &r.Description,
	} {
		if *f != nil {
			v := strings.TrimSpace(**f)
			*f = &v
		}
	}
}

// OptionalPrice distinguishes an absent price from an explicit clear.
// Set is true whenever the key was present in the JSON body; Value is nil
// for null or "" and holds the amount otherwise. Numeric strings are accepted.
type OptionalPrice struct {
	Set   bool
	Value *float64
}

// Price is a convenience constructor for a present, non-empty price.
func Price(v float64) OptionalPrice {
	return OptionalPrice{Set: true, Value: &v}
}

// ClearPrice is an explicit request to remove the stored price.
func ClearPrice() OptionalPrice {
	return OptionalPrice{Set: true}
}

func (p *OptionalPrice) UnmarshalJSON(b []byte) error {
	p.Set = true
	p.Value = nil
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		p.Value = &v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("service_price must be a number")
		}
		p.Value = &f
	default:
		return fmt.Errorf("service_price must be a number")
	}
	return nil
}

package domain

import (
	"strings"
	"time"
)

type Account struct {
	AccountID  string    `json:"id" dynamodbav:"account_id"`
	Name       string    `json:"name" dynamodbav:"name"`
	Email      string    `json:"email" dynamodbav:"email"`
	Mobile     string    `json:"mobile" dynamodbav:"mobile"`
	PinHash    string    `json:"-" dynamodbav:"pin_hash"`
	Verified   bool      `json:"verified" dynamodbav:"verified"`
	HasProfile bool      `json:"has_profile" dynamodbav:"has_profile"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

// AccountView is what reads of the current account return: either a
// BasicAccount or a ProfessionalAccount carrying its linked profile.
type AccountView interface {
	accountView()
}

type BasicAccount struct {
	Account
}

type ProfessionalAccount struct {
	Account
	Profile Profile `json:"profile"`
}

func (BasicAccount) accountView()        {}
func (ProfessionalAccount) accountView() {}

type UpdateAccountRequest struct {
	Name   *string `json:"name" validate:"omitempty,min=1"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Mobile *string `json:"mobile" validate:"omitempty,mobile"`
}

type ChangePinRequest struct {
	CurrentPin string `json:"current_pin" validate:"required"`
	NewPin     string `json:"new_pin" validate:"required,pin"`
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package requests

import (
	"time"

	"github.com/dmitrijs2005/xbackend/internal/server/models"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DateOfBirth     string `json:"date_of_birth"`
}

func (r *RegisterRequest) Validate(p Policy) error {
	r.Email = normalizeEmail(r.Email)
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, passwordRules(p)...),
		validation.Field(&r.ConfirmPassword, validation.Required, matches(r.Password)),
		validation.Field(&r.DateOfBirth, validation.Required, isDate),
	))
}

// BirthDate returns the parsed date_of_birth. Call after Validate.
func (r *RegisterRequest) BirthDate() time.Time {
	t, _ := parseDate(r.DateOfBirth)
	return t
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login does not apply the password policy so accounts created under an
// older policy can still sign in.
func (r *LoginRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	))
}

// RefreshTokenRequest is the body of logout and refresh-token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken, validation.Required),
	))
}

type VerifyEmailRequest struct {
	EmailVerifyToken string `json:"email_verify_token"`
}

func (r *VerifyEmailRequest) Validate() error {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.EmailVerifyToken, validation.Required),
	))
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *ForgotPasswordRequest) Validate() error {
	r.Email = normalizeEmail(r.Email)
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
	))
}

type VerifyForgotPasswordRequest struct {
	ForgotPasswordToken string `json:"forgot_password_token"`
}

func (r *VerifyForgotPasswordRequest) Validate() error {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.ForgotPasswordToken, validation.Required),
	))
}

type ResetPasswordRequest struct {
	ForgotPasswordToken string `json:"forgot_password_token"`
	Password            string `json:"password"`
	ConfirmPassword     string `json:"confirm_password"`
}

func (r *ResetPasswordRequest) Validate(p Policy) error {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.ForgotPasswordToken, validation.Required),
		validation.Field(&r.Password, passwordRules(p)...),
		validation.Field(&r.ConfirmPassword, validation.Required, matches(r.Password)),
	))
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"old_password"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *ChangePasswordRequest) Validate(p Policy) error {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.OldPassword, validation.Required),
		validation.Field(&r.Password, passwordRules(p)...),
		validation.Field(&r.ConfirmPassword, validation.Required, matches(r.Password)),
	))
}

// UpdateMeRequest is a partial profile update; absent fields are untouched.
type UpdateMeRequest struct {
	Name        *string `json:"name"`
	Username    *string `json:"username"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
	Avatar      *string `json:"avatar"`
	DateOfBirth *string `json:"date_of_birth"`
}

func (r *UpdateMeRequest) Validate() error {
	r.Name = trimmed(r.Name)
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Username, validation.NilOrNotEmpty,
			validation.Match(usernamePattern).Error("must be 3-40 letters, digits or underscores"), notReserved),
		validation.Field(&r.Bio, validation.Length(0, 200)),
		validation.Field(&r.Location, validation.Length(0, 200)),
		validation.Field(&r.Website, validation.Length(0, 200), is.URL),
		validation.Field(&r.Avatar, validation.Length(0, 400), is.URL),
		validation.Field(&r.DateOfBirth, isDate),
	))
}

// Patch converts the request into a store patch. Call after Validate.
func (r *UpdateMeRequest) Patch() *models.UserPatch {
	p := &models.UserPatch{
		Name:     r.Name,
		Username: r.Username,
		Bio:      r.Bio,
		Location: r.Location,
		Website:  r.Website,
		Avatar:   r.Avatar,
	}
	if r.DateOfBirth != nil {
		if t, err := parseDate(*r.DateOfBirth); err == nil {
			p.DateOfBirth = &t
		}
	}
	return p
}

type FollowRequest struct {
	FollowedUserID string `json:"followed_user_id"`
}

func (r *FollowRequest) Validate() error {
	return fieldErrors(validation.ValidateStruct(r,
		validation.Field(&r.FollowedUserID, validation.Required, is.UUID),
	))
}

// Package models defines server-side data models persisted in the database.
package models

import (
	"strings"
	"time"
)

// VerifyStatus is the account verification state. The numeric values are
// stored in the database and carried in token claims.
type VerifyStatus int

const (
	Unverified VerifyStatus = iota
	Verified
	Banned
)

func (s VerifyStatus) String() string {
	switch s {
	case Unverified:
		return "unverified"
	case Verified:
		return "verified"
	case Banned:
		return "banned"
	default:
		return "unknown"
	}
}

// User is a stored account. EmailVerifyToken and ForgotPasswordToken are
// single slots: empty when no flow is pending, overwritten on reissue.
type User struct {
	ID                  string
	Email               string
	PasswordHash        string
	Verify              VerifyStatus
	EmailVerifyToken    string
	ForgotPasswordToken string
	Username            string
	Name                string
	Bio                 string
	Location            string
	Website             string
	Avatar              string
	DateOfBirth         time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// DefaultUsername derives the username assigned at registration.
func DefaultUsername(userID string) string {
	return "user_" + strings.ReplaceAll(userID, "-", "")
}

// UserPatch lists the columns to update; nil fields are left untouched.
//
// IfEmailVerifyToken, IfForgotPasswordToken and IfVerify turn the update
// into a compare-and-swap: the row only changes while the column still
// holds the given value.
type UserPatch struct {
	PasswordHash        *string
	Verify              *VerifyStatus
	EmailVerifyToken    *string
	ForgotPasswordToken *string
	Username            *string
	Name                *string
	Bio                 *string
	Location            *string
	Website             *string
	Avatar              *string
	DateOfBirth         *time.Time

	IfEmailVerifyToken    *string
	IfForgotPasswordToken *string
	IfVerify              *VerifyStatus
}

// Empty reports whether the patch changes no column.
func (p *UserPatch) Empty() bool {
	return p.PasswordHash == nil && p.Verify == nil && p.EmailVerifyToken == nil &&
		p.ForgotPasswordToken == nil && p.Username == nil && p.Name == nil &&
		p.Bio == nil && p.Location == nil && p.Website == nil && p.Avatar == nil &&
		p.DateOfBirth == nil
}

// Apply copies the patched fields onto u. Guards are not checked here.
func (p *UserPatch) Apply(u *User) {
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.Verify != nil {
		u.Verify = *p.Verify
	}
	if p.EmailVerifyToken != nil {
		u.EmailVerifyToken = *p.EmailVerifyToken
	}
	if p.ForgotPasswordToken != nil {
		u.ForgotPasswordToken = *p.ForgotPasswordToken
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Website != nil {
		u.Website = *p.Website
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.DateOfBirth != nil {
		u.DateOfBirth = *p.DateOfBirth
	}
}

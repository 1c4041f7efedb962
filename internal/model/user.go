package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	GenderMale        = "male"
	GenderFemale      = "female"
	GenderNonBinary   = "non_binary"
	GenderUndisclosed = "undisclosed"
)

type UserRegisterRequest struct {
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	FullName       string   `json:"fullName"`
	Username       string   `json:"username"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender"`
	FavoriteSports []string `json:"favoriteSports"`
}

type UserVerifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserPatchRequest is a full patch struct: one optional field per mutable
// profile attribute. A nil field means "leave unchanged", never "clear".
type UserPatchRequest struct {
	FullName       *string   `json:"fullName"`
	Username       *string   `json:"username"`
	Age            *int      `json:"age"`
	Gender         *string   `json:"gender"`
	FavoriteSports *[]string `json:"favoriteSports"`
}

type OTPTemplateData struct {
	OTP       string
	ExpiresIn int64
}

type UserRegisterResponse struct {
	Email        string `json:"email"`
	OtpExpiresAt int64  `json:"otpExpiresAt"`
}

type UserResponse struct {
	Id             string    `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName"`
	Username       string    `json:"username"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	FavoriteSports []string  `json:"favoriteSports"`
	AvatarImage    *string   `json:"avatarImage"`
	CreateDatetime time.Time `json:"createDatetime"`
	UpdateDatetime time.Time `json:"updateDatetime"`
}

type User struct {
	Id             uuid.UUID
	Email          string
	Password       string
	FullName       string
	Username       string
	Age            int
	Gender         string
	FavoriteSports []string
	AvatarImageId  *uuid.UUID
	Verified       bool
	CreateDatetime time.Time
	UpdateDatetime time.Time
}

// PendingSignup is the registration payload parked in cache until the emailed
// OTP is verified. Nothing is written to the users table before that.
type PendingSignup struct {
	Email          string   `json:"email"`
	PasswordHash   string   `json:"passwordHash"`
	FullName       string   `json:"fullName"`
	Username       string   `json:"username"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender"`
	FavoriteSports []string `json:"favoriteSports"`
	OTPHash        string   `json:"otpHash"`
	ExpiresAt      int64    `json:"expiresAt"`
}

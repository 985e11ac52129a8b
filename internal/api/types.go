package api

import (
	"encoding/json"
)

// Endpoint paths relative to the API base URL.
const (
	PathAvatar        = "/user/avatar"
	PathRegister      = "/auth/register"
	PathVerifyOTP     = "/auth/verify-otp"
	PathProfilePrefix = "/profile/"
	PathShelterUpdate = "/profile/shelter"

	// PurposeRegistration tags an OTP issued at sign-up.
	PurposeRegistration = "REGISTRATION"
)

// Envelope is the backend's common response wrapper.
type Envelope struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Succeeded reports whether success is present and true.
func (e Envelope) Succeeded() bool {
	return e.Success != nil && *e.Success
}

// Failed reports whether success is present and false.
func (e Envelope) Failed() bool {
	return e.Success != nil && !*e.Success
}

// AvatarUpdate is the body of PUT /user/avatar.
type AvatarUpdate struct {
	ProfileImageURL string `json:"profileImageUrl"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email" yaml:"email"`
	Password    string `json:"password" yaml:"password"`
	FullName    string `json:"fullName" yaml:"full_name"`
	PhoneNumber string `json:"phoneNumber" yaml:"phone_number"`
	Role        string `json:"role" yaml:"role"`
}

// VerifyOTPRequest is the body of POST /auth/verify-otp.
type VerifyOTPRequest struct {
	Email   string `json:"email"`
	OTP     string `json:"otp"`
	Purpose string `json:"purpose"`
}

// ShelterProfile is the body of PUT /profile/shelter.
type ShelterProfile struct {
	ShelterName       string `json:"shelterName" yaml:"shelter_name"`
	Address           string `json:"address" yaml:"address"`
	ContactPersonName string `json:"contactPersonName" yaml:"contact_person_name"`
	Capacity          int    `json:"capacity" yaml:"capacity"`
	CurrentOccupancy  int    `json:"currentOccupancy" yaml:"current_occupancy"`
	AcceptsDonations  bool   `json:"acceptsDonations" yaml:"accepts_donations"`
	OperatingHours    string `json:"operatingHours" yaml:"operating_hours"`
}

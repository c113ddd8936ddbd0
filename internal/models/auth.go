package models

// OTPRequest is the body of POST /auth/otp/request
type OTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// OTPVerification is the body of POST /auth/otp/verify
type OTPVerification struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"` // exactly 6 digits
}

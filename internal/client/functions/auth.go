package functions

import (
	"fmt"
	"net/mail"
)

// SignupRequest starts a sign-up and triggers the confirmation email.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

func (SignupRequest) FunctionName() string { return FnSignup }

func (r SignupRequest) Validate() error {
	if err := required("email", r.Email); err != nil {
		return err
	}
	if err := required("password", r.Password); err != nil {
		return err
	}
	if err := required("fullName", r.FullName); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: email is not valid", ErrInvalidRequest)
	}
	return nil
}

type SignupResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (r SignupResponse) check() error {
	if !r.Success {
		return fmt.Errorf("success flag missing")
	}
	return nil
}

// VerifyEmailRequest consumes a confirmation token from an auth callback link.
type VerifyEmailRequest struct {
	Token string `json:"token"`
	Type  string `json:"type"`
}

func (VerifyEmailRequest) FunctionName() string { return FnVerifyEmail }

func (r VerifyEmailRequest) Validate() error {
	if err := required("token", r.Token); err != nil {
		return err
	}
	return required("type", r.Type)
}

type VerifyEmailResponse struct {
	Success  bool   `json:"success"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func (r VerifyEmailResponse) check() error {
	if !r.Success {
		return fmt.Errorf("success flag missing")
	}
	return nil
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

func (ResendVerificationRequest) FunctionName() string { return FnResendVerification }

func (r ResendVerificationRequest) Validate() error {
	return required("email", r.Email)
}

// WelcomeEmailRequest is sent best effort after the first confirmation.
type WelcomeEmailRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

func (WelcomeEmailRequest) FunctionName() string { return FnWelcomeEmail }

func (r WelcomeEmailRequest) Validate() error {
	return required("email", r.Email)
}

// Ack is the bare {success:true} answer.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (r Ack) check() error {
	if !r.Success {
		return fmt.Errorf("success flag missing")
	}
	return nil
}

package domain

import "time"

// User-facing messages produced by a submission.
const (
	MsgPasswordMismatch = "Passwords do not match!"
	MsgTransportFailure = "Error signing up"
	MsgSignupSucceeded  = "Signup successful!"
)

// RegisterPath is the registration route on the auth service.
const RegisterPath = "/api/auth/local/register"

// RegistrationForm holds the values typed into the sign-up screen.
// It lives only as long as the screen and is discarded after submission.
type RegistrationForm struct {
	FullName        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required"`
	ConfirmPassword string `validate:"required"`
}

// PasswordsMatch reports whether both password fields are identical.
func (f RegistrationForm) PasswordsMatch() bool {
	return f.Password == f.ConfirmPassword
}

// Request maps the form onto the wire payload. FullName travels as username.
func (f RegistrationForm) Request() RegistrationRequest {
	return RegistrationRequest{
		Username: f.FullName,
		Email:    f.Email,
		Password: f.Password,
	}
}

// RegistrationRequest is the JSON body sent to the registration endpoint.
type RegistrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegistrationResponse is a bounded view of what the auth service answered.
type RegistrationResponse struct {
	StatusCode int
	Body       []byte
	Truncated  bool
	Latency    time.Duration
}

// OK mirrors the fetch API notion of a successful status.
func (r RegistrationResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// FailureKind classifies why a submission did not succeed.
type FailureKind string

const (
	FailureNone             FailureKind = ""
	FailureValidation       FailureKind = "validation"
	FailureServerValidation FailureKind = "server_validation"
	FailureTransport        FailureKind = "transport"
	FailureUnexpectedShape  FailureKind = "unexpected_response_shape"
)

// RegistrationResult is the outcome of one submission attempt.
// Message is empty on success.
type RegistrationResult struct {
	OK         bool
	Kind       FailureKind
	Message    string
	StatusCode int
}

func Success(status int) RegistrationResult {
	return RegistrationResult{OK: true, StatusCode: status}
}

func Failure(kind FailureKind, message string, status int) RegistrationResult {
	return RegistrationResult{Kind: kind, Message: message, StatusCode: status}
}

// Outcome is a short label for logs and records: "success" or the failure kind.
func (r RegistrationResult) Outcome() string {
	if r.OK {
		return "success"
	}
	return string(r.Kind)
}

// UserMessage is what the input layer shows after the attempt.
func (r RegistrationResult) UserMessage() string {
	if r.OK {
		return MsgSignupSucceeded
	}
	return r.Message
}

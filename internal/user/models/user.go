package models

import (
	"net/mail"
	"strings"
	"time"

	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
)

// DefaultAddress fills the address column for self-service signups.
const DefaultAddress = "Not Provided"

const minPasswordLength = 6

// User is a customer or a staff member (maker, checker).
type User struct {
	ID           id.UserID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone_number"`
	Address      string    `json:"address"`
	PasswordHash string    `json:"-"`
	Role         id.Role   `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser constructs a user, enforcing the invariants every stored user holds.
func NewUser(userID id.UserID, name, email, phone, address, passwordHash string, role id.Role, now time.Time) (*User, error) {
	name = strings.Join(strings.Fields(name), " ")
	email = NormalizeEmail(email)
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user id is required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name is required")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email is required")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "role is invalid")
	}
	if strings.TrimSpace(address) == "" {
		address = DefaultAddress
	}
	return &User{
		ID:           userID,
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(phone),
		Address:      strings.TrimSpace(address),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
	}, nil
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignupRequest registers a new customer.
type SignupRequest struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// FullName joins first, middle and last names with single spaces.
func (r *SignupRequest) FullName() string {
	return strings.Join(strings.Fields(r.FirstName+" "+r.MiddleName+" "+r.LastName), " ")
}

func (r *SignupRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Email = NormalizeEmail(r.Email)
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "First name and last name are required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "Email is invalid")
	}
	if r.PhoneNumber == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Phone number is required")
	}
	if len(r.Password) < minPasswordLength {
		return dErrors.New(dErrors.CodeBadRequest, "Password must be at least 6 characters")
	}
	return nil
}

// LoginRequest authenticates a user under a specific role.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	r.Email = NormalizeEmail(r.Email)
	if r.Email == "" || r.Password == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Email and password are required")
	}
	return nil
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	Token string    `json:"token"`
	ID    id.UserID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  id.Role   `json:"role"`
}

package service

import (
	"context"
	"errors"

	"github.com/rakesh-tirumalaparapu/zipp/internal/user/models"
	id "github.com/rakesh-tirumalaparapu/zipp/pkg/domain"
	dErrors "github.com/rakesh-tirumalaparapu/zipp/pkg/domain-errors"
	"github.com/rakesh-tirumalaparapu/zipp/pkg/platform/sentinel"
)

// StaffAccount describes a maker or checker created at startup.
type StaffAccount struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
	Role     id.Role
}

// DefaultStaff is the maker and checker available on a fresh install.
var DefaultStaff = []StaffAccount{
	{
		Name:     "Sameer Maker",
		Email:    "sameer.maker@example.com",
		Phone:    "9876543210",
		Address:  "Mumbai, Maharashtra",
		Password: "maker123",
		Role:     id.RoleMaker,
	},
	{
		Name:     "Rakesh Checker",
		Email:    "rakesh.checker@example.com",
		Phone:    "9876543211",
		Address:  "Bangalore, Karnataka",
		Password: "checker123",
		Role:     id.RoleChecker,
	},
}

// SeedStaff creates each account whose email is not yet registered and
// returns how many were created.
func (s *Service) SeedStaff(ctx context.Context, accounts []StaffAccount) (int, error) {
	created := 0
	for _, acct := range accounts {
		if !acct.Role.IsStaff() {
			return created, dErrors.New(dErrors.CodeBadRequest, "seeded accounts must be staff")
		}
		_, err := s.users.FindByEmail(ctx, acct.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return created, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up staff account")
		}
		if _, err := s.createUser(ctx, acct.Name, models.NormalizeEmail(acct.Email), acct.Phone, acct.Address, acct.Password, acct.Role); err != nil {
			return created, err
		}
		created++
		if s.logger != nil {
			s.logger.InfoContext(ctx, "seeded staff account", "email", acct.Email, "role", string(acct.Role))
		}
	}
	return created, nil
}

// Package seed loads development users from YAML into the user store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/you/hrplusauth/domain"
	"gopkg.in/yaml.v3"
)

// UserSeed is one entry of the users file
type UserSeed struct {
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Status   string `yaml:"status"`
}

type usersFile struct {
	Users []UserSeed `yaml:"users"`
}

// Result counts what Users did
type Result struct {
	Created int
	Skipped int
}

// LoadUsers reads the users file at path
func LoadUsers(path string) ([]UserSeed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read users file at %s: %w", path, err)
	}
	var f usersFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("could not parse users yaml: %w", err)
	}
	return f.Users, nil
}

func (u UserSeed) principal(hash string) (*domain.Principal, error) {
	role := domain.Role(strings.ToUpper(strings.TrimSpace(u.Role)))
	if !role.Valid() {
		return nil, fmt.Errorf("user %s: unknown role %q", u.Email, u.Role)
	}
	status := domain.StatusActive
	if u.Status != "" {
		status = domain.Status(strings.ToUpper(strings.TrimSpace(u.Status)))
	}
	if !status.Valid() {
		return nil, fmt.Errorf("user %s: unknown status %q", u.Email, u.Status)
	}
	return &domain.Principal{
		Email:        strings.TrimSpace(u.Email),
		Username:     strings.TrimSpace(u.Username),
		Name:         strings.TrimSpace(u.Name),
		PasswordHash: hash,
		Role:         role,
		Status:       status,
	}, nil
}

// Users inserts every seed whose email or username is not taken yet.
// Entries are validated before anything is written.
func Users(ctx context.Context, repo domain.UserRepository, passwords domain.PasswordService, seeds []UserSeed) (Result, error) {
	for _, u := range seeds {
		if strings.TrimSpace(u.Email) == "" || u.Password == "" {
			return Result{}, fmt.Errorf("user %q: email and password are required", u.Username)
		}
		if _, err := u.principal(""); err != nil {
			return Result{}, err
		}
	}

	var res Result
	for _, u := range seeds {
		hash, err := passwords.Hash(u.Password)
		if err != nil {
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		}
		p, _ := u.principal(hash)

		err = repo.Create(ctx, p)
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("user %s: %w", u.Email, err)
		default:
			res.Created++
		}
	}
	return res, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"condocheck/internal/access"
	"condocheck/internal/model"
	"condocheck/internal/repository"
)

// ErrBadCredentials is returned when a login attempt fails.
var ErrBadCredentials = errors.New("invalid credentials")

const minNameLength = 3

// UserInput is what managers provide when registering staff.
type UserInput struct {
	Name     string
	Role     model.Role
	JobTitle string
	Email    string
	Password string
	CondoID  *uint
	Active   bool
}

// UserService manages accounts and Telegram links.
type UserService struct {
	repo         UserRepository
	categoryRepo CategoryRepository
	activity     *ActivityService
}

func NewUserService(repo UserRepository, categoryRepo CategoryRepository, activity *ActivityService) *UserService {
	return &UserService{repo: repo, categoryRepo: categoryRepo, activity: activity}
}

// Register creates an account.
func (s *UserService) Register(ctx context.Context, actor model.Actor, input UserInput, now time.Time) (*model.User, error) {
	if err := access.Authorize(actor, access.ManageUsers); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if len([]rune(input.Name)) < minNameLength {
		return nil, invalid("name must have at least %d characters", minNameLength)
	}
	if !knownRole(input.Role) {
		return nil, invalid("unknown role %q", input.Role)
	}
	if input.Password == "" {
		return nil, invalid("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{
		Name:         input.Name,
		Role:         input.Role,
		JobTitle:     strings.TrimSpace(input.JobTitle),
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: string(hash),
		Active:       input.Active,
		CondoID:      input.CondoID,
	}
	if err := s.repo.Save(ctx, &user); err != nil {
		return nil, err
	}
	if user.JobTitle != "" && user.CondoID != nil {
		if _, err := s.categoryRepo.GetOrCreateJobFunction(ctx, *user.CondoID, user.JobTitle); err != nil {
			return nil, err
		}
	}
	if user.CondoID != nil {
		s.activity.Record(ctx, actor, *user.CondoID, model.ActionCreate, model.ModuleUser, user.Name, now)
	}
	return &user, nil
}

// Authenticate checks a password for an active account.
func (s *UserService) Authenticate(ctx context.Context, userID uint, password string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !user.Active {
		return nil, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return user, nil
}

// Login authenticates and links the account to a Telegram chat.
func (s *UserService) Login(ctx context.Context, userID uint, password string, telegramID int64) (*model.User, error) {
	user, err := s.Authenticate(ctx, userID, password)
	if err != nil {
		return nil, err
	}
	if err := s.repo.LinkTelegram(ctx, user.ID, telegramID); err != nil {
		return nil, err
	}
	user.TelegramID = &telegramID
	return user, nil
}

// ByTelegram resolves the account linked to a chat.
func (s *UserService) ByTelegram(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.repo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, lookup(err, "user")
	}
	if !user.Active {
		return nil, fmt.Errorf("user %d inactive: %w", user.ID, ErrNotFound)
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err, "user")
	}
	return user, nil
}

// Staff lists the users of a condominium.
func (s *UserService) Staff(ctx context.Context, actor model.Actor, condoID uint) ([]model.User, error) {
	if err := access.Require(actor.Role, access.ListUsers); err != nil {
		return nil, err
	}
	return s.repo.ListByCondo(ctx, condoID)
}

// Linked lists active users reachable over Telegram.
func (s *UserService) Linked(ctx context.Context) ([]model.User, error) {
	return s.repo.ListLinked(ctx)
}

// member loads a user of condoID. Users of other condominiums are reported as missing.
func (s *UserService) member(ctx context.Context, condoID, userID uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, "user")
	}
	if user.CondoID == nil || *user.CondoID != condoID {
		return nil, fmt.Errorf("user %d is not in condo %d: %w", userID, condoID, ErrNotFound)
	}
	return user, nil
}

// SetActive enables or disables an account of condoID.
func (s *UserService) SetActive(ctx context.Context, actor model.Actor, condoID, userID uint, active bool, now time.Time) (*model.User, error) {
	if err := access.Require(actor.Role, access.ManageUsers); err != nil {
		return nil, err
	}
	user, err := s.member(ctx, condoID, userID)
	if err != nil {
		return nil, err
	}
	user.Active = active
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	if user.CondoID != nil {
		s.activity.Record(ctx, actor, *user.CondoID, model.ActionUpdate, model.ModuleUser, user.Name, now)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor model.Actor, condoID, userID uint, now time.Time) error {
	if err := access.Require(actor.Role, access.ManageUsers); err != nil {
		return err
	}
	if actor.ID == userID {
		return invalid("cannot delete your own account")
	}
	user, err := s.member(ctx, condoID, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	if user.CondoID != nil {
		s.activity.Record(ctx, actor, *user.CondoID, model.ActionDelete, model.ModuleUser, user.Name, now)
	}
	return nil
}

func knownRole(role model.Role) bool {
	for _, r := range access.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

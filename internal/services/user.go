package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/apierr"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/types"
)

// UserInput carries the admin roster form. Password and Role are optional
// on edit; role changes happen only through this explicit admin path.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type UserService interface {
	Create(ctx context.Context, actor types.Role, actorID uuid.UUID, in UserInput) (*types.User, error)
	Update(ctx context.Context, actor types.Role, actorID uuid.UUID, userID uuid.UUID, in UserInput) (*types.User, error)
	Delete(ctx context.Context, actor types.Role, actorID uuid.UUID, userID uuid.UUID) error
	List(ctx context.Context, actor types.Role) ([]*types.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error)
}

type userService struct {
	db     *gorm.DB
	log    *logger.Logger
	users  repos.UserRepo
	events EventService
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo, eventService EventService) UserService {
	return &userService{
		db:     db,
		log:    baseLog.With("service", "UserService"),
		users:  userRepo,
		events: eventService,
	}
}

func (us *userService) Create(ctx context.Context, actor types.Role, actorID uuid.UUID, in UserInput) (*types.User, error) {
	if err := types.Require(actor, types.RoleAdmin); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apierr.Validation("missing_fields", errors.New("name, email and password are required"))
	}
	role := types.RoleLearner
	if in.Role != "" {
		parsed, err := types.ParseRole(in.Role)
		if err != nil {
			return nil, apierr.Validation("invalid_role", err)
		}
		role = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{Name: name, Email: email, Password: string(hash), Role: role}
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, eerr := us.users.EmailExists(ctx, tx, email)
		if eerr != nil {
			return eerr
		}
		if exists {
			return apierr.Validation("duplicate_email", fmt.Errorf("a user with email %q already exists", email))
		}
		_, cerr := us.users.Create(ctx, tx, user)
		return cerr
	})
	if err != nil {
		return nil, err
	}

	us.events.Record(ctx, actorID, nil, "user_created", map[string]string{"email": email, "role": string(role)})
	return user, nil
}

func (us *userService) Update(ctx context.Context, actor types.Role, actorID uuid.UUID, userID uuid.UUID, in UserInput) (*types.User, error) {
	if err := types.Require(actor, types.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := us.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if email := normalizeEmail(in.Email); email != "" && email != user.Email {
		exists, eerr := us.users.EmailExists(ctx, nil, email)
		if eerr != nil {
			return nil, eerr
		}
		if exists {
			return nil, apierr.Validation("duplicate_email", fmt.Errorf("a user with email %q already exists", email))
		}
		user.Email = email
	}
	if in.Password != "" {
		hash, herr := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if herr != nil {
			return nil, fmt.Errorf("hash password: %w", herr)
		}
		user.Password = string(hash)
	}
	if in.Role != "" {
		role, rerr := types.ParseRole(in.Role)
		if rerr != nil {
			return nil, apierr.Validation("invalid_role", rerr)
		}
		user.Role = role
	}

	if err := us.users.Update(ctx, nil, user); err != nil {
		return nil, err
	}
	us.events.Record(ctx, actorID, nil, "user_updated", map[string]string{"user_id": userID.String()})
	return user, nil
}

func (us *userService) Delete(ctx context.Context, actor types.Role, actorID uuid.UUID, userID uuid.UUID) error {
	if err := types.Require(actor, types.RoleAdmin); err != nil {
		return err
	}
	if _, err := us.GetByID(ctx, userID); err != nil {
		return err
	}
	if err := us.users.Delete(ctx, nil, userID); err != nil {
		return err
	}
	us.events.Record(ctx, actorID, nil, "user_deleted", map[string]string{"user_id": userID.String()})
	return nil
}

func (us *userService) List(ctx context.Context, actor types.Role) ([]*types.User, error) {
	if err := types.Require(actor, types.RoleAdmin); err != nil {
		return nil, err
	}
	return us.users.List(ctx, nil)
}

func (us *userService) GetByID(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	user, err := us.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("user_not_found", fmt.Errorf("user %s does not exist", userID))
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

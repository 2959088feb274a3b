package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/formaplus/elearning-backend/internal/platform/apierr"
	"github.com/formaplus/elearning-backend/internal/platform/logger"
	"github.com/formaplus/elearning-backend/internal/repos"
	"github.com/formaplus/elearning-backend/internal/requestdata"
	"github.com/formaplus/elearning-backend/internal/types"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.User, error)
	// Login returns the signed access token on success.
	Login(ctx context.Context, email, password string) (*types.User, string, error)
	ContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	AccessTTL() time.Duration
}

type authService struct {
	db        *gorm.DB
	log       *logger.Logger
	users     repos.UserRepo
	avatars   AvatarService
	events    EventService
	secretKey []byte
	accessTTL time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	avatarService AvatarService,
	eventService EventService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:        db,
		log:       baseLog.With("service", "AuthService"),
		users:     userRepo,
		avatars:   avatarService,
		events:    eventService,
		secretKey: []byte(jwtSecretKey),
		accessTTL: accessTTL,
	}
}

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apierr.Validation("missing_fields", errors.New("name, email and password are required"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     types.RoleLearner,
	}

	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, eerr := as.users.EmailExists(ctx, tx, email)
		if eerr != nil {
			return eerr
		}
		if exists {
			return apierr.Validation("duplicate_email", fmt.Errorf("a user with email %q already exists", email))
		}
		if as.avatars != nil {
			if aerr := as.avatars.CreateAndStore(ctx, user); aerr != nil {
				as.log.Warn("Avatar generation failed, registering without one", "error", aerr)
			}
		}
		_, cerr := as.users.Create(ctx, tx, user)
		return cerr
	})
	if err != nil {
		return nil, err
	}

	as.events.Record(ctx, user.ID, nil, "user_registered", nil)
	return user, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	email = normalizeEmail(email)
	user, err := as.users.GetByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apierr.Unauthorized("bad_credentials", errors.New("invalid email or password"))
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", apierr.Unauthorized("bad_credentials", errors.New("invalid email or password"))
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"uid":  user.ID.String(),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(as.accessTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.secretKey)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	as.events.Record(ctx, user.ID, nil, "user_logged_in", nil)
	return user, token, nil
}

// ContextFromToken verifies the token and attaches the caller identity to
// the context for downstream role gating.
func (as *authService) ContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return as.secretKey, nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Unauthorized("invalid_token", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx, apierr.Unauthorized("invalid_token", errors.New("unexpected claims shape"))
	}
	uidStr, _ := claims["uid"].(string)
	roleStr, _ := claims["role"].(string)
	uid, err := uuid.Parse(uidStr)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", fmt.Errorf("bad uid claim: %w", err))
	}
	role, err := types.ParseRole(roleStr)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", err)
	}
	return requestdata.WithRequestData(ctx, &requestdata.RequestData{UserID: uid, Role: role}), nil
}

func (as *authService) AccessTTL() time.Duration {
	return as.accessTTL
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"botsprinter/config"
	"botsprinter/models"
	"botsprinter/repositories"
	"botsprinter/types"
	"botsprinter/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	minPasswordLength   = 4
	resetPasswordLength = 12
)

type UserService struct {
	db  *gorm.DB
	jwt config.JWTConfig
	log *zap.Logger
}

func NewUserService(db *gorm.DB, jwt config.JWTConfig, log *zap.Logger) *UserService {
	return &UserService{db: db, jwt: jwt, log: log}
}

type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Login checks the credentials and issues a signed token. Unknown users and
// wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	const op = "users.Login"
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, validationError(op, "username and password are required")
	}

	user, err := repositories.New(s.db).Users.GetByUsername(ctx, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &Error{Kind: KindUnauthorized, Op: op, Err: ErrInvalidCredentials}
	}
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		s.log.Warn("failed login", zap.String("username", username))
		return nil, &Error{Kind: KindUnauthorized, Op: op, Err: ErrInvalidCredentials}
	}

	ttl := time.Duration(s.jwt.Expiration) * time.Second
	token, err := utils.GenerateToken(s.jwt.Secret, ttl, utils.TokenClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		SessionID: uuid.NewString(),
	})
	if err != nil {
		return nil, &Error{Kind: KindStore, Op: op, Msg: "sign token", Err: err}
	}

	err = recordAction(ctx, repositories.New(s.db), time.Now(), auditRecord{
		Username: user.Username, Action: ActionLogin, EntityType: EntityUser, EntityID: user.ID,
		Description: "logged in",
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}

	s.log.Info("user logged in", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return &LoginResult{Token: token, ExpiresAt: time.Now().Add(ttl), User: user}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := repositories.New(s.db).Users.GetAll(ctx)
	if err != nil {
		return nil, wrapStoreError("users.ListUsers", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	const op = "users.GetUser"
	user, err := repositories.New(s.db).Users.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(op, ErrUserNotFound, "")
	}
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	return user, nil
}

func (s *UserService) CreateUser(ctx context.Context, username, password string, role types.Role) (*models.User, error) {
	const op = "users.CreateUser"
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, validationError(op, "username is required")
	}
	if len(password) < minPasswordLength {
		return nil, validationError(op, "password must have at least %d characters", minPasswordLength)
	}
	if !role.Valid() {
		return nil, validationError(op, "unknown role %q", role)
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, &Error{Kind: KindStore, Op: op, Msg: "hash password", Err: err}
	}
	user := &models.User{Username: username, PasswordHash: hash, Role: role}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionCreate, EntityType: EntityUser, EntityID: user.ID,
			Description: fmt.Sprintf("created user %q with role %s", username, role),
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	s.log.Info("user created", zap.String("username", username), zap.String("role", string(role)))
	return user, nil
}

// UpdateUser changes the role and, when password is non-empty, the password.
func (s *UserService) UpdateUser(ctx context.Context, id uint, role types.Role, password string) (*models.User, error) {
	const op = "users.UpdateUser"
	if !role.Valid() {
		return nil, validationError(op, "unknown role %q", role)
	}
	if password != "" && len(password) < minPasswordLength {
		return nil, validationError(op, "password must have at least %d characters", minPasswordLength)
	}

	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		var err error
		if user, err = r.Users.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(op, ErrUserNotFound, "")
			}
			return err
		}
		if user.Role == types.RoleAdmin && role != types.RoleAdmin {
			if err := ensureAnotherAdmin(ctx, op, r); err != nil {
				return err
			}
		}

		description := fmt.Sprintf("changed role of %q from %s to %s", user.Username, user.Role, role)
		user.Role = role
		if password != "" {
			if user.PasswordHash, err = utils.HashPassword(password); err != nil {
				return err
			}
			description += " and set a new password"
		}
		if err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionUpdate, EntityType: EntityUser, EntityID: user.ID,
			Description: description,
		})
	})
	if err != nil {
		return nil, wrapStoreError(op, err)
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	const op = "users.DeleteUser"
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		user, err := r.Users.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, ErrUserNotFound, "")
		}
		if err != nil {
			return err
		}
		if user.Role == types.RoleAdmin {
			if err := ensureAnotherAdmin(ctx, op, r); err != nil {
				return err
			}
		}
		if _, err := r.Users.Delete(ctx, id); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionDelete, EntityType: EntityUser, EntityID: id,
			Description: fmt.Sprintf("deleted user %q", user.Username),
		})
	})
	if err != nil {
		return wrapStoreError(op, err)
	}
	s.log.Info("user deleted", zap.Uint("user_id", id))
	return nil
}

// ResetPassword sets a random password and returns it. It is not stored in
// clear anywhere.
func (s *UserService) ResetPassword(ctx context.Context, id uint) (string, error) {
	const op = "users.ResetPassword"
	password, err := utils.RandomPassword(resetPasswordLength)
	if err != nil {
		return "", &Error{Kind: KindStore, Op: op, Msg: "generate password", Err: err}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := repositories.New(tx)
		user, err := r.Users.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(op, ErrUserNotFound, "")
		}
		if err != nil {
			return err
		}
		if user.PasswordHash, err = utils.HashPassword(password); err != nil {
			return err
		}
		if err := r.Users.Update(ctx, user); err != nil {
			return err
		}
		return recordAction(ctx, r, time.Now(), auditRecord{
			Action: ActionResetPassword, EntityType: EntityUser, EntityID: id,
			Description: fmt.Sprintf("reset password of %q", user.Username),
		})
	})
	if err != nil {
		return "", wrapStoreError(op, err)
	}
	s.log.Info("password reset", zap.Uint("user_id", id))
	return password, nil
}

func ensureAnotherAdmin(ctx context.Context, op string, r *repositories.Repositories) error {
	admins, err := r.Users.CountByRole(ctx, types.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return &Error{Kind: KindConflict, Op: op, Err: ErrLastAdmin}
	}
	return nil
}

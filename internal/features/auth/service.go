package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/internal/features/audit"
	"gearbook/internal/features/user"
	"gearbook/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrDuplicateUser      = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*common_models.User, string, error)
	Login(ctx context.Context, email, password string) (*common_models.User, string, error)
	Me(ctx context.Context, userID string) (*common_models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, next string) error
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	AuditService audit.AuditService
	Config       *config.Config
}

func NewAuthService(userRepo user.UserRepository, auditService audit.AuditService, cfg *config.Config) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
		Config:       cfg,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req *RegisterRequest) (*common_models.User, string, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, "", errors.New("username, email and password are required")
	}

	// Duplicate checks before insert; the unique indexes on email/username
	// are the backstop for concurrent registrations.
	if _, err := s.UserRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, "", ErrDuplicateUser
	}
	if _, err := s.UserRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, "", ErrDuplicateUser
	}

	hashed, err := utils.HashPassword(req.Password, s.Config.BcryptCost)
	if err != nil {
		return nil, "", err
	}

	newUser := common_models.User{
		ID:         primitive.NewObjectID(),
		Username:   req.Username,
		Email:      req.Email,
		Password:   hashed,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Department: req.Department,
		Role:       common_models.RoleMember,
		Status:     common_models.UserStatusActive,
	}

	if err := s.UserRepo.Create(ctx, &newUser); err != nil {
		// Unique index violation surfaces here on racing registrations
		if mongo.IsDuplicateKeyError(err) {
			return nil, "", ErrDuplicateUser
		}
		return nil, "", err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "users", newUser.ID.Hex(), map[string]common_models.Change{
		"username": {New: newUser.Username},
		"email":    {New: newUser.Email},
	})

	token, err := utils.GenerateToken(newUser.ID, newUser.Role)
	if err != nil {
		return nil, "", err
	}

	return &newUser, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*common_models.User, string, error) {
	usr, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !utils.CheckPassword(usr.Password, password) {
		return nil, "", ErrInvalidCredentials
	}

	if usr.Status == common_models.UserStatusSuspended {
		return nil, "", errors.New("account suspended")
	}
	if usr.Status == common_models.UserStatusInactive {
		return nil, "", errors.New("account inactive")
	}

	token, err := utils.GenerateToken(usr.ID, usr.Role)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	_ = s.UserRepo.SetLastLogin(ctx, usr.ID, now)
	usr.LastLogin = &now

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionLogin, "users", usr.ID.Hex(), nil)

	return usr, token, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*common_models.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}

func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID, current, next string) error {
	usr, err := s.UserRepo.FindByID(ctx, userID)
	if err != nil {
		return ErrInvalidCredentials
	}

	if !utils.CheckPassword(usr.Password, current) {
		return ErrInvalidCredentials
	}

	hashed, err := utils.HashPassword(next, s.Config.BcryptCost)
	if err != nil {
		return err
	}

	return s.UserRepo.Update(ctx, userID, bson.M{"password": hashed})
}

// ForgotPassword stores a one-time reset token on the user and returns it.
// Mail delivery is out of scope; the token goes back to the caller.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, email string) (string, error) {
	usr, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the email exists
		return "", nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	expiry := time.Now().Add(1 * time.Hour)

	err = s.UserRepo.Update(ctx, usr.ID.Hex(), bson.M{
		"reset_token":        token,
		"reset_token_expiry": expiry,
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func (s *AuthServiceImpl) ResetPassword(ctx context.Context, token, next string) error {
	if token == "" || next == "" {
		return ErrInvalidResetToken
	}

	usr, err := s.UserRepo.FindByResetToken(ctx, token)
	if err != nil {
		return ErrInvalidResetToken
	}

	hashed, err := utils.HashPassword(next, s.Config.BcryptCost)
	if err != nil {
		return err
	}

	return s.UserRepo.Update(ctx, usr.ID.Hex(), bson.M{
		"password":           hashed,
		"reset_token":        "",
		"reset_token_expiry": nil,
	})
}

package user

import (
	"context"
	"errors"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/features/audit"

	"go.mongodb.org/mongo-driver/bson"
)

var ErrUserNotFound = errors.New("user not found")

type UserService interface {
	GetUser(ctx context.Context, id string) (*common_models.User, error)
	ListUsers(ctx context.Context, role, status string, page, limit int64) ([]common_models.User, int64, error)
	UpdateProfile(ctx context.Context, id string, req *ProfileUpdate) (*common_models.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	UpdateStatus(ctx context.Context, id, status string) error
}

type ProfileUpdate struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Department string `json:"department"`
}

type UserServiceImpl struct {
	Repo         UserRepository
	AuditService audit.AuditService
}

func NewUserService(repo UserRepository, auditService audit.AuditService) UserService {
	return &UserServiceImpl{
		Repo:         repo,
		AuditService: auditService,
	}
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id string) (*common_models.User, error) {
	usr, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return usr, nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, role, status string, page, limit int64) ([]common_models.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}

	filter := map[string]interface{}{}
	if role != "" {
		filter["role"] = role
	}
	if status != "" {
		filter["status"] = status
	}

	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id string, req *ProfileUpdate) (*common_models.User, error) {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	update := bson.M{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"phone":      req.Phone,
		"department": req.Department,
	}
	if err := s.Repo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "users", id, map[string]common_models.Change{
		"profile": {Old: existing, New: req},
	})

	return s.Repo.FindByID(ctx, id)
}

func (s *UserServiceImpl) UpdateRole(ctx context.Context, id, role string) error {
	if role != common_models.RoleAdmin && role != common_models.RoleStaff && role != common_models.RoleMember {
		return errors.New("invalid role")
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.Repo.Update(ctx, id, bson.M{"role": role}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "users", id, map[string]common_models.Change{
		"role": {Old: existing.Role, New: role},
	})
	return nil
}

func (s *UserServiceImpl) UpdateStatus(ctx context.Context, id, status string) error {
	switch status {
	case common_models.UserStatusActive, common_models.UserStatusInactive, common_models.UserStatusSuspended:
	default:
		return errors.New("invalid status")
	}

	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.Repo.Update(ctx, id, bson.M{"status": status}); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionStatus, "users", id, map[string]common_models.Change{
		"status": {Old: existing.Status, New: status},
	})
	return nil
}

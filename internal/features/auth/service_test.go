package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	common_models "gearbook/internal/common/models"
	"gearbook/internal/config"
	"gearbook/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type memUserRepo struct {
	users     []common_models.User
	createErr error
}

func (m *memUserRepo) Create(ctx context.Context, user *common_models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.users = append(m.users, *user)
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, id string) (*common_models.User, error) {
	for i := range m.users {
		if m.users[i].ID.Hex() == id {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*common_models.User, error) {
	for i := range m.users {
		if m.users[i].Email == email {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memUserRepo) FindByUsername(ctx context.Context, username string) (*common_models.User, error) {
	for i := range m.users {
		if m.users[i].Username == username {
			u := m.users[i]
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memUserRepo) FindByResetToken(ctx context.Context, token string) (*common_models.User, error) {
	for i := range m.users {
		u := m.users[i]
		if u.ResetToken == token && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(time.Now()) {
			return &u, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *memUserRepo) FindByIDs(ctx context.Context, ids []string) ([]common_models.User, error) {
	return nil, nil
}

func (m *memUserRepo) List(ctx context.Context, filter map[string]interface{}, limit, offset int64) ([]common_models.User, int64, error) {
	return m.users, int64(len(m.users)), nil
}

func (m *memUserRepo) Update(ctx context.Context, id string, update bson.M) error {
	for i := range m.users {
		if m.users[i].ID.Hex() == id {
			if p, ok := update["password"].(string); ok {
				m.users[i].Password = p
			}
			if tok, ok := update["reset_token"].(string); ok {
				m.users[i].ResetToken = tok
			}
			if exp, ok := update["reset_token_expiry"].(time.Time); ok {
				m.users[i].ResetTokenExpiry = &exp
			} else if v, ok := update["reset_token_expiry"]; ok && v == nil {
				m.users[i].ResetTokenExpiry = nil
			}
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *memUserRepo) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return nil
}

func (m *memUserRepo) EnsureIndexes(ctx context.Context) error { return nil }

type nopAudit struct{}

func (nopAudit) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (nopAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func newTestAuth() (AuthService, *memUserRepo) {
	utils.SetSecret("test-secret")
	repo := &memUserRepo{}
	cfg := &config.Config{BcryptCost: bcrypt.MinCost}
	return NewAuthService(repo, nopAudit{}, cfg), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuth()

	usr, token, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "rene",
		Email:    "rene@example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if token == "" {
		t.Error("Register() returned empty token")
	}
	if usr.Role != common_models.RoleMember {
		t.Errorf("new user role = %s, want member", usr.Role)
	}
	if usr.Password == "secret123" {
		t.Error("password stored in plaintext")
	}

	got, token, err := svc.Login(context.Background(), "rene@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if got.ID != usr.ID || token == "" {
		t.Errorf("Login() returned user %s with token %q", got.ID.Hex(), token)
	}

	claims, err := utils.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() failed: %v", err)
	}
	if claims.UserID != usr.ID.Hex() || claims.Role != common_models.RoleMember {
		t.Errorf("claims = %+v, want user %s role member", claims, usr.ID.Hex())
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc, _ := newTestAuth()

	req := &RegisterRequest{Username: "rene", Email: "rene@example.com", Password: "secret123"}
	if _, _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	_, _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "other",
		Email:    "rene@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("duplicate email: error = %v, want ErrDuplicateUser", err)
	}

	_, _, err = svc.Register(context.Background(), &RegisterRequest{
		Username: "rene",
		Email:    "new@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("duplicate username: error = %v, want ErrDuplicateUser", err)
	}
}

func TestRegisterInsertErrors(t *testing.T) {
	svc, repo := newTestAuth()
	req := &RegisterRequest{Username: "rene", Email: "rene@example.com", Password: "secret123"}

	// Racing registration: the unique index rejects the insert after the
	// pre-checks passed.
	repo.createErr = mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	_, token, err := svc.Register(context.Background(), req)
	if !errors.Is(err, ErrDuplicateUser) {
		t.Errorf("duplicate key on insert: error = %v, want ErrDuplicateUser", err)
	}
	if token != "" {
		t.Errorf("duplicate key on insert: token = %q, want empty", token)
	}

	// Any other insert failure is not a duplicate.
	repo.createErr = errors.New("connection reset")
	_, token, err = svc.Register(context.Background(), req)
	if errors.Is(err, ErrDuplicateUser) {
		t.Error("insert outage mapped to ErrDuplicateUser")
	}
	if err == nil || token != "" {
		t.Errorf("insert outage: err = %v, token = %q", err, token)
	}
}

func TestLoginFailures(t *testing.T) {
	svc, repo := newTestAuth()

	if _, _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "rene", Email: "rene@example.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "rene@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: error = %v, want ErrInvalidCredentials", err)
	}

	repo.users[0].Status = common_models.UserStatusSuspended
	if _, _, err := svc.Login(context.Background(), "rene@example.com", "secret123"); err == nil {
		t.Error("suspended account should not log in")
	}
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _ := newTestAuth()

	if _, _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "rene", Email: "rene@example.com", Password: "secret123",
	}); err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	// Unknown email yields no token and no error
	token, err := svc.ForgotPassword(context.Background(), "ghost@example.com")
	if err != nil || token != "" {
		t.Errorf("ForgotPassword(unknown) = %q, %v; want empty and nil", token, err)
	}

	token, err = svc.ForgotPassword(context.Background(), "rene@example.com")
	if err != nil || token == "" {
		t.Fatalf("ForgotPassword() = %q, %v", token, err)
	}

	if err := svc.ResetPassword(context.Background(), "bogus", "newpass456"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("bogus token: error = %v, want ErrInvalidResetToken", err)
	}
	if err := svc.ResetPassword(context.Background(), token, "newpass456"); err != nil {
		t.Fatalf("ResetPassword() failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "rene@example.com", "newpass456"); err != nil {
		t.Errorf("login with new password failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "rene@example.com", "secret123"); err == nil {
		t.Error("old password still accepted after reset")
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestAuth()

	usr, _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "rene", Email: "rene@example.com", Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), usr.ID.Hex(), "wrong", "next456"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong current password: error = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(context.Background(), usr.ID.Hex(), "secret123", "next456"); err != nil {
		t.Fatalf("ChangePassword() failed: %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "rene@example.com", "next456"); err != nil {
		t.Errorf("login with changed password failed: %v", err)
	}
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	subscriptionDomain "github.com/rent-home/service-matching/internal/domain/subscription"
	userDomain "github.com/rent-home/service-matching/internal/domain/user"
	"github.com/rent-home/service-matching/internal/platform/auth"
	"github.com/rent-home/service-matching/internal/platform/domain"
	"github.com/rent-home/service-matching/internal/verification"
)

const (
	invalidPhoneMessage       = "请输入正确的手机号"
	missingCodeMessage        = "请输入验证码"
	wrongCodeMessage          = "验证码错误或已过期"
	missingCredentialsMessage = "请输入用户名和密码"
	wrongCredentialsMessage   = "用户名或密码错误"
)

// CodeStore issues and verifies one-time login codes.
type CodeStore interface {
	Issue(ctx context.Context, phone string) (string, error)
	Consume(ctx context.Context, phone, code string) (bool, error)
}

// SendCodeRequest is the body of POST /api/auth/send-code.
type SendCodeRequest struct {
	Phone string `json:"phone"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// AdminLoginRequest is the body of POST /api/admin/auth/login.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserDTO is the public view of an app user.
type UserDTO struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
}

// AdminDTO is the public view of an administrator.
type AdminDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginResult carries the issued token.
type LoginResult struct {
	Token string    `json:"token"`
	User  *UserDTO  `json:"user,omitempty"`
	Admin *AdminDTO `json:"admin,omitempty"`
}

// ProfileDTO is the current user with subscription state.
type ProfileDTO struct {
	ID                    string     `json:"id"`
	Phone                 string     `json:"phone"`
	SubscriptionExpireAt  *time.Time `json:"subscriptionExpireAt"`
	HasActiveSubscription bool       `json:"hasActiveSubscription"`
}

// AuthService handles phone-code login for users and password login for admins.
type AuthService struct {
	users      userDomain.UserRepository
	admins     userDomain.AdminRepository
	orders     subscriptionDomain.OrderRepository
	codes      CodeStore
	jwtManager *auth.JWTManager
	masterCode string
	now        func() time.Time
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService. An empty masterCode disables the fixed bypass code.
func NewAuthService(
	users userDomain.UserRepository,
	admins userDomain.AdminRepository,
	orders subscriptionDomain.OrderRepository,
	codes CodeStore,
	jwtManager *auth.JWTManager,
	masterCode string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		admins:     admins,
		orders:     orders,
		codes:      codes,
		jwtManager: jwtManager,
		masterCode: masterCode,
		now:        time.Now,
		logger:     logger,
	}
}

// SendCode issues a login code. Delivery is simulated: the code is written to the log.
func (s *AuthService) SendCode(ctx context.Context, req SendCodeRequest) error {
	phone := strings.TrimSpace(req.Phone)
	if !userDomain.IsValidPhone(phone) {
		return domain.NewValidationError(invalidPhoneMessage)
	}

	code, err := s.codes.Issue(ctx, phone)
	if err != nil {
		if errors.Is(err, verification.ErrCooldown) {
			return domain.NewValidationError(err.Error())
		}
		return err
	}

	s.logger.Info("verification code issued",
		zap.String("phone", phone),
		zap.String("code", code),
	)
	return nil
}

// Login verifies the code and signs in, creating the user on first login.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	phone := strings.TrimSpace(req.Phone)
	code := strings.TrimSpace(req.Code)
	if !userDomain.IsValidPhone(phone) {
		return nil, domain.NewValidationError(invalidPhoneMessage)
	}
	if len(code) < 4 {
		return nil, domain.NewValidationError(missingCodeMessage)
	}

	ok, err := s.codes.Consume(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if !ok && (s.masterCode == "" || code != s.masterCode) {
		return nil, domain.NewValidationError(wrongCodeMessage)
	}

	u, err := s.findOrCreateUser(ctx, phone)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtManager.Generate(u.ID, u.Phone, auth.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID))
	return &LoginResult{Token: token, User: &UserDTO{ID: u.ID, Phone: u.Phone}}, nil
}

// Profile returns the user and the latest active subscription expiry.
func (s *AuthService) Profile(ctx context.Context, userID string) (*ProfileDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	expireAt := subscriptionDomain.ActiveUntil(orders, s.now())
	return &ProfileDTO{
		ID:                    u.ID,
		Phone:                 u.Phone,
		SubscriptionExpireAt:  expireAt,
		HasActiveSubscription: expireAt != nil,
	}, nil
}

// AdminLogin checks an administrator's password.
func (s *AuthService) AdminLogin(ctx context.Context, req AdminLoginRequest) (*LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, domain.NewValidationError(missingCredentialsMessage)
	}

	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if domain.IsKind(err, domain.KindNotFound) {
			return nil, domain.NewValidationError(wrongCredentialsMessage)
		}
		return nil, err
	}
	if !auth.CheckPassword(admin.PasswordHash, req.Password) {
		s.logger.Warn("admin login rejected", zap.String("username", username))
		return nil, domain.NewValidationError(wrongCredentialsMessage)
	}

	token, err := s.jwtManager.Generate(admin.ID, admin.Username, auth.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	s.logger.Info("admin logged in", zap.String("admin_id", admin.ID))
	return &LoginResult{Token: token, Admin: &AdminDTO{ID: admin.ID, Username: admin.Username}}, nil
}

// EnsureAdmin creates the bootstrap administrator when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}

	_, err := s.admins.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	ids, err := s.admins.ListIDs(ctx)
	if err != nil {
		return err
	}

	admin := &userDomain.Admin{
		ID:           userDomain.NextSequentialID("A", 4, ids),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.admins.Save(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("bootstrap admin created", zap.String("admin_id", admin.ID), zap.String("username", username))
	return nil
}

func (s *AuthService) findOrCreateUser(ctx context.Context, phone string) (*userDomain.User, error) {
	now := s.now().UTC()

	u, err := s.users.FindByPhone(ctx, phone)
	if err == nil {
		if err := s.users.Touch(ctx, u.ID, now); err != nil {
			return nil, err
		}
		u.UpdatedAt = now
		return u, nil
	}
	if !domain.IsKind(err, domain.KindNotFound) {
		return nil, err
	}

	ids, err := s.users.ListIDs(ctx)
	if err != nil {
		return nil, err
	}
	u = &userDomain.User{
		ID:        userDomain.NextSequentialID("U", 4, ids),
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

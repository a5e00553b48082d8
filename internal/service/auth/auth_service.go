package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/fisker/officehub-backend/internal/model"
	"github.com/fisker/officehub-backend/internal/repository"
	"github.com/fisker/officehub-backend/pkg/twofactor"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// JWT Claims
type Claims struct {
	UserID       string `json:"userId"`
	EmployeeCode string `json:"employeeCode"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	repo         *repository.UserRepository
	TwoFactorSvc *twofactor.TwoFactorService
	jwtSecret    []byte // JWT签名密钥
	tokenExpiry  time.Duration
}

// NewAuthService 创建认证服务
// jwtSecret: JWT签名密钥（建议64字节或更长，更安全）
func NewAuthService(repo *repository.UserRepository, jwtSecret string, tokenExpireHours int, issuer string) *AuthService {
	jwtKey := []byte(jwtSecret)
	if len(jwtKey) == 0 {
		// 如果没有配置，使用默认值（仅用于开发环境）
		jwtKey = []byte("Xk4q2mPfT8wJZr6aNc1eHs9gVb3uYd5LoQi7RjAxEnCvB0hKtUzSyWlGdM2fOp8I")
	}
	if tokenExpireHours <= 0 {
		tokenExpireHours = 24
	}
	if issuer == "" {
		issuer = "OfficeHub"
	}

	return &AuthService{
		repo:         repo,
		TwoFactorSvc: twofactor.NewTwoFactorService(issuer),
		jwtSecret:    jwtKey,
		tokenExpiry:  time.Duration(tokenExpireHours) * time.Hour,
	}
}

// Login 用户登录（邮箱+密码，启用2FA的用户需要TOTP验证码）
func (s *AuthService) Login(req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.authenticateWithPassword(req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	// 用户启用了2FA，需要验证TOTP代码
	if user.TwoFactorEnabled {
		if req.TwoFactorCode == "" {
			return &model.LoginResponse{
				RequiresTwoFactor: true,
				User:              *user,
			}, nil
		}

		if user.TwoFactorSecret == "" || !s.TwoFactorSvc.ValidateCode(user.TwoFactorSecret, req.TwoFactorCode) {
			return nil, errors.New("2FA验证失败")
		}
	}

	// 生成 JWT Token
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("生成Token失败: %w", err)
	}

	// 更新最后登录时间
	now := time.Now()
	user.LastLoginTime = &now
	if err := s.repo.Update(user); err != nil {
		return nil, fmt.Errorf("更新登录时间失败: %w", err)
	}

	return &model.LoginResponse{
		AccessToken: token,
		User:        *user,
	}, nil
}

// authenticateWithPassword 使用邮箱+密码认证
func (s *AuthService) authenticateWithPassword(email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("邮箱或密码错误")
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	// 软停用的用户禁止登录
	if !user.IsActive {
		return nil, errors.New("账号已停用，请联系管理员")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.New("邮箱或密码错误")
	}

	return user, nil
}

// ChangePassword 修改密码（需验证旧密码）
func (s *AuthService) ChangePassword(userID string, req *model.ChangePasswordRequest) error {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return errors.New("用户不存在")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return errors.New("旧密码错误")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("密码加密失败: %w", err)
	}

	user.Password = string(hashedPassword)
	return s.repo.Update(user)
}

// ===== 2FA Management =====

// SetupTwoFactor 生成2FA密钥与二维码（先保存密钥，验证通过后才启用）
func (s *AuthService) SetupTwoFactor(userID string) (secret, qrCode string, err error) {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return "", "", errors.New("用户不存在")
	}
	if user.TwoFactorEnabled {
		return "", "", errors.New("2FA已启用，如需重置请先关闭")
	}

	secret, err = s.TwoFactorSvc.GenerateSecret(user.Email)
	if err != nil {
		return "", "", fmt.Errorf("生成2FA密钥失败: %w", err)
	}

	qrCode, err = s.TwoFactorSvc.GenerateQRCode(user.Email, secret)
	if err != nil {
		return "", "", fmt.Errorf("生成二维码失败: %w", err)
	}

	user.TwoFactorSecret = secret
	if err := s.repo.Update(user); err != nil {
		return "", "", fmt.Errorf("保存2FA密钥失败: %w", err)
	}

	return secret, qrCode, nil
}

// EnableTwoFactor 验证TOTP代码后正式启用2FA
func (s *AuthService) EnableTwoFactor(userID, code string) error {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return errors.New("用户不存在")
	}
	if user.TwoFactorSecret == "" {
		return errors.New("请先生成2FA密钥")
	}

	if !s.TwoFactorSvc.ValidateCode(user.TwoFactorSecret, code) {
		return errors.New("验证码错误")
	}

	user.TwoFactorEnabled = true
	return s.repo.Update(user)
}

// DisableTwoFactor 关闭2FA（需验证密码）
func (s *AuthService) DisableTwoFactor(userID, password string) error {
	user, err := s.repo.FindByID(userID)
	if err != nil {
		return errors.New("用户不存在")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return errors.New("密码错误")
	}

	user.TwoFactorEnabled = false
	user.TwoFactorSecret = ""
	return s.repo.Update(user)
}

// ===== Token =====

// GenerateToken 生成 JWT Token
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenExpiry)

	claims := &Claims{
		UserID:       user.ID,
		EmployeeCode: user.EmployeeCode,
		Role:         string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "officehub",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken 验证 JWT Token
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("无效的Token")
}

// GetUserByID 根据ID获取用户
func (s *AuthService) GetUserByID(userID string) (*model.User, error) {
	return s.repo.FindByID(userID)
}

// GetUserByCode 根据工号获取用户
func (s *AuthService) GetUserByCode(code string) (*model.User, error) {
	return s.repo.FindByCode(code)
}

package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mingjing/mingjing/pkg/db"
	"github.com/mingjing/mingjing/pkg/models"
	"github.com/mingjing/mingjing/pkg/utils"
)

const bcryptCost = 12

var (
	ErrEmailTaken         = errors.New("数据已存在，请检查唯一字段")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrInvalidToken       = errors.New("未授权，请先登录")
)

// AuthService handles registration, login and token verification.
type AuthService struct {
	db          *gorm.DB
	jwtSecret   []byte
	tokenExpiry time.Duration
	logger      *slog.Logger
}

func NewAuthService(gdb *gorm.DB, jwtSecret string, tokenExpiry time.Duration) *AuthService {
	return &AuthService{
		db:          gdb,
		jwtSecret:   []byte(jwtSecret),
		tokenExpiry: tokenExpiry,
		logger:      utils.GetLogger(),
	}
}

type tokenClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(email, name, password string) (*models.AuthResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var existing int64
	if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if existing > 0 {
		return nil, ErrEmailTaken
	}

	user := &db.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "userID", user.ID)
	return &models.AuthResult{
		User:  models.UserInfo{ID: user.ID, Email: user.Email, Name: user.Name, CreatedAt: user.CreatedAt},
		Token: token,
	}, nil
}

func (s *AuthService) Login(email, password string) (*models.AuthResult, error) {
	var user db.User
	err := s.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.signToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResult{
		User:  models.UserInfo{ID: user.ID, Email: user.Email, Name: user.Name, CreatedAt: user.CreatedAt},
		Token: token,
	}, nil
}

// GetMe returns the profile view including the usage counter.
func (s *AuthService) GetMe(userID string) (*models.UserInfo, error) {
	var user db.User
	err := s.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	usage := user.UsageCount
	return &models.UserInfo{
		ID:         user.ID,
		Email:      user.Email,
		Name:       user.Name,
		UsageCount: &usage,
		CreatedAt:  user.CreatedAt,
	}, nil
}

// IncrementUsage bumps the per-user analysis counter after a completed
// AI operation.
func (s *AuthService) IncrementUsage(userID string) error {
	return s.db.Model(&db.User{}).
		Where("id = ?", userID).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}

func (s *AuthService) signToken(userID string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token, returning the user ID.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

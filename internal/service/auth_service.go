package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"roboquest_backend/internal/config"
	"roboquest_backend/internal/model"
	"roboquest_backend/internal/repository"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type SignupInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BirthDate   string `json:"birthDate"`
	ParentEmail string `json:"parentEmail"`
}

type ProfilePatch struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	ParentEmail *string `json:"parentEmail"`
}

type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type LoginResult struct {
	Session  Session             `json:"session"`
	User     model.UserView      `json:"user"`
	Progress *model.UserProgress `json:"progress"`
}

// AuthService 身份提供方：账号、令牌，以及令牌到 Identity 的解析
type AuthService struct {
	AccountRepo repository.AccountStore
	Progress    *ProgressService
	JWT         config.JWTConfig

	mu     sync.RWMutex
	admins config.AdminConfig
}

func NewAuthService(accountRepo repository.AccountStore, progress *ProgressService, cfg *config.Config) *AuthService {
	return &AuthService{
		AccountRepo: accountRepo,
		Progress:    progress,
		JWT:         cfg.JWT,
		admins:      cfg.Admin,
	}
}

// SetAdmins swaps the admin list; used by the config watcher.
func (s *AuthService) SetAdmins(admins config.AdminConfig) {
	s.mu.Lock()
	s.admins = admins
	s.mu.Unlock()
}

// RoleFor resolves the role an email carries.
func (s *AuthService) RoleFor(email string) model.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admins.IsAdminEmail(email) {
		return model.RoleAdmin
	}
	return model.RoleUser
}

func validateSignup(in SignupInput) error {
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email", util.ErrValidation)
	}
	if len(in.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", util.ErrValidation, minPasswordLength)
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("%w: firstName is required", util.ErrValidation)
	}
	if in.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", in.BirthDate); err != nil {
			return fmt.Errorf("%w: birthDate must be YYYY-MM-DD", util.ErrValidation)
		}
	}
	if in.ParentEmail != "" {
		if _, err := mail.ParseAddress(in.ParentEmail); err != nil {
			return fmt.Errorf("%w: invalid parentEmail", util.ErrValidation)
		}
	}
	return nil
}

// Signup creates the account and the learner's initial progress and settings.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.UserView, error) {
	if err := validateSignup(in); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := &model.Account{
		Email:       in.Email,
		Password:    string(hashedPassword),
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    strings.TrimSpace(in.LastName),
		BirthDate:   in.BirthDate,
		ParentEmail: in.ParentEmail,
	}
	if err := s.AccountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if err := s.Progress.InitUser(ctx, account.UserID); err != nil {
		return nil, err
	}

	logger.Log.Info("Account created", zap.String("user_id", account.UserID))
	view := model.NewUserView(account, s.RoleFor(account.Email))
	return &view, nil
}

// Login checks credentials, issues a token and records the login for the streak.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	account, err := s.AccountRepo.FindByEmail(ctx, email)
	if errors.Is(err, util.ErrNotFound) {
		return nil, util.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}

	token, err := util.GenerateJWT(account.UserID, account.Email, s.JWT.Secret, s.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}

	progress, err := s.Progress.RecordLogin(ctx, account.UserID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Session: Session{
			AccessToken: token,
			TokenType:   "bearer",
			ExpiresAt:   time.Now().Add(s.JWT.ExpireTime),
		},
		User:     model.NewUserView(account, s.RoleFor(account.Email)),
		Progress: progress,
	}, nil
}

// Verify resolves a bearer token into an Identity. The role is decided here, once.
func (s *AuthService) Verify(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, util.ErrUnauthenticated
	}
	claims, err := util.ParseJWT(token, s.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUnauthenticated, err)
	}
	if claims.UserID == "" {
		return nil, util.ErrUnauthenticated
	}
	return &model.Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   s.RoleFor(claims.Email),
	}, nil
}

// CurrentUser returns the account view; it degrades to the token's data if the account row is gone.
func (s *AuthService) CurrentUser(ctx context.Context, id *model.Identity) (model.UserView, error) {
	account, err := s.AccountRepo.FindByUserID(ctx, id.UserID)
	if errors.Is(err, util.ErrNotFound) {
		return model.UserView{ID: id.UserID, Email: id.Email, IsAdmin: id.CanAdminister()}, nil
	}
	if err != nil {
		return model.UserView{}, err
	}
	return model.NewUserView(account, id.Role), nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, id *model.Identity, patch ProfilePatch) (*model.UserView, error) {
	if patch.ParentEmail != nil && *patch.ParentEmail != "" {
		if _, err := mail.ParseAddress(*patch.ParentEmail); err != nil {
			return nil, fmt.Errorf("%w: invalid parentEmail", util.ErrValidation)
		}
	}

	account, err := s.AccountRepo.FindByUserID(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		account.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		account.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.ParentEmail != nil {
		account.ParentEmail = *patch.ParentEmail
	}

	if err := s.AccountRepo.Update(ctx, account); err != nil {
		return nil, err
	}
	view := model.NewUserView(account, id.Role)
	return &view, nil
}

package user

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"property-marketplace/internal/auth"
	domainUser "property-marketplace/internal/domain/user"
	"property-marketplace/internal/logger"
	appErrors "property-marketplace/pkg/errors"
	"property-marketplace/pkg/utils"
)

const tokenTypeBearer = "bearer"

// Service implements user use cases
type Service struct {
	userRepo domainUser.Repository
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenService

	// dummyHash is verified against when the email is unknown, so that login
	// costs one bcrypt comparison either way.
	dummyHash string
}

func NewService(
	userRepo domainUser.Repository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenService,
) (*Service, error) {
	dummyHash, err := hasher.Hash("property-marketplace-timing-guard")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare timing hash: %w", err)
	}

	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummyHash,
	}, nil
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*UserResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		logger.Warn("Registration attempt with existing email",
			zap.String("email", req.Email),
			zap.String("event", "registration_failed_duplicate_email"),
		)
		return nil, appErrors.ErrDuplicateEmail
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, appErrors.NewAppError(appErrors.CodeValidation, "Password is too long", err)
		}
		return nil, err
	}

	user := &domainUser.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		IsSeller:       req.IsSeller,
		PasswordHashed: hashedPassword,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			logger.Warn("Concurrent registration lost the race for email",
				zap.String("email", req.Email),
				zap.String("event", "registration_failed_duplicate_email"),
			)
			return nil, appErrors.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info("User registered successfully",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
		zap.Bool("is_seller", user.IsSeller),
		zap.String("event", "user_registered"),
	)

	return ToUserResponse(user), nil
}

// Login exchanges credentials for a bearer token. Unknown email and wrong
// password return the same error after the same amount of hashing work.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	req.Email = utils.SanitizeEmail(req.Email)

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		s.hasher.Verify(req.Password, s.dummyHash)
		logger.Warn("Login attempt with non-existent email",
			zap.String("email", req.Email),
			zap.String("event", "user_not_found"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	if !s.hasher.Verify(req.Password, user.PasswordHashed) {
		logger.Warn("Login attempt with invalid password",
			zap.Int64("user_id", user.ID),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.Email, s.tokens.DefaultTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	logger.Info("User logged in successfully",
		zap.Int64("user_id", user.ID),
		zap.Time("expires_at", expiresAt),
		zap.String("event", "login_success"),
	)

	return &TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, err
	}

	return ToUserResponse(user), nil
}

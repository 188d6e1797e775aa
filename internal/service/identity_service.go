package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"digital-wallet-backend/internal/core/domain"
	"digital-wallet-backend/internal/core/ports"
	"digital-wallet-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IdentityServiceImpl implements ports.IdentityService: account
// registration, login, and identifier resolution.
type IdentityServiceImpl struct {
	accountRepo ports.AccountRepository
	walletRepo  ports.WalletRepository
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
	log         zerolog.Logger
}

func NewIdentityService(
	accountRepo ports.AccountRepository,
	walletRepo ports.WalletRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *IdentityServiceImpl {
	return &IdentityServiceImpl{
		accountRepo: accountRepo,
		walletRepo:  walletRepo,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
		log:         log,
	}
}

// Resolve maps a user-supplied identifier to the canonical account id.
// Order: existing wallet owner (covers external counterparties that were
// granted wallets), account id, email, then phone in any accepted form.
// Resolution never creates anything.
func (s *IdentityServiceImpl) Resolve(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", apperror.ErrWalletNotFound()
	}

	// A wallet keyed by the exact identifier settles it immediately.
	w, err := s.walletRepo.GetByUserID(ctx, identifier)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("resolve wallet lookup: %w", err))
	}
	if w != nil {
		return w.UserID, nil
	}

	a, err := s.accountRepo.GetByID(ctx, identifier)
	if err != nil {
		return "", apperror.InternalError(fmt.Errorf("resolve account lookup: %w", err))
	}
	if a != nil {
		return a.ID, nil
	}

	if domain.ValidEmail(identifier) {
		a, err = s.accountRepo.GetByEmail(ctx, identifier)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("resolve email lookup: %w", err))
		}
		if a != nil {
			return a.ID, nil
		}
	}

	if variants := domain.PhoneVariants(identifier); variants != nil {
		a, err = s.accountRepo.GetByPhone(ctx, variants)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("resolve phone lookup: %w", err))
		}
		if a != nil {
			return a.ID, nil
		}
	}

	return "", apperror.ErrWalletNotFound()
}

// Register creates a new account after validating all fields. At least one
// of email or phone is required so the account stays resolvable.
func (s *IdentityServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.Account, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	phone := strings.TrimSpace(req.Phone)

	if fullName == "" || (email == "" && phone == "") || req.Password == "" {
		return nil, apperror.ErrInvalidRequest("fullname, password and email or phone are required")
	}
	if email != "" && !domain.ValidEmail(email) {
		return nil, apperror.ErrInvalidEmail()
	}
	storedPhone := ""
	if phone != "" {
		storedPhone = domain.StoredPhoneForm(phone)
		if storedPhone == "" {
			return nil, apperror.ErrInvalidPhone()
		}
	}
	if msg := domain.ValidatePassword(req.Password); msg != "" {
		return nil, apperror.ErrInvalidRequest(msg)
	}

	hash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	account := &domain.Account{
		ID:           "u_" + uuid.Must(uuid.NewV7()).String(),
		FullName:     fullName,
		Email:        email,
		Phone:        storedPhone,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.accountRepo.Create(ctx, account); err != nil {
		if errors.Is(err, ports.ErrDuplicateAccount) {
			return nil, apperror.ErrAccountExists()
		}
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	s.log.Info().Str("account_id", account.ID).Msg("account registered")
	return account, nil
}

// Login authenticates by email or phone and issues a session token.
// Unknown identifier and wrong password are indistinguishable to the
// client.
func (s *IdentityServiceImpl) Login(ctx context.Context, identifier, password string) (*ports.LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperror.ErrInvalidCredentials()
	}

	var (
		account *domain.Account
		err     error
	)
	if domain.ValidEmail(identifier) {
		account, err = s.accountRepo.GetByEmail(ctx, strings.ToLower(identifier))
	} else if variants := domain.PhoneVariants(identifier); variants != nil {
		account, err = s.accountRepo.GetByPhone(ctx, variants)
	}
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("login lookup: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	ok, err := s.hashSvc.Verify(password, account.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(account.ID, account.Email)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().Str("account_id", account.ID).Msg("login succeeded")
	return &ports.LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

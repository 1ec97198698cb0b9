package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dukerupert/julg/internal/auth"
	"github.com/dukerupert/julg/internal/domain"
	"github.com/dukerupert/julg/internal/events"
	"github.com/dukerupert/julg/internal/telemetry"
	"github.com/dukerupert/julg/internal/validate"
	"github.com/shopspring/decimal"
)

const resetTokenTTL = time.Hour

// UserService provides business logic for user operations
type UserService interface {
	// Register creates a member account and an empty cart for it
	Register(ctx context.Context, input RegisterInput) (*domain.Identity, error)

	// Login verifies credentials and persists the session pointer
	Login(ctx context.Context, email, password string) (*domain.Identity, error)

	// Logout clears the persisted session pointer
	Logout(ctx context.Context) error

	Profile(ctx context.Context) (*domain.User, error)
	UpdateProfile(ctx context.Context, input ProfileInput) (*domain.Identity, error)
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	UpdateSettings(ctx context.Context, update UserSettingsUpdate) (*domain.UserSettings, error)

	// RequestPasswordReset returns a token valid for one hour, or "" when
	// the email is unknown so callers cannot probe for accounts.
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error

	// PurchasedCourses lists the caller's purchase history from the member ledger.
	PurchasedCourses(ctx context.Context) (*PurchaseHistory, error)
}

// RegisterInput carries a sign-up form.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=255"`
	FirstName string `json:"firstName" validate:"max=255"`
	LastName  string `json:"lastName" validate:"max=255"`
}

// ProfileInput carries profile edits.
type ProfileInput struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"firstName" validate:"max=255"`
	LastName  string `json:"lastName" validate:"max=255"`
}

// UserSettingsUpdate changes only the preferences that are set.
type UserSettingsUpdate struct {
	EmailNotifications *bool `json:"emailNotifications"`
	TwoFactorEnabled   *bool `json:"twoFactorEnabled"`
}

type passwordInput struct {
	Password string `json:"password" validate:"required,min=8,max=255"`
}

// PurchaseHistory is a member's purchased courses and spend.
type PurchaseHistory struct {
	Courses      []PurchasedCourse `json:"courses"`
	Spent        decimal.Decimal   `json:"spent"`
	LastPurchase *time.Time        `json:"lastPurchase"`
	TotalCourses int               `json:"totalCourses"`
}

// PurchasedCourse pairs a purchased title with its current catalog entry.
// ID is zero when the course has since been removed.
type PurchasedCourse struct {
	Name        string `json:"name"`
	ID          int64  `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Progress    int    `json:"progress"`
}

type userService struct {
	repo      *Repository
	sessions  SessionService
	logger    *slog.Logger
	metrics   *telemetry.BusinessMetrics
	publisher events.Publisher
	now       func() time.Time
	cost      int
}

// NewUserService creates a new UserService instance
func NewUserService(repo *Repository, sessions SessionService, opts Options) UserService {
	opts = opts.withDefaults()
	return &userService{
		repo:      repo,
		sessions:  sessions,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		now:       opts.Now,
		cost:      opts.PasswordCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(domain.Sanitize(email))
}

func userIndexByID(users []domain.User, id int64) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func userIndexByEmail(users []domain.User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.Identity, error) {
	const op = "UserService.Register"

	input.Email = normalizeEmail(input.Email)
	input.Password = domain.Sanitize(input.Password)
	input.FirstName = domain.Sanitize(input.FirstName)
	input.LastName = domain.Sanitize(input.LastName)

	if err := validate.Struct(op, input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPasswordCost(input.Password, s.cost)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to hash password")
	}

	defer s.repo.lock()()

	users, err := s.repo.users(ctx, op)
	if err != nil {
		return nil, err
	}
	if userIndexByEmail(users, input.Email) >= 0 {
		return nil, domain.ErrEmailTaken
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	user := domain.User{
		ID:           nextSequentialID(0, ids...),
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         domain.RoleMember,
		CreatedAt:    s.now(),
		Settings:     domain.UserSettings{EmailNotifications: true},
	}

	carts, err := s.repo.carts(ctx, op)
	if err != nil {
		return nil, err
	}
	carts[domain.CartKeyForUser(user.ID)] = domain.NewCart()

	if err := s.repo.commit(ctx, op, map[string]any{
		keyUsers: append(users, user),
		keyCarts: carts,
	}); err != nil {
		return nil, err
	}

	s.metrics.RecordSignup()
	publish(ctx, s.publisher, s.logger, user.CreatedAt, events.TypeUserRegistered, events.UserRegistered{
		UserID: user.ID,
		Email:  user.Email,
	})
	s.logger.Info("user registered", "user_id", user.ID)
	return user.Identity(), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	const op = "UserService.Login"

	email = normalizeEmail(email)
	password = domain.Sanitize(password)
	if email == "" || password == "" {
		return nil, domain.NewValidationError(op, "email", "email and password are required")
	}

	defer s.repo.lock()()

	users, err := s.repo.users(ctx, op)
	if err != nil {
		return nil, err
	}

	idx := userIndexByEmail(users, email)
	if idx < 0 {
		s.metrics.RecordLogin(false)
		return nil, domain.ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(password, users[idx].PasswordHash); err != nil {
		s.metrics.RecordLogin(false)
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, domain.Internal(err, op, "failed to verify password")
	}

	identity := users[idx].Identity()

	carts, err := s.repo.carts(ctx, op)
	if err != nil {
		return nil, err
	}
	key := domain.CartKeyForUser(identity.ID)
	if carts[key] == nil {
		carts[key] = domain.NewCart()
	}

	if err := s.repo.commit(ctx, op, map[string]any{
		keyCurrentUser: identity,
		keyCarts:       carts,
	}); err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(true)
	s.logger.Info("user logged in", "user_id", identity.ID)
	return identity, nil
}

func (s *userService) Logout(ctx context.Context) error {
	defer s.repo.lock()()
	return s.repo.save(ctx, "UserService.Logout", keyCurrentUser, nil)
}

// Profile returns the caller's account without its password hash.
func (s *userService) Profile(ctx context.Context) (*domain.User, error) {
	const op = "UserService.Profile"

	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.users(ctx, op)
	if err != nil {
		return nil, err
	}

	idx := userIndexByID(users, identity.ID)
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}

	user := users[idx]
	user.PasswordHash = ""
	return &user, nil
}

// UpdateProfile edits the caller's names and email. The persisted session
// is refreshed when it points at the same user.
func (s *userService) UpdateProfile(ctx context.Context, input ProfileInput) (*domain.Identity, error) {
	const op = "UserService.UpdateProfile"

	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	input.Email = normalizeEmail(input.Email)
	input.FirstName = domain.Sanitize(input.FirstName)
	input.LastName = domain.Sanitize(input.LastName)
	if err := validate.Struct(op, input); err != nil {
		return nil, err
	}

	defer s.repo.lock()()

	users, err := s.repo.users(ctx, op)
	if err != nil {
		return nil, err
	}

	idx := userIndexByID(users, identity.ID)
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}
	if other := userIndexByEmail(users, input.Email); other >= 0 && other != idx {
		return nil, domain.ErrEmailTaken
	}

	users[idx].FirstName = input.FirstName
	users[idx].LastName = input.LastName
	users[idx].Email = input.Email
	updated := users[idx].Identity()

	writes := map[string]any{keyUsers: users}

	current, err := s.repo.currentUser(ctx, op)
	if err != nil {
		return nil, err
	}
	if current != nil && current.ID == updated.ID {
		writes[keyCurrentUser] = updated
	}

	if err := s.repo.commit(ctx, op, writes); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *userService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	const op = "UserService.ChangePassword"

	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return err
	}

	newPassword = domain.Sanitize(newPassword)
	if err := validate.Struct(op, passwordInput{Password: newPassword}); err != nil {
		return err
	}

	defer s.repo.lock()()

	users, err := s.repo.users(ctx, op)
	if err != nil {
		return err
	}

	idx := userIndexByID(users, identity.ID)
	if idx < 0 {
		return domain.ErrUserNotFound
	}
	if err := auth.VerifyPassword(domain.Sanitize(currentPassword), users[idx].PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return domain.ErrInvalidCredentials
		}
		return domain.Internal(err, op, "failed to verify password")
	}

	hash, err := auth.HashPasswordCost(newPassword, s.cost)
	if err != nil {
		return domain.Internal(err, op, "failed to hash password")
	}
	users[idx].PasswordHash = hash

	return s.repo.save(ctx, op, keyUsers, users)
}

func (s *userService) UpdateSettings(ctx context.Context, update UserSettingsUpdate) (*domain.UserSettings, error) {
	const op = "UserService.UpdateSettings"

	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	defer s.repo.lock()()

	users, err := s.repo.users(ctx, op)
	if err != nil {
		return nil, err
	}

	idx := userIndexByID(users, identity.ID)
	if idx < 0 {
		return nil, domain.ErrUserNotFound
	}

	settings := &users[idx].Settings
	if update.EmailNotifications != nil {
		settings.EmailNotifications = *update.EmailNotifications
	}
	if update.TwoFactorEnabled != nil {
		settings.TwoFactorEnabled = *update.TwoFactorEnabled
	}

	if err := s.repo.save(ctx, op, keyUsers, users); err != nil {
		return nil, err
	}

	out := *settings
	return &out, nil
}

func (s *userService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	const op = "UserService.RequestPasswordReset"

	email = normalizeEmail(email)

	defer s.repo.lock()()

	users, err := s.repo.users(ctx, op)
	if err != nil {
		return "", err
	}

	idx := userIndexByEmail(users, email)
	if idx < 0 {
		return "", nil
	}

	tokens, err := s.repo.resetTokens(ctx, op)
	if err != nil {
		return "", err
	}

	token := domain.ResetToken{
		Token:     auth.NewResetToken(),
		UserID:    users[idx].ID,
		Email:     users[idx].Email,
		ExpiresAt: s.now().Add(resetTokenTTL),
	}

	if err := s.repo.save(ctx, op, keyResetTokens, append(tokens, token)); err != nil {
		return "", err
	}

	s.logger.Info("password reset requested", "user_id", token.UserID)
	return token.Token, nil
}

func (s *userService) ResetPassword(ctx context.Context, token, newPassword string) error {
	const op = "UserService.ResetPassword"

	token = domain.Sanitize(token)
	newPassword = domain.Sanitize(newPassword)
	if err := validate.Struct(op, passwordInput{Password: newPassword}); err != nil {
		return err
	}

	defer s.repo.lock()()

	tokens, err := s.repo.resetTokens(ctx, op)
	if err != nil {
		return err
	}

	tidx := -1
	for i := range tokens {
		if tokens[i].Token == token && !tokens[i].Used {
			tidx = i
			break
		}
	}
	if tidx < 0 || !tokens[tidx].Usable(s.now()) {
		return domain.ErrInvalidResetToken
	}

	users, err := s.repo.users(ctx, op)
	if err != nil {
		return err
	}

	idx := userIndexByID(users, tokens[tidx].UserID)
	if idx < 0 {
		return domain.ErrUserNotFound
	}

	hash, err := auth.HashPasswordCost(newPassword, s.cost)
	if err != nil {
		return domain.Internal(err, op, "failed to hash password")
	}
	users[idx].PasswordHash = hash
	tokens[tidx].Used = true

	if err := s.repo.commit(ctx, op, map[string]any{
		keyUsers:       users,
		keyResetTokens: tokens,
	}); err != nil {
		return err
	}

	s.logger.Info("password reset", "user_id", users[idx].ID)
	return nil
}

func (s *userService) PurchasedCourses(ctx context.Context) (*PurchaseHistory, error) {
	const op = "UserService.PurchasedCourses"

	identity, err := s.sessions.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	members, err := s.repo.members(ctx, op)
	if err != nil {
		return nil, err
	}

	history := &PurchaseHistory{Courses: []PurchasedCourse{}, Spent: decimal.Zero}

	var member *domain.Member
	for i := range members {
		if members[i].Email == identity.Email {
			member = &members[i]
			break
		}
	}
	if member == nil {
		return history, nil
	}

	courses, err := s.repo.courses(ctx, op)
	if err != nil {
		return nil, err
	}

	for _, name := range member.Courses {
		pc := PurchasedCourse{Name: name}
		for _, c := range courses {
			if c.Title == name {
				pc.ID = c.ID
				pc.Description = c.Description
				pc.Image = c.Image
				break
			}
		}
		history.Courses = append(history.Courses, pc)
	}

	history.Spent = member.Spent
	if !member.LastPurchase.IsZero() {
		last := member.LastPurchase
		history.LastPurchase = &last
	}
	history.TotalCourses = len(history.Courses)
	return history, nil
}

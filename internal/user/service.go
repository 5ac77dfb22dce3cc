package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/entity"
	"github.com/ovaphlow/pitchfork/service-inventory-go/internal/validation"
)

var (
	EmailLength    = validation.Range{Min: 3, Max: 50}
	UsernameLength = validation.Range{Min: 5, Max: 50}
	PasswordLength = validation.Range{Min: 6, Max: 30}
	// DefaultNameLength bounds firstname and lastname unless configured otherwise.
	DefaultNameLength = validation.Range{Min: 2, Max: 40}
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// Repository is the storage the service needs for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetAll(ctx context.Context) ([]*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	Insert(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// LocationLister finds the locations a user owns.
type LocationLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Location, error)
}

// ItemLister finds the items a user owns.
type ItemLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]*entity.Item, error)
}

// Options tunes the user rules.
type Options struct {
	NameLength      validation.Range
	RequireLanguage bool
	// Collation is the BCP 47 tag used to order users by name.
	Collation string
	Hasher    PasswordHasher
	Logger    *zap.SugaredLogger
}

// UserService validates and persists users.
type UserService struct {
	repo      Repository
	locations LocationLister
	items     ItemLister
	hasher    PasswordHasher
	logger    *zap.SugaredLogger
	fields    []validation.Field[*entity.User]

	nameLength validation.Range
	collation  language.Tag
}

func NewUserService(r Repository, locations LocationLister, items ItemLister, opts Options) *UserService {
	if opts.NameLength == (validation.Range{}) {
		opts.NameLength = DefaultNameLength
	}
	if opts.Hasher == nil {
		opts.Hasher = PlainText{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	tag, err := language.Parse(opts.Collation)
	if err != nil {
		tag = language.Spanish
	}
	return &UserService{
		repo:       r,
		locations:  locations,
		items:      items,
		hasher:     opts.Hasher,
		logger:     opts.Logger,
		fields:     userFields(opts.RequireLanguage),
		nameLength: opts.NameLength,
		collation:  tag,
	}
}

func userFields(requireLanguage bool) []validation.Field[*entity.User] {
	return []validation.Field[*entity.User]{
		{Name: "firstname", Required: true, Present: validation.Text(func(u *entity.User) string { return u.Firstname })},
		{Name: "lastname", Required: true, Present: validation.Text(func(u *entity.User) string { return u.Lastname })},
		{Name: "email", Required: true, Present: validation.Text(func(u *entity.User) string { return u.Email })},
		{Name: "username", Required: true, Present: validation.Text(func(u *entity.User) string { return u.Username })},
		{Name: "password", Required: true, Present: validation.Text(func(u *entity.User) string { return u.Password })},
		{Name: "language", Required: requireLanguage, Present: validation.Text(func(u *entity.User) string { return u.Language })},
	}
}

// GetByID returns the user or entity.ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64, p entity.Populate) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.populate(ctx, u, p); err != nil {
		return nil, err
	}
	return u, nil
}

// GetAll returns every user ordered by lastname then firstname.
func (s *UserService) GetAll(ctx context.Context, p entity.Populate) ([]*entity.User, error) {
	users, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	col := collate.New(s.collation)
	sort.SliceStable(users, func(i, j int) bool {
		if c := col.CompareString(users[i].Lastname, users[j].Lastname); c != 0 {
			return c < 0
		}
		return col.CompareString(users[i].Firstname, users[j].Firstname) < 0
	})
	for _, u := range users {
		if err := s.populate(ctx, u, p); err != nil {
			return nil, err
		}
	}
	return users, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// GetByUsernameEmail looks identifier up as a username first and as an
// email second.
func (s *UserService) GetByUsernameEmail(ctx context.Context, identifier string) (*entity.User, error) {
	u, err := s.repo.GetByUsername(ctx, identifier)
	if err == nil || !errors.Is(err, entity.ErrNotFound) {
		return u, err
	}
	return s.repo.GetByEmail(ctx, identifier)
}

// ValidateLogin reports whether identifier names a user whose password matches.
func (s *UserService) ValidateLogin(ctx context.Context, identifier, password string) (bool, error) {
	u, err := s.GetByUsernameEmail(ctx, identifier)
	if errors.Is(err, entity.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s.hasher.Verify(u.Password, password), nil
}

func (s *UserService) populate(ctx context.Context, u *entity.User, p entity.Populate) error {
	if p.Locations {
		locs, err := s.locations.ListByOwner(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("populate locations of user %d: %w", u.ID, err)
		}
		u.Locations = locs
	}
	if p.Items {
		items, err := s.items.ListByOwner(ctx, u.ID)
		if err != nil {
			return fmt.Errorf("populate items of user %d: %w", u.ID, err)
		}
		u.Items = items
	}
	return nil
}

// Insert validates u, stores it and assigns the new id onto u.
func (s *UserService) Insert(ctx context.Context, u *entity.User) error {
	var b validation.Batch
	ok, err := s.ValidateAllRules(ctx, u, &b)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Debugw("user rejected", "op", "insert", "fields", b.Fields())
		return b.Err()
	}
	if u.Password, err = s.hasher.Hash(u.Password); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return err
	}
	s.logger.Infow("user inserted", "id", u.ID, "username", u.Username)
	return nil
}

// Update validates u and writes its scalar fields onto the stored user.
// It returns false when no user has u.ID.
func (s *UserService) Update(ctx context.Context, u *entity.User) (bool, error) {
	var b validation.Batch
	ok, err := s.ValidateAllRules(ctx, u, &b)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Debugw("user rejected", "op", "update", "id", u.ID, "fields", b.Fields())
		return false, b.Err()
	}
	stored, err := s.repo.GetByID(ctx, u.ID)
	if errors.Is(err, entity.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	kept := s.hasher.IsHashed(stored.Password) && ConstantTimeCompare(stored.Password, u.Password)
	u.ApplyTo(stored)
	if !kept {
		if stored.Password, err = s.hasher.Hash(stored.Password); err != nil {
			return false, fmt.Errorf("hash password: %w", err)
		}
	}
	updated, err := s.repo.Update(ctx, stored)
	if err != nil || !updated {
		return updated, err
	}
	u.Password = stored.Password
	s.logger.Infow("user updated", "id", u.ID)
	return true, nil
}

// Delete removes the user unless it still owns locations or items.
func (s *UserService) Delete(ctx context.Context, id int64) (bool, error) {
	var b validation.Batch
	ok, err := s.ValidateDeletionRules(ctx, id, &b)
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Debugw("user deletion blocked", "id", id, "fields", b.Fields())
		return false, b.Err()
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err == nil && deleted {
		s.logger.Infow("user deleted", "id", id)
	}
	return deleted, err
}

// ValidateAllRules resets b and appends every rule violation of u.
func (s *UserService) ValidateAllRules(ctx context.Context, u *entity.User, b *validation.Batch) (bool, error) {
	b.Reset()
	present := validation.Present(s.fields, u)
	validation.RequireFields(b, s.fields, present)

	if present["email"] {
		if validation.CheckLength(b, "email", u.Email, EmailLength) && validation.CheckEmail(b, u.Email) {
			if _, err := s.ruleUniqueEmail(ctx, u, b); err != nil {
				return false, err
			}
		}
	}
	if present["username"] {
		if validation.CheckLength(b, "username", u.Username, UsernameLength) &&
			validation.CheckPattern(b, usernamePattern, u.Username, validation.InvalidUsername()) {
			if _, err := s.ruleUniqueUsername(ctx, u, b); err != nil {
				return false, err
			}
		}
	}
	if present["firstname"] {
		validation.CheckLength(b, "firstname", u.Firstname, s.nameLength)
	}
	if present["lastname"] {
		validation.CheckLength(b, "lastname", u.Lastname, s.nameLength)
	}
	if present["password"] {
		kept, err := s.keepsStoredPassword(ctx, u)
		if err != nil {
			return false, err
		}
		if !kept {
			validation.CheckLength(b, "password", u.Password, PasswordLength)
		}
	}
	return b.OK(), nil
}

// keepsStoredPassword reports whether u carries back the exact hash already
// stored for u.ID. Any other value is a new password.
func (s *UserService) keepsStoredPassword(ctx context.Context, u *entity.User) (bool, error) {
	if u.ID == 0 || !s.hasher.IsHashed(u.Password) {
		return false, nil
	}
	stored, err := s.repo.GetByID(ctx, u.ID)
	if errors.Is(err, entity.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ConstantTimeCompare(stored.Password, u.Password), nil
}

func (s *UserService) ruleUniqueEmail(ctx context.Context, u *entity.User, b *validation.Batch) (bool, error) {
	other, err := s.repo.GetByEmail(ctx, u.Email)
	if errors.Is(err, entity.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if other.ID == u.ID {
		return true, nil
	}
	return b.Add(validation.RepeatedEmail()), nil
}

func (s *UserService) ruleUniqueUsername(ctx context.Context, u *entity.User, b *validation.Batch) (bool, error) {
	other, err := s.repo.GetByUsername(ctx, u.Username)
	if errors.Is(err, entity.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if other.ID == u.ID {
		return true, nil
	}
	return b.Add(validation.RepeatedUsername()), nil
}

// ValidateDeletionRules resets b and reports the first relation still
// referencing the user: locations are checked before items.
func (s *UserService) ValidateDeletionRules(ctx context.Context, id int64, b *validation.Batch) (bool, error) {
	b.Reset()
	locs, err := s.locations.ListByOwner(ctx, id)
	if err != nil {
		return false, err
	}
	if len(locs) > 0 {
		return b.Add(validation.DeleteForeignKey("locations")), nil
	}
	items, err := s.items.ListByOwner(ctx, id)
	if err != nil {
		return false, err
	}
	if len(items) > 0 {
		return b.Add(validation.DeleteForeignKey("items")), nil
	}
	return true, nil
}

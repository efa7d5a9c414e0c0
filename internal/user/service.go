package user

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-user-registry/internal/metrics"
	"github.com/ovaphlow/pitchfork/service-user-registry/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-user-registry/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-user-registry/pkg/utilities"
)

// MinAge is the youngest age accepted at registration.
const MinAge = 18

var (
	ErrMissingFields = errors.New("missing required fields")
	ErrAgeOutOfRange = errors.New("age out of range")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUserNotFound  = errors.New("user not found")
)

// IDSource hands out new user ids.
type IDSource interface {
	Next() int64
}

// WelcomeDispatcher starts a welcome email without waiting for it.
type WelcomeDispatcher interface {
	Dispatch(ctx context.Context, email string)
}

// UserService implements the registry operations as read-modify-write cycles
// over the whole stored collection.
type UserService struct {
	store   userrepo.Store
	ids     IDSource
	welcome WelcomeDispatcher
	metrics metrics.MetricsCollector
	logger  *zap.SugaredLogger
}

// NewUserService wires the service. Only store is required; nil ids use snowflake
// node 1, nil welcome skips the email, nil metrics and logger discard.
func NewUserService(store userrepo.Store, ids IDSource, welcome WelcomeDispatcher, m metrics.MetricsCollector, logger *zap.SugaredLogger) *UserService {
	if ids == nil {
		// node 1 is always in range
		ids, _ = utilities.NewIDGenerator(1)
	}
	if m == nil {
		m = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &UserService{store: store, ids: ids, welcome: welcome, metrics: m, logger: logger}
}

// List returns every user in insertion order.
func (s *UserService) List(ctx context.Context) (users []entity.User, err error) {
	defer func() { s.record("list", err) }()

	users, err = s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if users == nil {
		users = []entity.User{}
	}
	return users, nil
}

// Create validates p, appends a new user and persists the collection. The
// welcome email is dispatched only after the save succeeded.
func (s *UserService) Create(ctx context.Context, p entity.Payload) (_ *entity.User, err error) {
	defer func() { s.record("create", err) }()

	if p.Name == "" || p.Email == "" || p.Password == "" || p.Country == "" {
		return nil, ErrMissingFields
	}
	if p.Age != nil && *p.Age < MinAge {
		return nil, ErrAgeOutOfRange
	}

	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if slices.ContainsFunc(users, func(u entity.User) bool { return u.Email == p.Email }) {
		return nil, ErrEmailTaken
	}

	u := entity.User{
		ID:       s.newID(users),
		Name:     p.Name,
		Email:    p.Email,
		Password: p.Password,
		Country:  p.Country,
	}
	if p.Age != nil {
		age := *p.Age
		u.Age = &age
	}
	if p.Phone != "" {
		phone := p.Phone
		u.Phone = &phone
	}

	users = append(users, u)
	if err := s.store.Save(ctx, users); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}
	s.logger.Infow("user created", "id", u.ID)

	if s.welcome != nil {
		s.welcome.Dispatch(ctx, u.Email)
	}
	out := u.Clone()
	return &out, nil
}

// Update overwrites the fields of p that are set (non-empty, non-zero) on the
// user with the given id. Age range and email uniqueness are not checked here.
func (s *UserService) Update(ctx context.Context, id int64, p entity.Payload) (_ *entity.User, err error) {
	defer func() { s.record("update", err) }()

	users, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	i := indexOf(users, id)
	if i < 0 {
		return nil, ErrUserNotFound
	}

	u := &users[i]
	if p.Name != "" {
		u.Name = p.Name
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	if p.Password != "" {
		u.Password = p.Password
	}
	if p.Age != nil && *p.Age != 0 {
		age := *p.Age
		u.Age = &age
	}
	if p.Country != "" {
		u.Country = p.Country
	}
	if p.Phone != "" {
		phone := p.Phone
		u.Phone = &phone
	}

	if err := s.store.Save(ctx, users); err != nil {
		return nil, fmt.Errorf("save users: %w", err)
	}
	s.logger.Infow("user updated", "id", id)
	out := u.Clone()
	return &out, nil
}

// Delete removes the user with the given id.
func (s *UserService) Delete(ctx context.Context, id int64) (err error) {
	defer func() { s.record("delete", err) }()

	users, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	i := indexOf(users, id)
	if i < 0 {
		return ErrUserNotFound
	}
	users = slices.Delete(users, i, i+1)

	if err := s.store.Save(ctx, users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	s.logger.Infow("user deleted", "id", id)
	return nil
}

// newID draws ids until one is not already taken.
func (s *UserService) newID(users []entity.User) int64 {
	for {
		id := s.ids.Next()
		if indexOf(users, id) < 0 {
			return id
		}
	}
}

func indexOf(users []entity.User, id int64) int {
	return slices.IndexFunc(users, func(u entity.User) bool { return u.ID == id })
}

func (s *UserService) record(op string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrMissingFields), errors.Is(err, ErrAgeOutOfRange):
		outcome = "invalid"
	case errors.Is(err, ErrEmailTaken):
		outcome = "conflict"
	case errors.Is(err, ErrUserNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	s.metrics.RecordUserOperation(op, outcome)
}

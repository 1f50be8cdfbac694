package application

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/rent-home/service-matching/internal/commute"
	apartmentDomain "github.com/rent-home/service-matching/internal/domain/apartment"
	subscriptionDomain "github.com/rent-home/service-matching/internal/domain/subscription"
	userDomain "github.com/rent-home/service-matching/internal/domain/user"
	"github.com/rent-home/service-matching/internal/matching"
	"github.com/rent-home/service-matching/internal/platform/kafka"
)

type mockApartmentRepo struct {
	mock.Mock
}

func (m *mockApartmentRepo) FindByID(ctx context.Context, id string) (*apartmentDomain.Apartment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apartmentDomain.Apartment), args.Error(1)
}

func (m *mockApartmentRepo) ListAll(ctx context.Context) ([]*apartmentDomain.Apartment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*apartmentDomain.Apartment), args.Error(1)
}

func (m *mockApartmentRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockApartmentRepo) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockApartmentRepo) ExistsByNameAndDistrict(ctx context.Context, name, district, excludeID string) (bool, error) {
	args := m.Called(ctx, name, district, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockApartmentRepo) ListDistricts(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockApartmentRepo) Save(ctx context.Context, apt *apartmentDomain.Apartment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockApartmentRepo) Update(ctx context.Context, apt *apartmentDomain.Apartment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockApartmentRepo) Upsert(ctx context.Context, apt *apartmentDomain.Apartment) error {
	return m.Called(ctx, apt).Error(0)
}

func (m *mockApartmentRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic string, ce kafka.CloudEvent) error {
	return m.Called(ctx, topic, ce).Error(0)
}

type mockMatcher struct {
	mock.Mock
}

func (m *mockMatcher) Match(ctx context.Context, req matching.Request, apartments []*apartmentDomain.Apartment) (*matching.Outcome, error) {
	args := m.Called(ctx, req, apartments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*matching.Outcome), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByPhone(ctx context.Context, phone string) (*userDomain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *mockUserRepo) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockUserRepo) Save(ctx context.Context, u *userDomain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) Touch(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type mockAdminRepo struct {
	mock.Mock
}

func (m *mockAdminRepo) FindByUsername(ctx context.Context, username string) (*userDomain.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.Admin), args.Error(1)
}

func (m *mockAdminRepo) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockAdminRepo) Save(ctx context.Context, a *userDomain.Admin) error {
	return m.Called(ctx, a).Error(0)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id string) (*subscriptionDomain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscriptionDomain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByUserID(ctx context.Context, userID string) ([]*subscriptionDomain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscriptionDomain.Order), args.Error(1)
}

func (m *mockOrderRepo) ListIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockOrderRepo) Save(ctx context.Context, o *subscriptionDomain.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrderRepo) Update(ctx context.Context, o *subscriptionDomain.Order) error {
	return m.Called(ctx, o).Error(0)
}

type mockCodeStore struct {
	mock.Mock
}

func (m *mockCodeStore) Issue(ctx context.Context, phone string) (string, error) {
	args := m.Called(ctx, phone)
	return args.String(0), args.Error(1)
}

func (m *mockCodeStore) Consume(ctx context.Context, phone, code string) (bool, error) {
	args := m.Called(ctx, phone, code)
	return args.Bool(0), args.Error(1)
}

type mockMediaStore struct {
	mock.Mock
}

func (m *mockMediaStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	args := m.Called(ctx, key, contentType, body, size)
	return args.String(0), args.Error(1)
}

type mockSuggester struct {
	mock.Mock
}

func (m *mockSuggester) Suggest(ctx context.Context, keyword, region string) ([]commute.Suggestion, error) {
	args := m.Called(ctx, keyword, region)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]commute.Suggestion), args.Error(1)
}

func mustApartment(id, name string, minPrice, maxPrice int) *apartmentDomain.Apartment {
	apt, err := apartmentDomain.NewApartment(id, apartmentDomain.Attributes{
		Name:     name,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Address:  name + "地址",
		District: "朝阳区",
	})
	if err != nil {
		panic(err)
	}
	return apt
}

package user

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-places-api/internal/domain"
	"github.com/go-places-api/internal/pkg/password"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	users, _ := args.Get(0).([]domain.User)
	return users, args.String(1), args.Error(2)
}

type mockPlaceStore struct{ mock.Mock }

func (m *mockPlaceStore) Get(ctx context.Context, placeID string) (*domain.Place, error) {
	args := m.Called(ctx, placeID)
	if p, _ := args.Get(0).(*domain.Place); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSavedStore struct{ mock.Mock }

func (m *mockSavedStore) Put(ctx context.Context, sp *domain.SavedPlace) error {
	return m.Called(ctx, sp).Error(0)
}
func (m *mockSavedStore) Exists(ctx context.Context, userID, placeID string) (bool, error) {
	args := m.Called(ctx, userID, placeID)
	return args.Bool(0), args.Error(1)
}
func (m *mockSavedStore) Delete(ctx context.Context, userID, placeID string) error {
	return m.Called(ctx, userID, placeID).Error(0)
}
func (m *mockSavedStore) ListByUser(ctx context.Context, userID string) ([]domain.SavedPlace, error) {
	args := m.Called(ctx, userID)
	links, _ := args.Get(0).([]domain.SavedPlace)
	return links, args.Error(1)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newUserService(us *mockUserStore, ps *mockPlaceStore, ss *mockSavedStore) Service {
	return NewService(ServiceDeps{UserRepo: us, PlaceRepo: ps, SavedRepo: ss})
}

func TestUpdateProfile_AdminChangeWithoutAuthorization(t *testing.T) {
	svc := newUserService(&mockUserStore{}, nil, nil)
	isAdmin := true
	_, err := svc.UpdateProfile(context.Background(), "u1", domain.UpdateProfileRequest{IsAdmin: &isAdmin}, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestUpdateProfile_AdminChangeAuthorized(t *testing.T) {
	us := &mockUserStore{}
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		v, ok := m["is_admin"].(bool)
		return ok && v
	})).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", IsAdmin: true}, nil)

	svc := newUserService(us, nil, nil)
	isAdmin := true
	u, err := svc.UpdateProfile(context.Background(), "u1", domain.UpdateProfileRequest{IsAdmin: &isAdmin}, true)
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	us.AssertExpectations(t)
}

func TestUpdateProfile_PasswordIsHashedBeforePersisting(t *testing.T) {
	us := &mockUserStore{}
	var stored string
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(m map[string]interface{}) bool {
		h, ok := m["password_hash"].(string)
		if ok {
			stored = h
		}
		return ok && h != "new-password-1"
	})).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newUserService(us, nil, nil)
	pw := "new-password-1"
	_, err := svc.UpdateProfile(context.Background(), "u1", domain.UpdateProfileRequest{Password: &pw}, false)
	require.NoError(t, err)
	assert.True(t, password.Verify("new-password-1", stored))
}

func TestUpdateProfile_EmptyRequest_NoWrite(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := newUserService(us, nil, nil)
	_, err := svc.UpdateProfile(context.Background(), "u1", domain.UpdateProfileRequest{}, false)
	require.NoError(t, err)
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestPhotoURL_RedirectsToPresigned(t *testing.T) {
	us := &mockUserStore{}
	objects := &mockObjectStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", PhotoURL: "s3://places-api-media/users/u1/photo.png",
	}, nil)
	objects.On("PresignedURL", mock.Anything, "users/u1/photo.png", mock.AnythingOfType("time.Duration")).
		Return("https://signed.example/users/u1/photo.png", nil)

	svc := NewService(ServiceDeps{UserRepo: us, ObjectStore: objects})
	url, err := svc.PhotoURL(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/users/u1/photo.png", url)
	objects.AssertExpectations(t)
}

func TestPhotoURL_NoPhoto_NotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	svc := NewService(ServiceDeps{UserRepo: us})
	_, err := svc.PhotoURL(context.Background(), "u1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSavePlace_UnknownPlace(t *testing.T) {
	ps := &mockPlaceStore{}
	ps.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	svc := newUserService(nil, ps, nil)
	err := svc.SavePlace(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSavePlace_AlreadySaved_Conflict(t *testing.T) {
	ps := &mockPlaceStore{}
	ss := &mockSavedStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Place{PlaceID: "p1"}, nil)
	ss.On("Exists", mock.Anything, "u1", "p1").Return(true, nil)

	svc := newUserService(nil, ps, ss)
	err := svc.SavePlace(context.Background(), "u1", "p1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestSavePlace_HappyPath(t *testing.T) {
	ps := &mockPlaceStore{}
	ss := &mockSavedStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Place{PlaceID: "p1"}, nil)
	ss.On("Exists", mock.Anything, "u1", "p1").Return(false, nil)
	ss.On("Put", mock.Anything, mock.MatchedBy(func(sp *domain.SavedPlace) bool {
		return sp.UserID == "u1" && sp.PlaceID == "p1"
	})).Return(nil)

	svc := newUserService(nil, ps, ss)
	require.NoError(t, svc.SavePlace(context.Background(), "u1", "p1"))
	ss.AssertExpectations(t)
}

func TestUnsavePlace_NotSaved(t *testing.T) {
	ss := &mockSavedStore{}
	ss.On("Exists", mock.Anything, "u1", "p1").Return(false, nil)

	svc := newUserService(nil, nil, ss)
	err := svc.UnsavePlace(context.Background(), "u1", "p1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestListSaved_SkipsDanglingLinks(t *testing.T) {
	ps := &mockPlaceStore{}
	ss := &mockSavedStore{}
	ss.On("ListByUser", mock.Anything, "u1").Return([]domain.SavedPlace{
		{UserID: "u1", PlaceID: "p1"},
		{UserID: "u1", PlaceID: "gone"},
		{UserID: "u1", PlaceID: "p2"},
	}, nil)
	ps.On("Get", mock.Anything, "p1").Return(&domain.Place{PlaceID: "p1"}, nil)
	ps.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)
	ps.On("Get", mock.Anything, "p2").Return(&domain.Place{PlaceID: "p2"}, nil)

	svc := newUserService(nil, ps, ss)
	places, err := svc.ListSaved(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "p1", places[0].PlaceID)
	assert.Equal(t, "p2", places[1].PlaceID)
}

package keyfold_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/keyfold/keyfold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of keyfold.ObjectStore.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key, contentType string, content io.Reader) (keyfold.PutResult, error) {
	args := m.Called(ctx, key, contentType, content)
	return args.Get(0).(keyfold.PutResult), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, key string) (*keyfold.Object, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keyfold.Object), args.Error(1)
}

func (m *MockStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStore) List(ctx context.Context, prefix, delimiter string) (keyfold.Listing, error) {
	args := m.Called(ctx, prefix, delimiter)
	return args.Get(0).(keyfold.Listing), args.Error(1)
}

func TestService_List_MergesFilesAndFolders(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	uploaded := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	store.On("List", mock.Anything, "docs/", "/").Return(keyfold.Listing{
		Objects: []keyfold.ObjectInfo{
			{Key: "docs/a.pdf", Size: 1234, ETag: "abc", ContentType: "application/pdf", Uploaded: uploaded},
		},
		Prefixes: []string{"docs/images/"},
	}, nil)

	entries, err := svc.List(context.Background(), "docs/")

	assert.NoError(t, err)
	assert.Len(t, entries, 2)

	assert.Equal(t, "a.pdf", entries[0].Name)
	assert.Equal(t, "docs/a.pdf", entries[0].Path)
	assert.Equal(t, int64(1234), entries[0].Size)
	assert.Equal(t, keyfold.EntryFile, entries[0].Type)
	assert.NotNil(t, entries[0].Uploaded)
	assert.Equal(t, uploaded, *entries[0].Uploaded)

	assert.Equal(t, "images", entries[1].Name)
	assert.Equal(t, "docs/images/", entries[1].Path)
	assert.Equal(t, keyfold.EntryFolder, entries[1].Type)

	store.AssertExpectations(t)
}

func TestService_List_NormalizesDirectory(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	store.On("List", mock.Anything, "docs/", "/").Return(keyfold.Listing{}, nil)

	_, err := svc.List(context.Background(), "/docs")

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestService_List_RootIsEmptyPrefix(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	store.On("List", mock.Anything, "", "/").Return(keyfold.Listing{
		Objects:  []keyfold.ObjectInfo{{Key: "top.txt", Size: 3}},
		Prefixes: []string{"docs/"},
	}, nil)

	entries, err := svc.List(context.Background(), "")

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "top.txt", entries[0].Name)
	assert.Equal(t, "docs", entries[1].Name)
	store.AssertExpectations(t)
}

func TestService_List_FiltersOwnMarker(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	// The marker object at exactly the listed prefix strips to an empty
	// display name and must not appear as a child of itself.
	store.On("List", mock.Anything, "docs/", "/").Return(keyfold.Listing{
		Objects: []keyfold.ObjectInfo{
			{Key: "docs/", Size: 0},
			{Key: "docs/a.txt", Size: 5},
		},
	}, nil)

	entries, err := svc.List(context.Background(), "docs/")

	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name)
	store.AssertExpectations(t)
}

func TestService_Upload_StreamsBodyThrough(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	body := strings.NewReader("hello world")
	store.On("Put", mock.Anything, "docs/hello.txt", "text/plain", body).
		Return(keyfold.PutResult{BytesWritten: 11, ETag: "e"}, nil)

	res, err := svc.Upload(context.Background(), "docs/hello.txt", "text/plain", body)

	assert.NoError(t, err)
	assert.Equal(t, int64(11), res.BytesWritten)
	store.AssertExpectations(t)
}

func TestService_Upload_EmptyPath_NoStoreCall(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	_, err := svc.Upload(context.Background(), "", "text/plain", strings.NewReader("x"))

	assert.ErrorIs(t, err, keyfold.ErrInvalidInput)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CreateFolder_WritesZeroByteMarker(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	store.On("Put", mock.Anything, "docs/new/", "", mock.MatchedBy(func(r io.Reader) bool {
		n, err := r.Read(make([]byte, 1))
		return n == 0 && err == io.EOF
	})).Return(keyfold.PutResult{BytesWritten: 0}, nil)

	err := svc.CreateFolder(context.Background(), "docs/new/")

	assert.NoError(t, err)
	store.AssertExpectations(t)
}

func TestService_CreateFolder_Idempotent(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	store.On("Put", mock.Anything, "docs/new/", "", mock.Anything).
		Return(keyfold.PutResult{}, nil).Twice()

	assert.NoError(t, svc.CreateFolder(context.Background(), "docs/new/"))
	assert.NoError(t, svc.CreateFolder(context.Background(), "docs/new/"))
	store.AssertExpectations(t)
}

func TestService_Delete_SingleKey(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	store.On("Delete", mock.Anything, "docs/a.pdf").Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), "docs/a.pdf"))
	store.AssertExpectations(t)
}

func TestService_Delete_AbsentKeyIsNotAnError(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	store.On("Delete", mock.Anything, "gone.txt").Return(keyfold.ErrNotFound)

	assert.NoError(t, svc.Delete(context.Background(), "gone.txt"))
	store.AssertExpectations(t)
}

func TestService_Delete_EmptyPath_NoStoreCall(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	err := svc.Delete(context.Background(), "")

	assert.ErrorIs(t, err, keyfold.ErrInvalidInput)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestService_Download_Success(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	obj := &keyfold.Object{
		Info: keyfold.ObjectInfo{Key: "docs/a.pdf", Size: 4, ETag: "abcd", ContentType: "application/pdf"},
		Body: io.NopCloser(strings.NewReader("%PDF")),
	}
	store.On("Get", mock.Anything, "docs/a.pdf").Return(obj, nil)

	got, err := svc.Download(context.Background(), "docs/a.pdf")

	assert.NoError(t, err)
	assert.Equal(t, "docs/a.pdf", got.Info.Key)

	data, err := io.ReadAll(got.Body)
	assert.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
	assert.NoError(t, got.Body.Close())
	store.AssertExpectations(t)
}

func TestService_Download_NotFound(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	store.On("Get", mock.Anything, "gone").Return(nil, keyfold.ErrNotFound)

	_, err := svc.Download(context.Background(), "gone")

	assert.ErrorIs(t, err, keyfold.ErrNotFound)
	store.AssertExpectations(t)
}

func TestService_Download_StoreFailureIsNotNotFound(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	store.On("Get", mock.Anything, "docs/a.pdf").Return(nil, keyfold.ErrInternal)

	_, err := svc.Download(context.Background(), "docs/a.pdf")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, keyfold.ErrNotFound)
	store.AssertExpectations(t)
}

func TestService_ContextCanceled(t *testing.T) {
	store := new(MockStore)
	svc := keyfold.NewService(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.List(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.Upload(ctx, "a", "", strings.NewReader(""))
	assert.ErrorIs(t, err, context.Canceled)

	err = svc.Delete(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)

	store.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
}

package weight

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rdzcn/weight-tracker/internal/domain"
	"github.com/rdzcn/weight-tracker/internal/infrastructure/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockEntryStore struct{ mock.Mock }

func (m *mockEntryStore) Put(ctx context.Context, e *domain.WeightEntry) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockEntryStore) Get(ctx context.Context, entryID string) (*domain.WeightEntry, error) {
	args := m.Called(ctx, entryID)
	if e, _ := args.Get(0).(*domain.WeightEntry); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockEntryStore) ListByUser(ctx context.Context, userID string, start, end *time.Time) ([]domain.WeightEntry, error) {
	args := m.Called(ctx, userID, start, end)
	if e, _ := args.Get(0).([]domain.WeightEntry); e != nil {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockEntryStore) DeleteOwned(ctx context.Context, entryID, userID string) error {
	return m.Called(ctx, entryID, userID).Error(0)
}

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) ExtractWeight(ctx context.Context, image []byte) (float64, error) {
	args := m.Called(ctx, image)
	return args.Get(0).(float64), args.Error(1)
}

type mockPhotoStore struct{ mock.Mock }

func (m *mockPhotoStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}
func (m *mockPhotoStore) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if rc, _ := args.Get(0).(io.ReadCloser); rc != nil {
		return rc, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockPhotoStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// --- builder ---

func newService(es *mockEntryStore, ex *mockExtractor, ps *mockPhotoStore) Service {
	return NewService(ServiceDeps{Entries: es, Extractor: ex, Photos: ps})
}

func caller() domain.Identity { return domain.Identity{UserID: "u1", Email: "a@b.com"} }

func fptr(v float64) *float64 { return &v }

// --- Submit ---

func TestSubmit_NeitherWeightNorImage(t *testing.T) {
	svc := newService(&mockEntryStore{}, &mockExtractor{}, &mockPhotoStore{})
	_, err := svc.Submit(context.Background(), caller(), SubmitInput{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSubmit_BothWeightAndImage(t *testing.T) {
	svc := newService(&mockEntryStore{}, &mockExtractor{}, &mockPhotoStore{})
	_, err := svc.Submit(context.Background(), caller(), SubmitInput{
		Weight: fptr(80.5),
		Image:  []byte{0x1},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSubmit_NonPositiveWeight(t *testing.T) {
	svc := newService(&mockEntryStore{}, &mockExtractor{}, &mockPhotoStore{})

	_, err := svc.Submit(context.Background(), caller(), SubmitInput{Weight: fptr(0)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))

	_, err = svc.Submit(context.Background(), caller(), SubmitInput{Weight: fptr(-3)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSubmit_Manual_HappyPath(t *testing.T) {
	es := &mockEntryStore{}
	es.On("Put", mock.Anything, mock.MatchedBy(func(e *domain.WeightEntry) bool {
		return e.UserID == "u1" && e.Weight == 80.5 &&
			e.Method == domain.MethodManual && e.EntryID != "" && e.ImageKey == ""
	})).Return(nil)

	svc := newService(es, &mockExtractor{}, &mockPhotoStore{})
	entry, err := svc.Submit(context.Background(), caller(), SubmitInput{Weight: fptr(80.5)})

	require.NoError(t, err)
	assert.Equal(t, domain.MethodManual, entry.Method)
	assert.Equal(t, 80.5, entry.Weight)
	es.AssertExpectations(t)
}

func TestSubmit_OCR_HappyPath(t *testing.T) {
	img := []byte("fake-scale-photo")
	recognized, err := ocr.ParseWeight("Current reading: 182.4 lbs")
	require.NoError(t, err)

	es := &mockEntryStore{}
	ex := &mockExtractor{}
	ps := &mockPhotoStore{}
	ex.On("ExtractWeight", mock.Anything, img).Return(recognized, nil)
	ps.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("s3://bucket/key", nil)
	es.On("Put", mock.Anything, mock.MatchedBy(func(e *domain.WeightEntry) bool {
		return e.Weight == 182.4 && e.Method == domain.MethodOCR && e.ImageKey != ""
	})).Return(nil)

	svc := newService(es, ex, ps)
	entry, err := svc.Submit(context.Background(), caller(), SubmitInput{Image: img})

	require.NoError(t, err)
	assert.Equal(t, 182.4, entry.Weight)
	assert.Equal(t, domain.MethodOCR, entry.Method)
	es.AssertExpectations(t)
	ps.AssertExpectations(t)
}

func TestSubmit_OCR_ExtractionFailed(t *testing.T) {
	ex := &mockExtractor{}
	ex.On("ExtractWeight", mock.Anything, mock.Anything).
		Return(0.0, domain.ErrExtractionFailed)

	svc := newService(&mockEntryStore{}, ex, &mockPhotoStore{})
	_, err := svc.Submit(context.Background(), caller(), SubmitInput{Image: []byte{0x1}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}

func TestSubmit_OCR_PhotoArchiveFailure_IsBestEffort(t *testing.T) {
	es := &mockEntryStore{}
	ex := &mockExtractor{}
	ps := &mockPhotoStore{}
	ex.On("ExtractWeight", mock.Anything, mock.Anything).Return(75.0, nil)
	ps.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("s3 down"))
	es.On("Put", mock.Anything, mock.MatchedBy(func(e *domain.WeightEntry) bool {
		return e.ImageKey == ""
	})).Return(nil)

	svc := newService(es, ex, ps)
	entry, err := svc.Submit(context.Background(), caller(), SubmitInput{Image: []byte{0x1}})

	require.NoError(t, err)
	assert.Empty(t, entry.ImageKey)
}

// --- List ---

func TestList_MalformedStart(t *testing.T) {
	svc := newService(&mockEntryStore{}, &mockExtractor{}, &mockPhotoStore{})
	_, err := svc.List(context.Background(), caller(), "yesterday", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestList_MalformedEnd(t *testing.T) {
	svc := newService(&mockEntryStore{}, &mockExtractor{}, &mockPhotoStore{})
	_, err := svc.List(context.Background(), caller(), "", "2024-13-45")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestList_UnboundedPassesNilBounds(t *testing.T) {
	es := &mockEntryStore{}
	es.On("ListByUser", mock.Anything, "u1", (*time.Time)(nil), (*time.Time)(nil)).
		Return([]domain.WeightEntry{}, nil)

	svc := newService(es, &mockExtractor{}, &mockPhotoStore{})
	entries, err := svc.List(context.Background(), caller(), "", "")

	require.NoError(t, err)
	assert.Empty(t, entries)
	es.AssertExpectations(t)
}

func TestList_ZSuffixNormalized(t *testing.T) {
	es := &mockEntryStore{}
	wantStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)
	es.On("ListByUser", mock.Anything, "u1",
		mock.MatchedBy(func(ts *time.Time) bool { return ts != nil && ts.Equal(wantStart) }),
		mock.MatchedBy(func(ts *time.Time) bool { return ts != nil && ts.Equal(wantEnd) }),
	).Return([]domain.WeightEntry{}, nil)

	svc := newService(es, &mockExtractor{}, &mockPhotoStore{})
	_, err := svc.List(context.Background(), caller(), "2024-03-01T00:00:00Z", "2024-03-31T23:59:59Z")

	require.NoError(t, err)
	es.AssertExpectations(t)
}

// --- Delete ---

func TestDelete_UnknownEntry(t *testing.T) {
	es := &mockEntryStore{}
	es.On("Get", mock.Anything, "e1").Return(nil, domain.ErrNotFound)

	svc := newService(es, &mockExtractor{}, &mockPhotoStore{})
	err := svc.Delete(context.Background(), caller(), "e1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDelete_NotOwned_IndistinguishableFromMissing(t *testing.T) {
	es := &mockEntryStore{}
	es.On("Get", mock.Anything, "e1").Return(&domain.WeightEntry{
		EntryID: "e1", UserID: "someone-else",
	}, nil)

	svc := newService(es, &mockExtractor{}, &mockPhotoStore{})
	err := svc.Delete(context.Background(), caller(), "e1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	es.AssertNotCalled(t, "DeleteOwned", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete_HappyPath_CleansUpPhoto(t *testing.T) {
	es := &mockEntryStore{}
	ps := &mockPhotoStore{}
	es.On("Get", mock.Anything, "e1").Return(&domain.WeightEntry{
		EntryID: "e1", UserID: "u1", ImageKey: "scale-photos/u1/e1",
	}, nil)
	es.On("DeleteOwned", mock.Anything, "e1", "u1").Return(nil)
	ps.On("Delete", mock.Anything, "scale-photos/u1/e1").Return(nil)

	svc := newService(es, &mockExtractor{}, ps)
	err := svc.Delete(context.Background(), caller(), "e1")

	require.NoError(t, err)
	es.AssertExpectations(t)
	ps.AssertExpectations(t)
}

// --- Image ---

func TestImage_NotOwned(t *testing.T) {
	es := &mockEntryStore{}
	es.On("Get", mock.Anything, "e1").Return(&domain.WeightEntry{
		EntryID: "e1", UserID: "someone-else", ImageKey: "k",
	}, nil)

	svc := newService(es, &mockExtractor{}, &mockPhotoStore{})
	_, err := svc.Image(context.Background(), caller(), "e1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestImage_ManualEntryHasNoPhoto(t *testing.T) {
	es := &mockEntryStore{}
	es.On("Get", mock.Anything, "e1").Return(&domain.WeightEntry{
		EntryID: "e1", UserID: "u1", Method: domain.MethodManual,
	}, nil)

	svc := newService(es, &mockExtractor{}, &mockPhotoStore{})
	_, err := svc.Image(context.Background(), caller(), "e1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

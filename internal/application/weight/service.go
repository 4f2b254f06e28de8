package weight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rdzcn/weight-tracker/internal/domain"
	"github.com/rdzcn/weight-tracker/internal/infrastructure/ocr"
	"github.com/rdzcn/weight-tracker/internal/pkg/id"
)

// SubmitInput carries a weight submission: exactly one of Weight or Image
// must be present. A nil Weight means "not supplied", so an explicit zero
// still reaches validation instead of being mistaken for absence.
type SubmitInput struct {
	Weight *float64
	Image  []byte
}

// Service is the weight service: CRUD over weight entries, always scoped
// by the identity the auth engine resolved.
type Service interface {
	Submit(ctx context.Context, identity domain.Identity, in SubmitInput) (*domain.WeightEntry, error)
	List(ctx context.Context, identity domain.Identity, start, end string) ([]domain.WeightEntry, error)
	Delete(ctx context.Context, identity domain.Identity, entryID string) error
	Image(ctx context.Context, identity domain.Identity, entryID string) (io.ReadCloser, error)
}

// EntryStore is the minimal weight-entry persistence surface.
type EntryStore interface {
	Put(ctx context.Context, e *domain.WeightEntry) error
	Get(ctx context.Context, entryID string) (*domain.WeightEntry, error)
	ListByUser(ctx context.Context, userID string, start, end *time.Time) ([]domain.WeightEntry, error)
	DeleteOwned(ctx context.Context, entryID, userID string) error
}

// PhotoStore archives the scale photos behind OCR submissions.
type PhotoStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type ServiceDeps struct {
	Entries   EntryStore
	Extractor ocr.Extractor
	Photos    PhotoStore
}

type service struct {
	entries   EntryStore
	extractor ocr.Extractor
	photos    PhotoStore
}

func NewService(d ServiceDeps) Service {
	return &service{entries: d.Entries, extractor: d.Extractor, photos: d.Photos}
}

// Submit persists a new weight entry for the caller, either from a typed
// value (provenance "manual") or from a scale photo run through the
// extractor (provenance "ocr"). Photo archival is best-effort: a failed
// upload is logged and the entry stands without an image key.
func (s *service) Submit(ctx context.Context, identity domain.Identity, in SubmitInput) (*domain.WeightEntry, error) {
	hasWeight := in.Weight != nil
	hasImage := len(in.Image) > 0
	if hasWeight == hasImage {
		return nil, fmt.Errorf("provide exactly one of weight or image: %w", domain.ErrBadRequest)
	}

	value := 0.0
	method := domain.MethodManual
	if hasWeight {
		value = *in.Weight
		if value <= 0 {
			return nil, fmt.Errorf("weight must be greater than zero: %w", domain.ErrBadRequest)
		}
	} else {
		v, err := s.extractor.ExtractWeight(ctx, in.Image)
		if err != nil {
			if errors.Is(err, domain.ErrExtractionFailed) {
				return nil, fmt.Errorf("could not extract weight from image: %w", err)
			}
			return nil, err
		}
		value = v
		method = domain.MethodOCR
	}

	entry := &domain.WeightEntry{
		EntryID:   id.New(),
		UserID:    identity.UserID,
		Weight:    value,
		Timestamp: time.Now().UTC(),
		Method:    method,
	}

	if method == domain.MethodOCR && s.photos != nil {
		key := fmt.Sprintf("scale-photos/%s/%s", identity.UserID, entry.EntryID)
		if _, err := s.photos.Upload(ctx, key, bytes.NewReader(in.Image), http.DetectContentType(in.Image)); err != nil {
			slog.Warn("scale photo archive failed", "entry_id", entry.EntryID, "err", err)
		} else {
			entry.ImageKey = key
		}
	}

	if err := s.entries.Put(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns the caller's entries ascending by timestamp, optionally
// bounded by inclusive start/end timestamps (ISO-8601 strings; empty
// means unbounded).
func (s *service) List(ctx context.Context, identity domain.Identity, start, end string) ([]domain.WeightEntry, error) {
	startT, err := parseTimestamp(start)
	if err != nil {
		return nil, fmt.Errorf("invalid start timestamp %q: %w", start, domain.ErrBadRequest)
	}
	endT, err := parseTimestamp(end)
	if err != nil {
		return nil, fmt.Errorf("invalid end timestamp %q: %w", end, domain.ErrBadRequest)
	}
	return s.entries.ListByUser(ctx, identity.UserID, startT, endT)
}

// Delete removes the entry iff the caller owns it. Non-existence and
// ownership mismatch are both reported as ErrNotFound.
func (s *service) Delete(ctx context.Context, identity domain.Identity, entryID string) error {
	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.UserID != identity.UserID {
		return fmt.Errorf("weight entry not found: %w", domain.ErrNotFound)
	}
	// The store delete re-checks ownership conditionally, so a racing
	// re-parent can never slip through between the read and the delete.
	if err := s.entries.DeleteOwned(ctx, entryID, identity.UserID); err != nil {
		return err
	}
	if entry.ImageKey != "" && s.photos != nil {
		if err := s.photos.Delete(ctx, entry.ImageKey); err != nil {
			slog.Warn("scale photo cleanup failed", "entry_id", entryID, "err", err)
		}
	}
	return nil
}

// Image streams the archived scale photo of an OCR entry owned by the
// caller.
func (s *service) Image(ctx context.Context, identity domain.Identity, entryID string) (io.ReadCloser, error) {
	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.UserID != identity.UserID || entry.ImageKey == "" {
		return nil, fmt.Errorf("weight entry image not found: %w", domain.ErrNotFound)
	}
	return s.photos.Download(ctx, entry.ImageKey)
}

// parseTimestamp parses an optional ISO-8601 timestamp. A trailing "Z"
// UTC designator is normalized to an explicit offset first.
func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if strings.HasSuffix(s, "Z") {
		s = strings.TrimSuffix(s, "Z") + "+00:00"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

package minio

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

const receiptPrefix = "receipts"

// ReceiptStore keeps payout receipts. A receipt reference is the object key.
type ReceiptStore struct {
	client *Client
}

func NewReceiptStore(client *Client) *ReceiptStore {
	return &ReceiptStore{client: client}
}

// ReceiptKey is the object key for a payout's receipt file.
func ReceiptKey(payoutID, filename string) string {
	return path.Join(receiptPrefix, payoutID, path.Base(filename))
}

// Upload stores a receipt and returns its reference.
func (s *ReceiptStore) Upload(ctx context.Context, payoutID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	if payoutID == "" || filename == "" {
		return "", errors.InvalidParam("payout id and filename are required")
	}
	key := ReceiptKey(payoutID, filename)
	info, err := s.client.api.PutObject(ctx, s.client.bucket, key, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"payout-id": payoutID},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload receipt").WithDetail(key)
	}
	s.client.logger.Info("receipt uploaded",
		logging.String("payout_id", payoutID),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return key, nil
}

// Exists reports whether ref names a stored receipt.
func (s *ReceiptStore) Exists(ctx context.Context, ref string) (bool, error) {
	ref = strings.TrimPrefix(ref, "/")
	if !strings.HasPrefix(ref, receiptPrefix+"/") {
		return false, nil
	}
	_, err := s.client.api.StatObject(ctx, s.client.bucket, ref, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" || resp.StatusCode == 404 {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat receipt").WithDetail(ref)
}

// URL returns a time-limited download link for ref.
func (s *ReceiptStore) URL(ctx context.Context, ref string) (string, error) {
	u, err := s.client.api.PresignedGetObject(ctx, s.client.bucket, ref, s.client.expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStorageError, fmt.Sprintf("failed to presign %s", ref))
	}
	return u.String(), nil
}

//Personal.AI order the ending

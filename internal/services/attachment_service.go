package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"supportdesk/internal/common"
	"supportdesk/internal/config"
	"supportdesk/internal/models"
	"supportdesk/internal/repositories"
	"supportdesk/pkg/database"
)

// ObjectStore is the slice of MinIO the attachment service uses.
type ObjectStore interface {
	Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
	PresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	Remove(ctx context.Context, objectKey string) error
	EnsureBucket(ctx context.Context) error
}

type minioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO for ticket attachment bytes.
func NewMinioStore(cfg config.MinioConfig) (ObjectStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStore{client: client, bucket: cfg.Bucket}, nil
}

func (m *minioStore) Put(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioStore) PresignedGetURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioStore) Remove(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (m *minioStore) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// AttachmentService stores ticket attachment bytes in MinIO and their
// metadata rows inside the tenant scope.
type AttachmentService interface {
	Upload(ctx context.Context, tc common.TenantContext, ticketID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (*models.TicketAttachment, error)
	List(ctx context.Context, tc common.TenantContext, ticketID uuid.UUID) ([]*models.TicketAttachment, error)
	PresignedURL(ctx context.Context, tc common.TenantContext, id uuid.UUID) (string, error)
	Delete(ctx context.Context, tc common.TenantContext, id uuid.UUID) error
}

type attachmentService struct {
	scoper  *database.Scoper
	objects ObjectStore
}

func NewAttachmentService(scoper *database.Scoper, objects ObjectStore) AttachmentService {
	return &attachmentService{scoper: scoper, objects: objects}
}

func (s *attachmentService) Upload(ctx context.Context, tc common.TenantContext, ticketID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (*models.TicketAttachment, error) {
	if fileName == "" {
		return nil, common.BadRequest("file name is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	attachment := &models.TicketAttachment{
		ID:             uuid.New(),
		OrganizationID: tc.OrganizationID,
		TicketID:       ticketID,
		FileName:       fileName,
		ContentType:    contentType,
		SizeBytes:      size,
	}
	attachment.ObjectKey = fmt.Sprintf("%s/%s/%s", tc.OrganizationID, ticketID, attachment.ID)

	// The metadata row is written first, inside the tenant scope, so a
	// cross-tenant ticket id fails before any bytes are stored.
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := repositories.NewTicketRepo(tx).GetByID(ctx, tc.OrganizationID, ticketID); err != nil {
			return err
		}
		return repositories.NewAttachmentRepo(tx).Create(ctx, attachment)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFound("Ticket")
		}
		return nil, err
	}

	if err := s.objects.Put(ctx, attachment.ObjectKey, reader, size, contentType); err != nil {
		// Best effort: drop the orphaned metadata row.
		_ = s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
			_, derr := repositories.NewAttachmentRepo(tx).Delete(ctx, tc.OrganizationID, attachment.ID)
			return derr
		})
		return nil, common.Internal("storing attachment", err)
	}

	return attachment, nil
}

func (s *attachmentService) List(ctx context.Context, tc common.TenantContext, ticketID uuid.UUID) ([]*models.TicketAttachment, error) {
	var attachments []*models.TicketAttachment
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		list, err := repositories.NewAttachmentRepo(tx).ListByTicket(ctx, tc.OrganizationID, ticketID)
		if err != nil {
			return err
		}
		attachments = list
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attachments, nil
}

func (s *attachmentService) PresignedURL(ctx context.Context, tc common.TenantContext, id uuid.UUID) (string, error) {
	var objectKey string
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		attachment, err := repositories.NewAttachmentRepo(tx).GetByID(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		objectKey = attachment.ObjectKey
		return nil
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", common.NotFound("Attachment")
		}
		return "", err
	}

	return s.objects.PresignedGetURL(ctx, objectKey, 15*time.Minute)
}

func (s *attachmentService) Delete(ctx context.Context, tc common.TenantContext, id uuid.UUID) error {
	var objectKey string
	err := s.scoper.WithTenantScope(ctx, tc, func(ctx context.Context, tx pgx.Tx) error {
		repo := repositories.NewAttachmentRepo(tx)
		attachment, err := repo.GetByID(ctx, tc.OrganizationID, id)
		if err != nil {
			return err
		}
		objectKey = attachment.ObjectKey
		_, err = repo.Delete(ctx, tc.OrganizationID, id)
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return common.NotFound("Attachment")
		}
		return err
	}

	return s.objects.Remove(ctx, objectKey)
}

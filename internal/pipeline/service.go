package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"outreach/internal/config"
	"outreach/internal/recordstore"
	"outreach/internal/store"
)

var (
	// ErrAlreadyDistributed rejects a second distribution pass over a
	// campaign whose placeholders are gone.
	ErrAlreadyDistributed = errors.New("campaign is already distributed")

	// ErrNotDistributed rejects a sync for a campaign with no packed
	// assignments.
	ErrNotDistributed = errors.New("campaign has no distributed assignments")
)

// Store is the slice of the persistence layer the pipeline uses.
type Store interface {
	CreateCampaignWithSelection(ctx context.Context, tenantID string, campaignID uuid.UUID, date time.Time, targets int) ([]store.Assignment, error)
	GetCampaign(ctx context.Context, tenantID string, id uuid.UUID) (store.Campaign, error)
	SetCampaignDistributed(ctx context.Context, tenantID string, id uuid.UUID) error
	SetCampaignSynced(ctx context.Context, tenantID string, id uuid.UUID, synced bool) error
	ListPlaceholderAssignments(ctx context.Context, tenantID string, campaignID uuid.UUID) ([]store.Assignment, error)
	ListPackedAssignments(ctx context.Context, tenantID string, campaignID uuid.UUID) ([]store.Assignment, error)
	ListActiveAssignments(ctx context.Context, tenantID string) ([]store.Assignment, error)
	AssignSlot(ctx context.Context, tenantID string, assignmentID uuid.UUID, queueIndex, position int) error
	UpdateAssignmentState(ctx context.Context, tenantID string, assignmentID uuid.UUID, state string) error
	GetTenantQueueCount(ctx context.Context, tenantID string) (int, error)
}

// RecordStore is the slice of the external record-store client the
// pipeline uses. The tenant id is the base id.
type RecordStore interface {
	ListRecords(ctx context.Context, baseID, table string) ([]recordstore.Record, error)
	CreateRecords(ctx context.Context, baseID, table string, records []recordstore.Record) (int, error)
	UpdateRecord(ctx context.Context, baseID, table, recordID string, fields map[string]any) error
	DeleteRecords(ctx context.Context, baseID, table string, recordIDs []string) ([]string, error)
	ListTables(ctx context.Context, baseID string) ([]string, error)
}

// Service orchestrates the daily campaign pipeline: select, distribute,
// sync out, sync back.
type Service struct {
	store   Store
	records RecordStore
	cfg     *config.Config
	logger  *slog.Logger
}

func NewService(cfg *config.Config, st Store, rs RecordStore, logger *slog.Logger) *Service {
	return &Service{
		store:   st,
		records: rs,
		cfg:     cfg,
		logger:  logger,
	}
}

func (s *Service) profilesPerQueue(override int) int {
	if override > 0 {
		return override
	}
	if s.cfg.Pipeline.ProfilesPerQueueDefault > 0 {
		return s.cfg.Pipeline.ProfilesPerQueueDefault
	}
	return 180
}

// QueueCount resolves a tenant's queue count: the tenant settings row
// first, then the record-store schema, then the configured default.
func (s *Service) QueueCount(ctx context.Context, tenantID string) int {
	if n, err := s.store.GetTenantQueueCount(ctx, tenantID); err == nil && n > 0 {
		return n
	}

	if tables, err := s.records.ListTables(ctx, tenantID); err == nil {
		count := 0
		for _, t := range tables {
			if recordstore.IsQueueTable(t) {
				count++
			}
		}
		if count > 0 {
			return count
		}
	} else {
		s.logger.Warn("queue count schema lookup failed", "tenant_id", tenantID, "error", err)
	}

	if s.cfg.Pipeline.QueueCountDefault > 0 {
		return s.cfg.Pipeline.QueueCountDefault
	}
	return 80
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/comicshelf/internal/database/audit"
	"github.com/mrlokans/comicshelf/internal/entities"
)

// Origin identifies where a request came from.
type Origin struct {
	IPAddress string
	UserAgent string
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(context.Background(), event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every pending LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogIngest records the outcome of an archive upload.
func (s *Service) LogIngest(bookID string, origin Origin, totalPages int, checksum string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventIngest,
		Action:      "book_upload",
		Description: fmt.Sprintf("Registered %s (%d pages)", bookID, totalPages),
		EntityType:  "book",
		EntityKey:   bookID,
		IPAddress:   origin.IPAddress,
		UserAgent:   truncate(origin.UserAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}

	metadata := map[string]any{
		"total_pages": totalPages,
	}
	if checksum != "" {
		metadata["checksum"] = checksum
	}
	if mdBytes, e := json.Marshal(metadata); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Description = "Rejected upload " + bookID
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogDelete records a book deletion.
func (s *Service) LogDelete(bookID, title string, origin Origin) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventDelete,
		Action:      "book_delete",
		Description: "Deleted book: " + title,
		EntityType:  "book",
		EntityKey:   bookID,
		IPAddress:   origin.IPAddress,
		UserAgent:   truncate(origin.UserAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}

	s.LogAsync(event)
}

// LogSweep records an orphan directory sweep.
func (s *Service) LogSweep(removed []string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSweep,
		Action:      "orphan_sweep",
		Description: fmt.Sprintf("Removed %d orphan directories", len(removed)),
		EntityType:  "directory",
		Status:      entities.AuditStatusSuccess,
	}

	if len(removed) > 0 {
		if mdBytes, e := json.Marshal(map[string]any{"directories": removed}); e == nil {
			event.Metadata = truncate(string(mdBytes), 4000)
		}
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, eventType entities.AuditEventType, bookID string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, audit.Filter{EventType: eventType, EntityKey: bookID}, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return strings.ToValidUTF8(s[:maxLen-3], "") + "..."
}

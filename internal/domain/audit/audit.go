package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrpilot/internal/requestctx"
)

// SystemActor marks events recorded by the service itself rather than a
// logged-in user, such as model-provider failures.
const SystemActor = "system"

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

type Service struct {
	DB *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Service {
	return &Service{DB: db}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (s *Service) Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, metadata any) error {
	return record(ctx, s.DB, tenantID, actorID, action, entityType, entityID, requestID, ip, metadata)
}

// RecordTx writes the event inside the caller's transaction, so an operation
// that must not stand without its audit row can commit both together.
func (s *Service) RecordTx(ctx context.Context, tx pgx.Tx, tenantID, actorID, action, entityType, entityID, requestID, ip string, metadata any) error {
	return record(ctx, tx, tenantID, actorID, action, entityType, entityID, requestID, ip, metadata)
}

func record(ctx context.Context, q execer, tenantID, actorID, action, entityType, entityID, requestID, ip string, metadata any) error {
	var metadataJSON []byte
	if metadata != nil {
		payload, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		metadataJSON = payload
	}

	var tenant any
	if tenantID != "" {
		tenant = tenantID
	}
	_, err := q.Exec(ctx, `
    INSERT INTO audit_events (tenant_id, actor_user_id, action, entity_type, entity_id, metadata_json, request_id, ip)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
  `, tenant, actorID, action, entityType, entityID, metadataJSON, requestID, ip)
	return err
}

// RecordFailure logs a model-provider failure as a system-actor event. It
// satisfies the dispatcher's audit sink and never fails the calling request.
func (s *Service) RecordFailure(ctx context.Context, operation, detail string) {
	err := s.Record(ctx, "", SystemActor, "llm.provider_error", "workflow", operation,
		requestctx.GetRequestID(ctx), "", map[string]string{"detail": detail})
	if err != nil {
		slog.Warn("audit record failed", "action", "llm.provider_error", "operation", operation, "err", err)
	}
}

func (s *Service) Count(ctx context.Context, tenantID string, filter Filter) (int, error) {
	query, args := s.buildBaseQuery("SELECT COUNT(1)", tenantID, filter)
	var total int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Service) List(ctx context.Context, tenantID string, filter Filter, includeDetails bool, limit, offset int) ([]Event, error) {
	selectCols := "id, actor_user_id, action, entity_type, entity_id, request_id, ip, created_at"
	if includeDetails {
		selectCols += ", metadata_json"
	}
	query, args := s.buildBaseQuery("SELECT "+selectCols, tenantID, filter)
	limitPos := len(args) + 1
	offsetPos := len(args) + 2
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", limitPos, offsetPos)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		if includeDetails {
			if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt, &evt.Metadata); err != nil {
				return nil, err
			}
		} else {
			if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &evt.IP, &evt.CreatedAt); err != nil {
				return nil, err
			}
		}
		out = append(out, evt)
	}
	return out, nil
}

func (s *Service) buildBaseQuery(prefix, tenantID string, filter Filter) (string, []any) {
	query := prefix + " FROM audit_events WHERE (tenant_id = $1 OR tenant_id IS NULL)"
	args := []any{tenantID}
	if filter.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", len(args)+1)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		query += fmt.Sprintf(" AND entity_type = $%d", len(args)+1)
		args = append(args, filter.EntityType)
	}
	if filter.ActorUser != "" {
		query += fmt.Sprintf(" AND actor_user_id = $%d", len(args)+1)
		args = append(args, filter.ActorUser)
	}
	return query, args
}

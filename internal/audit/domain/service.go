package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Service records immutable audit trail entries.
type Service interface {
	AuditLog(
		ctx context.Context,
		accountID *snowflake.ID,
		actorType string,
		actorID *string,
		action string,
		targetType string,
		targetID *string,
		metadata map[string]any,
	) error

	List(ctx context.Context, filter ListFilter) ([]*AuditLog, error)
}

var (
	ErrInvalidAction = errors.New("invalid_action")
	ErrInvalidTarget = errors.New("invalid_target")
)

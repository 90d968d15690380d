package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createOrUpdateRoadmap = `-- name: CreateOrUpdateRoadmap :exec
INSERT INTO roadmaps (
roadmap, job_id)
VALUES ( $1, $2)
ON CONFLICT (job_id)
DO UPDATE SET
    roadmap = EXCLUDED.roadmap,
    updated_at = CURRENT_TIMESTAMP
`

type CreateOrUpdateRoadmapParams struct {
	Roadmap json.RawMessage
	JobID   uuid.UUID
}

func (q *Queries) CreateOrUpdateRoadmap(ctx context.Context, arg CreateOrUpdateRoadmapParams) error {
	_, err := q.db.ExecContext(ctx, createOrUpdateRoadmap, arg.Roadmap, arg.JobID)
	return err
}

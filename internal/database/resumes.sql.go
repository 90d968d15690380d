package database

import (
	"context"

	"github.com/google/uuid"
)

const getResumesByJob = `-- name: GetResumesByJob :many
SELECT id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status, created_at, job_id FROM resumes WHERE job_id=$1
`

func (q *Queries) GetResumesByJob(ctx context.Context, jobID uuid.UUID) ([]Resume, error) {
	rows, err := q.db.QueryContext(ctx, getResumesByJob, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Resume
	for rows.Next() {
		var i Resume
		if err := rows.Scan(
			&i.ID,
			&i.OriginalFilename,
			&i.Mime,
			&i.SizeBytes,
			&i.StorageProvider,
			&i.ObjectKey,
			&i.StorageUrl,
			&i.UploadStatus,
			&i.CreatedAt,
			&i.JobID,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

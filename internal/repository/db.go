package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"jobboard/internal/models"
)

// DB is the query surface shared by *pgxpool.Pool and pgx.Tx, so every
// repository can run against either a pool or an open transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// attachment recombines the url/key column pair into a models.Attachment.
func attachment(url, key *string) *models.Attachment {
	if url == nil || *url == "" {
		return nil
	}
	att := models.Attachment{URL: *url}
	if key != nil {
		att.Key = *key
	}
	return &att
}

func attachmentCols(att *models.Attachment) (*string, *string) {
	if att == nil {
		return nil, nil
	}
	return &att.URL, &att.Key
}

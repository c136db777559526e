package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
)

func TestMigrations_Embedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	assert.NoError(t, err)
	assert.Contains(t, files, "00001_create_users.sql")

	body, err := fs.ReadFile(Migrations, "00001_create_users.sql")
	assert.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "email      VARCHAR(255) NOT NULL UNIQUE")
	assert.Contains(t, string(body), "user_data  JSON NOT NULL DEFAULT '{}'")
}

func TestUp_UsesEmbeddedDir(t *testing.T) {
	original := gooseUpContext
	defer func() { gooseUpContext = original }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	assert.NoError(t, Up(context.Background(), nil))
	assert.Equal(t, ".", gotDir)
}

func TestUp_PropagatesError(t *testing.T) {
	original := gooseUpContext
	defer func() { gooseUpContext = original }()

	wantErr := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return wantErr
	}

	assert.ErrorIs(t, Up(context.Background(), nil), wantErr)
}

package handlers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/matchoracle/prediction-api/internal/logic"
)

// MigrationsDir is where InstallDatabase looks for schema files
var MigrationsDir = "migrations"

// InstallDatabase checks for database schema and installs it if missing
// @Summary Install Database Schema
// @Description Executes the SQL migrations for the prediction store and the ClickHouse event log
// @Tags System
// @Accept json
// @Produce json
// @Param X-Admin-Token header string true "Operator token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results := make(map[string]string)
	hasError := false
	record := func(db string, err error) {
		if err != nil {
			results[db] = "failed: " + err.Error()
			hasError = true
			return
		}
		results[db] = "success"
	}

	// 1. Prediction store
	if h.pg != nil {
		record("postgres", h.executePostgresSQL(ctx, filepath.Join(MigrationsDir, "postgres", "001_initial_schema.sql")))
	}
	if h.sqlite != nil {
		_, err := h.sqlite.ExecContext(ctx, logic.SQLiteSchema)
		record("sqlite", err)
	}

	// 2. ClickHouse event log
	record("clickhouse", h.executeClickHouseSQL(ctx, filepath.Join(MigrationsDir, "clickhouse", "001_initial_schema.sql")))

	statusCode := http.StatusOK
	if hasError {
		statusCode = http.StatusInternalServerError
	}

	h.jsonResponse(w, statusCode, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   hasError,
	})
}

// executePostgresSQL reads a SQL file and executes it on Postgres
func (h *Handler) executePostgresSQL(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "db", "PostgreSQL", "path", path, "error", err)
		return err
	}

	_, err = h.pg.Exec(ctx, string(content))
	if err != nil {
		h.logger.Errorw("failed to execute schema", "db", "PostgreSQL", "error", err)
		return err
	}

	h.logger.Infow("successfully installed schema", "db", "PostgreSQL")
	return nil
}

// executeClickHouseSQL reads a SQL file and executes it on ClickHouse
func (h *Handler) executeClickHouseSQL(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "db", "ClickHouse", "path", path, "error", err)
		return err
	}

	// the driver runs one statement per Exec
	for _, stmt := range strings.Split(string(content), ";") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}

		if err := h.ch.Exec(ctx, trimmed); err != nil {
			h.logger.Warnw("statement execution warning", "db", "ClickHouse", "error", err, "statement", trimmed[:min(len(trimmed), 50)]+"...")
			return err
		}
	}

	h.logger.Infow("successfully installed schema", "db", "ClickHouse")
	return nil
}

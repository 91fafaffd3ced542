// Package migration creates the schema on first start. Every step is
// idempotent; audit_entries is created last and doubles as the sentinel.
package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// SentinelTable marks a fully migrated schema.
const SentinelTable = "audit_entries"

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_registrations",
		SQL: `CREATE TABLE IF NOT EXISTS registrations (
  id                    UUID        PRIMARY KEY,
  district_id           TEXT        NOT NULL,
  student_name          TEXT        NOT NULL,
  date_of_birth         DATE        NOT NULL,
  grade                 TEXT        NOT NULL,
  school                TEXT        NOT NULL,
  address_line          TEXT        NOT NULL,
  city                  TEXT        NOT NULL,
  state                 TEXT        NOT NULL,
  zip                   TEXT        NOT NULL,
  school_year           TEXT        NOT NULL,
  iep                   BOOLEAN     NOT NULL DEFAULT false,
  section_504           BOOLEAN     NOT NULL DEFAULT false,
  mckinney_vento        BOOLEAN     NOT NULL DEFAULT false,
  foster_care           BOOLEAN     NOT NULL DEFAULT false,
  boundary_check        BOOLEAN     NOT NULL,
  status                TEXT        NOT NULL,
  prior_registration_id UUID        REFERENCES registrations (id),
  version               BIGINT      NOT NULL DEFAULT 1,
  created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_registrations_district_year",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_registrations_district_year ON registrations (district_id, school_year);`,
	},
	{
		Name: "create_unique_index_registrations_prior",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_registrations_prior ON registrations (prior_registration_id);`,
	},
	{
		Name: "create_table_residency_documents",
		SQL: `CREATE TABLE IF NOT EXISTS residency_documents (
  id              UUID        PRIMARY KEY,
  registration_id UUID        NOT NULL REFERENCES registrations (id),
  document_type   TEXT        NOT NULL,
  filename        TEXT        NOT NULL,
  storage_path    TEXT        NOT NULL UNIQUE,
  size            BIGINT      NOT NULL CHECK (size >= 0),
  content_type    TEXT        NOT NULL,
  created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_residency_documents_registration",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_residency_documents_registration ON residency_documents (registration_id);`,
	},
	{
		Name: "create_table_attestations",
		SQL: `CREATE TABLE IF NOT EXISTS attestations (
  registration_id UUID        NOT NULL REFERENCES registrations (id),
  school_year     TEXT        NOT NULL,
  statement       TEXT        NOT NULL,
  signer_name     TEXT        NOT NULL,
  signed_at       TIMESTAMPTZ NOT NULL,
  PRIMARY KEY (registration_id, school_year)
);`,
	},
	{
		Name: "create_table_contracts",
		SQL: `CREATE TABLE IF NOT EXISTS contracts (
  id              UUID          PRIMARY KEY,
  district_id     TEXT          NOT NULL,
  contractor_name TEXT          NOT NULL,
  contact_name    TEXT          NOT NULL DEFAULT '',
  contact_email   TEXT          NOT NULL DEFAULT '',
  contact_phone   TEXT          NOT NULL DEFAULT '',
  start_date      DATE          NOT NULL,
  end_date        DATE          NOT NULL,
  annual_value    NUMERIC(14,2) NOT NULL DEFAULT 0,
  route_count     INTEGER       NOT NULL DEFAULT 0,
  rate_per_route  NUMERIC(12,2) NOT NULL DEFAULT 0,
  rate_per_mile   NUMERIC(12,2) NOT NULL DEFAULT 0,
  status          TEXT          NOT NULL,
  created_at      TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_insurance_records",
		SQL: `CREATE TABLE IF NOT EXISTS insurance_records (
  id              UUID          PRIMARY KEY,
  contract_id     UUID          NOT NULL REFERENCES contracts (id),
  policy_number   TEXT          NOT NULL,
  provider        TEXT          NOT NULL,
  coverage_amount NUMERIC(14,2) NOT NULL,
  expiration_date DATE          NOT NULL,
  created_at      TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_performance_samples",
		SQL: `CREATE TABLE IF NOT EXISTS performance_samples (
  id               UUID         PRIMARY KEY,
  contract_id      UUID         NOT NULL REFERENCES contracts (id),
  period           CHAR(7)      NOT NULL,
  on_time_pct      NUMERIC(5,2) NOT NULL CHECK (on_time_pct BETWEEN 0 AND 100),
  complaints       INTEGER      NOT NULL CHECK (complaints >= 0),
  safety_incidents INTEGER      NOT NULL CHECK (safety_incidents >= 0),
  routes_completed INTEGER      NOT NULL CHECK (routes_completed >= 0),
  routes_missed    INTEGER      NOT NULL CHECK (routes_missed >= 0),
  created_at       TIMESTAMPTZ  NOT NULL DEFAULT now(),
  UNIQUE (contract_id, period)
);`,
	},
	{
		Name: "create_table_invoices",
		SQL: `CREATE TABLE IF NOT EXISTS invoices (
  id              UUID          PRIMARY KEY,
  contract_id     UUID          NOT NULL REFERENCES contracts (id),
  district_id     TEXT          NOT NULL,
  invoice_number  TEXT          NOT NULL,
  invoice_date    DATE          NOT NULL,
  invoiced_amount NUMERIC(14,2) NOT NULL,
  verified_amount NUMERIC(14,2),
  gps_verified    BOOLEAN       NOT NULL DEFAULT false,
  status          TEXT          NOT NULL,
  reviewed_by     TEXT          NOT NULL DEFAULT '',
  reviewed_at     TIMESTAMPTZ,
  version         BIGINT        NOT NULL DEFAULT 1,
  created_at      TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_invoices_district_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_invoices_district_status ON invoices (district_id, status);`,
	},
	{
		Name: "create_table_reports",
		SQL: `CREATE TABLE IF NOT EXISTS reports (
  id          UUID        PRIMARY KEY,
  kind        TEXT        NOT NULL,
  district_id TEXT        NOT NULL,
  contract_id UUID        REFERENCES contracts (id),
  title       TEXT        NOT NULL,
  details     TEXT        NOT NULL DEFAULT '',
  status      TEXT        NOT NULL,
  version     BIGINT      NOT NULL DEFAULT 1,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_bid_solicitations",
		SQL: `CREATE TABLE IF NOT EXISTS bid_solicitations (
  id             UUID          PRIMARY KEY,
  district_id    TEXT          NOT NULL,
  title          TEXT          NOT NULL,
  description    TEXT          NOT NULL DEFAULT '',
  route_spec     TEXT          NOT NULL DEFAULT '',
  open_date      DATE          NOT NULL,
  close_date     DATE          NOT NULL,
  status         TEXT          NOT NULL,
  reference_rate NUMERIC(12,2) NOT NULL,
  created_at     TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_bid_responses",
		SQL: `CREATE TABLE IF NOT EXISTS bid_responses (
  id              UUID          PRIMARY KEY,
  solicitation_id UUID          NOT NULL REFERENCES bid_solicitations (id),
  contractor_name TEXT          NOT NULL,
  proposed_rate   NUMERIC(12,2) NOT NULL,
  fleet_details   TEXT          NOT NULL DEFAULT '',
  safety_record   TEXT          NOT NULL DEFAULT '',
  total_score     NUMERIC(5,2)  NOT NULL,
  status          TEXT          NOT NULL,
  submitted_at    TIMESTAMPTZ   NOT NULL
);`,
	},
	{
		Name: "create_table_state_reports",
		SQL: `CREATE TABLE IF NOT EXISTS state_reports (
  id           UUID        PRIMARY KEY,
  district_id  TEXT        NOT NULL,
  report_type  TEXT        NOT NULL,
  school_year  TEXT        NOT NULL,
  submitted_at TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_table_training_records",
		SQL: `CREATE TABLE IF NOT EXISTS training_records (
  id           UUID        PRIMARY KEY,
  district_id  TEXT        NOT NULL,
  program      TEXT        NOT NULL,
  due_date     DATE        NOT NULL,
  completed    BOOLEAN     NOT NULL DEFAULT false,
  completed_at TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_protected_students",
		SQL: `CREATE TABLE IF NOT EXISTS protected_students (
  id                      UUID        PRIMARY KEY,
  district_id             TEXT        NOT NULL,
  student_name            TEXT        NOT NULL,
  school_of_origin        TEXT        NOT NULL,
  transportation_provided BOOLEAN     NOT NULL DEFAULT false,
  identified_at           TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_table_data_sharing_agreements",
		SQL: `CREATE TABLE IF NOT EXISTS data_sharing_agreements (
  id          UUID        PRIMARY KEY,
  district_id TEXT        NOT NULL,
  vendor_name TEXT        NOT NULL,
  signed      BOOLEAN     NOT NULL DEFAULT false,
  signed_at   TIMESTAMPTZ,
  expires_at  TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_breach_records",
		SQL: `CREATE TABLE IF NOT EXISTS breach_records (
  id               UUID        PRIMARY KEY,
  district_id      TEXT        NOT NULL,
  vendor_name      TEXT        NOT NULL,
  description      TEXT        NOT NULL,
  discovered_at    TIMESTAMPTZ NOT NULL,
  parents_notified BOOLEAN     NOT NULL DEFAULT false,
  resolved_at      TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_audit_entries",
		SQL: `CREATE TABLE IF NOT EXISTS audit_entries (
  id          UUID        PRIMARY KEY,
  entity_kind TEXT        NOT NULL,
  entity_id   UUID        NOT NULL,
  district_id TEXT        NOT NULL,
  actor_id    TEXT        NOT NULL,
  action      TEXT        NOT NULL,
  from_status TEXT        NOT NULL,
  to_status   TEXT        NOT NULL,
  notes       TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_entries_entity ON audit_entries (entity_kind, entity_id, created_at);
CREATE INDEX IF NOT EXISTS idx_audit_entries_district ON audit_entries (district_id, created_at DESC);`,
	},
}

// EnsureMigrated runs every step unless the sentinel table already exists.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)

	log.Info("db_migration_check", "status", "starting")

	var exists bool
	query := "SELECT to_regclass('public." + SentinelTable + "') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", fmt.Sprintf("failed to check sentinel table: %v", err),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"reason", "schema already exists, skipping migration",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

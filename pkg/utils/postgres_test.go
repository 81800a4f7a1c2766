package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestPostgresPoolConfig_Defaults(t *testing.T) {
	c := PostgresPoolConfig{}.withDefaults()
	if c.MaxOpenConns != 25 || c.MaxIdleConns != 25 {
		t.Fatalf("unexpected pool sizes: %+v", c)
	}
	if c.ConnMaxLifetime != 30*time.Minute || c.PingTimeout != 5*time.Second {
		t.Fatalf("unexpected timeouts: %+v", c)
	}
}

func TestPostgresPoolConfig_IdleCappedByOpen(t *testing.T) {
	c := PostgresPoolConfig{MaxOpenConns: 4, MaxIdleConns: 10}.withDefaults()
	if c.MaxIdleConns != 4 {
		t.Fatalf("expected idle conns capped at 4, got %d", c.MaxIdleConns)
	}
}

func TestPgErrorCode_UnwrapsWrappedErrors(t *testing.T) {
	base := &pgconn.PgError{Code: PgUniqueViolation, ConstraintName: "promo_codes_code_key"}
	err := fmt.Errorf("insert promo: %w", base)

	if got := PgErrorCode(err); got != PgUniqueViolation {
		t.Fatalf("expected %s, got %q", PgUniqueViolation, got)
	}
	if got := PgConstraint(err); got != "promo_codes_code_key" {
		t.Fatalf("unexpected constraint %q", got)
	}
	if got := PgErrorCode(errors.New("boom")); got != "" {
		t.Fatalf("expected empty code, got %q", got)
	}
}

func TestReadCommitted(t *testing.T) {
	if ReadCommitted().ReadOnly {
		t.Fatalf("expected read-write tx options")
	}
}

// Package testutil provides helpers shared by package tests: optional
// Redis/Postgres connections that skip when the service is not running, and
// identity fixtures.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	domainauth "github.com/Mendozape/PayComMobile/internal/domain/auth"
	"github.com/Mendozape/PayComMobile/internal/migrate"
)

// TestingTB covers *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
	Cleanup(func())
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func requireDB() bool    { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

func skipOrFail(t TestingTB, required bool, args ...any) {
	t.Helper()
	if required {
		t.Fatal(args...)
	}
	t.Skip(args...)
}

// TestDSN returns the Postgres DSN for integration tests. Defaults target the
// local docker-compose test profile on port 55432.
func TestDSN() string {
	host := net.JoinHostPort(getEnvOrDefault("TEST_DB_HOST", "localhost"), getEnvOrDefault("TEST_DB_PORT", "55432"))
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		getEnvOrDefault("TEST_DB_USER", "paycom"),
		getEnvOrDefault("TEST_DB_PASSWORD", "paycom"),
		host,
		getEnvOrDefault("TEST_DB_NAME", "paycom"),
	)
}

// SetupTestDB opens the test database, applies migrations and empties the
// session table. The test is skipped when Postgres is unreachable.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", TestDSN())
	if err != nil {
		skipOrFail(t, requireDB(), "test database not available:", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		skipOrFail(t, requireDB(), "test database not available:", pingErr)
		return nil
	}
	if migrateErr := migrate.Run(ctx, db); migrateErr != nil {
		_ = db.Close()
		t.Fatal("failed to run migrations:", migrateErr)
	}
	if _, delErr := db.ExecContext(ctx, "DELETE FROM client_sessions"); delErr != nil {
		t.Fatalf("failed to clean client_sessions: %v", delErr)
	}

	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Logf("test db close failed: %v", cerr)
		}
	})
	return db
}

// SetupTestRedis connects to the test Redis and flushes the selected DB.
// REDIS_ADDR overrides the default localhost:56379; TEST_REDIS_DB picks the
// database index (default 1).
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := getEnvOrDefault("REDIS_ADDR", "localhost:56379")
	dbIndex := 1
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			dbIndex = i
		}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: dbIndex})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		skipOrFail(t, requireRedis(), fmt.Sprintf("redis not available at %s: %v", addr, err))
		return nil
	}
	client.FlushDB(ctx)

	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
	})
	return client
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string { return &s }

// TestTime returns a fixed time for tests.
func TestTime() time.Time {
	return time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)
}

// Resident returns a user holding only the account statement permission.
func Resident() *domainauth.User {
	return &domainauth.User{
		ID:               21,
		Name:             "Residente Uno",
		Email:            "residente@example.com",
		ProfilePhotoPath: StringPtr("residente.jpg"),
		Roles: []domainauth.Role{
			{ID: 3, Name: "Residente", Permissions: domainauth.PermissionList{"ver-estado-cuenta"}},
		},
	}
}

// Admin returns a user holding every management permission through roles.
func Admin() *domainauth.User {
	return &domainauth.User{
		ID:    1,
		Name:  "Administrador",
		Email: "admin@example.com",
		Roles: []domainauth.Role{
			{ID: 1, Name: "Admin", Permissions: domainauth.PermissionList{
				"Ver-usuarios", "Crear-usuarios", "Editar-usuarios", "Eliminar-usuarios",
				"Ver-roles", "Crear-roles", "Editar-roles", "Eliminar-roles",
				"Ver-calles", "Crear-calles", "Editar-calles",
				"Ver-predios", "Crear-predios", "Editar-predios", "Eliminar-predios",
				"Ver-cuotas", "Crear-cuotas", "Editar-cuotas", "Eliminar-cuotas",
				"Ver-gastos", "Crear-gastos", "Editar-gastos", "Eliminar-gastos",
				"Ver-catalogo-gastos", "Crear-catalogo-gastos", "Editar-catalogo-gastos", "Eliminar-catalogo-gastos",
				"Crear-pagos", "Ver-pagos", "Ver-reportes",
			}},
		},
	}
}

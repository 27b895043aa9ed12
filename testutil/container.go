package testutil

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pkordes/trip-planner/backend/migrations"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresUser     = "trip"
	postgresPassword = "trip"
	postgresDB       = "trip_planner_test"
)

// StartPostgres launches a throwaway Postgres container and returns its DSN.
// The returned terminate func stops and removes the container.
func StartPostgres(ctx context.Context) (string, func(), error) {
	req := testcontainers.ContainerRequest{
		Image:        postgresImage,
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     postgresUser,
			"POSTGRES_PASSWORD": postgresPassword,
			"POSTGRES_DB":       postgresDB,
		},
		// Postgres logs the ready line twice: once for the init server and
		// once for the real one.
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", nil, fmt.Errorf("testutil.StartPostgres: start: %w", err)
	}

	terminate := func() {
		_ = container.Terminate(context.Background())
	}

	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("testutil.StartPostgres: host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		terminate()
		return "", nil, fmt.Errorf("testutil.StartPostgres: port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		postgresUser, postgresPassword, host, port.Port(), postgresDB)
	return dsn, terminate, nil
}

// SetupDatabase prepares the integration database for a TestMain.
//
// If TEST_DATABASE_URL is set it is used as-is. Otherwise, when
// TEST_POSTGRES_CONTAINER=1, a Postgres container is started and
// TEST_DATABASE_URL is pointed at it so NewPool and NewSQLDB pick it up.
// With neither set it returns ok=false and the integration tests skip.
//
// Migrations are applied before returning. The cleanup func is always safe
// to call.
func SetupDatabase(ctx context.Context) (cleanup func(), ok bool, err error) {
	cleanup = func() {}

	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		if os.Getenv("TEST_POSTGRES_CONTAINER") != "1" {
			return cleanup, false, nil
		}
		var terminate func()
		dsn, terminate, err = StartPostgres(ctx)
		if err != nil {
			return cleanup, false, err
		}
		cleanup = terminate
		if err := os.Setenv(DSNEnv, dsn); err != nil {
			return cleanup, false, fmt.Errorf("testutil.SetupDatabase: %w", err)
		}
	}

	db, err := openSQL(ctx, dsn)
	if err != nil {
		return cleanup, false, fmt.Errorf("testutil.SetupDatabase: %w", err)
	}
	defer db.Close()

	if _, err := migrations.Up(ctx, db); err != nil {
		return cleanup, false, fmt.Errorf("testutil.SetupDatabase: %w", err)
	}
	return cleanup, true, nil
}

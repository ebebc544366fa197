package suite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	expireDuration  = 120
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"

	postgresPort     = "5432/tcp"
	postgresImage    = "postgres"
	postgresTag      = "16-alpine"
	postgresUser     = "t3"
	postgresPassword = "t3"
	postgresDatabase = "t3"
)

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage  *redis.Client
	Postgres *pgxpool.Pool
}

// New - starts a redis container and returns a suite connected to it.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, st, pool := newSuite(t)

	resource := run(t, pool, &dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
		Env:        []string{},
	})

	redisHost := resource.GetHostPort(redisPort)

	var redisClient *redis.Client
	if err := pool.Retry(func() error {
		redisClient = redis.NewClient(&redis.Options{
			Addr: redisHost,
		})
		return redisClient.Ping(ctx).Err()
	}); err != nil {
		purge(t, pool, resource)
		t.Fatalf("could not connect to redis: %v", err)
	}

	if err := redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	t.Cleanup(func() {
		_ = redisClient.Close()
	})

	st.Storage = redisClient

	return ctx, st
}

// NewPostgres - starts a postgres container and returns a suite connected to it.
func NewPostgres(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, st, pool := newSuite(t)

	resource := run(t, pool, &dockertest.RunOptions{
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=" + postgresUser,
			"POSTGRES_PASSWORD=" + postgresPassword,
			"POSTGRES_DB=" + postgresDatabase,
		},
	})

	dsn := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		postgresUser, postgresPassword, resource.GetHostPort(postgresPort), postgresDatabase)

	var pgPool *pgxpool.Pool
	if err := pool.Retry(func() error {
		var err error

		pgPool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}

		return pgPool.Ping(ctx)
	}); err != nil {
		purge(t, pool, resource)
		t.Fatalf("could not connect to postgres: %v", err)
	}

	t.Cleanup(func() {
		pgPool.Close()
	})

	st.Postgres = pgPool

	return ctx, st
}

func newSuite(t *testing.T) (context.Context, *Suite, *dockertest.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(func() {
		cancel()
	})

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("could not connect to docker: %v", err)
	}

	if err = pool.Client.Ping(); err != nil {
		t.Skipf("docker is not available: %v", err)
	}

	// exponential backoff-retry, because the application in the container might not be ready to accept connections yet
	pool.MaxWait = maxWaitDuration

	return ctx, &Suite{
		T:      t,
		Logger: logger,
	}, pool
}

// run - pulls an image, creates a container based on it and runs it.
func run(t *testing.T, pool *dockertest.Pool, options *dockertest.RunOptions) *dockertest.Resource {
	t.Helper()

	resource, err := pool.RunWithOptions(options, func(config *docker.HostConfig) {
		// set AutoRemove to true so that stopped container goes away by itself
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start resource: %v", err)
	}

	// never returns error
	_ = resource.Expire(expireDuration) // Tell docker to hard kill the container in 120 seconds

	t.Cleanup(func() {
		purge(t, pool, resource)
	})

	return resource
}

func purge(t *testing.T, pool *dockertest.Pool, resource *dockertest.Resource) {
	t.Helper()

	if err := pool.Purge(resource); err != nil {
		t.Logf("could not purge resource: %v", err)
	}
}

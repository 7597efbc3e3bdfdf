// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package site contains site local constants for the AYNI development stack.
package site

import (
	"fmt"
	"time"
)

// AppPrefix is the name of the stack CLI binary.
var AppPrefix = "aynistack"

// Version is the release version reported by `aynistack version`.
const Version = "0.4.0"

// Compose service names. The literal names are fixed by docker-compose.yml
// and reused for container lookups, staging and health plans.
const (
	ServiceDB         = "db"
	ServiceRedis      = "redis"
	ServiceBackend    = "backend"
	ServiceCelery     = "celery"
	ServiceCeleryBeat = "celery-beat"
	ServiceFlower     = "flower"
)

// ComposeFilename is the compose file the CLI looks for in the project
// directory. ComposeFilenameAlt is accepted as a fallback.
const (
	ComposeFilename    = "docker-compose.yml"
	ComposeFilenameAlt = "docker-compose.yaml"
)

// EnvFilename is the live environment file consumed by compose.
// EnvExampleFilename is the committed template it is bootstrapped from.
const (
	EnvFilename        = ".env"
	EnvExampleFilename = ".env.example"
)

// StateDirname is the per-project directory holding the CLI's lock and
// state files. It lives next to the compose file and is gitignored.
const StateDirname = ".aynistack"

// Environment keys read from .env. Compose passes the same keys to the
// containers, so the CLI and the stack always agree on them.
const (
	EnvKeyPostgresDB       = "POSTGRES_DB"
	EnvKeyPostgresUser     = "POSTGRES_USER"
	EnvKeyPostgresPassword = "POSTGRES_PASSWORD"
	EnvKeyDBPort           = "DB_PORT"
	EnvKeyRedisPort        = "REDIS_PORT"
	EnvKeyBackendPort      = "BACKEND_PORT"
	EnvKeyFlowerPort       = "FLOWER_PORT"
	EnvKeyCeleryBroker     = "CELERY_BROKER_URL"
)

// Default host ports when neither the compose file nor .env overrides them.
const (
	DefaultDBPort      = 5432
	DefaultRedisPort   = 6379
	DefaultBackendPort = 8000
	DefaultFlowerPort  = 5555
)

// Default database identity matching .env.example. Development
// credentials only; production configuration never goes through this
// tool.
const (
	DefaultPostgresDB       = "ayni"
	DefaultPostgresUser     = "ayni"
	DefaultPostgresPassword = "ayni"
)

// BackendHealthPath is probed on the backend service. The Django admin
// redirects anonymous users to its login page, so 200, 301 and 302 all
// count as healthy.
const BackendHealthPath = "/admin/"

// BackendDocsPath is the browsable API documentation, printed in the
// endpoint summary after a successful start.
const BackendDocsPath = "/api/docs/"

// FlowerHealthPath is probed on the flower service.
const FlowerHealthPath = "/"

// CeleryQueue is the dedicated queue the processing pipeline publishes to.
// Pending tasks sit in a Redis list of the same name.
const CeleryQueue = "processing"

// CeleryApp is the Django package holding the Celery application, as in
// "celery -A config inspect ping".
const CeleryApp = "config"

// Per-service health deadlines. Waiting is always bounded; a service that
// is not healthy when its deadline expires fails the run.
const (
	DBReadyTimeout      = 60 * time.Second
	RedisReadyTimeout   = 30 * time.Second
	BackendReadyTimeout = 120 * time.Second
	FlowerReadyTimeout  = 90 * time.Second
	WorkerReadyTimeout  = 45 * time.Second
)

// AllServices returns every stack service in start order.
func AllServices() []string {
	return []string{
		ServiceDB,
		ServiceRedis,
		ServiceBackend,
		ServiceCelery,
		ServiceCeleryBeat,
		ServiceFlower,
	}
}

// DefaultStages is the fixed start staging used when the compose file
// declares no depends_on edges: data stores first, then the backend, then
// the workers and the dashboard.
func DefaultStages() [][]string {
	return [][]string{
		{ServiceDB, ServiceRedis},
		{ServiceBackend},
		{ServiceCelery, ServiceCeleryBeat, ServiceFlower},
	}
}

// IsKnownService reports whether name is one of the stack's services.
func IsKnownService(name string) bool {
	for _, s := range AllServices() {
		if s == name {
			return true
		}
	}
	return false
}

// ReadyTimeout returns the health deadline for the named service.
// Unknown services get the worker deadline.
func ReadyTimeout(service string) time.Duration {
	switch service {
	case ServiceDB:
		return DBReadyTimeout
	case ServiceRedis:
		return RedisReadyTimeout
	case ServiceBackend:
		return BackendReadyTimeout
	case ServiceFlower:
		return FlowerReadyTimeout
	default:
		return WorkerReadyTimeout
	}
}

// BackendURL returns the backend base URL for the resolved host port.
func BackendURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// FlowerURL returns the flower dashboard URL for the resolved host port.
func FlowerURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

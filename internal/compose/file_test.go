// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package compose

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	. "go.chromium.org/luci/common/testing/assertions"

	"github.com/Brownbull/ayni-be/internal/assert"
)

const stackYAML = `
services:
  db:
    image: postgres:16-alpine
    environment:
      POSTGRES_DB: ayni
      POSTGRES_USER: ayni
      POSTGRES_PASSWORD: ${POSTGRES_PASSWORD:-ayni}
    ports:
      - "${DB_PORT:-5432}:5432"
    volumes:
      - postgres_data:/var/lib/postgresql/data
    healthcheck:
      test: ["CMD-SHELL", "pg_isready -U ayni"]
      interval: 5s
      timeout: 3s
      retries: 5

  redis:
    image: redis:7-alpine
    ports:
      - target: 6379
        published: 6379
        protocol: tcp

  backend:
    build: .
    command: python manage.py runserver 0.0.0.0:8000
    env_file: .env
    environment:
      - DEBUG=1
      - CELERY_BROKER_URL=redis://redis:6379/0
    ports:
      - "8000:8000"
    depends_on:
      db:
        condition: service_healthy
      redis:
        condition: service_started

  celery:
    build:
      context: .
      dockerfile: Dockerfile
    command: celery -A config worker -l info -Q processing
    depends_on:
      - backend

volumes:
  postgres_data:
`

func TestParse(t *testing.T) {
	t.Parallel()
	Convey("Parse", t, func() {
		f, err := Parse([]byte(stackYAML), map[string]string{"DB_PORT": "15432"})
		So(err, ShouldBeNil)

		Convey("finds every service", func() {
			So(f.ServiceNames(), ShouldResemble, []string{"backend", "celery", "db", "redis"})
		})

		Convey("interpolates with the provided env", func() {
			db := f.Services["db"]
			port, ok := db.PublishedPort(5432)
			So(ok, ShouldBeTrue)
			So(port, ShouldEqual, 15432)
			// Unset vars fall back to their defaults.
			So(db.Environment["POSTGRES_PASSWORD"], ShouldEqual, "ayni")
		})

		Convey("handles the long port form", func() {
			port, ok := f.Services["redis"].PublishedPort(6379)
			So(ok, ShouldBeTrue)
			So(port, ShouldEqual, 6379)
		})

		Convey("handles both environment forms", func() {
			So(f.Services["db"].Environment["POSTGRES_USER"], ShouldEqual, "ayni")
			So(f.Services["backend"].Environment["DEBUG"], ShouldEqual, "1")
			So(f.Services["backend"].Environment["CELERY_BROKER_URL"], ShouldEqual, "redis://redis:6379/0")
		})

		Convey("handles both depends_on forms", func() {
			backend := f.Services["backend"]
			So(backend.DependsOn.Services(), ShouldResemble, []string{"db", "redis"})
			So(backend.DependsOn["db"], ShouldEqual, ConditionHealthy)
			So(backend.DependsOn["redis"], ShouldEqual, ConditionStarted)
			So(f.Services["celery"].DependsOn["backend"], ShouldEqual, ConditionStarted)
		})

		Convey("handles both build forms", func() {
			So(f.Services["backend"].Build.Context, ShouldEqual, ".")
			So(f.Services["celery"].Build.Dockerfile, ShouldEqual, "Dockerfile")
		})

		Convey("keeps the shell command whole and splits the exec form", func() {
			So(f.Services["backend"].Command, ShouldHaveLength, 1)
			So(f.Services["db"].Healthcheck.Test, ShouldResemble, Command{"CMD-SHELL", "pg_isready -U ayni"})
		})

		Convey("parses healthcheck durations", func() {
			hc := f.Services["db"].Healthcheck
			So(time.Duration(hc.Interval), ShouldEqual, 5*time.Second)
			So(hc.Retries, ShouldEqual, 5)
			So(f.Services["db"].HealthcheckDefined(), ShouldBeTrue)
			So(f.Services["redis"].HealthcheckDefined(), ShouldBeFalse)
		})

		Convey("sees dependencies", func() {
			So(f.HasDependencies(), ShouldBeTrue)
		})
	})

	Convey("Parse rejects empty files", t, func() {
		_, err := Parse([]byte("services: {}\n"), nil)
		So(err, ShouldNotBeNil)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()
	Convey("Validate", t, func() {
		Convey("accepts the stack file", func() {
			f, err := Parse([]byte(stackYAML), nil)
			So(err, ShouldBeNil)
			So(f.Validate(), ShouldBeNil)
		})

		Convey("rejects unknown depends_on targets", func() {
			f, err := Parse([]byte(`
services:
  backend:
    image: x
    depends_on: [basedata]
`), nil)
			So(err, ShouldBeNil)
			So(f.Validate(), ShouldErrLike, "unknown service basedata")
		})

		Convey("rejects services with no image or build", func() {
			f, err := Parse([]byte("services:\n  ghost: {}\n"), nil)
			So(err, ShouldBeNil)
			So(f.Validate(), ShouldErrLike, "neither image nor build")
		})

		Convey("rejects duplicate host ports", func() {
			f, err := Parse([]byte(`
services:
  a:
    image: x
    ports: ["8000:8000"]
  b:
    image: y
    ports: ["8000:80"]
`), nil)
			So(err, ShouldBeNil)
			So(f.Validate(), ShouldErrLike, "host port 8000 is already published")
		})
	})
}

func TestServiceLookup(t *testing.T) {
	t.Parallel()
	f, err := Parse([]byte(stackYAML), nil)
	assert.NilError(t, err)
	_, err = f.Service("db")
	assert.NilError(t, err)
	_, err = f.Service("basedata")
	assert.ErrorContains(t, err, `no service "basedata"`)
}

func TestInterpolate(t *testing.T) {
	t.Parallel()
	env := map[string]string{"SET": "value", "EMPTY": ""}
	for _, tc := range []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"$SET", "value"},
		{"${SET}", "value"},
		{"${UNSET:-def}", "def"},
		{"${EMPTY:-def}", "def"},
		{"${EMPTY-def}", ""},
		{"${UNSET-def}", "def"},
		{"$$SET", "$SET"},
		{"a ${SET} b", "a value b"},
	} {
		assert.StringsEqual(t, Interpolate(tc.in, env), tc.want)
	}
}

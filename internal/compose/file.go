// Copyright 2025 The AYNI Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package compose models the project's docker-compose.yml and wraps the
// compose CLI. The file is parsed directly so the stack can plan staging
// and health checks without shelling out, and the CLI wrapper is what
// actually mutates the stack.
package compose

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	"go.chromium.org/luci/common/errors"
	"gopkg.in/yaml.v3"

	"github.com/Brownbull/ayni-be/internal/site"
)

// File is a parsed compose file after environment interpolation.
type File struct {
	Name     string                 `yaml:"name"`
	Services map[string]*Service    `yaml:"services"`
	Volumes  map[string]*VolumeSpec `yaml:"volumes"`
	Networks map[string]*VolumeSpec `yaml:"networks"`
}

// Service is one entry under services.
type Service struct {
	Image         string       `yaml:"image"`
	Build         BuildSpec    `yaml:"build"`
	ContainerName string       `yaml:"container_name"`
	Command       Command      `yaml:"command"`
	Environment   Environment  `yaml:"environment"`
	EnvFile       StringList   `yaml:"env_file"`
	Ports         PortList     `yaml:"ports"`
	DependsOn     DependsOn    `yaml:"depends_on"`
	Healthcheck   *Healthcheck `yaml:"healthcheck"`
	Volumes       VolumeMounts `yaml:"volumes"`
	Profiles      []string     `yaml:"profiles"`
	Restart       string       `yaml:"restart"`
}

// VolumeSpec is a named top level volume or network. A bare name maps to a
// nil spec.
type VolumeSpec struct {
	Driver   string `yaml:"driver"`
	External bool   `yaml:"external"`
}

// BuildSpec accepts both the short string form and the long object form.
type BuildSpec struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *BuildSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		b.Context = value.Value
		return nil
	case yaml.MappingNode:
		type plain BuildSpec
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*b = BuildSpec(p)
		return nil
	}
	return lineErr(value, "build must be a string or a mapping")
}

// Command accepts both the shell string form and the exec list form. The
// string form is kept whole; splitting it is the shell's job, not ours.
type Command []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Command) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*c = Command{value.Value}
		return nil
	case yaml.SequenceNode:
		var parts []string
		if err := value.Decode(&parts); err != nil {
			return err
		}
		*c = Command(parts)
		return nil
	}
	return lineErr(value, "command must be a string or a list")
}

// StringList accepts a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = StringList(items)
		return nil
	}
	return lineErr(value, "expected a string or a list of strings")
}

// Environment accepts both the mapping form and the KEY=VALUE list form.
// Scalar values of any YAML type come through as their source text.
type Environment map[string]string

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Environment) UnmarshalYAML(value *yaml.Node) error {
	out := map[string]string{}
	switch value.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			k := value.Content[i].Value
			v := value.Content[i+1]
			if v.Tag == "!!null" {
				out[k] = ""
				continue
			}
			out[k] = v.Value
		}
	case yaml.SequenceNode:
		for _, item := range value.Content {
			k, v, _ := strings.Cut(item.Value, "=")
			out[k] = v
		}
	default:
		return lineErr(value, "environment must be a mapping or a list")
	}
	*e = out
	return nil
}

// Dependency conditions understood in depends_on long form.
const (
	ConditionStarted = "service_started"
	ConditionHealthy = "service_healthy"
)

// DependsOn maps a dependency service to its condition. The short list
// form gets ConditionStarted for every entry.
type DependsOn map[string]string

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DependsOn) UnmarshalYAML(value *yaml.Node) error {
	out := map[string]string{}
	switch value.Kind {
	case yaml.SequenceNode:
		for _, item := range value.Content {
			out[item.Value] = ConditionStarted
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			name := value.Content[i].Value
			var cfg struct {
				Condition string `yaml:"condition"`
			}
			if err := value.Content[i+1].Decode(&cfg); err != nil {
				return err
			}
			if cfg.Condition == "" {
				cfg.Condition = ConditionStarted
			}
			out[name] = cfg.Condition
		}
	default:
		return lineErr(value, "depends_on must be a list or a mapping")
	}
	*d = out
	return nil
}

// Services returns the dependency names, sorted.
func (d DependsOn) Services() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PortList holds the service's port publications as typed mappings.
// Short form specs are parsed with nat.ParsePortSpec, which also expands
// ranges; the long object form is converted to the same shape.
type PortList []nat.PortMapping

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *PortList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return lineErr(value, "ports must be a list")
	}
	var out []nat.PortMapping
	for _, item := range value.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			mappings, err := nat.ParsePortSpec(item.Value)
			if err != nil {
				return errors.Annotate(err, "line %d: port %q", item.Line, item.Value).Err()
			}
			out = append(out, mappings...)
		case yaml.MappingNode:
			var long struct {
				Target    int    `yaml:"target"`
				Published int    `yaml:"published"`
				Protocol  string `yaml:"protocol"`
				HostIP    string `yaml:"host_ip"`
			}
			if err := item.Decode(&long); err != nil {
				return err
			}
			if long.Protocol == "" {
				long.Protocol = "tcp"
			}
			port, err := nat.NewPort(long.Protocol, strconv.Itoa(long.Target))
			if err != nil {
				return errors.Annotate(err, "line %d", item.Line).Err()
			}
			var hostPort string
			if long.Published != 0 {
				hostPort = strconv.Itoa(long.Published)
			}
			out = append(out, nat.PortMapping{
				Port:    port,
				Binding: nat.PortBinding{HostIP: long.HostIP, HostPort: hostPort},
			})
		default:
			return lineErr(item, "port entries must be strings or mappings")
		}
	}
	*p = PortList(out)
	return nil
}

// VolumeMounts keeps service volume entries as source:target strings,
// collapsing the long object form to the same shape.
type VolumeMounts []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *VolumeMounts) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return lineErr(value, "volumes must be a list")
	}
	var out []string
	for _, item := range value.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, item.Value)
		case yaml.MappingNode:
			var long struct {
				Source string `yaml:"source"`
				Target string `yaml:"target"`
			}
			if err := item.Decode(&long); err != nil {
				return err
			}
			out = append(out, long.Source+":"+long.Target)
		default:
			return lineErr(item, "volume entries must be strings or mappings")
		}
	}
	*v = VolumeMounts(out)
	return nil
}

// Healthcheck is the service's own docker health check, if any.
type Healthcheck struct {
	Test        Command  `yaml:"test"`
	Interval    Duration `yaml:"interval"`
	Timeout     Duration `yaml:"timeout"`
	Retries     int      `yaml:"retries"`
	StartPeriod Duration `yaml:"start_period"`
	Disable     bool     `yaml:"disable"`
}

// Duration parses compose duration strings like "10s" or "1m30s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	td, err := time.ParseDuration(value.Value)
	if err != nil {
		return errors.Annotate(err, "line %d: duration %q", value.Line, value.Value).Err()
	}
	*d = Duration(td)
	return nil
}

// Load reads and parses the project's compose file, interpolating
// ${VAR} references from env first, the way compose itself does. It
// returns the parsed file and the path it was read from.
func Load(dir string, env map[string]string) (*File, string, error) {
	path := filepath.Join(dir, site.ComposeFilename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = filepath.Join(dir, site.ComposeFilenameAlt)
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, "", errors.Reason("no %s in %s", site.ComposeFilename, dir).Err()
	} else if err != nil {
		return nil, "", errors.Annotate(err, "read compose file").Err()
	}
	f, err := Parse(data, env)
	if err != nil {
		return nil, "", errors.Annotate(err, "parse %s", path).Err()
	}
	return f, path, nil
}

// Parse parses compose file contents after interpolating env references.
func Parse(data []byte, env map[string]string) (*File, error) {
	var f File
	if err := yaml.Unmarshal([]byte(Interpolate(string(data), env)), &f); err != nil {
		return nil, errors.Annotate(err, "invalid YAML").Err()
	}
	if len(f.Services) == 0 {
		return nil, errors.Reason("compose file defines no services").Err()
	}
	return &f, nil
}

// Interpolate substitutes $VAR, ${VAR}, ${VAR:-default} and ${VAR-default}
// references from env, with $$ as a literal dollar. This is the subset of
// compose interpolation the stack's own files use.
func Interpolate(src string, env map[string]string) string {
	return os.Expand(src, func(key string) string {
		if key == "$" {
			return "$"
		}
		if name, def, ok := strings.Cut(key, ":-"); ok {
			if v := env[name]; v != "" {
				return v
			}
			return def
		}
		if name, def, ok := strings.Cut(key, "-"); ok {
			if v, set := env[name]; set {
				return v
			}
			return def
		}
		return env[key]
	})
}

// ServiceNames returns the defined service names, sorted.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for name := range f.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Service returns the named service or an error naming the ones that do
// exist.
func (f *File) Service(name string) (*Service, error) {
	if s, ok := f.Services[name]; ok {
		return s, nil
	}
	return nil, errors.Reason("no service %q in compose file (have %s)", name, strings.Join(f.ServiceNames(), ", ")).Err()
}

// HasDependencies reports whether any service declares depends_on.
func (f *File) HasDependencies() bool {
	for _, s := range f.Services {
		if len(s.DependsOn) > 0 {
			return true
		}
	}
	return false
}

// Validate checks the file for mistakes compose would reject late or,
// worse, accept silently: unknown depends_on targets, services with
// neither image nor build, and host ports published twice.
func (f *File) Validate() error {
	var problems []string
	hostPorts := map[string]string{}
	for _, name := range f.ServiceNames() {
		s := f.Services[name]
		if s.Image == "" && s.Build.Context == "" {
			problems = append(problems, name+": neither image nor build is set")
		}
		for dep := range s.DependsOn {
			if _, ok := f.Services[dep]; !ok {
				problems = append(problems, name+": depends_on refers to unknown service "+dep)
			}
		}
		for _, pm := range s.Ports {
			hp := pm.Binding.HostPort
			if hp == "" {
				continue
			}
			if other, taken := hostPorts[hp]; taken && other != name {
				problems = append(problems, name+": host port "+hp+" is already published by "+other)
			}
			hostPorts[hp] = name
		}
	}
	if len(problems) > 0 {
		return errors.Reason("compose file problems:\n  %s", strings.Join(problems, "\n  ")).Err()
	}
	return nil
}

// PublishedPort returns the host port mapped to the container port target,
// if the service publishes it.
func (s *Service) PublishedPort(target int) (int, bool) {
	for _, pm := range s.Ports {
		if pm.Port.Int() != target || pm.Binding.HostPort == "" {
			continue
		}
		if hp, err := strconv.Atoi(pm.Binding.HostPort); err == nil {
			return hp, true
		}
	}
	return 0, false
}

// HealthcheckDefined reports whether the service carries an enabled
// docker healthcheck of its own.
func (s *Service) HealthcheckDefined() bool {
	return s.Healthcheck != nil && !s.Healthcheck.Disable && len(s.Healthcheck.Test) > 0
}

func lineErr(n *yaml.Node, msg string) error {
	return errors.Reason("line %d: %s", n.Line, msg).Err()
}

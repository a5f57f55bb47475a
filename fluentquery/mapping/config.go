package mapping

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config overrides derived mappings by entity name:
//
//	entities:
//	  Article:
//	    schema: dbo
//	    table: Articles
//	    columns:
//	      Name: article_name
type Config struct {
	Entities map[string]EntityConfig `yaml:"entities"`
}

type EntityConfig struct {
	Schema  string            `yaml:"schema"`
	Table   string            `yaml:"table"`
	Columns map[string]string `yaml:"columns"`
}

func LoadConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "unable to decode mapping config")
	}
	return cfg, nil
}

func LoadConfigFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open mapping config %s", path)
	}
	defer f.Close()
	return LoadConfig(f)
}

func (c *Config) apply(m *ClassMap) error {
	if c == nil {
		return nil
	}
	ec, ok := c.Entities[m.EntityName]
	if !ok {
		return nil
	}
	if ec.Schema != "" {
		m.SchemaName = ec.Schema
	}
	if ec.Table != "" {
		m.TableName = ec.Table
	}
	for property, column := range ec.Columns {
		p, ok := m.Property(property)
		if !ok {
			return errors.Errorf("mapping: config renames unknown property %s.%s", m.EntityName, property)
		}
		m.Map(p.Name, column)
	}
	return nil
}

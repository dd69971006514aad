package config

import (
	"bytes"
	"encoding/json"
	"io"
	"reflect"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"github.com/fieldbot/drivecore/services/drive"
	"github.com/fieldbot/drivecore/utils"
)

// Read reads, expands and validates the config file at filePath. ${VAR} references are replaced
// with environment values before parsing.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, utils.WrapConfigurationError(err, "reading config %s", filePath)
	}
	cfg, err := FromReader(bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = filePath
	return cfg, nil
}

// FromReader parses and validates a JSON config. Absent optional fields take their defaults and
// unknown fields are rejected.
func FromReader(r io.Reader) (*Config, error) {
	var attrs map[string]interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, utils.WrapConfigurationError(err, "parsing config")
	}

	cfg := Default()
	if err := decode(attrs, &cfg); err != nil {
		return nil, utils.WrapConfigurationError(err, "decoding config")
	}
	if err := cfg.Validate("config"); err != nil {
		return nil, utils.WrapConfigurationError(err, "invalid config")
	}
	return &cfg, nil
}

func decode(attrs map[string]interface{}, to *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      to,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.DecodeHookFuncType(driveTypeHook),
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return errors.Wrap(err, "error creating decoder for config")
	}
	return decoder.Decode(attrs)
}

var driveTypeType = reflect.TypeOf(drive.Unknown)

// driveTypeHook accepts drive types by name only. Numbers decode as json.Number, which is also a
// string kind, so they reach ParseDriveType and are rejected there.
func driveTypeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if to != driveTypeType {
		return data, nil
	}
	if from.Kind() != reflect.String {
		return nil, errors.Errorf("drive type must be a name, got %v", data)
	}
	return drive.ParseDriveType(reflect.ValueOf(data).String())
}

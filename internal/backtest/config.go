package backtest

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/quant-backtest/pkg/errors"
)

type Config struct {
	Symbol              string                     `yaml:"symbol" json:"symbol" jsonschema:"title=Symbol,description=Ticker symbol to backtest" validate:"required"`
	InitialCapital      float64                    `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0" validate:"gt=0"`
	TradeNotional       float64                    `yaml:"trade_notional" json:"trade_notional" jsonschema:"title=Trade Notional,description=Dollar amount targeted per trade,minimum=0" validate:"gt=0"`
	ConfidenceThreshold float64                    `yaml:"confidence_threshold" json:"confidence_threshold" jsonschema:"title=Confidence Threshold,description=Minimum signal confidence required to trade,minimum=0,maximum=1" validate:"gt=0,lte=1"`
	StartTime           optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start time for the backtest period"`
	EndTime             optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end time for the backtest period"`
}

// UnmarshalYAML implements custom unmarshaling for Config
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		Symbol              string     `yaml:"symbol"`
		InitialCapital      float64    `yaml:"initial_capital"`
		TradeNotional       float64    `yaml:"trade_notional"`
		ConfidenceThreshold float64    `yaml:"confidence_threshold"`
		StartTime           *time.Time `yaml:"start_time"`
		EndTime             *time.Time `yaml:"end_time"`
	}

	var config plainConfig
	if err := unmarshal(&config); err != nil {
		return err
	}

	c.Symbol = config.Symbol
	c.InitialCapital = config.InitialCapital
	c.TradeNotional = config.TradeNotional
	c.ConfidenceThreshold = config.ConfidenceThreshold
	if config.StartTime != nil {
		c.StartTime = optional.Some(*config.StartTime)
	}
	if config.EndTime != nil {
		c.EndTime = optional.Some(*config.EndTime)
	}

	return nil
}

// Validate checks the config against its field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "invalid backtest config", err)
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}
			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-config"
	schema.Description = "Configuration schema for the backtest runner"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// DefaultConfig returns a Config with the standard run parameters.
func DefaultConfig() Config {
	return Config{
		Symbol:              "",
		InitialCapital:      100000,
		TradeNotional:       10000,
		ConfidenceThreshold: 0.65,
		StartTime:           optional.None[time.Time](),
		EndTime:             optional.None[time.Time](),
	}
}

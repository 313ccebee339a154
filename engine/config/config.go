// Package config loads the configuration of a locked token factory deployment from a YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/spf13/viper"

	"github.com/smartcontractkit/near-deployments-framework/chain/near"
	"github.com/smartcontractkit/near-deployments-framework/internal/pointer"
	"github.com/smartcontractkit/near-deployments-framework/lockedft"
)

// Transports a deployment can reach the node through.
const (
	TransportCLI = "cli"
	TransportRPC = "rpc"
)

// NetworkConfig selects the NEAR network and how it is reached.
//
// WARNING: CredentialsDir points at private keys, do not log its content.
type NetworkConfig struct {
	NetworkID      string        `mapstructure:"network_id" yaml:"network_id"`                     // The NEAR network, e.g. testnet
	NodeURL        string        `mapstructure:"node_url" yaml:"node_url"`                         // The RPC endpoint of the node
	Transport      string        `mapstructure:"transport" yaml:"transport"`                       // "cli" shells out to near-cli, "rpc" signs locally
	CLIBinary      string        `mapstructure:"cli_binary" yaml:"cli_binary,omitempty"`           // The near-cli executable
	CredentialsDir string        `mapstructure:"credentials_dir" yaml:"credentials_dir,omitempty"` // The near-cli credentials directory, rpc transport only
	RetryAttempts  uint          `mapstructure:"retry_attempts" yaml:"retry_attempts,omitempty"`   // Transport level attempts of a JSON-RPC request
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout,omitempty"` // Timeout of a JSON-RPC request
	StepTimeout    time.Duration `mapstructure:"step_timeout" yaml:"step_timeout,omitempty"`       // Timeout of a deployment step
}

// MetadataConfig is the fungible token metadata sent to create_token.
type MetadataConfig struct {
	Spec      string `mapstructure:"spec" yaml:"spec"`
	Name      string `mapstructure:"name" yaml:"name"`
	Symbol    string `mapstructure:"symbol" yaml:"symbol"`
	Decimals  uint8  `mapstructure:"decimals" yaml:"decimals"`
	Icon      string `mapstructure:"icon" yaml:"icon,omitempty"`
	Reference string `mapstructure:"reference" yaml:"reference,omitempty"`
}

// TokenConfig is the token to whitelist and create.
type TokenConfig struct {
	TokenID                string         `mapstructure:"token_id" yaml:"token_id"`
	AssetID                string         `mapstructure:"asset_id" yaml:"asset_id,omitempty"`
	Title                  string         `mapstructure:"title" yaml:"title"`
	Decimals               uint8          `mapstructure:"decimals" yaml:"decimals"`         // Whitelisted decimals
	TargetPrice            string         `mapstructure:"target_price" yaml:"target_price"` // Unlock price scaled by 10^4
	Metadata               MetadataConfig `mapstructure:"metadata" yaml:"metadata"`
	BackupTriggerAccountID string         `mapstructure:"backup_trigger_account_id" yaml:"backup_trigger_account_id,omitempty"`
	PriceOracleAccountID   string         `mapstructure:"price_oracle_account_id" yaml:"price_oracle_account_id"`
}

// OracleConfig is the price oracle call closing the deployment.
type OracleConfig struct {
	ReceiverID string   `mapstructure:"receiver_id" yaml:"receiver_id,omitempty"`
	AssetIDs   []string `mapstructure:"asset_ids" yaml:"asset_ids,omitempty"`
	Msg        string   `mapstructure:"msg" yaml:"msg"`
	Deposit    string   `mapstructure:"deposit_yocto" yaml:"deposit_yocto"` // Attached yoctoNEAR
}

// DeploymentConfig holds the inputs of the deployment steps.
type DeploymentConfig struct {
	BaseAccountID         string       `mapstructure:"base_account_id" yaml:"base_account_id"`
	StorageDeposit        string       `mapstructure:"storage_deposit" yaml:"storage_deposit"`   // NEAR amount, e.g. "1"
	CreateTokenGas        string       `mapstructure:"create_token_gas" yaml:"create_token_gas"` // Raw gas or Tgas, e.g. "200Tgas"
	AllowDecimalsMismatch bool         `mapstructure:"allow_decimals_mismatch" yaml:"allow_decimals_mismatch,omitempty"`
	Token                 TokenConfig  `mapstructure:"token" yaml:"token"`
	Oracle                OracleConfig `mapstructure:"oracle" yaml:"oracle"`
}

// ReportsConfig selects where run records and operation reports are kept.
//
// WARNING: DatabaseURL may contain credentials and should not be logged.
type ReportsConfig struct {
	ArtifactsDir string `mapstructure:"artifacts_dir" yaml:"artifacts_dir"`
	DatabaseURL  string `mapstructure:"database_url" yaml:"database_url,omitempty"` // Secret: Postgres URL of the report store
}

// Config wraps the entire configuration of a deployment.
type Config struct {
	Network    NetworkConfig    `mapstructure:"network" yaml:"network"`
	Deployment DeploymentConfig `mapstructure:"deployment" yaml:"deployment"`
	Reports    ReportsConfig    `mapstructure:"reports" yaml:"reports"`
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	// A missing file falls back to the environment
	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// defaults are applied before the file and the environment.
var defaults = map[string]any{
	"network.network_id":              "testnet",
	"network.transport":               TransportCLI,
	"network.step_timeout":            5 * time.Minute,
	"deployment.storage_deposit":      "1",
	"deployment.create_token_gas":     lockedft.CreateTokenGas.String(),
	"deployment.token.metadata.spec":  near.FTMetadataSpec,
	"deployment.oracle.deposit_yocto": near.OneYocto.String(),
	"reports.artifacts_dir":           ".",
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return v
}

var (
	// envBindings maps a config key to the environment variables that can provide its value.
	//
	// The first element in the list is the preferred environment variable name, the second (if
	// present) is the name used by near-cli and older deployment scripts. Viper uses the first
	// one that is set.
	envBindings = map[string][]string{
		"network.network_id":                         {"NEAR_NETWORK_ID", "NEAR_ENV"},
		"network.node_url":                           {"NEAR_NODE_URL"},
		"network.transport":                          {"NEAR_TRANSPORT"},
		"network.cli_binary":                         {"NEAR_CLI_BINARY"},
		"network.credentials_dir":                    {"NEAR_CREDENTIALS_DIR"},
		"deployment.base_account_id":                 {"NEAR_BASE_ACCOUNT_ID", "CONTRACT_ID"},
		"deployment.storage_deposit":                 {"NEAR_STORAGE_DEPOSIT"},
		"deployment.create_token_gas":                {"NEAR_CREATE_TOKEN_GAS"},
		"deployment.token.backup_trigger_account_id": {"NEAR_BACKUP_TRIGGER_ACCOUNT_ID"},
		"deployment.token.price_oracle_account_id":   {"NEAR_PRICE_ORACLE_ACCOUNT_ID"},
		"reports.artifacts_dir":                      {"NEAR_ARTIFACTS_DIR"},
		"reports.database_url":                       {"NEAR_REPORTS_DATABASE_URL", "DATABASE_URL"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		// Prepend the config key to the env names
		inputs := slices.Insert(envs, 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks the network settings and the deployment plan.
func (c *Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return err
	}
	plan, err := c.Deployment.Plan()
	if err != nil {
		return err
	}

	return plan.Validate()
}

// Validate checks the network settings.
func (c NetworkConfig) Validate() error {
	if c.NetworkID == "" {
		return errors.New("network id is required")
	}

	switch c.Transport {
	case TransportCLI:
	case TransportRPC:
		if c.NodeURL == "" {
			return errors.New("node url is required for the rpc transport")
		}
	default:
		return fmt.Errorf("unknown transport %q, expected %q or %q", c.Transport, TransportCLI, TransportRPC)
	}

	return nil
}

// Plan converts the deployment inputs to a lockedft.Plan. Values are parsed but not validated,
// see lockedft.Plan.Validate.
func (c DeploymentConfig) Plan() (lockedft.Plan, error) {
	storageDeposit, err := near.ParseNEAR(c.StorageDeposit)
	if err != nil {
		return lockedft.Plan{}, fmt.Errorf("storage_deposit: %w", err)
	}

	var gas near.Gas
	if c.CreateTokenGas != "" {
		if gas, err = near.ParseGas(c.CreateTokenGas); err != nil {
			return lockedft.Plan{}, fmt.Errorf("create_token_gas: %w", err)
		}
	}

	var targetPrice near.U128
	if c.Token.TargetPrice != "" {
		if targetPrice, err = near.ParseU128(c.Token.TargetPrice); err != nil {
			return lockedft.Plan{}, fmt.Errorf("token.target_price: %w", err)
		}
	}

	var oracleDeposit *near.Balance
	if c.Oracle.Deposit != "" {
		deposit, err := near.ParseYocto(c.Oracle.Deposit)
		if err != nil {
			return lockedft.Plan{}, fmt.Errorf("oracle.deposit_yocto: %w", err)
		}
		oracleDeposit = pointer.To(deposit)
	}

	var trigger *string
	if c.Token.BackupTriggerAccountID != "" {
		trigger = pointer.To(c.Token.BackupTriggerAccountID)
	}

	return lockedft.Plan{
		BaseAccountID:  c.BaseAccountID,
		StorageDeposit: storageDeposit,
		Token: lockedft.Token{
			TokenID:                c.Token.TokenID,
			AssetID:                c.Token.AssetID,
			Title:                  c.Token.Title,
			Decimals:               c.Token.Decimals,
			TargetPrice:            targetPrice,
			Metadata:               c.Token.Metadata.metadata(),
			BackupTriggerAccountID: trigger,
			PriceOracleAccountID:   c.Token.PriceOracleAccountID,
		},
		CreateTokenGas: gas,
		Oracle: lockedft.OracleCall{
			ReceiverID: c.Oracle.ReceiverID,
			AssetIDs:   c.Oracle.AssetIDs,
			Msg:        c.Oracle.Msg,
			Deposit:    oracleDeposit,
		},
		AllowDecimalsMismatch: c.AllowDecimalsMismatch,
	}, nil
}

func (m MetadataConfig) metadata() near.FungibleTokenMetadata {
	meta := near.FungibleTokenMetadata{
		Spec:     m.Spec,
		Name:     m.Name,
		Symbol:   m.Symbol,
		Decimals: m.Decimals,
	}
	if m.Icon != "" {
		meta.Icon = pointer.To(m.Icon)
	}
	if m.Reference != "" {
		meta.Reference = pointer.To(m.Reference)
	}

	return meta
}

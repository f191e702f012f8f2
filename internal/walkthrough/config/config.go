package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath = "./config/config.walkthrough.yaml"
	EnvPrefix         = "OCEANDF"
	MaxAllocation     = 10000
	MaxLockWeeks      = 208
)

// Config 定义整个配置的结构
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Network  NetworkConfig  `mapstructure:"network"`
	Provider ProviderConfig `mapstructure:"provider"`
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Faucet   FaucetConfig   `mapstructure:"faucet"`
	Farming  FarmingConfig  `mapstructure:"farming"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
}

// LogConfig Log 日志配置
type LogConfig struct {
	Level   string `mapstructure:"level"`
	Dir     string `mapstructure:"dir"`
	Console bool   `mapstructure:"console"`
}

// NetworkConfig 链与合约地址
type NetworkConfig struct {
	Name        string `mapstructure:"name"`
	RPCURL      string `mapstructure:"rpc_url"`
	AddressFile string `mapstructure:"address_file"`
	TxTimeout   int    `mapstructure:"tx_timeout"` // 秒
}

// ProviderConfig Ocean Provider
type ProviderConfig struct {
	URL        string `mapstructure:"url"`
	Timeout    int    `mapstructure:"timeout"` // 秒
	RateLimit  int    `mapstructure:"rate_limit"`
	MaxRetries int    `mapstructure:"max_retries"`
}

// WalletConfig 私钥均从环境变量读取
type WalletConfig struct {
	PrivateKeyEnv  string   `mapstructure:"private_key_env"`
	DeployerKeyEnv string   `mapstructure:"deployer_key_env"`
	DeployerKey    string   `mapstructure:"deployer_key"` // 环境变量为空时使用（barge 公开的部署者私钥）
	FaucetKeyEnvs  []string `mapstructure:"faucet_key_envs"`
}

// FaucetConfig 测试币数量（OCEAN/ETH）
type FaucetConfig struct {
	MintAmount   float64 `mapstructure:"mint_amount"`
	WalletAmount float64 `mapstructure:"wallet_amount"`
	MinETH       float64 `mapstructure:"min_eth"`
	ETHAmount    float64 `mapstructure:"eth_amount"`
}

// FarmingConfig 演练参数
type FarmingConfig struct {
	LockAmount     float64 `mapstructure:"lock_amount"`
	LockWeeks      int     `mapstructure:"lock_weeks"`
	DatasetName    string  `mapstructure:"dataset_name"`
	DatasetURL     string  `mapstructure:"dataset_url"`
	DatatokenPrice float64 `mapstructure:"datatoken_price"`
	NumConsumes    int     `mapstructure:"num_consumes"`
	Allocation     int     `mapstructure:"allocation"`
}

// RedisConfig Redis 配置，address 为空则不启用
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PostgresConfig PostgreSQL 配置，dsn 为空则不启用
type PostgresConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// KafkaConfig brokers 为空则不启用
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	TopicTx string `mapstructure:"topic_tx"`
}

type MonitorConfig struct {
	Enable         bool   `mapstructure:"enable"`
	PrometheusAddr string `mapstructure:"prometheus_addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.console", true)

	v.SetDefault("network.name", "development")
	v.SetDefault("network.rpc_url", "http://localhost:8545")
	v.SetDefault("network.address_file", "~/.ocean/ocean-contracts/artifacts/address.json")
	v.SetDefault("network.tx_timeout", 60)

	v.SetDefault("provider.url", "http://localhost:8030")
	v.SetDefault("provider.timeout", 30)
	v.SetDefault("provider.rate_limit", 600)
	v.SetDefault("provider.max_retries", 2)

	v.SetDefault("wallet.private_key_env", "TEST_PRIVATE_KEY1")
	v.SetDefault("wallet.deployer_key_env", "FACTORY_DEPLOYER_PRIVATE_KEY")
	v.SetDefault("wallet.deployer_key", "0xc594c6e5def4bab63ac29eed19a134c130388f74f019bc74b8f4389df2837a58")
	v.SetDefault("wallet.faucet_key_envs", []string{"TEST_PRIVATE_KEY1", "TEST_PRIVATE_KEY2"})

	v.SetDefault("faucet.mint_amount", 20000.0)
	v.SetDefault("faucet.wallet_amount", 2000.0)
	v.SetDefault("faucet.min_eth", 2.0)
	v.SetDefault("faucet.eth_amount", 4.0)

	v.SetDefault("farming.lock_amount", 10.0)
	v.SetDefault("farming.lock_weeks", MaxLockWeeks)
	v.SetDefault("farming.dataset_name", "Branin dataset")
	v.SetDefault("farming.dataset_url", "https://raw.githubusercontent.com/trentmc/branin/main/branin.arff")
	v.SetDefault("farming.datatoken_price", 100.0)
	v.SetDefault("farming.num_consumes", 3)
	v.SetDefault("farming.allocation", MaxAllocation)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_idle_conns", 2)
	v.SetDefault("postgres.max_open_conns", 4)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic_tx", "ocean_df_tx")
	v.SetDefault("monitor.enable", false)
	v.SetDefault("monitor.prometheus_addr", ":9464")
}

// InitConfig 读取 .env、配置文件与 OCEANDF_ 前缀的环境变量；path 为空时使用默认路径且允许文件不存在
func InitConfig(path string) (Config, error) {
	var config Config

	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	optional := path == ""
	if optional {
		path = DefaultConfigPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !optional || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return config, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := mapstructure.WeakDecode(v.AllSettings(), &config); err != nil {
		return config, fmt.Errorf("decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Validate 参数范围检查
func (c Config) Validate() error {
	f := c.Farming
	switch {
	case f.Allocation < 1 || f.Allocation > MaxAllocation:
		return fmt.Errorf("farming.allocation must be in 1..%d, got %d", MaxAllocation, f.Allocation)
	case f.NumConsumes < 1:
		return fmt.Errorf("farming.num_consumes must be >= 1, got %d", f.NumConsumes)
	case f.LockAmount <= 0:
		return fmt.Errorf("farming.lock_amount must be > 0")
	case f.DatatokenPrice <= 0:
		return fmt.Errorf("farming.datatoken_price must be > 0")
	case f.LockWeeks < 1 || f.LockWeeks > MaxLockWeeks:
		return fmt.Errorf("farming.lock_weeks must be in 1..%d, got %d", MaxLockWeeks, f.LockWeeks)
	case c.Network.RPCURL == "":
		return fmt.Errorf("network.rpc_url is required")
	case c.Wallet.PrivateKeyEnv == "":
		return fmt.Errorf("wallet.private_key_env is required")
	}
	return nil
}

func (c NetworkConfig) TxTimeoutDuration() time.Duration {
	return time.Duration(c.TxTimeout) * time.Second
}

func (c ProviderConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

package config

import (
	"github.com/natar10/uva-ong-block/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Task     TaskConfig     `mapstructure:"task"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 链配置
type ChainConfig struct {
	ChainId        int64  `mapstructure:"chain_id"`        // 链ID
	RpcUrl         string `mapstructure:"rpc_url"`         // RPC节点URL
	ContractAddr   string `mapstructure:"contract_addr"`   // 捐赠合约地址
	KeystoreDir    string `mapstructure:"keystore_dir"`    // 钱包keystore目录
	Passphrase     string `mapstructure:"passphrase"`      // keystore解锁口令
	Confirmations  int    `mapstructure:"confirmations"`   // 确认区块数
	ConfirmTimeout int    `mapstructure:"confirm_timeout"` // 确认等待超时（秒）
	StartBlock     int64  `mapstructure:"start_block"`     // 合约部署区块号
}

// CacheConfig 读缓存新鲜度窗口配置（秒）
type CacheConfig struct {
	ProjectWindow  int `mapstructure:"project_window"`  // 项目列表
	DonorWindow    int `mapstructure:"donor_window"`    // 捐赠者
	PurchaseWindow int `mapstructure:"purchase_window"` // 采购记录
	MaterialWindow int `mapstructure:"material_window"` // 物料目录
	BalanceWindow  int `mapstructure:"balance_window"`  // 治理代币余额
	RetryAttempts  int `mapstructure:"retry_attempts"`  // 读取重试次数
}

type TaskConfig struct {
	Interval int `mapstructure:"interval"` // 秒
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, stderr, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/ong-block")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "ong_donations")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.chain_id", 1337)
	viper.SetDefault("chain.confirmations", 1)
	viper.SetDefault("chain.confirm_timeout", 120)
	viper.SetDefault("chain.start_block", 0)
	viper.SetDefault("cache.project_window", 300)
	viper.SetDefault("cache.donor_window", 120)
	viper.SetDefault("cache.purchase_window", 120)
	viper.SetDefault("cache.material_window", 1800)
	viper.SetDefault("cache.balance_window", 30)
	viper.SetDefault("cache.retry_attempts", 3)
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}

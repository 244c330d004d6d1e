package config

import (
	"os"
	"time"

	"github.com/go-yaml/yaml"

	"github.com/banibsnetworks-source/banibs-production-sub001/internal/domain"
)

type Config struct {
	NodeInfo NodeInfo `yaml:"nodeInfo"`
	Server   Server   `yaml:"server"`
	Engine   Engine   `yaml:"engine"`
}

type NodeInfo struct {
	FQDN string `yaml:"fqdn"`
}

type Server struct {
	PostgresDsn      string `yaml:"postgresDsn"`
	RedisAddr        string `yaml:"redisAddr"`
	RedisDB          int    `yaml:"redisDB"`
	MemcachedAddr    string `yaml:"memcachedAddr"`
	EnableTrace      bool   `yaml:"enableTrace"`
	TraceEndpoint    string `yaml:"traceEndpoint"`
	DeliveryEndpoint string `yaml:"deliveryEndpoint"`
}

type Engine struct {
	TraversalFanoutCap int `yaml:"traversalFanoutCap"`
	AnomalyThreshold   int `yaml:"anomalyThreshold"`
	DrainBatchSize     int `yaml:"drainBatchSize"`
	DigestHourUTC      int `yaml:"digestHourUTC"`
	RefreshParallelism int `yaml:"refreshParallelism"`
	DrainIntervalSec   int `yaml:"drainIntervalSec"`
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if config.Engine.TraversalFanoutCap == 0 {
		config.Engine.TraversalFanoutCap = 100
	}
	if config.Engine.AnomalyThreshold == 0 {
		config.Engine.AnomalyThreshold = 2
	}
	if config.Engine.DrainBatchSize == 0 {
		config.Engine.DrainBatchSize = 200
	}
	if config.Engine.DigestHourUTC == 0 {
		config.Engine.DigestHourUTC = 9
	}
	if config.Engine.RefreshParallelism == 0 {
		config.Engine.RefreshParallelism = 8
	}
	if config.Engine.DrainIntervalSec == 0 {
		config.Engine.DrainIntervalSec = 30
	}

	return config, nil
}

// Domain converts the loaded file into the runtime configuration the
// usecases consume.
func (c Config) Domain() domain.Config {
	return domain.Config{
		FQDN:               c.NodeInfo.FQDN,
		TraversalFanoutCap: c.Engine.TraversalFanoutCap,
		AnomalyThreshold:   c.Engine.AnomalyThreshold,
		DrainBatchSize:     c.Engine.DrainBatchSize,
		DigestHourUTC:      c.Engine.DigestHourUTC,
		RefreshParallelism: c.Engine.RefreshParallelism,
		DrainInterval:      time.Duration(c.Engine.DrainIntervalSec) * time.Second,
	}
}

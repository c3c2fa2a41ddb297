package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SinkInfluxDB = "influxdb"
	SinkFile     = "file"

	// ListenAddr is fixed; the sensor firmware only knows how to talk to port 80.
	ListenAddr = ":80"
)

// Config holds the application's configuration.
type Config struct {
	InfluxDBHost   string        `yaml:"influxdb_host"`
	InfluxDBOrg    string        `yaml:"influxdb_org"`
	InfluxDBToken  string        `yaml:"influxdb_token"`
	InfluxDBBucket string        `yaml:"influxdb_bucket"`
	Measurement    string        `yaml:"measurement"`
	Location       string        `yaml:"location"`
	Sink           string        `yaml:"sink"`
	FilePath       string        `yaml:"file"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MetricsAddr    string        `yaml:"metrics_addr"`
	AccessLog      string        `yaml:"access_log"`
	KeepAlive      bool          `yaml:"keep_alive"`
	ListenAddr     string        `yaml:"-"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() Config {
	return Config{
		Measurement:  "sievert",
		Location:     "home",
		Sink:         SinkInfluxDB,
		FilePath:     "radiation.csv",
		WriteTimeout: 10 * time.Second,
		ListenAddr:   ListenAddr,
	}
}

type flagValues struct {
	host, org, token, bucket string
	sink, file, configPath   string
	metricsAddr              string
	writeTimeout             time.Duration
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// the environment (.env included) and finally the command line.
func LoadConfig(args []string) (Config, error) {
	var fv flagValues
	fs := flag.NewFlagSet("radmon", flag.ContinueOnError)
	fs.StringVar(&fv.host, "influxdb-host", "", "The url of the influxdb server")
	fs.StringVar(&fv.host, "h", "", "The url of the influxdb server (shorthand)")
	fs.StringVar(&fv.org, "influxdb-org", "", "The influxdb organization")
	fs.StringVar(&fv.org, "o", "", "The influxdb organization (shorthand)")
	fs.StringVar(&fv.token, "influxdb-token", "", "The influxdb token")
	fs.StringVar(&fv.token, "t", "", "The influxdb token (shorthand)")
	fs.StringVar(&fv.bucket, "influxdb-bucket", "", "The influxdb bucket")
	fs.StringVar(&fv.bucket, "b", "", "The influxdb bucket (shorthand)")
	fs.StringVar(&fv.sink, "sink", "", "Storage sink: influxdb or file")
	fs.StringVar(&fv.file, "file", "", "Output file for the file sink")
	fs.StringVar(&fv.configPath, "config", "", "Optional YAML configuration file")
	fs.StringVar(&fv.metricsAddr, "metrics-addr", "", "Address for the Prometheus metrics listener")
	fs.DurationVar(&fv.writeTimeout, "write-timeout", 0, "Upper bound for a single sink write")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}

	cfg := Default()

	configPath := fv.configPath
	if configPath == "" {
		configPath = os.Getenv("RADMON_CONFIG")
	}
	if configPath != "" {
		if err := cfg.loadYAML(configPath); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "influxdb-host", "h":
			cfg.InfluxDBHost = fv.host
		case "influxdb-org", "o":
			cfg.InfluxDBOrg = fv.org
		case "influxdb-token", "t":
			cfg.InfluxDBToken = fv.token
		case "influxdb-bucket", "b":
			cfg.InfluxDBBucket = fv.bucket
		case "sink":
			cfg.Sink = fv.sink
		case "file":
			cfg.FilePath = fv.file
		case "metrics-addr":
			cfg.MetricsAddr = fv.metricsAddr
		case "write-timeout":
			cfg.WriteTimeout = fv.writeTimeout
		}
	})

	cfg.Sink = strings.ToLower(strings.TrimSpace(cfg.Sink))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString(&c.InfluxDBHost, "INFLUXDB_HOST")
	setString(&c.InfluxDBOrg, "INFLUXDB_ORG")
	setString(&c.InfluxDBToken, "INFLUXDB_TOKEN")
	setString(&c.InfluxDBBucket, "INFLUXDB_BUCKET")
	setString(&c.Sink, "RADMON_SINK")
	setString(&c.FilePath, "RADMON_FILE")
	setString(&c.MetricsAddr, "RADMON_METRICS_ADDR")
	setString(&c.AccessLog, "RADMON_ACCESS_LOG")

	if v := os.Getenv("RADMON_WRITE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid RADMON_WRITE_TIMEOUT %q: %w", v, err)
		}
		c.WriteTimeout = d
	}
	return nil
}

// Validate checks that the selected sink has everything it needs.
func (c Config) Validate() error {
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %s", c.WriteTimeout)
	}
	switch c.Sink {
	case SinkInfluxDB:
		var missing []string
		if c.InfluxDBHost == "" {
			missing = append(missing, "influxdb-host")
		}
		if c.InfluxDBOrg == "" {
			missing = append(missing, "influxdb-org")
		}
		if c.InfluxDBToken == "" {
			missing = append(missing, "influxdb-token")
		}
		if c.InfluxDBBucket == "" {
			missing = append(missing, "influxdb-bucket")
		}
		if len(missing) > 0 {
			return fmt.Errorf("InfluxDB configuration is incomplete, missing: %s", strings.Join(missing, ", "))
		}
	case SinkFile:
		if c.FilePath == "" {
			return fmt.Errorf("file sink requires a file path")
		}
	default:
		return fmt.Errorf("unknown sink %q (want %s or %s)", c.Sink, SinkInfluxDB, SinkFile)
	}
	return nil
}

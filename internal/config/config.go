package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Zaken       ZgwServiceConfig  `mapstructure:"zaken"`
	Catalogi    ZgwServiceConfig  `mapstructure:"catalogi"`
	OpenKlant   OpenKlantConfig   `mapstructure:"openklant"`
	Submissions SubmissionsConfig `mapstructure:"submissions"`
	Registratie RegistratieConfig `mapstructure:"registratie"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
	// APIKey authenticates inbound webhook calls (x-api-key header).
	APIKey string `mapstructure:"api_key"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	Topic           string   `mapstructure:"topic"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id"`
}

// ZgwServiceConfig holds the connection settings for a ZGW-family service
// authenticated with short-lived HS256 client tokens.
type ZgwServiceConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// OpenKlantConfig holds the klantregistratie connection settings. OpenKlant
// uses a static token, not the ZGW JWT scheme.
type OpenKlantConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

type SubmissionsConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// RegistratieConfig drives the registration pipeline behavior.
type RegistratieConfig struct {
	// Strategie selects the registration variant. One of: contact-per-rol,
	// contact-per-rol-dry-run, partij-per-identiteit,
	// contact-per-rol-met-formulier.
	Strategie string `mapstructure:"strategie"`
	// ZakenRoot is the URL prefix a notification's hoofdObject must match.
	ZakenRoot string `mapstructure:"zaken_root"`
	// RolTypen is the whitelist of roltype omschrijvingGeneriek values to
	// register (e.g. initiator, mede_initiator).
	RolTypen []string `mapstructure:"rol_typen"`
	// Catalogi restricts registration to roltypen from these catalogus URLs.
	// Empty means every catalogus is allowed.
	Catalogi []string `mapstructure:"catalogi"`
	// UpdateRol controls whether the partij reference is written back onto
	// the rol (the destructive delete+recreate protocol).
	UpdateRol bool `mapstructure:"update_rol"`
	// FormulierEigenschap is the zaak eigenschap holding the submission
	// reference used by the formulier strategy.
	FormulierEigenschap string `mapstructure:"formulier_eigenschap"`

	// The scan lists below are the form field names historically used by the
	// form templates. They are configuration, not code: new templates
	// introduce new names without a redeploy.
	VeldenEmail        []string `mapstructure:"velden_email"`
	VeldenTelefoon     []string `mapstructure:"velden_telefoon"`
	VeldenKanaalKeuze  []string `mapstructure:"velden_kanaal_keuze"`
	VeldenEmailAkkoord []string `mapstructure:"velden_email_akkoord"`
}

// Load reads configuration from environment variables and config files.
// Environment variables override file values. Prefix: KLANTSYNC_
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "klantsync")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "rol-notificaties")
	v.SetDefault("kafka.consumer_group_id", "klantsync-registratie")
	v.SetDefault("registratie.strategie", "contact-per-rol")
	v.SetDefault("registratie.rol_typen", []string{"initiator"})
	v.SetDefault("registratie.update_rol", true)
	v.SetDefault("registratie.formulier_eigenschap", "formulier_referentie")
	v.SetDefault("registratie.velden_email", []string{"emailadres", "eMailadres", "email"})
	v.SetDefault("registratie.velden_telefoon", []string{"telefoonnummer", "telefoon", "phoneNumber"})
	v.SetDefault("registratie.velden_kanaal_keuze", []string{
		"hoeWiltUOpDeHoogteGehoudenWorden",
		"hoeWiltUGeinformeerdWorden",
		"contactVoorkeur",
	})
	v.SetDefault("registratie.velden_email_akkoord", []string{
		"magWijUMailenOverDezeMelding",
		"mogenWijUMailen",
	})

	// Environment variables (e.g. DB_HOST -> database.host)
	v.SetEnvPrefix("KLANTSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also support simple env vars without prefix for Docker Compose convenience
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.api_key", "NOTIFICATIE_API_KEY")
	v.BindEnv("zaken.base_url", "ZAKEN_BASE_URL")
	v.BindEnv("zaken.client_id", "ZAKEN_CLIENT_ID")
	v.BindEnv("zaken.client_secret", "ZAKEN_CLIENT_SECRET")
	v.BindEnv("catalogi.base_url", "CATALOGI_BASE_URL")
	v.BindEnv("catalogi.client_id", "CATALOGI_CLIENT_ID")
	v.BindEnv("catalogi.client_secret", "CATALOGI_CLIENT_SECRET")
	v.BindEnv("openklant.base_url", "OPENKLANT_BASE_URL")
	v.BindEnv("openklant.token", "OPENKLANT_TOKEN")
	v.BindEnv("submissions.base_url", "SUBMISSIONS_BASE_URL")
	v.BindEnv("submissions.api_key", "SUBMISSIONS_API_KEY")

	// Try loading config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // Not required

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" dbname=" + d.Name +
		" user=" + d.User +
		" password=" + d.Password +
		" sslmode=disable"
}

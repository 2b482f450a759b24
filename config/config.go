package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// VistatsConfiguration holds everything the extractor needs, read once at
// process start and passed into constructors.
type VistatsConfiguration struct {
	Visiology  VisiologyConfiguration
	ClickHouse ClickHouseConfiguration

	// HashUsers replaces usernames with a SHA-256 digest in role rows.
	HashUsers bool

	// IsolateWorkspaceFailures skips a workspace whose sub-fetch fails
	// instead of aborting the whole flow. Off by default (fail-fast).
	IsolateWorkspaceFailures bool
}

type VisiologyConfiguration struct {
	URL      string
	Login    string
	Password string
}

type ClickHouseConfiguration struct {
	Host     string
	Port     int
	Database string
	Login    string
	Password string
}

// ProducerConfiguration is the subset the event producer binary needs.
type ProducerConfiguration struct {
	ClickHouse  ClickHouseConfiguration
	KafkaServer string
}

func LoadEnvConfig(configName string) VistatsConfiguration {
	loadDotenv(configName)

	return VistatsConfiguration{
		Visiology: VisiologyConfiguration{
			URL:      mustGetenv("VISIOLOGY_URL"),
			Login:    mustGetenv("VISIOLOGY_LOGIN"),
			Password: mustGetenv("VISIOLOGY_PASSWORD"),
		},
		ClickHouse:               loadClickHouse(),
		HashUsers:                os.Getenv("HASH_USERS") == "Y",
		IsolateWorkspaceFailures: os.Getenv("ISOLATE_WORKSPACE_FAILURES") == "Y",
	}
}

func LoadProducerEnvConfig(configName string) ProducerConfiguration {
	loadDotenv(configName)

	return ProducerConfiguration{
		ClickHouse:  loadClickHouse(),
		KafkaServer: mustGetenv("KAFKA_SERVER"),
	}
}

func loadClickHouse() ClickHouseConfiguration {
	port, err := strconv.Atoi(mustGetenv("CLICKHOUSE_PORT"))
	if err != nil {
		log.Fatalf("failed to parse CLICKHOUSE_PORT: %v", err)
	}

	return ClickHouseConfiguration{
		Host:     mustGetenv("CLICKHOUSE_HOST"),
		Port:     port,
		Database: mustGetenv("CLICKHOUSE_DATABASE"),
		Login:    mustGetenv("CLICKHOUSE_LOGIN"),
		Password: mustGetenv("CLICKHOUSE_PASSWORD"),
	}
}

func loadDotenv(configName string) {
	if _, err := os.Stat(configName); err == nil {
		if err := godotenv.Load(configName); err != nil {
			log.Fatalf("Error loading %s: %v", configName, err)
		}
	}
}

func mustGetenv(name string) string {
	value := os.Getenv(name)
	if value == "" {
		log.Fatalf("%s is not set", name)
	}
	return value
}

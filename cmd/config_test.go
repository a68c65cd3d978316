package cmd

import (
	"bytes"
	"strings"
	"testing"

	"db-sink/internal/dialect"
	"db-sink/internal/engine"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
databases:
  - name: local-mysql
    driver: mysql
    dsn: root:root@tcp(127.0.0.1:3306)/sink
    active: false
  - name: griddb
    driver: postgres
    dsn: postgres://localhost/sink
    url: jdbc:gs://239.0.0.1:41999/cluster
    active: true
dialect:
  quote_identifiers: always
sink:
  insert_mode: upsert
  auto_create: true
  batch_size: 50
tables:
  - name: order_items
    depends_on: [orders]
    fields:
      - {name: order_id, type: int64, key: true}
      - {name: line, type: int32, key: true}
      - {name: amount, logical: decimal, scale: 2}
  - name: orders
    fields:
      - {name: id, type: int64, key: true}
      - {name: placed, logical: timestamp}
      - {name: note, type: string, optional: true}
`

func loadSample(t *testing.T, yaml string) {
	t.Helper()
	viper.Reset()
	dbURL = ""
	t.Cleanup(viper.Reset)
	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(yaml)))
}

func TestGetActiveDBConfig(t *testing.T) {
	loadSample(t, sampleConfig)

	cfg, err := GetActiveDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "griddb", cfg.Name)
	assert.Equal(t, "jdbc:gs://239.0.0.1:41999/cluster", cfg.DialectURL())

	dbURL = "jdbc:oracle:thin:@db:1521/XE"
	defer func() { dbURL = "" }()
	cfg, err = GetActiveDBConfig()
	require.NoError(t, err)
	assert.Equal(t, "jdbc:oracle:thin:@db:1521/XE", cfg.DialectURL())
}

func TestGetActiveDBConfig_Errors(t *testing.T) {
	loadSample(t, `
databases:
  - {name: a, driver: mysql, dsn: x, active: true}
  - {name: b, driver: mysql, dsn: y, active: true}
`)
	_, err := GetActiveDBConfig()
	assert.ErrorContains(t, err, "multiple active")

	loadSample(t, `databases: [{name: a, driver: mysql, dsn: x}]`)
	_, err = GetActiveDBConfig()
	assert.ErrorContains(t, err, "no active database")
}

func TestDBConfig_DialectURLFromDriver(t *testing.T) {
	cfg := &DBConfig{Driver: "sqlserver"}
	d, err := dialect.NewDefaultRegistry(nil).Create(cfg.DialectURL(), dialect.Config{})
	require.NoError(t, err)
	assert.Equal(t, "SqlServer", d.Name())
}

func TestLoadSinkOptions(t *testing.T) {
	loadSample(t, sampleConfig)

	opts, err := LoadSinkOptions()
	require.NoError(t, err)
	assert.Equal(t, engine.Options{InsertMode: engine.InsertModeUpsert, AutoCreate: true, BatchSize: 50}, opts)

	loadSample(t, "sink: {insert_mode: merge}")
	_, err = LoadSinkOptions()
	assert.Error(t, err)
}

func TestLoadDialectConfig(t *testing.T) {
	loadSample(t, "dialect: {quote_identifiers: NEVER}")
	cfg, err := LoadDialectConfig()
	require.NoError(t, err)
	assert.Equal(t, dialect.QuoteNever, cfg.QuoteIdentifiers)

	loadSample(t, "log: {level: info}")
	cfg, err = LoadDialectConfig()
	require.NoError(t, err)
	assert.Equal(t, dialect.QuoteAlways, cfg.QuoteIdentifiers)
}

func TestLoadTables(t *testing.T) {
	loadSample(t, sampleConfig)

	tables, err := LoadTables(nil)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "orders", tables[0].Name)
	assert.Equal(t, "order_items", tables[1].Name)
	assert.Equal(t, []string{"orders"}, tables[1].DependsOn)
	assert.Equal(t, 2, tables[1].Fields[2].Scale)

	tables, err = LoadTables([]string{"ORDER_ITEMS"})
	require.NoError(t, err)
	require.Len(t, tables, 1)

	_, err = LoadTables([]string{"missing"})
	assert.Error(t, err)
}

func TestWritePlan(t *testing.T) {
	loadSample(t, sampleConfig)

	cfg, err := GetActiveDBConfig()
	require.NoError(t, err)
	d, err := ResolveDialect(cfg)
	require.NoError(t, err)
	tables, err := LoadTables([]string{"orders"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writePlan(&out, d, tables, engine.Options{InsertMode: engine.InsertModeUpsert}))

	plan := out.String()
	assert.Contains(t, plan, "Dialect: GridDB")
	assert.Contains(t, plan, "create: CREATE TABLE `orders`(`id` INTEGER NOT NULL,`placed` TIMESTAMP NOT NULL,`note` TEXT NULL,PRIMARY KEY(`id`))")
	assert.Contains(t, plan, "write:  INSERT INTO `orders`(`id`,`placed`,`note`) VALUES(?,?,?)")
	assert.Contains(t, plan, "delete: DELETE FROM `orders` WHERE `id` = ?")
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger("debug")
	assert.NoError(t, err)
	_, err = newLogger("chatty")
	assert.Error(t, err)
}

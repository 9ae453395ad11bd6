package datarecording

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// ClickHouseConfig tells where the ClickHouse server is.
type ClickHouseConfig struct {
	Host      string
	Port      int
	Database  string
	Username  string
	Password  string
	BatchSize int
}

// ClickHouseConfigFromEnv reads the server location from the
// CACHESIM_CLICKHOUSE_* environment variables.
func ClickHouseConfigFromEnv() (ClickHouseConfig, error) {
	c := ClickHouseConfig{
		Host:     os.Getenv("CACHESIM_CLICKHOUSE_HOST"),
		Database: os.Getenv("CACHESIM_CLICKHOUSE_DATABASE"),
		Username: os.Getenv("CACHESIM_CLICKHOUSE_USERNAME"),
		Password: os.Getenv("CACHESIM_CLICKHOUSE_PASSWORD"),
	}

	if c.Host == "" {
		c.Host = "127.0.0.1"
	}

	if c.Database == "" {
		c.Database = "default"
	}

	if c.Username == "" {
		c.Username = "default"
	}

	portString := os.Getenv("CACHESIM_CLICKHOUSE_PORT")
	if portString == "" {
		portString = "9000"
	}

	port, err := strconv.Atoi(portString)
	if err != nil {
		return c, fmt.Errorf("invalid CACHESIM_CLICKHOUSE_PORT %q: %w",
			portString, err)
	}

	c.Port = port

	return c, nil
}

type clickHouseTable struct {
	structType reflect.Type
	entries    []any
}

// clickHouseRecorder writes entries into ClickHouse tables in batches.
type clickHouseRecorder struct {
	conn      clickhouse.Conn
	mu        sync.Mutex
	batchSize int

	tables     map[string]*clickHouseTable
	tableOrder []string
	entryCount int
	closed     bool
}

// NewClickHouseRecorder connects to a ClickHouse server.
func NewClickHouseRecorder(c ClickHouseConfig) DataRecorder {
	if c.BatchSize == 0 {
		c.BatchSize = 100000
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", c.Host, c.Port)},
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.Username,
			Password: c.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	fmt.Fprintf(os.Stderr, "Recording into ClickHouse database %s at %s:%d\n",
		c.Database, c.Host, c.Port)

	r := &clickHouseRecorder{
		conn:      conn,
		batchSize: c.BatchSize,
		tables:    make(map[string]*clickHouseTable),
	}

	atexit.Register(func() { r.Flush() })

	return r
}

// clickHouseType maps a Go kind to the ClickHouse column type.
func clickHouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	case reflect.String:
		return "String"
	default:
		panic(fmt.Sprintf("kind %s cannot be recorded", kind))
	}
}

// createTableSQL builds the schema of a table from the exported fields of
// sampleEntry.
func createTableSQL(tableName string, sampleEntry any) string {
	columns := []string{}

	for _, f := range structs.Fields(sampleEntry) {
		if !f.IsExported() {
			continue
		}

		columns = append(columns, f.Name()+" "+clickHouseType(f.Kind()))
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) ENGINE = MergeTree()\n"+
			"ORDER BY tuple()",
		tableName, strings.Join(columns, ",\n\t"))
}

func (r *clickHouseRecorder) CreateTable(tableName string, sampleEntry any) {
	err := checkStructFields(sampleEntry)
	if err != nil {
		panic(err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	err = r.conn.Exec(context.Background(),
		createTableSQL(tableName, sampleEntry))
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	r.tables[tableName] = &clickHouseTable{
		structType: reflect.TypeOf(sampleEntry),
	}
	r.tableOrder = append(r.tableOrder, tableName)
}

func (r *clickHouseRecorder) InsertData(tableName string, entry any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	table, exists := r.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != table.structType {
		panic(fmt.Sprintf("entry of type %T does not fit table %s",
			entry, tableName))
	}

	table.entries = append(table.entries, entry)

	r.entryCount++
	if r.entryCount >= r.batchSize {
		r.flush()
	}
}

func (r *clickHouseRecorder) ListTables() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	tables := make([]string, len(r.tableOrder))
	copy(tables, r.tableOrder)

	return tables
}

func (r *clickHouseRecorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flush()
}

func (r *clickHouseRecorder) flush() {
	if r.entryCount == 0 || r.closed {
		return
	}

	ctx := context.Background()

	for _, tableName := range r.tableOrder {
		table := r.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		batch, err := r.conn.PrepareBatch(ctx,
			fmt.Sprintf("INSERT INTO %s", tableName))
		if err != nil {
			panic(fmt.Errorf("failed to prepare batch for %s: %w",
				tableName, err))
		}

		for _, entry := range table.entries {
			err = batch.Append(structs.Values(entry)...)
			if err != nil {
				panic(fmt.Errorf("failed to append to batch: %w", err))
			}
		}

		err = batch.Send()
		if err != nil {
			panic(fmt.Errorf("failed to send batch: %w", err))
		}

		table.entries = nil
	}

	r.entryCount = 0
}

func (r *clickHouseRecorder) Close() {
	r.Flush()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	r.closed = true

	err := r.conn.Close()
	if err != nil {
		panic(err)
	}
}

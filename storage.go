package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const tursoApi = "https://api.turso.tech"

// Storage publishes analysis outputs to a Turso database or a local sqlite
// file.
type Storage struct {
	OrgName   string
	GroupName string
	ApiToken  string
	AuthToken string
	ApiURL    string
}

func (s *Storage) CreateDatabase(name string) error {
	api := s.ApiURL
	if api == "" {
		api = tursoApi
	}
	endpoint := fmt.Sprintf("%v/v1/organizations/%v/databases", api, s.OrgName)
	req, err := http.NewRequest("POST", endpoint, bytes.NewReader([]byte(fmt.Sprintf(`{"name":"%v","group":"%v"}`, name, s.GroupName))))
	if err != nil {
		return err
	}
	req.Header.Add("Authorization", "Bearer "+s.ApiToken)
	req.Header.Add("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status code %v: %v", resp.StatusCode, string(body))
	}
	Logger.Infof("created database %v", name)
	return nil
}

func (s *Storage) DbURL(name string) string {
	return fmt.Sprintf("libsql://%v-%v.turso.io", name, s.OrgName)
}

// Connect opens libsql:// URLs through the libsql driver and anything else
// as a local sqlite file.
func (s *Storage) Connect(target string) (*sql.DB, error) {
	if strings.HasPrefix(target, "libsql://") {
		parsed, err := url.Parse(target)
		if err != nil {
			return nil, fmt.Errorf("invalid database url: %w", err)
		}
		if s.AuthToken != "" && parsed.Query().Get("authToken") == "" {
			query := parsed.Query()
			query.Set("authToken", s.AuthToken)
			parsed.RawQuery = query.Encode()
		}
		return sql.Open("libsql", parsed.String())
	}
	return sql.Open("sqlite", strings.TrimPrefix(target, "file:"))
}

func (s *Storage) InitResultsDb(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS parameters (
		run TEXT,
		name TEXT,
		value,
		PRIMARY KEY (run, name)
	)`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS measurements (
		run TEXT,
		analysis TEXT,
		name TEXT,
		measurement TEXT,
		value REAL,
		PRIMARY KEY (run, analysis, name, measurement)
	)`)
	if err != nil {
		return err
	}
	return nil
}

// StartRun registers a new run with its parameters and returns its id.
func (s *Storage) StartRun(db *sql.DB, meta map[string]any) (string, error) {
	run := uuid.NewString()
	parameters := make([]any, 0, 3*(len(meta)+1))
	parameters = append(parameters, run, "time", time.Now().Format("2006-01-02 15:04:05"))
	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		parameters = append(parameters, run, key, fmt.Sprintf("%v", meta[key]))
	}
	placeholders := strings.Join(slices.Repeat([]string{"(?, ?, ?)"}, len(parameters)/3), ", ")
	_, err := db.Exec(
		fmt.Sprintf("INSERT INTO parameters VALUES %v ON CONFLICT DO NOTHING", placeholders),
		parameters...,
	)
	if err != nil {
		return "", err
	}
	Logger.Infof("started run %v with meta %v", run, meta)
	return run, nil
}

func (s *Storage) Parameters(db *sql.DB, run string) (map[string]string, error) {
	rows, err := db.Query("SELECT name, value FROM parameters WHERE run = ?", run)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make(map[string]string, 0)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		results[name] = value
	}
	return results, rows.Err()
}

func (s *Storage) UpdateMeasurementsDb(db *sql.DB, run string, analysis string, measurements []Measurement) error {
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, m := range measurements {
		_, err = tx.Exec(
			`INSERT INTO measurements VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (run, analysis, name, measurement) DO UPDATE SET value = excluded.value`,
			run,
			analysis,
			m.Name,
			m.Measurement,
			m.Value,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Storage) Measurements(db *sql.DB, run string, analysis string) ([]Measurement, error) {
	rows, err := db.Query(
		"SELECT name, measurement, value FROM measurements WHERE run = ? AND analysis = ? ORDER BY name, measurement",
		run,
		analysis,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := make([]Measurement, 0)
	for rows.Next() {
		var m Measurement
		if err := rows.Scan(&m.Name, &m.Measurement, &m.Value); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Publisher is the Sink that writes into a results database.
type Publisher struct {
	storage *Storage
	db      *sql.DB
	run     string
}

func (p *Publisher) Run() string { return p.run }

func (p *Publisher) Record(analysis string, measurements []Measurement) error {
	if err := p.storage.UpdateMeasurementsDb(p.db, p.run, analysis, measurements); err != nil {
		return fmt.Errorf("failed to publish %v results: %w", analysis, err)
	}
	Logger.Infof("published %v %v measurements to run %v", len(measurements), analysis, p.run)
	return nil
}

func (p *Publisher) Close() error { return p.db.Close() }

// OpenPublisher connects, prepares the schema and starts a run recording
// the command and host information.
func (s *Storage) OpenPublisher(target string, meta map[string]any) (*Publisher, error) {
	db, err := s.Connect(target)
	if err != nil {
		return nil, fmt.Errorf("failed to open results db: %w", err)
	}
	if err := s.InitResultsDb(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize results db: %w", err)
	}
	run, err := s.StartRun(db, meta)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return &Publisher{storage: s, db: db, run: run}, nil
}

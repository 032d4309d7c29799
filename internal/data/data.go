package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/theialabs/theia-relay/feishu"
	"github.com/theialabs/theia-relay/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Repositories contains all repositories
type Repositories struct {
	Message    repo.MessageRepo
	Status     repo.StatusRepo
	Preference repo.PreferenceRepo
	Draft      repo.DraftRepo
	RelayLog   repo.RelayLogRepo
	Generator  repo.GeneratorRepo // nil when no provider is configured

	db *sql.DB
}

// NewRepositories creates all repositories over a shared SQLite database
func NewRepositories(
	feishuClient *feishu.Client,
	dbPath string,
	openaiAPIKey, openaiBaseURL, openaiModel string,
) (*Repositories, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	statusRepo, err := NewStatusRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	prefRepo, err := NewPreferenceRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	draftRepo, err := NewDraftRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logRepo, err := NewRelayLogRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Message:    NewFeishuRepo(feishuClient),
		Status:     statusRepo,
		Preference: prefRepo,
		Draft:      draftRepo,
		RelayLog:   logRepo,
		Generator:  NewOpenAIRepo(openaiAPIKey, openaiBaseURL, openaiModel),
		db:         db,
	}, nil
}

// Close closes the shared database connection
func (r *Repositories) Close() error {
	return r.db.Close()
}

func openDB(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

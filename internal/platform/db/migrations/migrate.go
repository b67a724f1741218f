package migrations

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Action はマイグレーション操作の種類です。
type Action string

const (
	ActionUp      Action = "up"
	ActionDown    Action = "down"
	ActionDrop    Action = "drop"
	ActionVersion Action = "version"
)

// Status は適用済みマイグレーションのバージョンを表します。
type Status struct {
	Version uint
	Dirty   bool
	Applied bool
}

// ParseAction は文字列を Action に変換します。
func ParseAction(raw string) (Action, error) {
	switch a := Action(raw); a {
	case ActionUp, ActionDown, ActionDrop, ActionVersion:
		return a, nil
	case "":
		return ActionUp, nil
	default:
		return "", fmt.Errorf("migrations: unsupported action %q", raw)
	}
}

// SourceURL はディレクトリを golang-migrate の file ソース URL に変換します。
func SourceURL(dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("migrations: resolve path for %s: %w", dir, err)
	}
	return "file://" + filepath.ToSlash(absDir), nil
}

// Run は dir のマイグレーションを dsn のデータベースに対して実行し、実行後のバージョンを返します。
func Run(action Action, dir, dsn string) (Status, error) {
	source, err := SourceURL(dir)
	if err != nil {
		return Status{}, err
	}

	m, err := migrate.New(source, dsn)
	if err != nil {
		return Status{}, fmt.Errorf("migrations: create migrate instance: %w", err)
	}
	defer m.Close()

	switch action {
	case ActionUp:
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return Status{}, fmt.Errorf("migrations: up: %w", err)
		}
	case ActionDown:
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return Status{}, fmt.Errorf("migrations: down: %w", err)
		}
	case ActionDrop:
		if err := m.Drop(); err != nil {
			return Status{}, fmt.Errorf("migrations: drop: %w", err)
		}
		return Status{}, nil
	case ActionVersion:
	default:
		return Status{}, fmt.Errorf("migrations: unsupported action %q", action)
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return Status{}, nil
		}
		return Status{}, fmt.Errorf("migrations: version: %w", err)
	}
	return Status{Version: version, Dirty: dirty, Applied: true}, nil
}

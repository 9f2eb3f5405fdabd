package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/finvault/datafence/internal/configstore"
)

// defaultDBPath resolves the governance database path: the --db flag
// when set, then DATAFENCE_DB, then a local file.
func defaultDBPath(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv("DATAFENCE_DB"); v != "" {
		return v
	}
	return "datafence.db"
}

// openStore opens the config store at the governance database and seeds
// missing defaults so fresh databases behave like the gateway's.
func openStore(dbPath string) (*configstore.SQLiteStore, error) {
	store, err := configstore.OpenSQLite(defaultDBPath(dbPath))
	if err != nil {
		return nil, err
	}
	if err := configstore.Seed(store); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// parseIDList parses "1,2,3" into ids.
func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid asset id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

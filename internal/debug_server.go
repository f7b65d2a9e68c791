package internal

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"safe-space/infrastructure/storage"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

const maxInspectRows = 500

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix    string
	Prefixes  []string
	Items     []InspectRow
	Truncated bool
	Stats     map[string]any
}

// NewInspector serves a read-only HTML view of the keys under ?prefix=.
// Only known key spaces can be browsed.
func NewInspector(db *badger.DB, mapper RowMapper, statsProvider StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	if mapper == nil {
		mapper = DefaultMapper
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if !slices.Contains(storage.Prefixes, prefix) {
			prefix = storage.Prefixes[0]
		}
		data := PageData{Prefix: prefix, Prefixes: storage.Prefixes, Stats: map[string]any{}}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		err := db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix), PrefetchValues: true, PrefetchSize: 100})
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				if len(data.Items) == maxInspectRows {
					data.Truncated = true
					return nil
				}
				item := it.Item()
				if err := item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.KeyCopy(nil)), val))
					return nil
				}); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})
}

// StartDebugServer exposes the inspector on localhost only. The returned
// server is already listening; the caller shuts it down.
func StartDebugServer(log *slog.Logger, db *badger.DB, addr, endpoint string, mapper RowMapper, statsProvider StatsProvider) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(endpoint, NewInspector(db, mapper, statsProvider))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("Debug inspector listening", "address", addr, "endpoint", endpoint)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Debug inspector stopped", "error", err)
		}
	}()
	return server
}

// DefaultMapper renders a record through storage.Describe.
func DefaultMapper(key string, val []byte) InspectRow {
	record := storage.Describe(key, val)
	row := InspectRow{
		Key:       record.Key,
		Type:      record.Kind,
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Detail:    record.Detail,
	}
	if !record.At.IsZero() {
		row.Timestamp = record.At.Format(time.DateTime)
	}
	if record.EntityID != "" {
		row.EntityID = record.EntityID
		if len(row.EntityID) > 8 {
			row.EntityID = row.EntityID[:8]
		}
	}
	return row
}

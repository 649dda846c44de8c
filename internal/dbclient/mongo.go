package dbclient

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"assetdash/internal/domain"
	"assetdash/internal/etl"
)

// mongoWriter writes each table as a collection of documents.
type mongoWriter struct {
	client *mongo.Client
	dbName string
	logger *slog.Logger
}

var _ etl.Destination = (*mongoWriter)(nil)

func newMongoWriter(t domain.ExportTarget, logger *slog.Logger) (*mongoWriter, error) {
	uri, dbName := buildMongoURI(t)

	// Mask password in URI for logging
	logURI := uri
	if t.Password != "" {
		logURI = strings.ReplaceAll(logURI, t.Password, "***")
	}
	logger.Debug("dbclient: connecting mongo", "uri", logURI, "database", dbName)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &mongoWriter{client: client, dbName: dbName, logger: logger}, nil
}

// buildMongoURI returns the connection URI and database name for t. A Host
// that is already a mongodb:// or mongodb+srv:// URI is used as is, with
// <password> placeholders filled in.
func buildMongoURI(t domain.ExportTarget) (uri, dbName string) {
	dbName = t.Database
	if dbName == "" {
		dbName = "assetdash"
	}

	if strings.HasPrefix(t.Host, "mongodb+srv://") || strings.HasPrefix(t.Host, "mongodb://") {
		uri = t.Host
		if t.Password != "" {
			uri = strings.ReplaceAll(uri, "<password>", t.Password)
			uri = strings.ReplaceAll(uri, "<db_password>", t.Password)
		}
		return uri, dbName
	}

	port := t.Port
	if port == 0 {
		port = 27017
	}
	if t.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d", t.Username, t.Password, t.Host, port), dbName
	}
	return fmt.Sprintf("mongodb://%s:%d", t.Host, port), dbName
}

// Write inserts one document per row into the collection target. Replace
// drops the collection first.
func (m *mongoWriter) Write(ctx context.Context, target string, schema *etl.Schema, t *etl.Table, mode etl.SyncMode) (int, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	coll := m.client.Database(m.dbName).Collection(target)
	if mode == etl.SyncReplace {
		if err := coll.Drop(ctx); err != nil {
			return 0, fmt.Errorf("drop %s: %w", target, err)
		}
	}

	docs := rowDocuments(t, schema.FieldNames())
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("insert %s: %w", target, err)
	}
	m.logger.Debug("dbclient: wrote collection", "collection", target, "documents", len(docs))
	return len(docs), nil
}

// rowDocuments converts rows to documents with fields in column order.
// Absent cells are left out rather than stored as null.
func rowDocuments(t *etl.Table, names []string) []any {
	docs := make([]any, 0, t.Len())
	for _, row := range t.Rows {
		doc := make(bson.D, 0, len(row))
		for _, n := range names {
			if v, ok := row[n]; ok {
				doc = append(doc, bson.E{Key: n, Value: v.Any()})
			}
		}
		docs = append(docs, doc)
	}
	return docs
}

func (m *mongoWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

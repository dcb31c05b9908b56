package db

import (
	"context"
	"testing"

	"github.com/angelmondragon/shipcalc-backend/pkg/config"
	"github.com/angelmondragon/shipcalc-backend/pkg/db/models"
	"github.com/google/uuid"
)

func sqliteConfig() config.DBConfig {
	return config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file::memory:?cache=shared",
	}
}

func TestNewRequiresDSN(t *testing.T) {
	if _, err := New(context.Background(), config.DBConfig{}, nil); err == nil {
		t.Fatal("expected error without DSN")
	}
}

func TestNewSQLitePingAndClose(t *testing.T) {
	client, err := New(context.Background(), sqliteConfig(), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected sqlite pool of 1, got %d", got)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail after close")
	}
}

func TestModelsRoundTripOnSQLite(t *testing.T) {
	client, err := New(context.Background(), config.DBConfig{
		Driver: config.DBDriverSQLite,
		DSN:    "file:models_roundtrip?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	conn := client.DB()
	if err := conn.Exec(`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '{}',
		image_url TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error; err != nil {
		t.Fatalf("create products: %v", err)
	}

	product := models.Product{ID: uuid.New(), Name: "Sofa", Tags: []string{"149.00 Gabaryt", "hurtownia:A"}}
	if err := conn.Create(&product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	var loaded models.Product
	if err := conn.First(&loaded, "id = ?", product.ID).Error; err != nil {
		t.Fatalf("load product: %v", err)
	}
	if len(loaded.Tags) != 2 || loaded.Tags[0] != "149.00 Gabaryt" || loaded.Tags[1] != "hurtownia:A" {
		t.Fatalf("expected ordered tags, got %v", loaded.Tags)
	}
}

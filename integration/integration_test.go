//go:build integration

// Integration tests run against a live Secret Service daemon (GNOME
// Keyring or KWallet) on the session bus. Tests that would open a
// prompt are skipped on headless CI.
package integration

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"

	secretservice "github.com/dbus-secretservice/client-go"
)

func TestMain(m *testing.M) {
	// Load .env file if it exists (won't error if missing)
	if err := godotenv.Load("../.env"); err != nil {
		os.Stderr.WriteString("Note: .env file not found at project root\n")
	}

	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		os.Stderr.WriteString("Skipping integration tests: no session bus\n")
		os.Exit(0)
	}

	os.Exit(m.Run())
}

// headless reports whether prompting tests must be skipped.
func headless() bool {
	return os.Getenv("GITHUB_ACTIONS") != ""
}

func connect(t *testing.T, encryption secretservice.Encryption) *secretservice.Service {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ss, err := secretservice.Connect(ctx, encryption)
	if err != nil {
		t.Fatalf("Connect(%s) error = %v", encryption, err)
	}
	t.Cleanup(func() { _ = ss.Close() })
	return ss
}

func TestConnect(t *testing.T) {
	for _, encryption := range []secretservice.Encryption{secretservice.Plain, secretservice.DH} {
		t.Run(string(encryption), func(t *testing.T) {
			connect(t, encryption)
		})
	}
}

func TestCollections(t *testing.T) {
	ss := connect(t, secretservice.Plain)
	collections, err := ss.Collections(context.Background())
	if err != nil {
		t.Fatalf("Collections() error = %v", err)
	}
	if len(collections) == 0 {
		t.Fatal("no collections found")
	}
}

func TestDefaultCollection(t *testing.T) {
	ss := connect(t, secretservice.Plain)
	if _, err := ss.DefaultCollection(context.Background()); err != nil {
		t.Fatalf("DefaultCollection() error = %v", err)
	}
}

func TestCollectionByAlias_Missing(t *testing.T) {
	ss := connect(t, secretservice.Plain)
	_, err := ss.GetCollectionByAlias(context.Background(), "definitely_definitely_does_not_exist")
	if !errors.Is(err, secretservice.ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestItemRoundTrip(t *testing.T) {
	for _, encryption := range []secretservice.Encryption{secretservice.Plain, secretservice.DH} {
		t.Run(string(encryption), func(t *testing.T) {
			ss := connect(t, encryption)
			ctx := context.Background()

			collection, err := ss.DefaultCollection(ctx)
			if err != nil {
				t.Fatalf("DefaultCollection() error = %v", err)
			}

			attributes := map[string]string{"secretctl_integration_test": string(encryption)}
			item, err := collection.CreateItem(ctx, "integration test item",
				attributes, []byte("test_secret"), true, "text/plain")
			if err != nil {
				t.Fatalf("CreateItem() error = %v", err)
			}
			defer func() {
				if err := item.Delete(ctx); err != nil {
					t.Errorf("Delete() error = %v", err)
				}
			}()

			secret, err := item.GetSecret(ctx)
			if err != nil {
				t.Fatalf("GetSecret() error = %v", err)
			}
			if !bytes.Equal(secret, []byte("test_secret")) {
				t.Errorf("secret = %q, want %q", secret, "test_secret")
			}

			found, err := ss.SearchItems(ctx, attributes)
			if err != nil {
				t.Fatalf("SearchItems() error = %v", err)
			}
			if len(found.Unlocked) != 1 {
				t.Errorf("search found %d unlocked items, want 1", len(found.Unlocked))
			}
		})
	}
}

func TestSearchItems_NoMatch(t *testing.T) {
	ss := connect(t, secretservice.Plain)
	found, err := ss.SearchItems(context.Background(),
		map[string]string{"secretctl_integration_test": "no_such_value"})
	if err != nil {
		t.Fatalf("SearchItems() error = %v", err)
	}
	if len(found.Unlocked) != 0 || len(found.Locked) != 0 {
		t.Errorf("found %d unlocked, %d locked; want none", len(found.Unlocked), len(found.Locked))
	}
}

func TestLockUnlockCollection(t *testing.T) {
	if headless() {
		t.Skip("unlock may prompt; skipping headless run")
	}

	ss := connect(t, secretservice.Plain)
	ctx := context.Background()

	collection, err := ss.DefaultCollection(ctx)
	if err != nil {
		t.Fatalf("DefaultCollection() error = %v", err)
	}
	if err := collection.Lock(ctx); err != nil {
		t.Fatalf("Lock() error = %v", err)
	}
	if err := collection.Unlock(ctx); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
}

func TestCreateDeleteCollection(t *testing.T) {
	if headless() {
		t.Skip("collection creation prompts; skipping headless run")
	}

	ss := connect(t, secretservice.Plain)
	ctx := context.Background()

	collection, err := ss.CreateCollection(ctx, "SecretctlIntegrationTest", "")
	if err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	if err := collection.Delete(ctx); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
}

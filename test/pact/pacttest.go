//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "freshcart-api"
	ConsumerName = "freshcart-web"

	StateCatalogSeeded = "the catalog is seeded"
	StateEmptyCart     = "installation pact-device has an empty cart"
	StateCartHasApples = "installation pact-device has 3 apples in the cart"
)

const (
	InstallationID   = "pact-device"
	ExistingProduct  = "1"
	MissingProduct   = "does-not-exist"
	ApplesName       = "Fresh Organic Apples"
	ApplesPrice      = "3.99"
	ApplesCategory   = "Fruits"
	ApplesInCart     = 3
	ApplesSubtotal   = "11.97"
	ApplesShipping   = "4.99"
	ApplesTax        = "0.84"
	ApplesOrderTotal = "17.80"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the pact file written by the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}

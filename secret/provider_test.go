package secret

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEnvProvider(t *testing.T) {
	t.Setenv("HEALTHOPS_REDIS_PASSWORD", "s3cret")

	got, err := EnvProvider{}.Resolve(context.Background(), "HEALTHOPS_REDIS_PASSWORD")
	if err != nil || got != "s3cret" {
		t.Errorf("Resolve() = %q, %v, want s3cret", got, err)
	}

	if _, err := (EnvProvider{}).Resolve(context.Background(), "HEALTHOPS_UNSET_VALUE"); !errors.Is(err, ErrMissingEnv) {
		t.Errorf("Resolve(unset) error = %v, want ErrMissingEnv", err)
	}
}

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sql-password"), []byte("hunter2\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	p := &FileProvider{Dir: dir}

	got, err := p.Resolve(context.Background(), "sql-password")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "hunter2" {
		t.Errorf("Resolve() = %q, want hunter2", got)
	}

	if _, err := p.Resolve(context.Background(), "missing"); err == nil {
		t.Error("Resolve(missing) error = nil")
	}
	for _, ref := range []string{"../etc/passwd", "/", "a/../../b"} {
		if _, err := p.Resolve(context.Background(), ref); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Resolve(%q) error = %v, want ErrInvalidRef", ref, err)
		}
	}
}

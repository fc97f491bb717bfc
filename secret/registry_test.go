package secret

import (
	"errors"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("Stub", func(cfg map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := reg.Create("stub", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q, want stub", p.Name())
	}
}

func TestRegistry_Invalid(t *testing.T) {
	reg := NewRegistry()
	factory := func(cfg map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil }

	if err := reg.Register(" ", factory); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("Register(blank) error = %v, want ErrInvalidRegistration", err)
	}
	if err := reg.Register("stub", nil); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("Register(nil) error = %v, want ErrInvalidRegistration", err)
	}
	_ = reg.Register("stub", factory)
	if err := reg.Register("STUB", factory); !errors.Is(err, ErrInvalidRegistration) {
		t.Errorf("Register(duplicate) error = %v, want ErrInvalidRegistration", err)
	}
	if _, err := reg.Create("missing", nil); !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("Create(missing) error = %v, want ErrProviderNotRegistered", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	names := DefaultRegistry.List()
	if len(names) != 2 || names[0] != "env" || names[1] != "file" {
		t.Fatalf("List() = %v, want [env file]", names)
	}

	p, err := DefaultRegistry.Create("file", map[string]any{"dir": "/tmp/secrets"})
	if err != nil {
		t.Fatalf("Create(file) error = %v", err)
	}
	if fp, ok := p.(*FileProvider); !ok || fp.Dir != "/tmp/secrets" {
		t.Errorf("Create(file) = %#v, want FileProvider in /tmp/secrets", p)
	}

	p, err = DefaultRegistry.Create("file", nil)
	if err != nil {
		t.Fatalf("Create(file) error = %v", err)
	}
	if fp := p.(*FileProvider); fp.Dir != DefaultSecretsDir {
		t.Errorf("Dir = %q, want %q", fp.Dir, DefaultSecretsDir)
	}
}

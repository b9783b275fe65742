package config

import "testing"

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	cfg, err := Load([]byte(`pool:
  size: 4
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pool.Size != 4 {
		t.Errorf("Pool.Size = %d, want 4", cfg.Pool.Size)
	}
	if cfg.HTTP.TimeoutSeconds != 30 {
		t.Errorf("HTTP.TimeoutSeconds = %d, want default 30", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.HTTP.MaxRedirects != 10 {
		t.Errorf("HTTP.MaxRedirects = %d, want default 10", cfg.HTTP.MaxRedirects)
	}
}

func TestLoadEmptyInputYieldsDefault(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("Load(nil) = %+v, want %+v", cfg, want)
	}
}

func TestLoadOverridesEveryField(t *testing.T) {
	cfg, err := Load([]byte(`
pool:
  size: 2
http:
  timeout_seconds: 5
  max_redirects: 3
  max_idle_conns_per_host: 20
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pool.Size != 2 {
		t.Errorf("Pool.Size = %d, want 2", cfg.Pool.Size)
	}
	if cfg.HTTP.TimeoutSeconds != 5 {
		t.Errorf("HTTP.TimeoutSeconds = %d, want 5", cfg.HTTP.TimeoutSeconds)
	}
	if cfg.HTTP.Timeout().Seconds() != 5 {
		t.Errorf("HTTP.Timeout() = %v, want 5s", cfg.HTTP.Timeout())
	}
	if cfg.HTTP.MaxRedirects != 3 {
		t.Errorf("HTTP.MaxRedirects = %d, want 3", cfg.HTTP.MaxRedirects)
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	_, err := Load([]byte("pool: [not a map"))
	if err == nil {
		t.Fatal("Load() error = nil, want error for malformed YAML")
	}
}

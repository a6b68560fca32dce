// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("PORT", "9000")
	os.Setenv("DATABASE_URL", "postgres://test")
	os.Setenv("DATABASE_TYPE", "postgres")
	os.Setenv("ADMIN_KEY_SALT", "test-salt")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabasePostgres {
		t.Errorf("expected postgres, got %q", cfg.DatabaseType)
	}
	if cfg.VoterIPSalt != "test-salt" {
		t.Errorf("ip salt should default to admin salt, got %q", cfg.VoterIPSalt)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("PORT", "9000")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-admin-salt", "s1", "-ip-salt", "s2"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != DatabaseSQLite {
		t.Errorf("expected default sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.VoterIPSalt != "s2" {
		t.Errorf("expected ip salt s2, got %q", cfg.VoterIPSalt)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	defer os.Clearenv()

	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database url", map[string]string{"ADMIN_KEY_SALT": "s"}, nil},
		{"missing admin salt", map[string]string{"DATABASE_URL": "file:x.db"}, nil},
		{"bad port env", map[string]string{"PORT": "abc", "DATABASE_URL": "file:x.db", "ADMIN_KEY_SALT": "s"}, nil},
		{"port out of range", nil, []string{"-p", "70000", "-d", "file:x.db", "-admin-salt", "s"}},
		{"unknown database type", nil, []string{"-t", "mysql", "-d", "file:x.db", "-admin-salt", "s"}},
		{"missing explicit env file", nil, []string{"-env", "does-not-exist.env", "-d", "file:x.db", "-admin-salt", "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseFlags_IssueAdminKeySkipsDatabase(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-admin-salt", "s1", "-issue-admin-key", "alice"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IssueAdminKey != "alice" {
		t.Errorf("expected admin id alice, got %q", cfg.IssueAdminKey)
	}
}

func TestParseFlags_DotenvFile(t *testing.T) {
	os.Clearenv()
	defer os.Clearenv()

	path := filepath.Join(t.TempDir(), "test.env")
	content := "DATABASE_URL=file:from-dotenv.db\nADMIN_KEY_SALT=dotenv-salt\nPORT=4000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Variables already in the environment win over the file
	os.Setenv("PORT", "5000")

	cfg, err := ParseFlags([]string{"-env", path})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatabaseURL != "file:from-dotenv.db" {
		t.Errorf("expected database url from dotenv, got %q", cfg.DatabaseURL)
	}
	if cfg.AdminKeySalt != "dotenv-salt" {
		t.Errorf("expected admin salt from dotenv, got %q", cfg.AdminKeySalt)
	}
	if cfg.Port != 5000 {
		t.Errorf("environment should override dotenv: expected 5000, got %d", cfg.Port)
	}
}

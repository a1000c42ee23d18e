package credentials

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/withceleste/celeste/core"
)

func TestKey_Environment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	r := New()
	key, err := r.Key(core.ProviderOpenAI)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if key != "sk-env" {
		t.Errorf("Key() = %q, want sk-env", key)
	}
}

func TestKey_OverrideWinsOverEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")

	r := New(WithKey(core.ProviderOpenAI, "sk-override"))
	key, err := r.Key(core.ProviderOpenAI)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if key != "sk-override" {
		t.Errorf("Key() = %q, want sk-override", key)
	}
}

func TestKey_Missing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	r := New()
	_, err := r.Key(core.ProviderAnthropic)

	var missing *core.MissingCredentialsError
	if !errors.As(err, &missing) {
		t.Fatalf("Key() error = %v, want MissingCredentialsError", err)
	}
	if missing.Provider != core.ProviderAnthropic {
		t.Errorf("Provider = %q, want anthropic", missing.Provider)
	}
	if missing.EnvVar != "ANTHROPIC_API_KEY" {
		t.Errorf("EnvVar = %q, want ANTHROPIC_API_KEY", missing.EnvVar)
	}
}

func TestKey_UnsupportedProvider(t *testing.T) {
	r := New()
	_, err := r.Key(core.Provider("acme"))

	var unsupported *core.UnsupportedProviderError
	if !errors.As(err, &unsupported) {
		t.Fatalf("Key() error = %v, want UnsupportedProviderError", err)
	}
}

func TestRegister_CustomScheme(t *testing.T) {
	t.Setenv("ACME_API_KEY", "ak-123")

	r := New()
	r.Register(core.Provider("acme"), Scheme{
		EnvVar: "ACME_API_KEY",
		Header: "x-acme-key",
	})

	key, err := r.Key(core.Provider("acme"))
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if key != "ak-123" {
		t.Errorf("Key() = %q, want ak-123", key)
	}
}

// TestApply verifies the header-shaping per scheme: OpenAI-style Bearer
// prefixing versus bare-key headers like ElevenLabs' xi-api-key.
func TestApply(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-oai")
	t.Setenv("ELEVENLABS_API_KEY", "el-key")
	t.Setenv("ANTHROPIC_API_KEY", "ant-key")

	tests := []struct {
		name       string
		provider   core.Provider
		wantHeader string
		wantValue  string
	}{
		{"bearer prefix", core.ProviderOpenAI, "Authorization", "Bearer sk-oai"},
		{"bare key header", core.ProviderElevenLabs, "xi-api-key", "el-key"},
		{"anthropic x-api-key", core.ProviderAnthropic, "x-api-key", "ant-key"},
	}

	r := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := make(http.Header)
			if err := r.Apply(tt.provider, header); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got := header.Get(tt.wantHeader); got != tt.wantValue {
				t.Errorf("header %s = %q, want %q", tt.wantHeader, got, tt.wantValue)
			}
		})
	}
}

func TestApply_MissingKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")

	r := New()
	err := r.Apply(core.ProviderDeepSeek, make(http.Header))

	var missing *core.MissingCredentialsError
	if !errors.As(err, &missing) {
		t.Fatalf("Apply() error = %v, want MissingCredentialsError", err)
	}
}

// TestWithDotenv loads keys from a .env file without clobbering values
// already present in the environment.
func TestWithDotenv(t *testing.T) {
	// t.Setenv registers restoration; the unset makes the variable truly
	// absent so godotenv will populate it.
	t.Setenv("XAI_API_KEY", "")
	os.Unsetenv("XAI_API_KEY")
	t.Setenv("MISTRAL_API_KEY", "from-env")

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "XAI_API_KEY=from-dotenv\nMISTRAL_API_KEY=shadowed\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	r := New(WithDotenv(envFile))

	key, err := r.Key(core.ProviderXAI)
	if err != nil {
		t.Fatalf("Key(xai) error = %v", err)
	}
	if key != "from-dotenv" {
		t.Errorf("Key(xai) = %q, want from-dotenv", key)
	}

	key, err = r.Key(core.ProviderMistral)
	if err != nil {
		t.Fatalf("Key(mistral) error = %v", err)
	}
	if key != "from-env" {
		t.Errorf("Key(mistral) = %q, want from-env (dotenv must not clobber)", key)
	}
}

func TestWithDotenv_MissingFileIgnored(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-still-works")

	r := New(WithDotenv(filepath.Join(t.TempDir(), "absent.env")))
	key, err := r.Key(core.ProviderOpenAI)
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	if key != "sk-still-works" {
		t.Errorf("Key() = %q", key)
	}
}

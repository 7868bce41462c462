package memory

import (
	"runtime/debug"
	"testing"
)

// restoreLimit resets the runtime memory limit after a test changes it.
func restoreLimit(t *testing.T) {
	t.Helper()
	prev := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(prev) })
}

func TestConfigureFromEnv(t *testing.T) {
	tests := []struct {
		name       string
		limit      string
		ratio      string
		wantSource string
		wantGoMem  int64
		wantRatio  float64
	}{
		{"unset", "", "", "none", 0, 0},
		{"raw bytes", "1000000000", "", "MEMORY_LIMIT", 850000000, DefaultMemoryRatio},
		{"humanized", "1GiB", "0.5", "MEMORY_LIMIT", 1 << 29, 0.5},
		{"ratio out of range", "1000000000", "1.5", "MEMORY_LIMIT", 850000000, DefaultMemoryRatio},
		{"ratio not a number", "1000000000", "lots", "MEMORY_LIMIT", 850000000, DefaultMemoryRatio},
		{"invalid limit", "plenty", "", "none", 0, 0},
		{"negative limit", "-5", "", "none", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restoreLimit(t)
			t.Setenv("GOMEMLIMIT", "")
			t.Setenv("MEMORY_LIMIT", tt.limit)
			t.Setenv("MEMORY_RATIO", tt.ratio)

			got := ConfigureFromEnv()
			if got.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", got.Source, tt.wantSource)
			}
			if got.GoMemLimit != tt.wantGoMem {
				t.Errorf("GoMemLimit = %d, want %d", got.GoMemLimit, tt.wantGoMem)
			}
			if got.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %v, want %v", got.Ratio, tt.wantRatio)
			}
			if got.Configured != (tt.wantGoMem > 0) {
				t.Errorf("Configured = %v", got.Configured)
			}
			if tt.wantGoMem > 0 {
				if limit := debug.SetMemoryLimit(-1); limit != tt.wantGoMem {
					t.Errorf("runtime limit = %d, want %d", limit, tt.wantGoMem)
				}
			}
		})
	}
}

func TestConfigureFromEnvGOMEMLIMITWins(t *testing.T) {
	restoreLimit(t)
	debug.SetMemoryLimit(256 << 20)
	t.Setenv("GOMEMLIMIT", "256MiB")
	t.Setenv("MEMORY_LIMIT", "1000")

	got := ConfigureFromEnv()
	if got.Source != "GOMEMLIMIT" {
		t.Errorf("Source = %q, want GOMEMLIMIT", got.Source)
	}
	if got.GoMemLimit != 256<<20 {
		t.Errorf("GoMemLimit = %d, want %d", got.GoMemLimit, 256<<20)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"536870912", 536870912, false},
		{"512MiB", 512 << 20, false},
		{"1 GB", 1000000000, false},
		{"2Gi", 2 << 30, false},
		{"lots", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLimit(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLimit(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseRatioBounds(t *testing.T) {
	for _, s := range []string{"0", "-0.1", "1.01", "NaN"} {
		if got := parseRatio(s); got != DefaultMemoryRatio {
			t.Errorf("parseRatio(%q) = %v, want default", s, got)
		}
	}
	if got := parseRatio("1"); got != 1 {
		t.Errorf("parseRatio(1) = %v, want 1", got)
	}
}

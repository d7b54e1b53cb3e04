package otel

import (
	"strings"
	"testing"
)

func TestSamplerFromEnv(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "", want: "AlwaysOnSampler"},
		{value: "bogus", want: "AlwaysOnSampler"},
		{value: "1.5", want: "AlwaysOnSampler"},
		{value: "0.25", want: "ParentBased"},
	}
	for _, tt := range tests {
		t.Setenv("ROLL_OTEL_SAMPLE_RATIO", tt.value)
		got := samplerFromEnv().Description()
		if !strings.HasPrefix(got, tt.want) {
			t.Errorf("samplerFromEnv(%q) = %q, want prefix %q", tt.value, got, tt.want)
		}
	}
}

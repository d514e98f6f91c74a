package insight

import (
	"context"
	"testing"
)

func TestEvaluateRule(t *testing.T) {
	snapshot := map[string]interface{}{
		"utilization":      int64(85),
		"bookings_overdue": int64(3),
	}

	tests := []struct {
		name         string
		script       string
		wantMessage  string
		wantSeverity string
		wantErr      bool
	}{
		{
			name: "fires above threshold",
			script: `
if stats.utilization >= 80 {
	message = "Utilization is at " + string(stats.utilization) + "%"
	severity = "warning"
}`,
			wantMessage:  "Utilization is at 85%",
			wantSeverity: "warning",
		},
		{
			name: "silent below threshold",
			script: `
if stats.utilization >= 95 {
	message = "too high"
}`,
			wantMessage:  "",
			wantSeverity: "info",
		},
		{
			name: "default severity",
			script: `
if stats.bookings_overdue > 0 {
	message = "overdue bookings present"
}`,
			wantMessage:  "overdue bookings present",
			wantSeverity: "info",
		},
		{
			name:    "broken script",
			script:  `if stats.utilization {`,
			wantErr: true,
		},
		{
			name:    "empty script",
			script:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := EvaluateRule(context.Background(), tt.script, snapshot)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EvaluateRule() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if result.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", result.Message, tt.wantMessage)
			}
			if result.Severity != tt.wantSeverity {
				t.Errorf("severity = %q, want %q", result.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestCompileRule(t *testing.T) {
	if err := CompileRule(`message = "ok"`); err != nil {
		t.Errorf("CompileRule(valid) failed: %v", err)
	}
	if err := CompileRule(`if {`); err == nil {
		t.Error("CompileRule(broken) should fail")
	}
	if err := CompileRule(""); err == nil {
		t.Error("CompileRule(empty) should fail")
	}
}

package verdict

import (
	"strings"
	"testing"
)

func TestMessage_StableWording(t *testing.T) {
	tests := []struct {
		name    string
		result  Result
		wantSub string
	}{
		{"not found", Result{Kind: NotFound}, "not found"},
		{"already used", Result{Kind: AlreadyUsed}, "already used"},
		{"expired", Result{Kind: Expired}, "expired"},
		{"too many", Result{Kind: TooManyAttempts}, "too many attempts"},
		{"mismatch", Result{Kind: Mismatch, Remaining: 2}, "2 attempts remaining"},
		{"success", Result{Kind: Success}, "successful"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.result.Message()
			if !strings.Contains(msg, tt.wantSub) {
				t.Errorf("Message() = %q, want substring %q", msg, tt.wantSub)
			}
		})
	}
}

func TestOK(t *testing.T) {
	if !(Result{Kind: Success}).OK() {
		t.Error("Success should be OK")
	}
	for _, k := range []Kind{NotFound, AlreadyUsed, Expired, TooManyAttempts, Mismatch} {
		if (Result{Kind: k}).OK() {
			t.Errorf("%s should not be OK", k)
		}
	}
}

func TestKindString(t *testing.T) {
	if Expired.String() != "expired" {
		t.Errorf("Expired.String() = %q", Expired.String())
	}
	if TooManyAttempts.String() != "too_many_attempts" {
		t.Errorf("TooManyAttempts.String() = %q", TooManyAttempts.String())
	}
}

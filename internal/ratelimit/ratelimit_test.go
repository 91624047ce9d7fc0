package ratelimit

import "testing"

func TestAllowUploadEnforcesMinuteLimit(t *testing.T) {
	rl := NewRateLimiter(2, 100, 1000, true)

	if !rl.AllowUpload("acct-1") {
		t.Fatal("first upload denied")
	}
	if !rl.AllowUpload("acct-1") {
		t.Fatal("second upload denied")
	}
	if rl.AllowUpload("acct-1") {
		t.Error("third upload allowed past the per-minute limit")
	}
}

func TestAllowUploadIsPerAccount(t *testing.T) {
	rl := NewRateLimiter(1, 100, 1000, true)

	if !rl.AllowUpload("acct-1") {
		t.Fatal("first upload denied")
	}
	if rl.AllowUpload("acct-1") {
		t.Error("acct-1 allowed past its limit")
	}
	if !rl.AllowUpload("acct-2") {
		t.Error("acct-2 throttled by acct-1's usage")
	}
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1, false)
	for i := 0; i < 10; i++ {
		if !rl.AllowUpload("acct-1") {
			t.Fatalf("upload %d denied with limiter disabled", i)
		}
	}
	if stats := rl.GetStats("acct-1"); stats.Enabled {
		t.Error("stats report enabled for a disabled limiter")
	}
}

func TestGetStats(t *testing.T) {
	rl := NewRateLimiter(6, 60, 200, true)
	rl.AllowUpload("acct-1")
	rl.AllowUpload("acct-1")

	stats := rl.GetStats("acct-1")
	if !stats.Enabled {
		t.Error("Enabled = false")
	}
	if stats.UploadsLastMinute != 2 || stats.UploadsLastHour != 2 || stats.UploadsLastDay != 2 {
		t.Errorf("usage = %d/%d/%d, want 2/2/2",
			stats.UploadsLastMinute, stats.UploadsLastHour, stats.UploadsLastDay)
	}
	if stats.LimitPerMinute != 6 || stats.LimitPerHour != 60 || stats.LimitPerDay != 200 {
		t.Errorf("limits = %d/%d/%d, want 6/60/200",
			stats.LimitPerMinute, stats.LimitPerHour, stats.LimitPerDay)
	}
}

func TestReset(t *testing.T) {
	rl := NewRateLimiter(1, 1, 1, true)
	rl.AllowUpload("acct-1")
	if rl.AllowUpload("acct-1") {
		t.Fatal("second upload allowed before reset")
	}

	rl.Reset()
	if !rl.AllowUpload("acct-1") {
		t.Error("upload denied after reset")
	}
}

package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
		{"small bucket size", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "video") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset() // should not panic
}

func TestProgressSampler_ShouldLogStageChange(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(0, "video") {
		t.Error("first leg should log")
	}
	if s.ShouldLog(0, "video") {
		t.Error("same leg and percent should not log again")
	}
	if !s.ShouldLog(0, "audio") {
		t.Error("different leg should log")
	}
	if s.lastStage != "audio" {
		t.Errorf("lastStage = %q, want audio", s.lastStage)
	}
}

func TestProgressSampler_ShouldLogStageTrimsWhitespace(t *testing.T) {
	s := NewProgressSampler(10)

	s.ShouldLog(0, "  video  ")
	if s.lastStage != "video" {
		t.Errorf("lastStage = %q, want video (trimmed)", s.lastStage)
	}
}

func TestProgressSampler_ShouldLogPercentBuckets(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(0, "video") {
		t.Error("0% should log")
	}
	if s.ShouldLog(7, "video") {
		t.Error("7% should not log (same bucket)")
	}
	if !s.ShouldLog(10, "video") {
		t.Error("10% should log (new bucket)")
	}
	if s.ShouldLog(19, "video") {
		t.Error("19% should not log (same bucket)")
	}
	if !s.ShouldLog(45, "video") {
		t.Error("45% should log (skipped ahead)")
	}
}

func TestProgressSampler_ShouldLogNegativePercent(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(-1, "audio") {
		t.Error("first call should log even with negative percent")
	}
	if s.ShouldLog(-1, "audio") {
		t.Error("negative percent should not trigger bucket logging")
	}
}

func TestProgressSampler_ShouldLogCaps100Percent(t *testing.T) {
	s := NewProgressSampler(10)

	s.ShouldLog(95, "video")
	if !s.ShouldLog(100, "video") {
		t.Error("100% should log")
	}
	if s.ShouldLog(105, "video") {
		t.Error("105% should not log again (same as 100% bucket)")
	}
}

func TestProgressSampler_ShouldLogBucketResetOnStageChange(t *testing.T) {
	s := NewProgressSampler(10)

	s.ShouldLog(50, "video")
	s.ShouldLog(0, "audio")

	if !s.ShouldLog(10, "audio") {
		t.Error("10% should log after leg change reset bucket")
	}
}

func TestProgressSampler_Reset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(50, "video")

	s.Reset()

	if s.lastStage != "" {
		t.Errorf("lastStage = %q, want empty after reset", s.lastStage)
	}
	if s.lastBucket != -1 {
		t.Errorf("lastBucket = %d, want -1 after reset", s.lastBucket)
	}
	if !s.ShouldLog(50, "video") {
		t.Error("should log after reset")
	}
}

func TestProgressSampler_BucketSizes(t *testing.T) {
	t.Run("1% buckets", func(t *testing.T) {
		s := NewProgressSampler(1)
		s.ShouldLog(0, "video")

		if !s.ShouldLog(1, "video") {
			t.Error("1% should log")
		}
		if s.ShouldLog(1.5, "video") {
			t.Error("1.5% should not log (same bucket)")
		}
		if !s.ShouldLog(2, "video") {
			t.Error("2% should log")
		}
	})

	t.Run("25% buckets", func(t *testing.T) {
		s := NewProgressSampler(25)
		s.ShouldLog(0, "video")

		if s.ShouldLog(20, "video") {
			t.Error("20% should not log")
		}
		if !s.ShouldLog(25, "video") {
			t.Error("25% should log")
		}
		if s.ShouldLog(49, "video") {
			t.Error("49% should not log")
		}
		if !s.ShouldLog(50, "video") {
			t.Error("50% should log")
		}
	})
}

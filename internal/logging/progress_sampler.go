package logging

import "strings"

// ProgressSampler thins render progress for non-interactive output. A sample
// passes when the stage changes or the percentage enters a new bucket.
type ProgressSampler struct {
	step   float64
	stage  string
	bucket int
}

// NewProgressSampler returns a sampler with buckets of step percent; step
// defaults to 5.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, bucket: -1}
}

// ShouldLog reports whether the sample should be logged. A negative percent
// means unknown and only passes on a stage change. A nil sampler passes
// everything.
func (s *ProgressSampler) ShouldLog(stage string, percent float64) bool {
	if s == nil {
		return true
	}
	emit := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage = stage
		s.bucket = -1
		emit = true
	}
	if percent < 0 {
		return emit
	}
	bucket := int(min(percent, 100) / s.step)
	if bucket > s.bucket {
		s.bucket = bucket
		emit = true
	}
	return emit
}

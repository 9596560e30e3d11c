package annotrack

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {

	factory := &fakeFactory{kinds: []string{"CSRT", "MOSSE"}}

	valid := DefaultConfig()
	valid.VideoPath = "video.mp4"

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
		is      error
	}{
		{"defaults", func(c *Config) {}, false, nil},
		{"no video", func(c *Config) { c.VideoPath = "" }, true, ErrNoVideo},
		{"unsupported tracker", func(c *Config) { c.TrackerKind = "FOO" }, true, nil},
		{"detector without model", func(c *Config) { c.ModelFile = "" }, true, ErrNoModelFile},
		{"manual without model", func(c *Config) { c.UseDetector = false; c.ModelFile = "" }, false, nil},
		{"threshold too high", func(c *Config) { c.ConfThreshold = 1.5 }, true, nil},
		{"zero scale", func(c *Config) { c.DetectScale = 0 }, true, nil},
		{"zero wait", func(c *Config) { c.WaitDelay = 0 }, true, nil},
		{"negative auto reseed", func(c *Config) { c.AutoReseedAfter = -1 }, true, nil},
		{"no dump file", func(c *Config) { c.DumpFile = "" }, true, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := valid
			tc.modify(&c)

			err := c.Validate(factory)

			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}

			if tc.is != nil && !errors.Is(err, tc.is) {
				t.Errorf("expected %v, got %v", tc.is, err)
			}
		})
	}
}

func TestParseBoolFlag(t *testing.T) {

	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"True", true, false},
		{"False", false, false},
		{"true", true, false},
		{"0", false, false},
		{"yes", false, true},
	}

	for _, tc := range tests {
		got, err := ParseBoolFlag(tc.in)

		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseBoolFlag(%q) = %v, %v", tc.in, got, err)
		}
	}
}

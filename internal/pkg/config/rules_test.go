package config

import (
	"testing"
	"time"
)

func TestCronSchedule(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"0 7 * * *", false},
		{"30 6 * * 1-5", false},
		{"@daily", false},
		{"@every 3s", false},
		{"", true},
		{"@every", true},
		{"0 0 7 * * *", true},
		{"61 * * * *", true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			if err := CronSchedule(tt.spec); (err != nil) != tt.wantErr {
				t.Errorf("CronSchedule(%q) err = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestTimezone(t *testing.T) {
	for name, wantErr := range map[string]bool{"UTC": false, "": true, "Mars/Base": true} {
		if err := Timezone(name); (err != nil) != wantErr {
			t.Errorf("Timezone(%q) err = %v, wantErr %v", name, err, wantErr)
		}
	}
}

func TestBetween(t *testing.T) {
	ports := Between(1024, 65535)
	if ports(9091) != nil || ports(1024) != nil || ports(65535) != nil {
		t.Error("in-range port rejected")
	}
	if ports(80) == nil || ports(70000) == nil {
		t.Error("out-of-range port accepted")
	}

	retention := Between(time.Hour, 365*24*time.Hour)
	if retention(time.Minute) == nil {
		t.Error("one minute retention accepted")
	}
}

func TestPositive(t *testing.T) {
	if Positive(time.Second) != nil {
		t.Error("1s rejected")
	}
	if Positive(time.Duration(0)) == nil || Positive(-1) == nil {
		t.Error("non-positive accepted")
	}
}

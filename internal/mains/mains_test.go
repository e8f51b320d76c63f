package mains

import "testing"

func TestFrequencyForTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		want     int
	}{
		// 50Hz countries
		{"Europe/London", 50},
		{"Europe/Paris", 50},
		{"Europe/Berlin", 50},
		{"Australia/Sydney", 50},
		{"Asia/Shanghai", 50},
		{"Asia/Tokyo", 50}, // Japan defaults to 50Hz

		// 60Hz countries
		{"America/New_York", 60},
		{"America/Los_Angeles", 60},
		{"America/Chicago", 60},
		{"America/Toronto", 60},
		{"America/Mexico_City", 60},
		{"America/Bogota", 60},    // Colombia
		{"America/Sao_Paulo", 60}, // Brazil
		{"Asia/Seoul", 60},        // South Korea
		{"Asia/Taipei", 60},       // Taiwan
		{"Asia/Manila", 60},       // Philippines

		// Edge cases
		{"UTC", 50},
		{"GMT", 50},
		{"Etc/UTC", 50},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			got := FrequencyForTimezone(tt.timezone)
			if got != tt.want {
				t.Errorf("FrequencyForTimezone(%q) = %d, want %d", tt.timezone, got, tt.want)
			}
		})
	}
}

func TestFrequency(t *testing.T) {
	// Just verify it returns a valid value without panicking
	freq := Frequency()
	if freq != 50 && freq != 60 {
		t.Errorf("Frequency() = %d, want 50 or 60", freq)
	}
}

func TestResolve(t *testing.T) {
	if got := Resolve(60); got != 60 {
		t.Errorf("Resolve(60) = %d, want 60", got)
	}
	if got := Resolve(50); got != 50 {
		t.Errorf("Resolve(50) = %d, want 50", got)
	}
	if got := Resolve(0); got != 50 && got != 60 {
		t.Errorf("Resolve(0) = %d, want 50 or 60", got)
	}
}

func TestHarmonicsInBand(t *testing.T) {
	tests := []struct {
		name  string
		hz    int
		lower float64
		upper float64
		want  []int
	}{
		{"default band 50Hz", 50, 20, 150, []int{50, 100, 150}},
		{"default band 60Hz", 60, 20, 150, []int{60, 120}},
		{"band above fundamental", 50, 75, 210, []int{100, 150, 200}},
		{"band below fundamental", 60, 20, 40, nil},
		{"invalid frequency", 0, 20, 150, nil},
		{"inverted band", 50, 150, 20, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HarmonicsInBand(tt.hz, tt.lower, tt.upper)
			if len(got) != len(tt.want) {
				t.Fatalf("HarmonicsInBand(%d, %v, %v) = %v, want %v", tt.hz, tt.lower, tt.upper, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("HarmonicsInBand(%d, %v, %v) = %v, want %v", tt.hz, tt.lower, tt.upper, got, tt.want)
				}
			}
		})
	}
}

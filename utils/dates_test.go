package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseSheetDate(t *testing.T) {
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"ISO", "2024-06-01", false},
		{"Day first", "01/06/2024", false},
		{"Short day first", "1/6/2024", false},
		{"Dashes", "01-06-2024", false},
		{"Excel serial", "45444", false},
		{"Empty", " ", true},
		{"Garbage", "mañana", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSheetDate(tt.in, time.UTC)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSheetDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(want) {
				t.Errorf("ParseSheetDate(%q) = %s, want %s", tt.in, got, want)
			}
		})
	}
}

func TestParseSheetTime(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"18:00", 18 * time.Hour, false},
		{"18:30:00", 18*time.Hour + 30*time.Minute, false},
		{"6:30 pm", 18*time.Hour + 30*time.Minute, false},
		{"0.75", 18 * time.Hour, false},
		{"18.30", 18*time.Hour + 30*time.Minute, false},
		{"25:00", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSheetTime(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSheetTime(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSheetTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestEventWindowPastMidnight(t *testing.T) {
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	from, to := EventWindow(date, 20*time.Hour, 2*time.Hour)
	if !to.After(from) || to.Day() != 2 {
		t.Errorf("EventWindow() = %s..%s, want to end the next day", from, to)
	}
}

func TestParseSheetNumber(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2450", "2450", false},
		{"2.450,50 €", "2450.5", false},
		{"2,450.50", "2450.5", false},
		{"1.500.000", "1500000", false},
		{"12,5", "12.5", false},
		{"1,500", "1500", false},
		{"2.450", "2450", false},
		{"2.450 €", "2450", false},
		{"2.45", "2.45", false},
		{"2450.5", "2450.5", false},
		{"0.125", "0.125", false},
		{"0,125", "0.125", false},
		{"-30", "-30", false},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSheetNumber(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSheetNumber(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseSheetNumber(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseSheetInt(t *testing.T) {
	if n, err := ParseSheetInt("80"); err != nil || n != 80 {
		t.Errorf("ParseSheetInt(80) = %d, %v", n, err)
	}
	if _, err := ParseSheetInt("2,5"); err == nil {
		t.Error("ParseSheetInt(2,5) should fail")
	}
	if _, err := ParseSheetInt("-1"); err == nil {
		t.Error("ParseSheetInt(-1) should fail")
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" F, g;H / ,")
	if len(got) != 3 || got[0] != "F" || got[1] != "g" || got[2] != "H" {
		t.Errorf("SplitList() = %v", got)
	}
}

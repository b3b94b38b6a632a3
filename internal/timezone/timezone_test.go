package timezone

import "testing"

func TestLocalToUTC_KnownOffsets(t *testing.T) {
	cases := []struct {
		name  string
		local string
		tz    string
		want  string
	}{
		{"paris winter (+1)", "2026-02-24T11:00", "Europe/Paris", "2026-02-24T10:00:00Z"},
		{"paris summer (+2)", "2026-07-15T12:30", "Europe/Paris", "2026-07-15T10:30:00Z"},
		{"port-au-prince (-5)", "2026-02-24T05:00", "America/Port-au-Prince", "2026-02-24T10:00:00Z"},
		{"utc passthrough", "2026-02-24T10:00", "UTC", "2026-02-24T10:00:00Z"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := LocalToUTC(c.local, c.tz); got != c.want {
				t.Errorf("LocalToUTC(%q, %q) = %q, want %q", c.local, c.tz, got, c.want)
			}
		})
	}
}

func TestLocalToUTC_MalformedInput(t *testing.T) {
	for _, bad := range []string{"", "not-a-date", "2026-13-45T99:99", "2026-02-24", "2026-02-24T10"} {
		if got := LocalToUTC(bad, "Europe/Paris"); got != "" {
			t.Errorf("LocalToUTC(%q) = %q, want empty", bad, got)
		}
	}
}

func TestLocalToUTC_UnknownZoneFallsBackToUTC(t *testing.T) {
	got := LocalToUTC("2026-02-24T10:00", "Mars/Olympus_Mons")
	if got != "2026-02-24T10:00:00Z" {
		t.Errorf("unknown zone should fall back to UTC, got %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	locals := []string{
		"2026-02-24T10:00",
		"2026-07-01T23:59",
		"2024-02-29T12:00", // leap day
		"2026-01-01T00:00",
	}
	zones := []string{"UTC", "Europe/Paris", "America/Port-au-Prince", "Asia/Tokyo", "Australia/Sydney"}
	for _, tz := range zones {
		for _, local := range locals {
			utc := LocalToUTC(local, tz)
			if utc == "" {
				t.Fatalf("LocalToUTC(%q, %q) returned empty", local, tz)
			}
			if back := UTCToLocal(utc, tz); back != local {
				t.Errorf("round trip %q via %s: got %q (utc=%q)", local, tz, back, utc)
			}
		}
	}
}

func TestUTCToLocal_Invalid(t *testing.T) {
	if got := UTCToLocal("garbage", "UTC"); got != "" {
		t.Errorf("UTCToLocal(garbage) = %q, want empty", got)
	}
	if got := UTCToLocal("", "Europe/Paris"); got != "" {
		t.Errorf("UTCToLocal(empty) = %q, want empty", got)
	}
}

func TestFormatForDisplay(t *testing.T) {
	got := FormatForDisplay("2026-02-24T10:00:00Z", "Europe/Paris", false)
	if got != "24/02/2026 at 11:00" {
		t.Errorf("FormatForDisplay = %q, want %q", got, "24/02/2026 at 11:00")
	}
	got = FormatForDisplay("2026-02-24T10:00:05Z", "UTC", true)
	if got != "24/02/2026 at 10:00:05" {
		t.Errorf("FormatForDisplay with seconds = %q, want %q", got, "24/02/2026 at 10:00:05")
	}
	if got := FormatForDisplay("nope", "UTC", true); got != "" {
		t.Errorf("FormatForDisplay(invalid) = %q, want empty", got)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("America/Port-au-Prince"); err != nil {
		t.Errorf("Validate(America/Port-au-Prince): %v", err)
	}
	if err := Validate("Not/AZone"); err == nil {
		t.Error("Validate(Not/AZone): expected error")
	}
}

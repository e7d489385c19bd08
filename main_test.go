package main

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestSvDateTime(t *testing.T) {
	tests := []struct {
		name     string
		at       time.Time
		wantDate []byte
		wantTime []byte
	}{
		{"Epoch", time.Date(1990, time.January, 1, 0, 0, 0, 0, time.UTC), []byte{0x00, 0x00}, []byte{0x00, 0x00}},
		{"Next day noon", time.Date(1990, time.January, 2, 12, 30, 0, 0, time.UTC), []byte{0x00, 0x01}, []byte{0x02, 0xEE}},
		{"Last minute", time.Date(1990, time.January, 1, 23, 59, 59, 0, time.UTC), []byte{0x00, 0x00}, []byte{0x05, 0x9F}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, tm := svDateTime(tt.at)
			if diff := cmp.Diff(tt.wantDate, date); diff != "" {
				t.Errorf("date mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantTime, tm); diff != "" {
				t.Errorf("time mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

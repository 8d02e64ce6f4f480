package models

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestClassifyCostUpsert(t *testing.T) {
	readFailure := errors.New("driver: bad connection")

	cases := []struct {
		name     string
		readErr  error
		zeroDiff bool
		want     costUpsertAction
		wantErr  error
	}{
		{name: "existing row updated", readErr: nil, zeroDiff: false, want: costUpsertUpdate},
		{name: "existing row collapsed by zero diff", readErr: nil, zeroDiff: true, want: costUpsertDelete},
		{name: "absent row created", readErr: gorm.ErrRecordNotFound, zeroDiff: false, want: costUpsertCreate},
		{name: "absent row with zero diff is a no-op", readErr: gorm.ErrRecordNotFound, zeroDiff: true, want: costUpsertNoop},
		{name: "wrapped not-found still means absent", readErr: fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), zeroDiff: false, want: costUpsertCreate},
		{name: "read failure aborts instead of creating", readErr: readFailure, zeroDiff: false, wantErr: readFailure},
		{name: "read failure aborts instead of silent collapse", readErr: readFailure, zeroDiff: true, wantErr: readFailure},
	}

	for _, tc := range cases {
		got, err := classifyCostUpsert(tc.readErr, tc.zeroDiff)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("%s: expected read error %v back, got %v", tc.name, tc.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: expected action %d, got %d", tc.name, tc.want, got)
		}
	}
}

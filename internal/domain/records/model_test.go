package records

import "testing"

func TestParseFilter(t *testing.T) {
	cases := []struct {
		in      string
		want    ReviewFilter
		wantErr bool
	}{
		{"", FilterAll, false},
		{"ALL", FilterAll, false},
		{"PENDING", FilterPending, false},
		{"REVIEWED", FilterReviewed, false},
		{"APPROVED", "", true},
		{"pending", "", true},
		{"DONE", "", true},
	}
	for _, tc := range cases {
		got, err := ParseFilter(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFilter(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseFilter(%q): unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseFilter(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestIsReviewed(t *testing.T) {
	r := &MedicalRecord{Status: StatusPending}
	if r.IsReviewed() {
		t.Error("PENDING is not reviewed")
	}
	r.Status = StatusApproved
	if !r.IsReviewed() {
		t.Error("APPROVED is reviewed")
	}
	r.Status = StatusRejected
	if !r.IsReviewed() {
		t.Error("REJECTED is reviewed")
	}
}

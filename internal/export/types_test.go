package export

import (
	"errors"
	"testing"
	"time"

	"usage-report/internal/apperrors"
)

func TestParseState(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want State
	}{
		{"processing", StateProcessing},
		{"completed", StateCompleted},
		{"failed", StateFailed},
		{"created", StateUnknown},
		{"PROCESSING", StateUnknown},
		{"", StateUnknown},
	}

	for _, tt := range tests {
		if got := ParseState(tt.raw); got != tt.want {
			t.Errorf("ParseState(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestStateTerminal(t *testing.T) {
	t.Parallel()

	if StateProcessing.Terminal() {
		t.Error("processing should not be terminal")
	}
	for _, state := range []State{StateCompleted, StateFailed, StateUnknown} {
		if !state.Terminal() {
			t.Errorf("%s should be terminal", state)
		}
	}
}

func TestTimeRangeValidate(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		window    TimeRange
		wantField string
	}{
		{
			name:   "valid window",
			window: TimeRange{Start: day, End: day.AddDate(0, 0, 14)},
		},
		{
			name:      "missing start",
			window:    TimeRange{End: day},
			wantField: "start",
		},
		{
			name:      "missing end",
			window:    TimeRange{Start: day},
			wantField: "end",
		},
		{
			name:      "start after end",
			window:    TimeRange{Start: day.AddDate(0, 0, 14), End: day},
			wantField: "start",
		},
		{
			name:      "start equals end",
			window:    TimeRange{Start: day, End: day},
			wantField: "start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.window.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("Validate() = %v, want ErrValidation", err)
			}
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("error is not a structured *apperrors.Error: %v", err)
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

func TestTimeRangeDatePart(t *testing.T) {
	t.Parallel()

	window := validWindow()
	if got, want := window.DatePart(), "2024-11-01_2024-11-15"; got != want {
		t.Errorf("DatePart() = %q, want %q", got, want)
	}
}

func TestRequestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "defaults to the owning org",
			req:  Request{OrgID: "org-1"},
			want: []string{"org-1"},
		},
		{
			name: "drops empty entries",
			req:  Request{OrgID: "org-1", SharedOrgIDs: []string{"org-a", "", "org-b", ""}},
			want: []string{"org-a", "org-b"},
		},
		{
			name: "all entries empty falls back to the owner",
			req:  Request{OrgID: "org-1", SharedOrgIDs: []string{"", ""}},
			want: []string{"org-1"},
		},
		{
			name: "keeps an explicit list unchanged",
			req:  Request{OrgID: "org-1", SharedOrgIDs: []string{"org-a"}},
			want: []string{"org-a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.req.Normalize()
			if len(tt.req.SharedOrgIDs) != len(tt.want) {
				t.Fatalf("SharedOrgIDs = %v, want %v", tt.req.SharedOrgIDs, tt.want)
			}
			for i, id := range tt.want {
				if tt.req.SharedOrgIDs[i] != id {
					t.Errorf("SharedOrgIDs[%d] = %q, want %q", i, tt.req.SharedOrgIDs[i], id)
				}
			}
		})
	}
}

func TestRequestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Request {
		return &Request{OrgID: "org-1", Window: validWindow(), SharedOrgIDs: []string{"org-1"}}
	}

	tests := []struct {
		name      string
		mutate    func(*Request)
		wantField string
	}{
		{
			name:   "valid request",
			mutate: func(r *Request) {},
		},
		{
			name:      "missing org id",
			mutate:    func(r *Request) { r.OrgID = "" },
			wantField: "orgId",
		},
		{
			name:      "missing window",
			mutate:    func(r *Request) { r.Window = TimeRange{} },
			wantField: "start",
		},
		{
			name:      "empty shared org list",
			mutate:    func(r *Request) { r.SharedOrgIDs = nil },
			wantField: "sharedOrgIds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := valid()
			tt.mutate(req)

			err := req.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("Validate() = %v, want ErrValidation", err)
			}
			var appErr *apperrors.Error
			if !errors.As(err, &appErr) {
				t.Fatalf("error is not a structured *apperrors.Error: %v", err)
			}
			if appErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", appErr.Field, tt.wantField)
			}
		})
	}
}

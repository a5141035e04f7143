package app

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestMapRevealError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantPhrase string
	}{
		{errors.New("pq: no_active_subscription"), http.StatusForbidden, "active subscription"},
		{errors.New("pq: quota_exceeded"), http.StatusTooManyRequests, "monthly contact-reveal limit"},
		{errors.New("connection refused"), http.StatusInternalServerError, "connection refused"},
	}
	for _, tc := range cases {
		status, msg := mapRevealError(tc.err)
		if status != tc.wantStatus {
			t.Errorf("mapRevealError(%v) status = %d, want %d", tc.err, status, tc.wantStatus)
		}
		if !strings.Contains(msg, tc.wantPhrase) {
			t.Errorf("mapRevealError(%v) msg = %q, want it to mention %q", tc.err, msg, tc.wantPhrase)
		}
	}
}

package service

import (
	"math"
	"strings"
	"time"

	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

func errForbidden(reason string) error {
	return apperrors.NewForbidden(reason)
}

// requireIDs fails with BAD_REQUEST naming the first blank identifier.
// pairs alternates value and label.
func requireIDs(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i]) == "" {
			return apperrors.NewBadRequest(pairs[i+1] + " is required")
		}
	}
	return nil
}

func stringPtr(s string) *string {
	return &s
}

// nonEmpty maps an empty string to nil.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func timeOrNow(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now()
}

// maxOffset bounds (page-1)*limit so huge page numbers cannot overflow.
const maxOffset = math.MaxInt32

// clampPage keeps page within [1, the last page whose offset fits maxOffset].
// limit must be positive.
func clampPage(page, limit int) int {
	if page < 1 {
		return 1
	}
	if last := maxOffset/limit + 1; page > last {
		return last
	}
	return page
}

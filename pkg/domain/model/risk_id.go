package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// RiskIDPrefix is the prefix of every risk register ID
const RiskIDPrefix = "RR"

// FormatRiskID formats a risk ID as RR-<year>-<seq>, zero padding seq to three digits
func FormatRiskID(year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", RiskIDPrefix, year, seq)
}

// NextRiskID returns the risk ID of year with the smallest sequence number >= 1 that is not in avoid.
func NextRiskID(year int, avoid []string) string {
	taken := make(map[string]struct{}, len(avoid))
	for _, id := range avoid {
		taken[id] = struct{}{}
	}

	for seq := 1; ; seq++ {
		candidate := FormatRiskID(year, seq)
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
	}
}

// ParseRiskID splits a risk ID into year and sequence number
func ParseRiskID(id string) (year, seq int, err error) {
	parts := strings.Split(id, "-")
	if len(parts) != 3 || parts[0] != RiskIDPrefix {
		return 0, 0, goerr.Wrap(ErrInvalidRiskID, "malformed risk ID", goerr.V(RiskIDKey, id))
	}

	year, err = strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) != 4 {
		return 0, 0, goerr.Wrap(ErrInvalidRiskID, "invalid year in risk ID", goerr.V(RiskIDKey, id))
	}

	if len(parts[2]) < 3 {
		return 0, 0, goerr.Wrap(ErrInvalidRiskID, "sequence must be at least three digits", goerr.V(RiskIDKey, id))
	}
	seq, err = strconv.Atoi(parts[2])
	if err != nil || seq < 1 {
		return 0, 0, goerr.Wrap(ErrInvalidRiskID, "invalid sequence in risk ID", goerr.V(RiskIDKey, id))
	}

	return year, seq, nil
}

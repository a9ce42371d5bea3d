package model

import "github.com/m-mizutani/goerr/v2"

// Domain errors
var (
	ErrUnknownField  = goerr.New("unknown field")
	ErrInvalidRiskID = goerr.New("invalid risk ID")
)

// Context keys for error values
const (
	FieldNameKey = "field_name"
	RiskIDKey    = "risk_id"
)

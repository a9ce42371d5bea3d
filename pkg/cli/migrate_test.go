package cli

import (
	"testing"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := getIndexConfig("")
	gt.Array(t, cfg.Collections).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("tasks")

	idx := cfg.Collections[0].Indexes
	gt.Array(t, idx).Length(1).Required()
	gt.Value(t, idx[0].Fields[0].Path).Equal("risk_id")
	gt.Value(t, idx[0].Fields[1].Order).Equal(fireconf.OrderAscending)

	gt.Value(t, getIndexConfig("staging").Collections[0].Name).Equal("staging_tasks")
}

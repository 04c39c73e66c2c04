// Package norm canonicalizes parent organization names.
package norm

import (
	"maps"
	"strings"

	"github.com/huangsam/starsview/schema"
)

// defaultAliases maps legacy organization names to their current parent.
var defaultAliases = map[string]string{
	"Aetna Inc.": "CVS Health Corporation",
}

// Normalizer rewrites parent_organization through an alias table.
// It never touches any other field.
type Normalizer struct {
	aliases map[string]string
}

// New builds a Normalizer from the built-in aliases plus extra ones.
// Extra entries override the built-in table on conflict.
func New(extra map[string]string) *Normalizer {
	aliases := maps.Clone(defaultAliases)
	for from, to := range extra {
		from = strings.TrimSpace(from)
		if from == "" {
			continue
		}
		aliases[from] = strings.TrimSpace(to)
	}
	return &Normalizer{aliases: aliases}
}

// Aliases returns a copy of the active alias table.
func (n *Normalizer) Aliases() map[string]string {
	return maps.Clone(n.aliases)
}

// Organization returns the canonical name for name. Unknown names pass through.
func (n *Normalizer) Organization(name string) string {
	if canonical, ok := n.aliases[name]; ok {
		return canonical
	}
	return name
}

// ContractRecord returns a copy of r with a canonical parent organization.
func (n *Normalizer) ContractRecord(r schema.ContractRecord) schema.ContractRecord {
	r.ParentOrganization = n.Organization(r.ParentOrganization)
	return r
}

// ContractYearTotal returns a copy of r with a canonical parent organization.
func (n *Normalizer) ContractYearTotal(r schema.ContractYearTotal) schema.ContractYearTotal {
	r.ParentOrganization = n.Organization(r.ParentOrganization)
	return r
}

// Records normalizes both contract collections. The inputs are not modified.
func (n *Normalizer) Records(records []schema.ContractRecord, totals []schema.ContractYearTotal) ([]schema.ContractRecord, []schema.ContractYearTotal) {
	outRecords := make([]schema.ContractRecord, len(records))
	for i, r := range records {
		outRecords[i] = n.ContractRecord(r)
	}
	outTotals := make([]schema.ContractYearTotal, len(totals))
	for i, r := range totals {
		outTotals[i] = n.ContractYearTotal(r)
	}
	return outRecords, outTotals
}

// Package plans is the read-only plan catalog used by checkout estimation.
//
// A catalog answers two questions for a given currency: what a set of plans and
// addons costs for a billing cycle, and which entry in a set of plan IDs is the
// base plan. Everything else in checkoutkit receives the catalog as an explicit
// parameter, so tests can swap in a tiny in-memory catalog.
//
// # Vocabulary
//
//   - Cycle: billing period length in months (1, 12, 24, ...)
//   - Currency: ISO 4217 code, validated with golang.org/x/text/currency
//   - PlanIDs: plan or addon name mapped to quantity
//   - PlanEntry: immutable pricing table and capability limits for one plan or addon
//
// # Usage
//
//	catalog, err := plans.NewMemoryCatalog(
//		plans.PlanEntry{
//			Name:     "mail2022",
//			Type:     plans.TypePlan,
//			Currency: "EUR",
//			Pricing:  map[plans.Cycle]int64{plans.Monthly: 499, plans.Yearly: 4788},
//			Limits:   plans.Limits{MaxMembers: 1},
//		},
//	)
//	if err != nil {
//		return err
//	}
//
//	price := catalog.Price(plans.PlanIDs{"mail2022": 1}, plans.Yearly, "EUR") // 4788
//
// Catalogs can also be loaded from YAML files with LoadYAML; see yaml_source.go
// for the document layout.
package plans
